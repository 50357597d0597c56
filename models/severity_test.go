package models

import "testing"

func TestSeverityForAQIBands(t *testing.T) {
	cases := []struct {
		aqi  int
		want Severity
	}{
		{0, SeverityGood},
		{100, SeverityGood},
		{101, SeverityModerate},
		{150, SeverityModerate},
		{151, SeverityUnhealthy},
		{180, SeverityUnhealthy},
		{200, SeverityUnhealthy},
		{201, SeverityDangerous},
		{300, SeverityDangerous},
		{301, SeverityVeryDangerous},
		{500, SeverityVeryDangerous},
	}
	for _, c := range cases {
		if got := SeverityForAQI(c.aqi); got != c.want {
			t.Errorf("SeverityForAQI(%d) = %s, want %s", c.aqi, got, c.want)
		}
	}
}
