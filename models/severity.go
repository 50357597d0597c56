package models

// Severity is the display label for an AQI band. Labels match what the UI
// shows, so they stay in French.
type Severity string

const (
	SeverityGood          Severity = "Bon"
	SeverityModerate      Severity = "Modéré"
	SeverityUnhealthy     Severity = "Malsain"
	SeverityDangerous     Severity = "Dangereux"
	SeverityVeryDangerous Severity = "Très Dangereux"
)

// SeverityForAQI maps a composite AQI score onto its display band.
func SeverityForAQI(aqi int) Severity {
	switch {
	case aqi >= 301:
		return SeverityVeryDangerous
	case aqi >= 201:
		return SeverityDangerous
	case aqi >= 151:
		return SeverityUnhealthy
	case aqi >= 101:
		return SeverityModerate
	default:
		return SeverityGood
	}
}
