package pollution

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pollualert/core/models"
)

// Client talks to the pollution data service.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// apiResponse mirrors the data service's wire shape.
type apiResponse struct {
	Coord struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"coord"`
	List []struct {
		Dt   int64 `json:"dt"`
		Main struct {
			AQI int `json:"aqi"`
		} `json:"main"`
		Components models.Components `json:"components"`
	} `json:"list"`
}

// Current returns the latest reading for a coordinate.
func (c *Client) Current(ctx context.Context, lat, lon float64) (*models.LocationReading, error) {
	readings, err := c.fetch(ctx, "/pollution/current", lat, lon, nil)
	if err != nil {
		return nil, err
	}
	if len(readings) == 0 {
		return nil, fmt.Errorf("pollution: empty reading list for (%v, %v)", lat, lon)
	}
	return &readings[0], nil
}

// Forecast returns upcoming readings for a coordinate.
func (c *Client) Forecast(ctx context.Context, lat, lon float64) ([]models.LocationReading, error) {
	return c.fetch(ctx, "/pollution/forecast", lat, lon, nil)
}

// History returns past readings for a coordinate within [start, end].
func (c *Client) History(ctx context.Context, lat, lon float64, start, end time.Time) ([]models.LocationReading, error) {
	extra := url.Values{
		"start": {strconv.FormatInt(start.Unix(), 10)},
		"end":   {strconv.FormatInt(end.Unix(), 10)},
	}
	return c.fetch(ctx, "/pollution/history", lat, lon, extra)
}

func (c *Client) fetch(ctx context.Context, path string, lat, lon float64, extra url.Values) ([]models.LocationReading, error) {
	q := url.Values{
		"lat": {strconv.FormatFloat(lat, 'f', -1, 64)},
		"lon": {strconv.FormatFloat(lon, 'f', -1, 64)},
	}
	for k, vs := range extra {
		q[k] = vs
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pollution service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pollution service returned %d", resp.StatusCode)
	}

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode reading: %w", err)
	}

	readings := make([]models.LocationReading, 0, len(body.List))
	for _, item := range body.List {
		readings = append(readings, models.LocationReading{
			Lat:        body.Coord.Lat,
			Lon:        body.Coord.Lon,
			Timestamp:  time.Unix(item.Dt, 0).UTC(),
			AQI:        item.Main.AQI,
			Components: item.Components,
		})
	}
	return readings, nil
}
