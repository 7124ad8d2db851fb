package openweathermap

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/namefreezers/weather-now/internal/config"
)

const defaultBaseURL = "https://api.openweathermap.org/data/2.5"

// Client queries the OpenWeatherMap current weather and 5 day / 3 hour
// forecast endpoints for a single configured city.
type Client struct {
	apiKey  string
	city    string
	baseURL string
	http    *http.Client
}

func NewClient(cfg *config.Config) (*Client, error) {
	key := cfg.OpenWeatherMapOrgKey // might be missing
	if key == "" {
		return nil, fmt.Errorf("OPENWEATHERMAP_ORG_API_KEY is not set")
	}
	return &Client{
		apiKey:  key,
		city:    cfg.OpenWeatherMapCity,
		baseURL: defaultBaseURL,
		http:    http.DefaultClient,
	}, nil
}

// WithBaseURL points the client at another host, e.g. a test server.
func (c *Client) WithBaseURL(u string) *Client {
	c.baseURL = u
	return c
}

func (c *Client) GetCurrentData(ctx context.Context) (CurrentWeatherResponse, error) {
	var body CurrentWeatherResponse
	if err := c.get(ctx, "weather", &body); err != nil {
		return CurrentWeatherResponse{}, err
	}
	return body, nil
}

func (c *Client) GetForecast(ctx context.Context) (WeatherForecastResponse, error) {
	var body WeatherForecastResponse
	if err := c.get(ctx, "forecast", &body); err != nil {
		return WeatherForecastResponse{}, err
	}
	return body, nil
}

func (c *Client) get(ctx context.Context, endpoint string, out any) error {
	q := url.Values{}
	q.Set("q", c.city)
	q.Set("appid", c.apiKey)
	u := fmt.Sprintf("%s/%s?%s", c.baseURL, endpoint, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("openweathermap: failed to build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("openweathermap: HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf(
			"openweathermap: unexpected status %d %s",
			resp.StatusCode, http.StatusText(resp.StatusCode),
		)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("openweathermap: JSON decode error: %w", err)
	}
	return nil
}
