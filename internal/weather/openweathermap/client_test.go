package openweathermap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/namefreezers/weather-now/internal/config"
	"github.com/namefreezers/weather-now/internal/model"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := NewClient(&config.Config{OpenWeatherMapOrgKey: "k", OpenWeatherMapCity: "Paris"})
	if err != nil {
		t.Fatalf("NewClient() unexpected error: %v", err)
	}
	return c.WithBaseURL(srv.URL)
}

func TestNewClient_MissingKey(t *testing.T) {
	if _, err := NewClient(&config.Config{}); err == nil {
		t.Fatal("NewClient() expected error without API key")
	}
}

func TestClient_GetCurrentData(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/weather" {
			t.Errorf("path = %q, want /weather", r.URL.Path)
		}
		if q := r.URL.Query(); q.Get("q") != "Paris" || q.Get("appid") != "k" {
			t.Errorf("query = %v", q)
		}
		w.Write([]byte(`{"weather":[{"main":"Rain","description":"light rain","icon":"10d"}],"main":{"temp":281.5},"name":"Paris"}`))
	})

	got, err := c.GetCurrentData(context.Background())
	if err != nil {
		t.Fatalf("GetCurrentData() unexpected error: %v", err)
	}
	if got.Name != "Paris" || got.Main.Temp != 281.5 || got.Weather[0].Icon != "10d" {
		t.Errorf("GetCurrentData() = %+v", got)
	}
}

func TestClient_GetCurrentData_NoWeather(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"weather":[],"main":{"temp":281.5}}`))
	})
	got, err := c.GetCurrentData(context.Background())
	if err != nil {
		t.Fatalf("GetCurrentData() unexpected error: %v", err)
	}
	m := got.ToModel()
	if m.Weather != model.Unknown || m.Name != "" || m.Desc != "" {
		t.Errorf("ToModel() = %+v, want Unknown with empty name/desc", m)
	}
	if m.Temp.Value != 281.5 {
		t.Errorf("Temp.Value = %v, want 281.5", m.Temp.Value)
	}
}

func TestClient_GetForecast_BadStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	})
	if _, err := c.GetForecast(context.Background()); err == nil {
		t.Fatal("GetForecast() expected error on 401")
	}
}

func TestClient_GetForecast(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/forecast" {
			t.Errorf("path = %q, want /forecast", r.URL.Path)
		}
		w.Write([]byte(`{"list":[{"dt":1570244400,"main":{"temp":288.11},"weather":[{"icon":"01n"}]}],"city":{"name":"Paris"}}`))
	})

	got, err := c.GetForecast(context.Background())
	if err != nil {
		t.Fatalf("GetForecast() unexpected error: %v", err)
	}
	if len(got.List) != 1 || got.List[0].Dt != 1570244400 || got.City.Name != "Paris" {
		t.Errorf("GetForecast() = %+v", got)
	}
}
