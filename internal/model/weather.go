package model

import (
	"encoding/json"
	"time"
)

// Kelvin is 0°C expressed in Kelvin.
const Kelvin = 273.15

// Celsius converts a Kelvin reading to degrees Celsius.
func Celsius(k float64) float64 {
	return k - Kelvin
}

// Temperature holds a reading and its daily bounds, all in Kelvin.
type Temperature struct {
	Value float64 `json:"value"`
	Max   float64 `json:"max"`
	Min   float64 `json:"min"`
}

// Wind speed in metres per second.
type Wind struct {
	Speed float64 `json:"speed"`
}

// Weather is the closed set of conditions the service distinguishes.
type Weather int

const (
	Unknown Weather = iota
	Sunny
	DayCloudy
	Cloudy
	BrokenCloudy
	ShowerRain
	Rain
	Thunderstorm
	Snow
	Mist
)

type weatherInfo struct {
	name      string
	daytime   string
	nighttime string
}

var weatherTable = map[Weather]weatherInfo{
	Sunny:        {"Sunny", "day-sunny", "night-clear"},
	DayCloudy:    {"DayCloudy", "day-cloudy", "night-cloudy"},
	Cloudy:       {"Cloudy", "cloud", "cloud"},
	BrokenCloudy: {"BrokenCloudy", "cloudy", "cloudy"},
	ShowerRain:   {"ShowerRain", "day-showers", "night-showers"},
	Rain:         {"Rain", "rain", "rain"},
	Thunderstorm: {"Thunderstorm", "thunderstorm", "thunderstorm"},
	Snow:         {"Snow", "snow", "snow"},
	Mist:         {"Mist", "day-fog", "night-fog"},
	Unknown:      {"Unknown", "unknown", "unknown"},
}

// AllWeather lists every category in declaration order.
var AllWeather = []Weather{
	Unknown, Sunny, DayCloudy, Cloudy, BrokenCloudy, ShowerRain, Rain, Thunderstorm, Snow, Mist,
}

func (w Weather) info() weatherInfo {
	if i, ok := weatherTable[w]; ok {
		return i
	}
	return weatherTable[Unknown]
}

func (w Weather) String() string {
	return w.info().name
}

// DaytimeIcon and NighttimeIcon name the icon asset a client should draw.
func (w Weather) DaytimeIcon() string   { return w.info().daytime }
func (w Weather) NighttimeIcon() string { return w.info().nighttime }

// Icon picks the daytime icon between 05:00 and 18:59, the nighttime one otherwise.
func (w Weather) Icon(t time.Time) string {
	if h := t.Hour(); h >= 5 && h <= 18 {
		return w.DaytimeIcon()
	}
	return w.NighttimeIcon()
}

// ParseWeather is the inverse of String. Unrecognised names yield Unknown.
func ParseWeather(name string) Weather {
	for _, w := range AllWeather {
		if w.String() == name {
			return w
		}
	}
	return Unknown
}

func (w Weather) MarshalJSON() ([]byte, error) {
	return json.Marshal(w.String())
}

func (w *Weather) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*w = ParseWeather(s)
	return nil
}

// CurrentWeather is the latest observation for a single place.
type CurrentWeather struct {
	Name    string      `json:"name"`
	Desc    string      `json:"desc"`
	Weather Weather     `json:"weather"`
	Temp    Temperature `json:"temp"`
	Wind    Wind        `json:"wind"`
}

// Forecast is one forecast step.
type Forecast struct {
	Name     string      `json:"name"`
	Desc     string      `json:"desc"`
	Weather  Weather     `json:"weather"`
	Temp     Temperature `json:"temp"`
	Wind     Wind        `json:"wind"`
	DateTime time.Time   `json:"dateTime"`
}

// WeatherForecast is an ordered sequence of forecast steps.
type WeatherForecast struct {
	List []Forecast `json:"list"`
}

// Temperatures returns the Kelvin value of every step, in order.
func (f WeatherForecast) Temperatures() []float64 {
	out := make([]float64, len(f.List))
	for i, e := range f.List {
		out[i] = e.Temp.Value
	}
	return out
}
