package openweathermap

import (
	"time"

	"github.com/namefreezers/weather-now/internal/model"
)

// ForecastSize is how many forecast steps are kept: six shown on the gauge
// plus one edge step on either side.
const ForecastSize = 8

// Condition is one entry of the "weather" array.
type Condition struct {
	ID          int    `json:"id"`
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// Main carries the temperature block, in Kelvin.
type Main struct {
	Temp     float64 `json:"temp"`
	TempMin  float64 `json:"temp_min"`
	TempMax  float64 `json:"temp_max"`
	Pressure float64 `json:"pressure"`
	Humidity int     `json:"humidity"`
}

type Wind struct {
	Speed float64 `json:"speed"`
	Deg   float64 `json:"deg"`
}

type Coord struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// CurrentWeatherResponse is the /data/2.5/weather payload.
type CurrentWeatherResponse struct {
	Coord   Coord       `json:"coord"`
	Weather []Condition `json:"weather"`
	Main    Main        `json:"main"`
	Wind    Wind        `json:"wind"`
	Dt      int64       `json:"dt"`
	Name    string      `json:"name"`
}

// ForecastEntry is one 3-hourly step of the forecast list.
type ForecastEntry struct {
	Dt      int64       `json:"dt"`
	Main    Main        `json:"main"`
	Weather []Condition `json:"weather"`
	Wind    Wind        `json:"wind"`
}

// Time returns the step's timestamp in local time, which is what picks the
// day or night icon.
func (f ForecastEntry) Time() time.Time {
	return time.Unix(f.Dt, 0)
}

// SetTime overwrites the step's timestamp.
func (f *ForecastEntry) SetTime(t time.Time) {
	f.Dt = t.Unix()
}

type City struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Coord   Coord  `json:"coord"`
	Country string `json:"country"`
}

// WeatherForecastResponse is the /data/2.5/forecast payload.
type WeatherForecastResponse struct {
	List []ForecastEntry `json:"list"`
	City City            `json:"city"`
}

func firstCondition(cs []Condition) Condition {
	if len(cs) == 0 {
		return Condition{}
	}
	return cs[0]
}

func temperature(m Main) model.Temperature {
	return model.Temperature{Value: m.Temp, Max: m.TempMax, Min: m.TempMin}
}

// ToModel converts the payload into the domain model.
func (r CurrentWeatherResponse) ToModel() model.CurrentWeather {
	c := firstCondition(r.Weather)
	return model.CurrentWeather{
		Name:    c.Main,
		Desc:    c.Description,
		Weather: IconToWeather(c.Icon),
		Temp:    temperature(r.Main),
		Wind:    model.Wind{Speed: r.Wind.Speed},
	}
}

func (f ForecastEntry) ToModel() model.Forecast {
	c := firstCondition(f.Weather)
	return model.Forecast{
		Name:     c.Main,
		Desc:     c.Description,
		Weather:  IconToWeather(c.Icon),
		Temp:     temperature(f.Main),
		Wind:     model.Wind{Speed: f.Wind.Speed},
		DateTime: f.Time(),
	}
}

// ToModel keeps the first ForecastSize steps.
func (r WeatherForecastResponse) ToModel() model.WeatherForecast {
	n := min(len(r.List), ForecastSize)
	list := make([]model.Forecast, 0, n)
	for _, f := range r.List[:n] {
		list = append(list, f.ToModel())
	}
	return model.WeatherForecast{List: list}
}

var iconPrefixes = map[string]model.Weather{
	"01": model.Sunny,
	"02": model.DayCloudy,
	"03": model.Cloudy,
	"04": model.BrokenCloudy,
	"09": model.ShowerRain,
	"10": model.Rain,
	"11": model.Thunderstorm,
	"13": model.Snow,
	"50": model.Mist,
}

// IconToWeather maps an OpenWeatherMap icon code such as "10n" to a category.
// The day/night suffix does not change the category; anything that is not a
// known two-digit code followed by 'd' or 'n' is Unknown.
func IconToWeather(code string) model.Weather {
	if len(code) != 3 {
		return model.Unknown
	}
	if suffix := code[2]; suffix != 'd' && suffix != 'n' {
		return model.Unknown
	}
	if w, ok := iconPrefixes[code[:2]]; ok {
		return w
	}
	return model.Unknown
}
