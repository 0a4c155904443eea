package weather

import "fmt"

// Units is the measurement system requested from the forecast API.
type Units string

const (
	Metric   Units = "metric"
	Imperial Units = "imperial"
)

// Valid reports whether u is one of the known unit systems.
func (u Units) Valid() bool {
	return u == Metric || u == Imperial
}

// Toggle returns the other unit system. Anything unknown toggles to imperial,
// since unknown values are read as metric.
func (u Units) Toggle() Units {
	if u == Imperial {
		return Metric
	}
	return Imperial
}

// TemperatureUnit is the forecast API's temperature_unit value.
func (u Units) TemperatureUnit() string {
	if u == Imperial {
		return "fahrenheit"
	}
	return "celsius"
}

// WindSpeedUnit is the forecast API's wind_speed_unit value.
func (u Units) WindSpeedUnit() string {
	if u == Imperial {
		return "mph"
	}
	return "ms"
}

// Location is a geocoded city.
type Location struct {
	Name        string  `json:"name"`
	CountryCode string  `json:"country_code"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

// String formats the location with its coordinates, for logs.
func (l Location) String() string {
	return fmt.Sprintf("%s, %s (%.4f, %.4f)", l.Name, l.CountryCode, l.Latitude, l.Longitude)
}

// CurrentWeather holds current conditions for a city, in the requested units.
type CurrentWeather struct {
	City        string  `json:"city"`
	Country     string  `json:"country"`
	Temperature int     `json:"temperature"`
	FeelsLike   int     `json:"feels_like"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
	Humidity    int     `json:"humidity"`
	WindSpeed   float64 `json:"wind_speed"`
	Pressure    int     `json:"pressure"`
	Timestamp   int64   `json:"timestamp"`
}

// ForecastDay is one day of the daily forecast.
type ForecastDay struct {
	Date        int64   `json:"date"`
	Temperature int     `json:"temperature"`
	TempMin     int     `json:"temp_min"`
	TempMax     int     `json:"temp_max"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
	Humidity    int     `json:"humidity"`
	WindSpeed   float64 `json:"wind_speed"`
}
