package weather

import "fmt"

// DefaultIcon is used for weather codes missing from the table.
const DefaultIcon = "01d"

const iconURLTemplate = "https://openweathermap.org/img/wn/%s@2x.png"

// Condition is the human description and icon code for a WMO weather code.
type Condition struct {
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

var unknownCondition = Condition{Description: "unknown", Icon: DefaultIcon}

var conditions = map[int]Condition{
	0:  {"clear sky", "01d"},
	1:  {"mainly clear", "01d"},
	2:  {"partly cloudy", "02d"},
	3:  {"overcast", "03d"},
	45: {"foggy", "50d"},
	48: {"depositing rime fog", "50d"},
	51: {"light drizzle", "09d"},
	53: {"moderate drizzle", "09d"},
	55: {"dense drizzle", "09d"},
	61: {"slight rain", "10d"},
	63: {"moderate rain", "10d"},
	65: {"heavy rain", "10d"},
	71: {"slight snow", "13d"},
	73: {"moderate snow", "13d"},
	75: {"heavy snow", "13d"},
	77: {"snow grains", "13d"},
	80: {"slight rain showers", "09d"},
	81: {"moderate rain showers", "09d"},
	82: {"violent rain showers", "09d"},
	85: {"slight snow showers", "13d"},
	86: {"heavy snow showers", "13d"},
	95: {"thunderstorm", "11d"},
	96: {"thunderstorm with slight hail", "11d"},
	99: {"thunderstorm with heavy hail", "11d"},
}

// DescribeCode maps a weather code to its condition, or to "unknown" with the
// default icon.
func DescribeCode(code int) Condition {
	if c, ok := conditions[code]; ok {
		return c
	}
	return unknownCondition
}

// IconURL returns the image URL for an icon code. The code is not validated.
func IconURL(iconCode string) string {
	return fmt.Sprintf(iconURLTemplate, iconCode)
}
