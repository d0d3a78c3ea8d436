package weather

// UnknownDescription is returned for weather codes outside the WMO table.
const UnknownDescription = "unknown"

// wmoDescriptions maps WMO weather interpretation codes as published by
// Open-Meteo.
var wmoDescriptions = map[int]string{
	0:  "clear sky",
	1:  "mainly clear",
	2:  "partly cloudy",
	3:  "overcast",
	45: "fog",
	48: "fog",
	51: "drizzle",
	53: "drizzle",
	55: "drizzle",
	61: "rain",
	63: "rain",
	65: "rain",
	71: "snow",
	73: "snow",
	75: "snow",
	77: "snow grains",
	80: "rain showers",
	81: "rain showers",
	82: "rain showers",
	85: "snow showers",
	86: "snow showers",
	95: "thunderstorm",
	96: "thunderstorm with hail",
	99: "thunderstorm with hail",
}

// DescribeCode returns the description for a WMO weather code.
func DescribeCode(code int) string {
	if d, ok := wmoDescriptions[code]; ok {
		return d
	}
	return UnknownDescription
}
