package weather

import (
	"fmt"
	"math"
	"strings"
)

var windDirections = []string{
	"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW",
}

// Metrics are the derived comfort figures for one observation. HeatIndex
// and WindChill fall back to the raw temperature outside their applicable
// ranges, so both are always present.
type Metrics struct {
	HeatIndex         float64 `json:"heat_index"`
	WindChill         float64 `json:"wind_chill"`
	ComfortLevel      string  `json:"comfort_level"`
	WindDirectionText string  `json:"wind_direction_text"`
}

// CalculateMetrics derives heat index, wind chill, comfort level, and a
// compass wind direction. Temperature is Celsius, humidity a percentage,
// wind speed m/s, wind direction degrees (nil when unreported).
func CalculateMetrics(temperature float64, humidity int, windSpeed float64, windDirection *int) (Metrics, error) {
	if humidity < 0 || humidity > 100 {
		return Metrics{}, fmt.Errorf("humidity %d out of range [0, 100]", humidity)
	}
	if windSpeed < 0 {
		return Metrics{}, fmt.Errorf("wind speed must be >= 0")
	}

	m := Metrics{HeatIndex: temperature, WindChill: temperature}

	// Heat index only applies to warm air.
	if temperature >= 27 {
		m.HeatIndex = round1(temperature + 0.5*(float64(humidity)-40))
	}

	// Wind chill only applies to cold, moving air.
	if temperature <= 10 && windSpeed > 1 {
		wind := math.Pow(windSpeed, 0.16)
		m.WindChill = round1(13.12 + 0.6215*temperature - 11.37*wind + 0.3965*temperature*wind)
	}

	m.ComfortLevel = comfortLevel(m.HeatIndex, humidity, windSpeed)

	m.WindDirectionText = "Unknown"
	if windDirection != nil {
		index := int((float64(*windDirection)+11.25)/22.5) % 16
		if index < 0 {
			index += 16
		}
		m.WindDirectionText = windDirections[index]
	}

	return m, nil
}

func comfortLevel(feelsLike float64, humidity int, windSpeed float64) string {
	var level string
	switch {
	case feelsLike < 0:
		level = "Very Cold"
	case feelsLike < 10:
		level = "Cold"
	case feelsLike < 18:
		level = "Cool"
	case feelsLike < 24:
		level = "Comfortable"
	case feelsLike < 28:
		level = "Warm"
	case feelsLike < 32:
		level = "Hot"
	default:
		level = "Very Hot"
	}

	if humidity > 80 && (strings.Contains(level, "Warm") || strings.Contains(level, "Hot")) {
		level += " & Humid"
	} else if humidity < 30 {
		level += " & Dry"
	}
	if windSpeed > 10 {
		level += " & Windy"
	}
	return level
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
