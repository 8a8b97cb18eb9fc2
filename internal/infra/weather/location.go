package weather

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var coordPattern = regexp.MustCompile(`^(-?\d+\.?\d*),\s*(-?\d+\.?\d*)$`)

var locationCharacters = regexp.MustCompile(`^[a-zA-Z0-9\s\-',\.]+$`)

// Coordinates is a parsed location. Lat and Lon are nil when the input was
// a free-form name the upstream geocoder must resolve.
type Coordinates struct {
	Lat     *float64 `json:"lat"`
	Lon     *float64 `json:"lon"`
	Name    string   `json:"name"`
	Country string   `json:"country"`
}

// Known cities resolved locally so the common cases need no upstream call.
var knownLocations = map[string]Coordinates{
	"seattle":  {Lat: ptr(47.6062), Lon: ptr(-122.3321), Name: "Seattle", Country: "US"},
	"london":   {Lat: ptr(51.5074), Lon: ptr(-0.1278), Name: "London", Country: "GB"},
	"tokyo":    {Lat: ptr(35.6762), Lon: ptr(139.6503), Name: "Tokyo", Country: "JP"},
	"new york": {Lat: ptr(40.7128), Lon: ptr(-74.0060), Name: "New York", Country: "US"},
	"paris":    {Lat: ptr(48.8566), Lon: ptr(2.3522), Name: "Paris", Country: "FR"},
}

func ptr(v float64) *float64 { return &v }

// ParseCoordinates resolves a location string. "lat,lon" inputs parse
// directly; known city names resolve locally; anything else passes through
// by name for the weather API to geocode.
func ParseCoordinates(location string) (Coordinates, error) {
	trimmed := strings.TrimSpace(location)

	if match := coordPattern.FindStringSubmatch(trimmed); match != nil {
		lat, err := strconv.ParseFloat(match[1], 64)
		if err != nil {
			return Coordinates{}, fmt.Errorf("parse latitude: %w", err)
		}
		lon, err := strconv.ParseFloat(match[2], 64)
		if err != nil {
			return Coordinates{}, fmt.Errorf("parse longitude: %w", err)
		}
		return Coordinates{
			Lat:     &lat,
			Lon:     &lon,
			Name:    fmt.Sprintf("Location(%g,%g)", lat, lon),
			Country: "Unknown",
		}, nil
	}

	if known, ok := knownLocations[strings.ToLower(trimmed)]; ok {
		return known, nil
	}

	return Coordinates{Name: trimmed, Country: "Unknown"}, nil
}

// LocationValidation reports whether a user-supplied location is usable
// and, when it is, its standardized form.
type LocationValidation struct {
	Valid        bool     `json:"valid"`
	Standardized string   `json:"standardized"`
	Suggestions  []string `json:"suggestions"`
}

func ValidateLocation(location string) LocationValidation {
	result := LocationValidation{Suggestions: []string{}}

	cleaned := strings.TrimSpace(location)
	switch {
	case cleaned == "":
		result.Suggestions = append(result.Suggestions, "Please provide a valid location name")
		return result
	case len(cleaned) < 2:
		result.Suggestions = append(result.Suggestions, "Location name too short")
		return result
	case len(cleaned) > 100:
		result.Suggestions = append(result.Suggestions, "Location name too long")
		return result
	case !locationCharacters.MatchString(cleaned):
		result.Suggestions = append(result.Suggestions, "Location contains invalid characters")
		return result
	}

	result.Valid = true
	result.Standardized = standardize(cleaned)
	return result
}

func standardize(location string) string {
	words := strings.Fields(strings.ToLower(location))
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	standardized := strings.Join(words, " ")

	replacer := strings.NewReplacer(
		" Usa", " USA",
		" Uk", " UK",
		" Us", " US",
		"Nyc", "NYC",
		"La ", "LA ",
	)
	return replacer.Replace(standardized)
}
