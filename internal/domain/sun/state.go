package sun

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// State is the two-valued day/night classification driving visual mode.
type State int

const (
	// Up means the sun is above the horizon and light mode applies.
	Up State = iota
	// Down means the sun is below the horizon and dark mode applies.
	Down
)

// coordinateParts is the number of components in a "lat,lon" pair.
const coordinateParts = 2

var (
	// errUnknownState is returned when a forced-state string is not a valid value.
	errUnknownState = errors.New("unknown sun state")
	// errBadCoordinate is returned when a coordinate string is not "lat,lon".
	errBadCoordinate = errors.New("coordinate must be \"lat,lon\"")
)

// ParseState validates a forced-override string against the closed two-value set.
// It accepts the state names and their light/dark aliases, case-insensitively.
func ParseState(s string) (State, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up", "light":
		return Up, nil
	case "down", "dark":
		return Down, nil
	default:
		return Up, fmt.Errorf("%q: %w", s, errUnknownState)
	}
}

// String returns the state name.
func (s State) String() string {
	if s == Down {
		return "Down"
	}

	return "Up"
}

// ModeToken returns the theme anchor token for the state.
func (s State) ModeToken() string {
	if s == Down {
		return "dark"
	}

	return "light"
}

// Directive returns the editor background command for the state.
func (s State) Directive() string {
	return "set bg=" + s.ModeToken()
}

// Coordinate is a geographic position in floating-point degrees.
type Coordinate struct {
	// Lat is the latitude in degrees, north positive.
	Lat float64
	// Lon is the longitude in degrees, east positive.
	Lon float64
}

// ParseCoordinate parses a "lat,lon" pair.
// Missing or non-numeric components are a hard failure; there is no default position.
func ParseCoordinate(s string) (Coordinate, error) {
	parts := strings.Split(s, ",")
	if len(parts) < coordinateParts {
		return Coordinate{}, fmt.Errorf("%q: %w", s, errBadCoordinate)
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return Coordinate{}, fmt.Errorf("latitude %q: %w", parts[0], errBadCoordinate)
	}

	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return Coordinate{}, fmt.Errorf("longitude %q: %w", parts[1], errBadCoordinate)
	}

	return Coordinate{Lat: lat, Lon: lon}, nil
}
