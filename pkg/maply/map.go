package maply

import (
	"errors"
	"fmt"
	"slices"
)

const (
	DefaultAPI    = "google"
	DefaultID     = "map"
	DefaultWidth  = "500px"
	DefaultHeight = "300px"

	// deepest zoom level of the Maps API; Options.Zoom is a percentage of it
	maxZoomLevel = 19
)

var ErrNoAPIKey = errors.New("maply: no api key")

// KeySource resolves the API key for a map provider.
type KeySource interface {
	APIKey(api string) (string, error)
}

// StaticKey is a KeySource that always returns itself.
type StaticKey string

func (k StaticKey) APIKey(string) (string, error) {
	if k == "" {
		return "", ErrNoAPIKey
	}
	return string(k), nil
}

// Options configures a Map. Zero values fall back to the package defaults.
type Options struct {
	API       string
	ID        string
	Width     string
	Height    string
	Latitude  Coordinate
	Longitude Coordinate
	// Zoom is a percentage (0-100) of the deepest zoom level. Nil means 0.
	Zoom *int
	Type TypeFilter
	// Controls nil means DefaultControls; an empty slice renders none.
	Controls []Control
}

type Map struct {
	opts   Options
	name   string
	zoom   int
	apiKey string

	Events  []Event
	Markers []*Marker
	Icons   []*Icon
}

// New resolves the API key through keys and returns an empty map. A key
// lookup failure is returned as is, wrapped.
func New(opts Options, keys KeySource) (*Map, error) {
	if opts.API == "" {
		opts.API = DefaultAPI
	}
	if opts.ID == "" {
		opts.ID = DefaultID
	}
	if opts.Width == "" {
		opts.Width = DefaultWidth
	}
	if opts.Height == "" {
		opts.Height = DefaultHeight
	}
	if opts.Latitude == "" {
		opts.Latitude = "0"
	}
	if opts.Longitude == "" {
		opts.Longitude = "0"
	}
	if opts.Controls == nil {
		opts.Controls = DefaultControls()
	} else {
		opts.Controls = slices.Clone(opts.Controls)
	}

	if keys == nil {
		return nil, fmt.Errorf("resolve %s api key: %w", opts.API, ErrNoAPIKey)
	}
	key, err := keys.APIKey(opts.API)
	if err != nil {
		return nil, fmt.Errorf("resolve %s api key: %w", opts.API, err)
	}
	if key == "" {
		return nil, fmt.Errorf("resolve %s api key: %w", opts.API, ErrNoAPIKey)
	}

	zoom := 0
	if opts.Zoom != nil {
		// integer percent: anything below 100 truncates to level 0
		zoom = maxZoomLevel * (*opts.Zoom / 100)
	}

	return &Map{
		opts:   opts,
		name:   Variablize(opts.ID),
		zoom:   zoom,
		apiKey: key,
	}, nil
}

// Name is the sanitized id used for the script variable and functions.
func (m *Map) Name() string { return m.name }

func (m *Map) ID() string { return m.opts.ID }

// Zoom is the computed Maps API zoom level.
func (m *Map) Zoom() int { return m.zoom }

func (m *Map) APIKey() string { return m.apiKey }

func (m *Map) Options() Options { return m.opts }

func (m *Map) AddEvent(name, handler string) {
	m.Events = append(m.Events, Event{Name: name, Handler: handler})
}

// AddMarker appends mk, naming it with a short code if it has no name.
// A nil marker is ignored.
func (m *Map) AddMarker(mk *Marker) {
	if mk == nil {
		return
	}
	if mk.Name == "" {
		mk.Name = ShortCode(true)
	}
	m.Markers = append(m.Markers, mk)
}

// AddIcon appends ic, naming it with a short code if it has no name.
// A nil icon is ignored.
func (m *Map) AddIcon(ic *Icon) {
	if ic == nil {
		return
	}
	if ic.Name == "" {
		ic.Name = ShortCode(true)
	}
	m.Icons = append(m.Icons, ic)
}
