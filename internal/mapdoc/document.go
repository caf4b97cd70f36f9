// Package mapdoc describes a map declaratively (JSON or YAML) and builds the
// corresponding maply.Map.
package mapdoc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mohammed-shakir/maply/pkg/maply"
)

type Document struct {
	API       string      `json:"api,omitempty" yaml:"api,omitempty"`
	ID        string      `json:"id,omitempty" yaml:"id,omitempty"`
	Width     string      `json:"width,omitempty" yaml:"width,omitempty"`
	Height    string      `json:"height,omitempty" yaml:"height,omitempty"`
	Latitude  Coord       `json:"latitude,omitempty" yaml:"latitude,omitempty"`
	Longitude Coord       `json:"longitude,omitempty" yaml:"longitude,omitempty"`
	Zoom      *int        `json:"zoom,omitempty" yaml:"zoom,omitempty"`
	Type      string      `json:"type,omitempty" yaml:"type,omitempty"`
	// Controls nil keeps the default controls; an empty list renders none.
	Controls  []string    `json:"controls" yaml:"controls"`
	Icons     []IconDoc   `json:"icons,omitempty" yaml:"icons,omitempty"`
	Markers   []MarkerDoc `json:"markers,omitempty" yaml:"markers,omitempty"`
	Events    []EventDoc  `json:"events,omitempty" yaml:"events,omitempty"`
}

type IconDoc struct {
	Name          string `json:"name,omitempty" yaml:"name,omitempty"`
	Image         string `json:"image,omitempty" yaml:"image,omitempty"`
	ShadowImage   string `json:"shadow_image,omitempty" yaml:"shadow_image,omitempty"`
	Width         *int   `json:"width,omitempty" yaml:"width,omitempty"`
	Height        *int   `json:"height,omitempty" yaml:"height,omitempty"`
	ShadowWidth   *int   `json:"shadow_width,omitempty" yaml:"shadow_width,omitempty"`
	ShadowHeight  *int   `json:"shadow_height,omitempty" yaml:"shadow_height,omitempty"`
	AnchorX       *int   `json:"anchor_x,omitempty" yaml:"anchor_x,omitempty"`
	AnchorY       *int   `json:"anchor_y,omitempty" yaml:"anchor_y,omitempty"`
	WindowAnchorX *int   `json:"window_anchor_x,omitempty" yaml:"window_anchor_x,omitempty"`
	WindowAnchorY *int   `json:"window_anchor_y,omitempty" yaml:"window_anchor_y,omitempty"`
}

// MarkerDoc references an icon either by name (Icon) or inline
// (InlineIcon), never both. A name matching a document icon binds the
// marker to that icon; any other name is emitted as a bare reference.
type MarkerDoc struct {
	Name       string   `json:"name,omitempty" yaml:"name,omitempty"`
	Latitude   Coord    `json:"latitude" yaml:"latitude"`
	Longitude  Coord    `json:"longitude" yaml:"longitude"`
	Draggable  bool     `json:"draggable,omitempty" yaml:"draggable,omitempty"`
	Icon       string   `json:"icon,omitempty" yaml:"icon,omitempty"`
	InlineIcon *IconDoc `json:"inline_icon,omitempty" yaml:"inline_icon,omitempty"`
}

type EventDoc struct {
	Event    string `json:"event" yaml:"event"`
	Function string `json:"function" yaml:"function"`
}

// Coord accepts a JSON/YAML number or string and keeps its text as written.
type Coord string

func (c *Coord) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*c = Coord(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("coordinate: %w", err)
	}
	*c = Coord(n.String())
	return nil
}

func (c *Coord) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("coordinate: line %d: expected a scalar", n.Line)
	}
	*c = Coord(strings.TrimSpace(n.Value))
	return nil
}

// Float reports the numeric value, if the coordinate is a number.
func (c Coord) Float() (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(string(c)), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Build validates the document and assembles the map.
func (d *Document) Build(keys maply.KeySource) (*maply.Map, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	filter, err := maply.ParseTypeFilter(d.Type)
	if err != nil {
		return nil, err
	}
	controls, err := d.controls()
	if err != nil {
		return nil, err
	}

	m, err := maply.New(maply.Options{
		API:       d.API,
		ID:        d.ID,
		Width:     d.Width,
		Height:    d.Height,
		Latitude:  maply.Coordinate(d.Latitude),
		Longitude: maply.Coordinate(d.Longitude),
		Zoom:      d.Zoom,
		Type:      filter,
		Controls:  controls,
	}, keys)
	if err != nil {
		return nil, err
	}

	for _, ev := range d.Events {
		m.AddEvent(ev.Event, ev.Function)
	}

	byName := make(map[string]*maply.Icon, len(d.Icons))
	for _, idoc := range d.Icons {
		ic := idoc.icon()
		m.AddIcon(ic)
		byName[ic.Name] = ic
	}

	for _, mdoc := range d.Markers {
		mk := &maply.Marker{
			Name:      mdoc.Name,
			Latitude:  maply.Coordinate(mdoc.Latitude),
			Longitude: maply.Coordinate(mdoc.Longitude),
			Draggable: mdoc.Draggable,
		}
		switch {
		case mdoc.InlineIcon != nil:
			mk.Icon = mdoc.InlineIcon.icon()
		case mdoc.Icon != "":
			if ic, ok := byName[mdoc.Icon]; ok {
				mk.Icon = ic
			} else {
				mk.Icon = maply.IconRef(mdoc.Icon)
			}
		}
		m.AddMarker(mk)
	}
	return m, nil
}

// controls returns nil when the document leaves controls unset.
func (d *Document) controls() ([]maply.Control, error) {
	if d.Controls == nil {
		return nil, nil
	}
	out := make([]maply.Control, 0, len(d.Controls))
	for _, name := range d.Controls {
		c, err := maply.ParseControl(name)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (i IconDoc) icon() *maply.Icon {
	ic := &maply.Icon{
		Name:          i.Name,
		Image:         i.Image,
		ShadowImage:   i.ShadowImage,
		Width:         i.Width,
		Height:        i.Height,
		ShadowWidth:   i.ShadowWidth,
		ShadowHeight:  i.ShadowHeight,
		AnchorX:       i.AnchorX,
		AnchorY:       i.AnchorY,
		WindowAnchorX: i.WindowAnchorX,
		WindowAnchorY: i.WindowAnchorY,
	}
	if ic.Name == "" {
		ic.Name = maply.ShortCode(true)
	}
	return ic
}

// Canonical is a stable encoding of the document, used for cache keys.
func (d *Document) Canonical() ([]byte, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("canonical encoding: %w", err)
	}
	return b, nil
}
