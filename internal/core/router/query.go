package router

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/mohammed-shakir/maply/internal/mapdoc"
)

// ParseMapQuery turns the query string of a /maps/{id} request into a
// document. The result still has to pass ValidateUntrusted.
func ParseMapQuery(id string, q url.Values) (*mapdoc.Document, error) {
	if strings.TrimSpace(id) == "" {
		return nil, errors.New("missing map id")
	}
	doc := &mapdoc.Document{
		ID:        id,
		Width:     strings.TrimSpace(q.Get("width")),
		Height:    strings.TrimSpace(q.Get("height")),
		Latitude:  mapdoc.Coord(strings.TrimSpace(q.Get("lat"))),
		Longitude: mapdoc.Coord(strings.TrimSpace(q.Get("lng"))),
		Type:      strings.TrimSpace(q.Get("type")),
	}

	if raw := strings.TrimSpace(q.Get("zoom")); raw != "" {
		z, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid zoom %q", raw)
		}
		doc.Zoom = &z
	}

	// controls= (present but empty) disables all controls
	if _, ok := q["controls"]; ok {
		doc.Controls = []string{}
		for c := range strings.SplitSeq(q.Get("controls"), ",") {
			if c = strings.TrimSpace(c); c != "" {
				doc.Controls = append(doc.Controls, c)
			}
		}
	}

	for i, raw := range q["marker"] {
		m, err := parseMarker(raw)
		if err != nil {
			return nil, fmt.Errorf("marker %d: %w", i, err)
		}
		doc.Markers = append(doc.Markers, m)
	}
	return doc, nil
}

// "lat,lng[,draggable][,icon=<name>]"
func parseMarker(raw string) (mapdoc.MarkerDoc, error) {
	parts := strings.Split(raw, ",")
	if len(parts) < 2 {
		return mapdoc.MarkerDoc{}, errors.New("expected lat,lng[,draggable][,icon=<name>]")
	}
	m := mapdoc.MarkerDoc{
		Latitude:  mapdoc.Coord(strings.TrimSpace(parts[0])),
		Longitude: mapdoc.Coord(strings.TrimSpace(parts[1])),
	}
	if m.Latitude == "" || m.Longitude == "" {
		return mapdoc.MarkerDoc{}, errors.New("latitude and longitude are required")
	}
	for _, opt := range parts[2:] {
		opt = strings.TrimSpace(opt)
		switch {
		case opt == "draggable":
			m.Draggable = true
		case strings.HasPrefix(opt, "icon="):
			m.Icon = strings.TrimPrefix(opt, "icon=")
		default:
			return mapdoc.MarkerDoc{}, fmt.Errorf("unknown marker option %q", opt)
		}
	}
	return m, nil
}
