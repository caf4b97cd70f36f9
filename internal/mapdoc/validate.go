package mapdoc

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/mohammed-shakir/maply/pkg/maply"
)

var (
	identPattern  = regexp.MustCompile(`^[A-Za-z_$][\w$]*$`)
	elemIDPattern = regexp.MustCompile(`^[A-Za-z][\w-]*$`)
	lengthPattern = regexp.MustCompile(`^\d+(\.\d+)?(px|%|em|rem|vh|vw)$`)
	pathPattern   = regexp.MustCompile(`^[\w./:\-?=&%]+$`)
)

// Validate checks value ranges and enum names. Non-numeric coordinates are
// accepted as raw JavaScript expressions.
func (d *Document) Validate() error {
	if d.Zoom != nil && (*d.Zoom < 0 || *d.Zoom > 100) {
		return fmt.Errorf("zoom must be in [0,100] (got %d)", *d.Zoom)
	}
	if err := checkLatLng("center", d.Latitude, d.Longitude); err != nil {
		return err
	}
	if _, err := maply.ParseTypeFilter(d.Type); err != nil {
		return err
	}
	for _, c := range d.Controls {
		if _, err := maply.ParseControl(c); err != nil {
			return err
		}
	}
	for i, m := range d.Markers {
		if m.Icon != "" && m.InlineIcon != nil {
			return fmt.Errorf("marker %d: icon and inline_icon are mutually exclusive", i)
		}
		if err := checkLatLng(fmt.Sprintf("marker %d", i), m.Latitude, m.Longitude); err != nil {
			return err
		}
	}
	for i, ev := range d.Events {
		if ev.Event == "" || ev.Function == "" {
			return fmt.Errorf("event %d: event and function are required", i)
		}
	}
	return nil
}

// ValidateUntrusted applies Validate plus the restrictions needed before
// rendering input received over the network: numeric coordinates, safe
// identifiers, ids, lengths and image paths, and no event handlers.
func (d *Document) ValidateUntrusted() error {
	if err := d.Validate(); err != nil {
		return err
	}
	if len(d.Events) > 0 {
		return errors.New("event handlers are not accepted from untrusted input")
	}
	if d.ID != "" && !elemIDPattern.MatchString(d.ID) {
		return fmt.Errorf("invalid id %q", d.ID)
	}
	for _, l := range []string{d.Width, d.Height} {
		if l != "" && !lengthPattern.MatchString(l) {
			return fmt.Errorf("invalid css length %q", l)
		}
	}
	if err := requireNumeric("center", d.Latitude, d.Longitude); err != nil {
		return err
	}
	for i, ic := range d.Icons {
		if err := ic.validateUntrusted(); err != nil {
			return fmt.Errorf("icon %d: %w", i, err)
		}
	}
	for i, m := range d.Markers {
		if m.Name != "" && !identPattern.MatchString(m.Name) {
			return fmt.Errorf("marker %d: invalid name %q", i, m.Name)
		}
		if m.Icon != "" && !identPattern.MatchString(m.Icon) {
			return fmt.Errorf("marker %d: invalid icon reference %q", i, m.Icon)
		}
		if m.InlineIcon != nil {
			if err := m.InlineIcon.validateUntrusted(); err != nil {
				return fmt.Errorf("marker %d: %w", i, err)
			}
		}
		if err := requireNumeric(fmt.Sprintf("marker %d", i), m.Latitude, m.Longitude); err != nil {
			return err
		}
	}
	return nil
}

func (i IconDoc) validateUntrusted() error {
	if i.Name != "" && !identPattern.MatchString(i.Name) {
		return fmt.Errorf("invalid icon name %q", i.Name)
	}
	for _, p := range []string{i.Image, i.ShadowImage} {
		if p != "" && !pathPattern.MatchString(p) {
			return fmt.Errorf("invalid image path %q", p)
		}
	}
	return nil
}

func checkLatLng(what string, lat, lng Coord) error {
	if f, ok := lat.Float(); ok && (f < -90 || f > 90) {
		return fmt.Errorf("%s: latitude must be in [-90,90]", what)
	}
	if f, ok := lng.Float(); ok && (f < -180 || f > 180) {
		return fmt.Errorf("%s: longitude must be in [-180,180]", what)
	}
	return nil
}

func requireNumeric(what string, lat, lng Coord) error {
	for _, c := range []Coord{lat, lng} {
		if c == "" {
			continue
		}
		if _, ok := c.Float(); !ok {
			return fmt.Errorf("%s: coordinate %q is not a number", what, string(c))
		}
	}
	return nil
}
