package maply

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// MapType is one of the base map layers the widget can show.
type MapType int

const (
	Hybrid MapType = iota
	Satellite
	Normal
	Physical
)

// declaration order; Only() removals follow it
var allMapTypes = []MapType{Hybrid, Satellite, Normal, Physical}

var mapTypeConsts = map[MapType]string{
	Hybrid:    "G_HYBRID_MAP",
	Satellite: "G_SATELLITE_MAP",
	Normal:    "G_NORMAL_MAP",
	Physical:  "G_PHYSICAL_MAP",
}

var mapTypeNames = map[MapType]string{
	Hybrid:    "hybrid",
	Satellite: "satellite",
	Normal:    "normal",
	Physical:  "physical",
}

func (t MapType) String() string {
	if s, ok := mapTypeNames[t]; ok {
		return s
	}
	return "MapType(" + strconv.Itoa(int(t)) + ")"
}

// JS returns the Maps API constant for the type.
func (t MapType) JS() string { return mapTypeConsts[t] }

func ParseMapType(s string) (MapType, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for t, name := range mapTypeNames {
		if name == key {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown map type %q", s)
}

// Control is a UI widget attached to the rendered map.
type Control int

const (
	Large Control = iota
	Small
	Zoom
	Scale
	Type
	NestedType
	Overview
)

var controlCtors = map[Control]string{
	Large:      "GLargeMapControl",
	Small:      "GSmallMapControl",
	Zoom:       "GSmallZoomControl",
	Scale:      "GScaleControl",
	Type:       "GMapTypeControl",
	NestedType: "GHierarchicalMapTypeControl",
	Overview:   "GOverviewMapControl",
}

var controlNames = map[Control]string{
	Large:      "large",
	Small:      "small",
	Zoom:       "zoom",
	Scale:      "scale",
	Type:       "type",
	NestedType: "nested_type",
	Overview:   "overview",
}

// DefaultControls is used when Options.Controls is nil.
func DefaultControls() []Control {
	return []Control{Small, Scale, Type, Overview}
}

func (c Control) String() string {
	if s, ok := controlNames[c]; ok {
		return s
	}
	return "Control(" + strconv.Itoa(int(c)) + ")"
}

// JS returns the constructor name of the control.
func (c Control) JS() string { return controlCtors[c] }

func ParseControl(s string) (Control, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for c, name := range controlNames {
		if name == key {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown control %q", s)
}

type filterMode int

const (
	filterAll filterMode = iota
	filterExcept
	filterOnly
)

// TypeFilter selects which base map layers stay enabled. The zero value
// keeps all of them.
type TypeFilter struct {
	mode  filterMode
	types []MapType
}

func AllTypes() TypeFilter { return TypeFilter{} }

// Except removes the listed types, in the order given.
func Except(types ...MapType) TypeFilter {
	return TypeFilter{mode: filterExcept, types: append([]MapType(nil), types...)}
}

// Only keeps the listed types and removes every other one.
func Only(types ...MapType) TypeFilter {
	return TypeFilter{mode: filterOnly, types: append([]MapType(nil), types...)}
}

// Removed lists the types to remove from the map, in emission order.
func (f TypeFilter) Removed() []MapType {
	switch f.mode {
	case filterExcept:
		return append([]MapType(nil), f.types...)
	case filterOnly:
		out := make([]MapType, 0, len(allMapTypes))
		for _, t := range allMapTypes {
			if !slices.Contains(f.types, t) {
				out = append(out, t)
			}
		}
		return out
	default:
		return nil
	}
}

func (f TypeFilter) String() string {
	var prefix string
	switch f.mode {
	case filterExcept:
		prefix = "except:"
	case filterOnly:
		prefix = "only:"
	default:
		return "all"
	}
	names := make([]string, len(f.types))
	for i, t := range f.types {
		names[i] = t.String()
	}
	return prefix + strings.Join(names, ",")
}

// ParseTypeFilter accepts "all", "except:hybrid,satellite" or "only:normal".
// An empty string means all.
func ParseTypeFilter(s string) (TypeFilter, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "all") {
		return AllTypes(), nil
	}
	mode, list, ok := strings.Cut(s, ":")
	if !ok {
		return TypeFilter{}, fmt.Errorf("invalid map type filter %q", s)
	}
	var types []MapType
	for name := range strings.SplitSeq(list, ",") {
		if strings.TrimSpace(name) == "" {
			continue
		}
		t, err := ParseMapType(name)
		if err != nil {
			return TypeFilter{}, err
		}
		types = append(types, t)
	}
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "except":
		return Except(types...), nil
	case "only":
		return Only(types...), nil
	default:
		return TypeFilter{}, fmt.Errorf("invalid map type filter mode %q", mode)
	}
}

// Coordinate is interpolated into the script verbatim, so it may hold a
// number or a JavaScript expression.
type Coordinate string

// Deg formats a float coordinate without trailing zeros.
func Deg(f float64) Coordinate {
	return Coordinate(strconv.FormatFloat(f, 'f', -1, 64))
}

// Px returns a pointer to n, for the optional Icon dimensions.
func Px(n int) *int { return &n }
