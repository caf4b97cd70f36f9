package maply

// MarkerIcon is the icon attached to a marker: nil, an IconRef naming an
// icon declared elsewhere on the page, or an inline *Icon.
type MarkerIcon interface {
	iconRef() string
}

// IconRef names an existing icon variable. It is written into the script
// unescaped, so it must not come from untrusted input.
type IconRef string

func (r IconRef) iconRef() string { return string(r) }

type Marker struct {
	Name      string
	Latitude  Coordinate
	Longitude Coordinate
	Draggable bool
	Icon      MarkerIcon
}

// NewMarker returns a marker named with a random short code.
func NewMarker(lat, lng Coordinate) *Marker {
	return &Marker{Name: ShortCode(true), Latitude: lat, Longitude: lng}
}

// Icon describes a GIcon. Paired values (Width/Height, ShadowWidth/
// ShadowHeight, AnchorX/AnchorY, WindowAnchorX/WindowAnchorY) are only
// rendered when both halves are set.
type Icon struct {
	Name          string
	Image         string
	ShadowImage   string
	Width         *int
	Height        *int
	ShadowWidth   *int
	ShadowHeight  *int
	AnchorX       *int
	AnchorY       *int
	WindowAnchorX *int
	WindowAnchorY *int
}

// NewIcon returns an icon named with a random short code.
func NewIcon() *Icon {
	return &Icon{Name: ShortCode(true)}
}

func (i *Icon) iconRef() string { return i.Name }

// Event binds a map event to a handler. Handler is raw JavaScript and is
// emitted as is; callers own its validity and must not pass untrusted text.
type Event struct {
	Name    string
	Handler string
}
