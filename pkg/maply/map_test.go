package maply

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "rewiuhndsfbdsfkbjhfsdn"

func newTestMap(t *testing.T, opts Options) *Map {
	t.Helper()
	m, err := New(opts, StaticKey(testKey))
	require.NoError(t, err)
	return m
}

func zoomPct(n int) *int { return &n }

func TestJavaScript_WrapsInitAndUnload(t *testing.T) {
	js := newTestMap(t, Options{}).JavaScript()

	assert.Equal(t, 1, strings.Count(js, "function initializeMaplyMap() {"))
	assert.Equal(t, 1, strings.Count(js, "function unloadMaplyMap() {"))
	assert.Contains(t, js, "function unloadMaplyMap() {\n  GUnload();\n}")
	assert.Contains(t, js, "maplyAddEvent(window, 'load', initializeMaplyMap);")
	assert.Contains(t, js, "maplyAddEvent(window, 'unload', unloadMaplyMap);")
	assert.Contains(t, js, "if (GBrowserIsCompatible()) {")
}

func TestJavaScript_IncludesDependencies(t *testing.T) {
	js := newTestMap(t, Options{API: "google"}).JavaScript()

	assert.Contains(t, js, `<script type="text/javascript" src="http://www.google.com/jsapi?key=rewiuhndsfbdsfkbjhfsdn"></script>`)
	assert.Contains(t, js, `google.load("maps", "2");`)
	assert.Contains(t, js, "function maplyAddEvent(target, name, fn) {")
}

func TestJavaScript_CenterAndZoom(t *testing.T) {
	js := newTestMap(t, Options{Latitude: "37.4419", Longitude: "-122.1419"}).JavaScript()
	assert.Contains(t, js, `var map = new google.maps.Map2(document.getElementById("map"));`)
	assert.Contains(t, js, `map.setCenter(new google.maps.LatLng(37.4419, -122.1419), 0);`)

	js = newTestMap(t, Options{Zoom: zoomPct(100)}).JavaScript()
	assert.Contains(t, js, `map.setCenter(new google.maps.LatLng(0, 0), 19);`)
}

func TestZoom_IntegerPercent(t *testing.T) {
	cases := []struct {
		name string
		pct  *int
		want int
	}{
		{"unset", nil, 0},
		{"zero", zoomPct(0), 0},
		{"half truncates", zoomPct(50), 0},
		{"full", zoomPct(100), 19},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, newTestMap(t, Options{Zoom: tc.pct}).Zoom())
		})
	}
}

func TestJavaScript_NamedContainer(t *testing.T) {
	m := newTestMap(t, Options{ID: "my-map"})
	js := m.JavaScript()

	assert.Equal(t, "my_map", m.Name())
	assert.Contains(t, js, `var my_map = new google.maps.Map2(document.getElementById("my-map"));`)
	assert.Contains(t, js, "function initializeMaplyMy_map() {")
	assert.Contains(t, js, "function unloadMaplyMy_map() {")
}

func TestJavaScript_EventListenersInOrder(t *testing.T) {
	m := newTestMap(t, Options{})
	m.AddEvent("moveend", "alert('moved');")
	m.AddEvent("click", "alert('clicked');")

	require.Len(t, m.Events, 2)
	js := m.JavaScript()
	moved := strings.Index(js, "GEvent.addListener(map, 'moveend', alert('moved');")
	clicked := strings.Index(js, "GEvent.addListener(map, 'click', alert('clicked');")
	require.NotEqual(t, -1, moved)
	require.NotEqual(t, -1, clicked)
	assert.Less(t, moved, clicked)
}

func TestJavaScript_MapTypeFilters(t *testing.T) {
	js := newTestMap(t, Options{Type: Except(Hybrid, Satellite)}).JavaScript()
	assert.Contains(t, js, "map.removeMapType(G_HYBRID_MAP);")
	assert.Contains(t, js, "map.removeMapType(G_SATELLITE_MAP);")
	assert.Equal(t, 2, strings.Count(js, "removeMapType"))

	js = newTestMap(t, Options{Type: Only(Hybrid, Satellite)}).JavaScript()
	assert.Contains(t, js, "map.removeMapType(G_NORMAL_MAP);")
	assert.Contains(t, js, "map.removeMapType(G_PHYSICAL_MAP);")
	assert.Equal(t, 2, strings.Count(js, "removeMapType"))
	assert.Less(t, strings.Index(js, "G_NORMAL_MAP"), strings.Index(js, "G_PHYSICAL_MAP"))

	js = newTestMap(t, Options{}).JavaScript()
	assert.NotContains(t, js, "removeMapType")
}

func TestJavaScript_Controls(t *testing.T) {
	js := newTestMap(t, Options{Controls: []Control{Large}}).JavaScript()
	assert.Contains(t, js, "map.addControl(new GLargeMapControl());")
	assert.Equal(t, 1, strings.Count(js, "addControl"))

	js = newTestMap(t, Options{Controls: []Control{Overview, Scale}}).JavaScript()
	assert.Less(t,
		strings.Index(js, "map.addControl(new GOverviewMapControl());"),
		strings.Index(js, "map.addControl(new GScaleControl());"))

	js = newTestMap(t, Options{}).JavaScript()
	for _, ctor := range []string{"GSmallMapControl", "GScaleControl", "GMapTypeControl", "GOverviewMapControl"} {
		assert.Contains(t, js, "map.addControl(new "+ctor+"());")
	}

	js = newTestMap(t, Options{Controls: []Control{}}).JavaScript()
	assert.NotContains(t, js, "addControl")
}

func TestJavaScript_Markers(t *testing.T) {
	m := newTestMap(t, Options{})
	m.AddMarker(NewMarker("32", "52"))
	assert.Contains(t, m.JavaScript(), " = new GMarker(GLatLng(32,52), {});")

	m = newTestMap(t, Options{})
	mk := NewMarker("32", "52")
	mk.Draggable = true
	m.AddMarker(mk)
	assert.Contains(t, m.JavaScript(), " = new GMarker(GLatLng(32,52), {draggable: true});")

	m = newTestMap(t, Options{})
	m.AddMarker(&Marker{Name: "myMarker"})
	assert.Contains(t, m.JavaScript(), "map.addOverlay(myMarker);")
}

func TestAddMarker_DefaultsName(t *testing.T) {
	m := newTestMap(t, Options{})
	mk := &Marker{Latitude: "1", Longitude: "2"}
	m.AddMarker(mk)

	require.Len(t, mk.Name, 5)
	assert.True(t, mk.Name[0] >= 'a' && mk.Name[0] <= 'z')
}

func TestJavaScript_IconAttributes(t *testing.T) {
	m := newTestMap(t, Options{})
	m.AddIcon(&Icon{
		Name:          "myIcon",
		Image:         "/images/foo.png",
		Height:        Px(10),
		Width:         Px(20),
		AnchorX:       Px(5),
		AnchorY:       Px(7),
		ShadowImage:   "/images/foo_shadow.png",
		ShadowHeight:  Px(12),
		ShadowWidth:   Px(30),
		WindowAnchorX: Px(8),
		WindowAnchorY: Px(9),
	})
	js := m.JavaScript()

	assert.Contains(t, js, `var myIcon = new GIcon();`)
	assert.Contains(t, js, `myIcon.image = "/images/foo.png";`)
	assert.Contains(t, js, `myIcon.shadow = "/images/foo_shadow.png";`)
	assert.Contains(t, js, `myIcon.iconSize = new GSize(20, 10);`)
	assert.Contains(t, js, `myIcon.shadowSize = new GSize(30, 12);`)
	assert.Contains(t, js, `myIcon.iconAnchor = new GPoint(5, 7);`)
	assert.Contains(t, js, `myIcon.infoWindowAnchor = new GPoint(8, 9);`)
}

func TestJavaScript_IconPairsNeedBothHalves(t *testing.T) {
	m := newTestMap(t, Options{})
	m.AddIcon(&Icon{Name: "myIcon", Image: "/images/foo.png", Width: Px(20), AnchorY: Px(3)})
	js := m.JavaScript()

	assert.Contains(t, js, `var myIcon = new GIcon();`)
	assert.Contains(t, js, `myIcon.image = "/images/foo.png";`)
	assert.NotContains(t, js, "iconSize")
	assert.NotContains(t, js, "iconAnchor")
	assert.NotContains(t, js, "shadow")
}

func TestJavaScript_InlineMarkerIcon(t *testing.T) {
	m := newTestMap(t, Options{})
	icon := &Icon{Name: "myIcon"}
	m.AddMarker(&Marker{Name: "myMarker", Latitude: "32", Longitude: "52", Icon: icon})
	js := m.JavaScript()

	assert.Contains(t, js, "var myIcon = new GIcon();")
	assert.Contains(t, js, "var myMarker = new GMarker(GLatLng(32,52), {icon: myIcon});")
	assert.Empty(t, m.Icons, "rendering must not mutate the icon list")
	assert.Less(t, strings.Index(js, "new GIcon()"), strings.Index(js, "new GMarker("))
}

func TestJavaScript_InlineIconDeduplicated(t *testing.T) {
	m := newTestMap(t, Options{})
	icon := &Icon{Name: "shared"}
	m.AddIcon(icon)
	m.AddMarker(&Marker{Name: "a", Latitude: "1", Longitude: "1", Icon: icon})
	m.AddMarker(&Marker{Name: "b", Latitude: "2", Longitude: "2", Icon: icon})

	js := m.JavaScript()
	assert.Equal(t, 1, strings.Count(js, "var shared = new GIcon();"))
	assert.Equal(t, 2, strings.Count(js, "icon: shared"))
}

func TestJavaScript_IconReferenceByName(t *testing.T) {
	m := newTestMap(t, Options{})
	m.AddMarker(&Marker{Name: "myMarker", Latitude: "32", Longitude: "52", Icon: IconRef("myIcon")})
	js := m.JavaScript()

	assert.Contains(t, js, "var myMarker = new GMarker(GLatLng(32,52), {icon: myIcon});")
	assert.NotContains(t, js, "new GIcon()")
}

func TestJavaScript_DraggableWithIcon(t *testing.T) {
	m := newTestMap(t, Options{})
	m.AddMarker(&Marker{Name: "mk", Latitude: "1", Longitude: "2", Draggable: true, Icon: IconRef("pin")})
	assert.Contains(t, m.JavaScript(), "var mk = new GMarker(GLatLng(1,2), {draggable: true, icon: pin});")
}

func TestJavaScript_SectionOrder(t *testing.T) {
	m := newTestMap(t, Options{Type: Except(Normal), Controls: []Control{Small}})
	m.AddEvent("click", "f")
	m.AddIcon(&Icon{Name: "ic"})
	m.AddMarker(&Marker{Name: "mk", Latitude: "1", Longitude: "2"})
	js := m.JavaScript()

	order := []string{
		"GEvent.addListener(",
		".removeMapType(",
		".addControl(",
		"new GIcon()",
		"new GMarker(",
		".addOverlay(",
	}
	last := -1
	for _, needle := range order {
		i := strings.Index(js, needle)
		require.NotEqual(t, -1, i, needle)
		assert.Greater(t, i, last, needle)
		last = i
	}
}

func TestRenderJavaScript_Latch(t *testing.T) {
	m := newTestMap(t, Options{})

	js, loaded := m.RenderJavaScript(false)
	assert.True(t, loaded)
	assert.Contains(t, js, "jsapi?key=")

	js, loaded = m.RenderJavaScript(true)
	assert.True(t, loaded)
	assert.NotContains(t, js, "jsapi?key=")
	assert.Contains(t, js, "function initializeMaplyMap() {")
}

func TestJavaScript_Idempotent(t *testing.T) {
	m := newTestMap(t, Options{})
	m.AddMarker(&Marker{Name: "mk", Latitude: "1", Longitude: "2", Icon: &Icon{Name: "ic"}})
	assert.Equal(t, m.JavaScript(), m.JavaScript())
}

func TestHTML(t *testing.T) {
	m := newTestMap(t, Options{})
	assert.Equal(t, `<div id="map" style="width: 500px; height: 300px"></div>`, m.HTML())

	m = newTestMap(t, Options{ID: "my-map", Width: "100%", Height: "200px"})
	assert.Equal(t, `<div id="my-map" style="width: 100%; height: 200px"></div>`, m.HTML())
}

type failingKeys struct{}

func (failingKeys) APIKey(api string) (string, error) {
	return "", errors.New("no entry for " + api)
}

func TestNew_KeyLookupFailure(t *testing.T) {
	_, err := New(Options{}, failingKeys{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no entry for google")

	_, err = New(Options{}, StaticKey(""))
	assert.ErrorIs(t, err, ErrNoAPIKey)

	_, err = New(Options{}, nil)
	assert.ErrorIs(t, err, ErrNoAPIKey)
}

func TestJavaScript_NonASCIIIdStaysValidUTF8(t *testing.T) {
	m := newTestMap(t, Options{ID: "élan"})
	js := m.JavaScript()

	assert.True(t, utf8.ValidString(js))
	assert.Contains(t, js, "function initializeMaplyÉlan() {")
	assert.Contains(t, js, `document.getElementById("élan")`)
}

func TestNew_ControlsCopied(t *testing.T) {
	controls := []Control{Large, Scale}
	m := newTestMap(t, Options{ID: "m", Controls: controls})
	controls[0] = Overview

	js := m.JavaScript()
	assert.Contains(t, js, "m.addControl(new GLargeMapControl());")
	assert.NotContains(t, js, "GOverviewMapControl")
}

func TestAddMarkerAndIcon_IgnoreNil(t *testing.T) {
	m := newTestMap(t, Options{ID: "m"})
	require.NotPanics(t, func() {
		m.AddMarker(nil)
		m.AddIcon(nil)
	})
	assert.Empty(t, m.Markers)
	assert.Empty(t, m.Icons)
	assert.NotContains(t, m.JavaScript(), "addOverlay")
}
