package maply

import (
	"fmt"
	"strings"
)

const bodyIndent = "    "

const addEventHelper = `function maplyAddEvent(target, name, fn) {
  if (target.addEventListener) {
    target.addEventListener(name, fn, false);
  } else if (target.attachEvent) {
    target.attachEvent('on' + name, fn);
  }
}
`

// JavaScript renders the map including the Maps API loader. Use Page, or
// RenderJavaScript, to load the API once for several maps.
func (m *Map) JavaScript() string {
	js, _ := m.RenderJavaScript(false)
	return js
}

// RenderJavaScript renders the map script. The loader block is emitted
// only when loaded is false; the returned flag is the latch to pass to the
// next map rendered into the same page.
func (m *Map) RenderJavaScript(loaded bool) (string, bool) {
	var b strings.Builder
	if !loaded {
		writeDependencies(&b, m.apiKey)
	}
	m.writeScript(&b)
	return b.String(), true
}

// HTML renders the container element the map mounts into.
func (m *Map) HTML() string {
	return fmt.Sprintf("<div id=\"%s\" style=\"width: %s; height: %s\"></div>",
		m.opts.ID, m.opts.Width, m.opts.Height)
}

func writeDependencies(b *strings.Builder, apiKey string) {
	fmt.Fprintf(b, "<script type=\"text/javascript\" src=\"http://www.google.com/jsapi?key=%s\"></script>\n", apiKey)
	b.WriteString("<script type=\"text/javascript\">\n//<![CDATA[\n")
	b.WriteString("google.load(\"maps\", \"2\");\n")
	b.WriteString(addEventHelper)
	b.WriteString("//]]>\n</script>\n")
}

func (m *Map) writeScript(b *strings.Builder) {
	fn := capitalize(m.name)

	b.WriteString("<script type=\"text/javascript\">\n//<![CDATA[\n")
	fmt.Fprintf(b, "function initializeMaply%s() {\n", fn)
	b.WriteString("  if (GBrowserIsCompatible()) {\n")
	fmt.Fprintf(b, "%svar %s = new google.maps.Map2(document.getElementById(\"%s\"));\n", bodyIndent, m.name, m.opts.ID)
	fmt.Fprintf(b, "%s%s.setCenter(new google.maps.LatLng(%s, %s), %d);\n",
		bodyIndent, m.name, m.opts.Latitude, m.opts.Longitude, m.zoom)

	sections := [][]string{
		m.eventListeners(),
		m.mapTypes(),
		m.controls(),
		iconLines(m.collectIcons()),
		m.markerLines(),
		m.overlays(),
	}
	for _, lines := range sections {
		for _, l := range lines {
			b.WriteString(bodyIndent)
			b.WriteString(l)
			b.WriteByte('\n')
		}
	}

	b.WriteString("  }\n}\n")
	fmt.Fprintf(b, "function unloadMaply%s() {\n  GUnload();\n}\n\n", fn)
	fmt.Fprintf(b, "maplyAddEvent(window, 'load', initializeMaply%s);\n", fn)
	fmt.Fprintf(b, "maplyAddEvent(window, 'unload', unloadMaply%s);\n", fn)
	b.WriteString("//]]>\n</script>\n")
}

func (m *Map) eventListeners() []string {
	out := make([]string, 0, len(m.Events))
	for _, ev := range m.Events {
		out = append(out, fmt.Sprintf("GEvent.addListener(%s, '%s', %s);", m.name, ev.Name, ev.Handler))
	}
	return out
}

func (m *Map) mapTypes() []string {
	removed := m.opts.Type.Removed()
	out := make([]string, 0, len(removed))
	for _, t := range removed {
		out = append(out, fmt.Sprintf("%s.removeMapType(%s);", m.name, t.JS()))
	}
	return out
}

func (m *Map) controls() []string {
	out := make([]string, 0, len(m.opts.Controls))
	for _, c := range m.opts.Controls {
		out = append(out, fmt.Sprintf("%s.addControl(new %s());", m.name, c.JS()))
	}
	return out
}

// collectIcons returns the declared icons followed by inline marker icons
// not already present. m.Icons is left untouched.
func (m *Map) collectIcons() []*Icon {
	seen := make(map[*Icon]struct{}, len(m.Icons))
	out := make([]*Icon, 0, len(m.Icons))
	add := func(ic *Icon) {
		if ic == nil {
			return
		}
		if _, ok := seen[ic]; ok {
			return
		}
		seen[ic] = struct{}{}
		out = append(out, ic)
	}
	for _, ic := range m.Icons {
		add(ic)
	}
	for _, mk := range m.Markers {
		if ic, ok := mk.Icon.(*Icon); ok {
			add(ic)
		}
	}
	return out
}

func iconLines(icons []*Icon) []string {
	var out []string
	for _, ic := range icons {
		n := ic.Name
		out = append(out, fmt.Sprintf("var %s = new GIcon();", n))
		if ic.Image != "" {
			out = append(out, fmt.Sprintf("%s.image = \"%s\";", n, ic.Image))
		}
		if ic.ShadowImage != "" {
			out = append(out, fmt.Sprintf("%s.shadow = \"%s\";", n, ic.ShadowImage))
		}
		if ic.Width != nil && ic.Height != nil {
			out = append(out, fmt.Sprintf("%s.iconSize = new GSize(%d, %d);", n, *ic.Width, *ic.Height))
		}
		if ic.ShadowWidth != nil && ic.ShadowHeight != nil {
			out = append(out, fmt.Sprintf("%s.shadowSize = new GSize(%d, %d);", n, *ic.ShadowWidth, *ic.ShadowHeight))
		}
		if ic.AnchorX != nil && ic.AnchorY != nil {
			out = append(out, fmt.Sprintf("%s.iconAnchor = new GPoint(%d, %d);", n, *ic.AnchorX, *ic.AnchorY))
		}
		if ic.WindowAnchorX != nil && ic.WindowAnchorY != nil {
			out = append(out, fmt.Sprintf("%s.infoWindowAnchor = new GPoint(%d, %d);", n, *ic.WindowAnchorX, *ic.WindowAnchorY))
		}
	}
	return out
}

func (m *Map) markerLines() []string {
	out := make([]string, 0, len(m.Markers))
	for _, mk := range m.Markers {
		var opts []string
		if mk.Draggable {
			opts = append(opts, "draggable: true")
		}
		if ref := markerIconRef(mk.Icon); ref != "" {
			opts = append(opts, "icon: "+ref)
		}
		out = append(out, fmt.Sprintf("var %s = new GMarker(GLatLng(%s,%s), {%s});",
			mk.Name, mk.Latitude, mk.Longitude, strings.Join(opts, ", ")))
	}
	return out
}

func markerIconRef(icon MarkerIcon) string {
	switch ic := icon.(type) {
	case nil:
		return ""
	case *Icon:
		if ic == nil {
			return ""
		}
		return ic.Name
	default:
		return ic.iconRef()
	}
}

func (m *Map) overlays() []string {
	out := make([]string, 0, len(m.Markers))
	for _, mk := range m.Markers {
		out = append(out, fmt.Sprintf("%s.addOverlay(%s);", m.name, mk.Name))
	}
	return out
}
