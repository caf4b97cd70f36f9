package maply

import "strings"

// Page renders several maps into one document, loading the Maps API once.
// A Page is not safe for concurrent use; create one per request.
type Page struct {
	maps []*Map
}

func NewPage(maps ...*Map) *Page {
	return &Page{maps: maps}
}

func (p *Page) Add(m *Map) { p.maps = append(p.maps, m) }

func (p *Page) Maps() []*Map { return p.maps }

// JavaScript emits the loader with the first map's key, then each map's
// script in insertion order.
func (p *Page) JavaScript() string {
	var b strings.Builder
	loaded := false
	for _, m := range p.maps {
		var js string
		js, loaded = m.RenderJavaScript(loaded)
		b.WriteString(js)
	}
	return b.String()
}

// HTML joins the containers of all maps, one per line.
func (p *Page) HTML() string {
	parts := make([]string, 0, len(p.maps))
	for _, m := range p.maps {
		parts = append(parts, m.HTML())
	}
	return strings.Join(parts, "\n")
}
