// Package maply renders Google Maps (API v2) widgets as JavaScript and HTML.
//
// A Map is built from Options and a KeySource that resolves the API key,
// filled with events, markers and icons, and rendered with JavaScript and
// HTML:
//
//	m, err := maply.New(maply.Options{ID: "my-map", Zoom: &zoom}, maply.StaticKey(key))
//	if err != nil {
//		return err
//	}
//	m.AddMarker(maply.NewMarker("59.3293", "18.0686"))
//	page := m.HTML() + m.JavaScript()
//
// Event handlers and icon references are written into the script without
// escaping. They must come from trusted code, never from request input.
package maply
