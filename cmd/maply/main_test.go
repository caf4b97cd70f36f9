package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestRun_RendersParts(t *testing.T) {
	dir := t.TempDir()
	keys := writeFile(t, dir, "keys.yml", "development:\n  google: devkey\n")
	doc := writeFile(t, dir, "map.yaml", `
id: office
latitude: 59.3293
longitude: 18.0686
zoom: 100
markers:
  - name: hq
    latitude: 59.3293
    longitude: 18.0686
`)

	cases := []struct {
		part string
		want []string
	}{
		{"html", []string{`<div id="office" style="width: 500px; height: 300px"></div>`}},
		{"js", []string{"jsapi?key=devkey", "office.addOverlay(hq);"}},
		{"page", []string{"google.load(", `<div id="office"`}},
	}
	for _, tc := range cases {
		var stdout, stderr bytes.Buffer
		code := run([]string{"-f", doc, "-keys", keys, "-env", "development", "-part", tc.part}, &stdout, &stderr)
		if code != 0 {
			t.Fatalf("%s: exit=%d stderr=%s", tc.part, code, stderr.String())
		}
		for _, w := range tc.want {
			if !strings.Contains(stdout.String(), w) {
				t.Fatalf("%s: output missing %q:\n%s", tc.part, w, stdout.String())
			}
		}
	}
}

func TestRun_Errors(t *testing.T) {
	dir := t.TempDir()
	keys := writeFile(t, dir, "keys.yml", "development:\n  google: devkey\n")
	doc := writeFile(t, dir, "map.json", `{"id":"m"}`)

	cases := []struct {
		name string
		args []string
		code int
	}{
		{"no file", []string{"-keys", keys}, 2},
		{"missing file", []string{"-f", filepath.Join(dir, "nope.yaml"), "-keys", keys}, 1},
		{"unknown env", []string{"-f", doc, "-keys", keys, "-env", "production"}, 1},
		{"bad part", []string{"-f", doc, "-keys", keys, "-env", "development", "-part", "svg"}, 2},
	}
	for _, tc := range cases {
		var stdout, stderr bytes.Buffer
		if code := run(tc.args, &stdout, &stderr); code != tc.code {
			t.Fatalf("%s: exit=%d want %d (stderr=%s)", tc.name, code, tc.code, stderr.String())
		}
	}
}
