// Command maply renders a map document (YAML or JSON) to stdout.
//
//	maply -f map.yaml [-part page|html|js] [-env development] [-keys config/maply.yml]
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mohammed-shakir/maply/internal/apikeys"
	"github.com/mohammed-shakir/maply/internal/logger"
	"github.com/mohammed-shakir/maply/internal/mapdoc"
	"github.com/mohammed-shakir/maply/pkg/maply"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("maply", flag.ContinueOnError)
	fs.SetOutput(stderr)
	file := fs.String("f", "", "map document (.yaml, .yml or .json)")
	part := fs.String("part", "page", "output: page, html or js")
	env := fs.String("env", envOr("MAPLY_ENV", "development"), "key environment")
	keys := fs.String("keys", envOr("MAPLY_KEYS_FILE", "config/maply.yml"), "API key file")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	zl := logger.Build(logger.Config{
		Level:     envOr("LOG_LEVEL", "warn"),
		Console:   true,
		Env:       *env,
		Component: "maply",
	}, stderr)
	log := logger.NewSlog(&zl)

	if *file == "" {
		log.Error("missing -f map document")
		fs.Usage()
		return 2
	}

	doc, err := mapdoc.DecodeFile(*file)
	if err != nil {
		log.Error("read map document", "file", *file, "err", err)
		return 1
	}
	store, err := apikeys.Load(*keys)
	if err != nil {
		log.Error("load api keys", "file", *keys, "err", err)
		return 1
	}
	m, err := doc.Build(store.ForEnv(*env))
	if err != nil {
		log.Error("build map", "file", *file, "err", err)
		return 1
	}

	out, err := render(m, *part)
	if err != nil {
		log.Error("render", "err", err)
		return 2
	}
	_, _ = io.WriteString(stdout, out)
	return 0
}

func render(m *maply.Map, part string) (string, error) {
	switch strings.ToLower(part) {
	case "html":
		return m.HTML() + "\n", nil
	case "js":
		return m.JavaScript(), nil
	case "page":
		page := maply.NewPage(m)
		return page.JavaScript() + page.HTML() + "\n", nil
	default:
		return "", fmt.Errorf("unknown part %q (want page, html or js)", part)
	}
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
