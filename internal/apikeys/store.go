// Package apikeys loads map provider API keys from a YAML file keyed by
// runtime environment, e.g.
//
//	production:
//	  google: "ABQIAAAA..."
package apikeys

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mohammed-shakir/maply/pkg/maply"
)

var (
	ErrUnknownEnv = errors.New("unknown environment")
	ErrUnknownAPI = errors.New("unknown api provider")
)

type Store struct {
	keys map[string]map[string]string
}

func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read api keys %s: %w", path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

func Parse(data []byte) (*Store, error) {
	raw := map[string]map[string]string{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse api keys: %w", err)
	}
	keys := make(map[string]map[string]string, len(raw))
	for env, providers := range raw {
		norm := make(map[string]string, len(providers))
		for api, key := range providers {
			norm[normalize(api)] = strings.TrimSpace(key)
		}
		keys[normalize(env)] = norm
	}
	return &Store{keys: keys}, nil
}

// Lookup returns the key for api in env. Names are case-insensitive.
func (s *Store) Lookup(env, api string) (string, error) {
	providers, ok := s.keys[normalize(env)]
	if !ok {
		return "", fmt.Errorf("%w %q", ErrUnknownEnv, env)
	}
	key, ok := providers[normalize(api)]
	if !ok || key == "" {
		return "", fmt.Errorf("%w %q in environment %q", ErrUnknownAPI, api, env)
	}
	return key, nil
}

func (s *Store) Envs() []string {
	out := make([]string, 0, len(s.keys))
	for env := range s.keys {
		out = append(out, env)
	}
	sort.Strings(out)
	return out
}

// ForEnv binds the store to one environment for maply.New.
func (s *Store) ForEnv(env string) maply.KeySource {
	return envKeys{store: s, env: env}
}

type envKeys struct {
	store *Store
	env   string
}

func (k envKeys) APIKey(api string) (string, error) {
	return k.store.Lookup(k.env, api)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
