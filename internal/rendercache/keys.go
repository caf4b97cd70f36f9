package rendercache

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

const keyPrefix = "maply"

// Key builds "maply:<env>:<cell>:<part>:<digest>". The key environment
// keeps instances with different API keys apart on a shared Redis. The
// cell namespaces renders by map center so a region can be inspected or
// purged as a unit; maps without a numeric center share "nocell".
func Key(env, cell string, canonical []byte, part string) string {
	env = strings.ToLower(strings.TrimSpace(env))
	if env == "" {
		env = "default"
	}
	cell = strings.TrimSpace(cell)
	if cell == "" {
		cell = "nocell"
	}
	part = strings.ToLower(strings.TrimSpace(part))
	if part == "" {
		part = "page"
	}
	return fmt.Sprintf("%s:%s:%s:%s:%016x", keyPrefix, env, cell, part, xxhash.Sum64(canonical))
}
