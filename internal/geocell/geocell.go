// Package geocell maps a map center onto an H3 cell.
package geocell

import (
	"fmt"
	"strconv"
	"strings"

	h3 "github.com/uber/h3-go/v4"
)

const (
	MinRes = 0
	MaxRes = 15
)

// CenterCell returns the H3 cell containing (lat, lng) at res. Coordinates
// that are not numbers are script expressions with no known position; they
// yield "" and no error.
func CenterCell(lat, lng string, res int) (string, error) {
	if res < MinRes || res > MaxRes {
		return "", fmt.Errorf("h3 resolution %d out of range [%d,%d]", res, MinRes, MaxRes)
	}
	la, err1 := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	ln, err2 := strconv.ParseFloat(strings.TrimSpace(lng), 64)
	if err1 != nil || err2 != nil {
		return "", nil
	}
	if la < -90 || la > 90 || ln < -180 || ln > 180 {
		return "", fmt.Errorf("center (%g,%g) out of range", la, ln)
	}
	c, err := h3.LatLngToCell(h3.LatLng{Lat: la, Lng: ln}, res)
	if err != nil {
		return "", fmt.Errorf("h3 cell: %w", err)
	}
	return c.String(), nil
}
