package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// MaxConnections is the largest connection count a profile page reveals;
// anything above is rendered as "500+".
const MaxConnections = 500

// Count is a parsed count-like string. Floor is set when the source only
// gave a lower bound ("500+").
type Count struct {
	Value int
	Floor bool
}

var shorthand = regexp.MustCompile(`^([0-9]+(?:[.,][0-9]+)?)\s*([KMB])?$`)

// ParseCount coerces "1,234", "500+", "1.2K" or "3M" to an integer. The
// boolean is false when no number could be read.
func ParseCount(raw string) (Count, bool) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return Count{}, false
	}

	var c Count
	if strings.HasSuffix(s, "+") {
		c.Floor = true
		s = strings.TrimSpace(strings.TrimSuffix(s, "+"))
	}

	if m := shorthand.FindStringSubmatch(s); m != nil && m[2] != "" {
		num, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64)
		if err != nil {
			return Count{}, false
		}
		factor := map[string]float64{"K": 1e3, "M": 1e6, "B": 1e9}[m[2]]
		v := math.Round(num * factor)
		// float64(math.MaxInt) rounds up past the int range.
		if v >= float64(math.MaxInt) {
			return Count{}, false
		}
		c.Value = int(v)
		return c, true
	}

	// Thousands separators: keep the digits only.
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return Count{}, false
	}
	n, err := strconv.Atoi(b.String())
	if err != nil {
		return Count{}, false
	}
	c.Value = n
	return c, true
}

// ParseConnections is ParseCount capped at MaxConnections; a capped value is
// always a floor.
func ParseConnections(raw string) (Count, bool) {
	c, ok := ParseCount(raw)
	if !ok {
		return c, false
	}
	if c.Value >= MaxConnections && (c.Floor || c.Value > MaxConnections) {
		c.Value = MaxConnections
		c.Floor = true
	}
	return c, true
}
