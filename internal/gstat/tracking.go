package gstat

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	trackingOpen  = " ["
	trackingClose = "]"
)

// TrackingDelta is the commit distance to the upstream branch. A zero value
// is also returned when no upstream comparison is available.
type TrackingDelta struct {
	Ahead  uint64
	Behind uint64
}

// ParseTracking extracts "[ahead N]", "[behind M]" or "[ahead N, behind M]"
// from the end of a header line. Other annotations such as "[gone]" yield
// a zero delta.
func ParseTracking(line string) (TrackingDelta, error) {
	var delta TrackingDelta
	if !strings.HasSuffix(line, trackingClose) {
		return delta, nil
	}
	i := strings.LastIndex(line, trackingOpen)
	if i < 0 {
		return delta, nil
	}
	body := line[i+len(trackingOpen) : len(line)-len(trackingClose)]

	for _, tok := range tokenizeTracking(body) {
		var dst *uint64
		switch tok.key {
		case "ahead":
			dst = &delta.Ahead
		case "behind":
			dst = &delta.Behind
		default:
			continue
		}
		value := tok.value
		if tok.key == "ahead" {
			// ahead is followed by a comma when behind is also present
			value = leadingDigits(value)
		}
		n, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return TrackingDelta{}, fmt.Errorf("%w: %s count in %q: %w", ErrParse, tok.key, line, err)
		}
		*dst = n
	}
	return delta, nil
}

type trackingToken struct {
	key   string
	value string
}

// tokenizeTracking splits "ahead 2, behind 1" into key/value pairs.
func tokenizeTracking(body string) []trackingToken {
	var toks []trackingToken
	for _, part := range strings.Split(body, ",") {
		fields := strings.Fields(part)
		if len(fields) == 0 {
			continue
		}
		tok := trackingToken{key: fields[0]}
		if len(fields) > 1 {
			tok.value = fields[1]
		}
		toks = append(toks, tok)
	}
	return toks
}

func leadingDigits(s string) string {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	return s[:end]
}
