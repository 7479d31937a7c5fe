// Package timezone parses fixed UTC offsets and renders wall-clock timestamps.
package timezone

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Layout is the timestamp pattern reported by the status endpoint (YYYY-MM-DD HH:MM:SS).
const Layout = "2006-01-02 15:04:05"

const (
	maxHours   = 23
	maxMinutes = 59
)

// ErrInvalidOffset is the sentinel wrapped by every ParseError.
var ErrInvalidOffset = errors.New("invalid utc offset")

// ParseError describes why an offset string was rejected.
type ParseError struct {
	Value  string
	Reason string
}

// Error satisfies the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse utc offset %q: %s", e.Value, e.Reason)
}

// Unwrap lets errors.Is match ErrInvalidOffset.
func (e *ParseError) Unwrap() error {
	return ErrInvalidOffset
}

// Offset is a fixed difference from UTC.
type Offset struct {
	Negative bool
	Hours    int
	Minutes  int
}

// UTC is the zero offset.
var UTC = Offset{}

// Parse converts a "±HH:MM" string into an Offset.
// The sign is optional and applies to the whole offset, so "-05:30" is
// five and a half hours behind UTC. Hours must be in [0,23] and minutes in [0,59].
func Parse(raw string) (Offset, error) {
	value := strings.TrimSpace(raw)
	hoursPart, minutesPart, ok := strings.Cut(value, ":")
	if !ok {
		return Offset{}, &ParseError{Value: raw, Reason: "expected ±HH:MM"}
	}

	var offset Offset
	switch {
	case strings.HasPrefix(hoursPart, "-"):
		offset.Negative = true
		hoursPart = hoursPart[1:]
	case strings.HasPrefix(hoursPart, "+"):
		hoursPart = hoursPart[1:]
	}

	hours, err := parseComponent(hoursPart)
	if err != nil {
		return Offset{}, &ParseError{Value: raw, Reason: "hours " + err.Error()}
	}
	minutes, err := parseComponent(minutesPart)
	if err != nil {
		return Offset{}, &ParseError{Value: raw, Reason: "minutes " + err.Error()}
	}
	if hours > maxHours {
		return Offset{}, &ParseError{Value: raw, Reason: fmt.Sprintf("hours out of range: %d", hours)}
	}
	if minutes > maxMinutes {
		return Offset{}, &ParseError{Value: raw, Reason: fmt.Sprintf("minutes out of range: %d", minutes)}
	}

	offset.Hours = hours
	offset.Minutes = minutes
	if offset.Hours == 0 && offset.Minutes == 0 {
		offset.Negative = false
	}
	return offset, nil
}

// MustParse is like Parse but panics on error.
func MustParse(raw string) Offset {
	offset, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return offset
}

// parseComponent accepts one or two ASCII digits.
func parseComponent(part string) (int, error) {
	if part == "" || len(part) > 2 {
		return 0, errors.New("must be one or two digits")
	}
	for _, r := range part {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("not numeric: %q", part)
		}
	}
	return strconv.Atoi(part)
}

// Seconds returns the signed offset east of UTC in seconds.
func (o Offset) Seconds() int {
	seconds := o.Hours*3600 + o.Minutes*60
	if o.Negative {
		return -seconds
	}
	return seconds
}

// String renders the offset in canonical "+HH:MM" form.
func (o Offset) String() string {
	sign := "+"
	if o.Negative {
		sign = "-"
	}
	return fmt.Sprintf("%s%02d:%02d", sign, o.Hours, o.Minutes)
}

// Location returns a fixed zone for the offset.
func (o Offset) Location() *time.Location {
	return time.FixedZone("UTC"+o.String(), o.Seconds())
}

// Format shifts t into the offset and renders it using Layout.
func (o Offset) Format(t time.Time) string {
	return t.In(o.Location()).Format(Layout)
}
