package sapling

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// UnitType tells how a Unit value is measured.
type UnitType uint8

const (
	UnitInvalid    UnitType = iota
	UnitPixels              // absolute offset in pixels
	UnitPercentage          // fraction of the parent size, 0.5 == "50%"
)

// Unit is a parsed pixel or percentage literal.
type Unit struct {
	Type  UnitType
	Value float64
}

// ErrInvalidUnit is returned by ParseUnit for malformed literals.
var ErrInvalidUnit = errors.New("sapling: invalid unit")

// Pixels returns a pixel unit.
func Pixels(v float64) Unit { return Unit{Type: UnitPixels, Value: v} }

// Percent returns a percentage unit; Percent(50) is half the parent size.
func Percent(v float64) Unit { return Unit{Type: UnitPercentage, Value: v / 100} }

// ParseUnit parses "12px", "12 px", "-3.5px", "50%" or a bare number (pixels).
// Whitespace is allowed only between the number and its suffix.
func ParseUnit(s string) (Unit, error) {
	body := strings.TrimSpace(s)
	typ := UnitPixels
	switch {
	case strings.HasSuffix(body, "px"):
		body = strings.TrimSuffix(body, "px")
	case strings.HasSuffix(body, "%"):
		body = strings.TrimSuffix(body, "%")
		typ = UnitPercentage
	}
	body = strings.TrimRight(body, " ")
	if !isDecimal(body) {
		return Unit{}, fmt.Errorf("%w: %q", ErrInvalidUnit, s)
	}
	v, err := strconv.ParseFloat(body, 64)
	if err != nil {
		return Unit{}, fmt.Errorf("%w: %q", ErrInvalidUnit, s)
	}
	if typ == UnitPercentage {
		v /= 100
	}
	return Unit{Type: typ, Value: v}, nil
}

// isDecimal reports whether s is an optionally negative decimal number.
func isDecimal(s string) bool {
	s = strings.TrimPrefix(s, "-")
	digits, dots := 0, 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '.':
			dots++
		default:
			return false
		}
	}
	return digits > 0 && dots <= 1
}

// toUnit accepts a Unit, a number (pixels) or a string literal.
func toUnit(v any) (Unit, error) {
	switch u := v.(type) {
	case Unit:
		if u.Type == UnitInvalid {
			return Unit{}, ErrInvalidUnit
		}
		return u, nil
	case float64:
		return Pixels(u), nil
	case float32:
		return Pixels(float64(u)), nil
	case int:
		return Pixels(float64(u)), nil
	case string:
		return ParseUnit(u)
	default:
		return Unit{}, fmt.Errorf("%w: unsupported type %T", ErrInvalidUnit, v)
	}
}
