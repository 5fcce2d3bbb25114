// Package format turns raw bill fields into their display representation.
package format

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/garyjia/billed/internal/domain/entity"
)

// Formatter converts raw bill fields for display
type Formatter interface {
	Date(raw string) (string, error)
	Status(status entity.Status) string
}

// French short month names, as printed by the listing
var frenchMonths = [...]string{
	"janv.", "févr.", "mars", "avr.", "mai", "juin",
	"juil.", "août", "sept.", "oct.", "nov.", "déc.",
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// ParseDate parses an ISO-8601 bill date
func ParseDate(raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", raw)
}

// Date formats an ISO date as "4 Avr. 04"
func Date(raw string) (string, error) {
	t, err := ParseDate(raw)
	if err != nil {
		return "", err
	}

	month := capitalize(frenchMonths[t.Month()-1])
	if utf8.RuneCountInString(month) > 3 {
		month = string([]rune(month)[:3])
	}

	return fmt.Sprintf("%d %s. %02d", t.Day(), month, t.Year()%100), nil
}

// Status returns the display label of a status code
func Status(status entity.Status) string {
	return status.Label()
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

type defaultFormatter struct{}

// Default returns the formatter used by the listing
func Default() Formatter {
	return defaultFormatter{}
}

func (defaultFormatter) Date(raw string) (string, error) {
	return Date(raw)
}

func (defaultFormatter) Status(status entity.Status) string {
	return Status(status)
}
