// Package normalize coerces raw extracted field values into their canonical
// Go representations. Every function tolerates garbage input and degrades to
// nil or the empty string instead of returning an error, because a single
// unreadable field must never sink a whole document.
package normalize

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
)

const dateLayout = "02/01/2006"

// Date parses v as a dd/mm/yyyy date. Anything that is not a string in that
// exact layout yields nil.
func Date(v any) *time.Time {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	return &t
}

// Clock normalizes a time-of-day string to HH:mm:ss. HH:mm input gains a
// zero seconds part, valid HH:mm:ss input passes through, and everything
// else collapses to the empty string. The value "24:00:00" is preserved as
// written; duration math treats it as midnight of the following day.
func Clock(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	s = strings.TrimSpace(s)
	if s == "24:00" || s == "24:00:00" {
		return "24:00:00"
	}
	if t, err := time.Parse("15:04", s); err == nil {
		return t.Format("15:04") + ":00"
	}
	if t, err := time.Parse("15:04:05", s); err == nil {
		return t.Format("15:04:05")
	}
	return ""
}

// Float coerces v to a float pointer. Numeric types convert directly, strings
// parse after trimming and comma-to-dot replacement, anything else is nil.
func Float(v any) *float64 {
	switch n := v.(type) {
	case float64:
		return &n
	case float32:
		f := float64(n)
		return &f
	case int:
		f := float64(n)
		return &f
	case int64:
		f := float64(n)
		return &f
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(n), ",", ".")
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		return &f
	default:
		return nil
	}
}

// Digits strips every non-digit rune from s. Card and phone numbers arrive
// with arbitrary spacing and separators.
func Digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ProjectNumber canonicalizes a project number. A trailing ".0" from numeric
// coercion is cut, an optional single leading letter is kept, and all
// whitespace is removed, so "240045.0" becomes "240045" and "V1 230 23"
// becomes "V123023".
func ProjectNumber(v any) string {
	var s string
	switch n := v.(type) {
	case string:
		s = n
	case float64:
		s = strconv.FormatFloat(n, 'f', -1, 64)
	case int:
		s = strconv.Itoa(n)
	default:
		return ""
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, ".0")
	var b strings.Builder
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// DurationMinutes computes end minus start in minutes, less the break given
// in hours. An end of "24:00:00" counts as midnight of the next day. A nil
// break counts as zero. Unparseable clock values yield an error.
func DurationMinutes(start, end string, breakHours *float64) (float64, error) {
	s, err := time.Parse("15:04:05", start)
	if err != nil {
		return 0, fmt.Errorf("normalize.DurationMinutes: bad start %q: %w", start, err)
	}
	var e time.Time
	rollover := false
	if end == "24:00:00" {
		e, _ = time.Parse("15:04:05", "00:00:00")
		rollover = true
	} else {
		e, err = time.Parse("15:04:05", end)
		if err != nil {
			return 0, fmt.Errorf("normalize.DurationMinutes: bad end %q: %w", end, err)
		}
	}
	minutes := e.Sub(s).Minutes()
	if rollover {
		minutes += 24 * 60
	}
	if breakHours != nil {
		minutes -= *breakHours * 60
	}
	return minutes, nil
}
