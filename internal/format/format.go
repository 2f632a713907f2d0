// Package format renders procurement values for terminal output.
package format

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

type Band string

const (
	BandSuccess Band = "success"
	BandWarning Band = "warning"
	BandDanger  Band = "danger"
)

const DefaultDateLayout = "Jan 02, 2006"

// Score renders an AI score as "87.5/100".
func Score(score float64) string {
	return strconv.FormatFloat(score, 'f', 1, 64) + "/100"
}

func ScoreBand(score float64) Band {
	switch {
	case score >= 80:
		return BandSuccess
	case score >= 60:
		return BandWarning
	default:
		return BandDanger
	}
}

// Currency renders amount in en-US style, e.g. "$1,234.50" or "-$12.00".
// Codes other than USD are prefixed with the code.
func Currency(amount float64, code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	cents := int64(math.Round(amount * 100))
	body := groupThousands(cents/100) + fmt.Sprintf(".%02d", cents%100)

	switch code {
	case "", "USD":
		return sign + "$" + body
	case "EUR":
		return sign + "€" + body
	case "GBP":
		return sign + "£" + body
	default:
		return sign + code + " " + body
	}
}

// Number renders n with thousands separators and at most three decimals.
func Number(n float64) string {
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	whole := math.Trunc(n)
	frac := strconv.FormatFloat(n-whole, 'f', 3, 64)
	frac = strings.TrimRight(strings.TrimPrefix(frac, "0"), "0")
	if frac == "." {
		frac = ""
	}
	if strings.HasPrefix(frac, "1") {
		whole++
		frac = ""
	}
	return sign + groupThousands(int64(whole)) + frac
}

func groupThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	pre := len(s) % 3
	if pre > 0 {
		b.WriteString(s[:pre])
	}
	for i := pre; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// ParseTime accepts the timestamp shapes the API returns.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("format: unrecognized timestamp %q", s)
}

// Date renders an API timestamp with layout (DefaultDateLayout when
// empty). Unparseable input is returned unchanged.
func Date(s, layout string) string {
	if layout == "" {
		layout = DefaultDateLayout
	}
	t, err := ParseTime(s)
	if err != nil {
		return s
	}
	return t.Local().Format(layout)
}

// Relative renders t relative to now for chat timestamps: "Just now",
// "5m ago", "3h ago", then the wall clock time.
func Relative(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "Just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d/time.Minute))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d/time.Hour))
	default:
		return t.Local().Format("15:04")
	}
}
