package validate

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	reQ        = regexp.MustCompile(`^[\p{L}0-9 _'\-]{1,50}$`)
	reID       = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	reUsername = regexp.MustCompile(`^[A-Za-z0-9_.-]{3,30}$`)
	rePhone    = regexp.MustCompile(`^[0-9+()\- ]+$`)
	reNonDigit = regexp.MustCompile(`[^0-9]`)
)

// Q validates a search query: trims, enforces allowed characters and max length
func Q(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if r := []rune(s); len(r) > 50 {
		s = string(r[:50])
	}
	return s, reQ.MatchString(s)
}

// Int parses a signed quantity field. Callers decide what zero or negative means.
func Int(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return n, true
}

// Rating accepts whole stars from 1 to 5.
func Rating(s string) (int, bool) {
	n, ok := Int(s)
	return n, ok && n >= 1 && n <= 5
}

// ID validates a simple resource identifier (product/review/order ids).
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

func Username(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, reUsername.MatchString(s)
}

// Phone allows digits and +()- and spaces, with 7 to 20 digits once everything else is stripped.
func Phone(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || !rePhone.MatchString(s) {
		return "", false
	}
	digits := reNonDigit.ReplaceAllString(s, "")
	return s, len(digits) >= 7 && len(digits) <= 20
}

// Text trims and requires a non-empty value of at most max runes.
func Text(s string, max int) (string, bool) {
	s = strings.TrimSpace(s)
	n := len([]rune(s))
	return s, n > 0 && n <= max
}

// Price parses a non-negative decimal with at most two fractional digits.
func Price(s string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil || d.IsNegative() || !d.Equal(d.Round(2)) {
		return decimal.Zero, false
	}
	return d, true
}

func Stock(s string) (int, bool) {
	n, ok := Int(s)
	return n, ok && n >= 0
}

// Password enforces a simple length window for login checks.
func Password(s string) bool {
	l := len(s)
	if l < 8 || l > 20 {
		return false
	}
	var hasLower, hasUpper, hasDigit, hasSymbol bool
	for _, r := range s {
		switch {
		case 'a' <= r && r <= 'z':
			hasLower = true
		case 'A' <= r && r <= 'Z':
			hasUpper = true
		case '0' <= r && r <= '9':
			hasDigit = true
		default:
			hasSymbol = true
		}
	}
	return hasLower && hasUpper && hasDigit && hasSymbol
}
