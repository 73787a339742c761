package domain

import (
	"strconv"
	"strings"
	"time"
)

var monthByName = func() map[string]time.Month {
	m := make(map[string]time.Month, 24)
	for i := time.January; i <= time.December; i++ {
		name := strings.ToLower(i.String())
		m[name] = i
		m[name[:3]] = i
	}
	return m
}()

// ParseMonth maps "January", "jan", " JANUARY " or "1".."12" to a time.Month.
func ParseMonth(s string) (time.Month, bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	if m, ok := monthByName[key]; ok {
		return m, true
	}
	if n, err := strconv.Atoi(key); err == nil && n >= 1 && n <= 12 {
		return time.Month(n), true
	}
	return 0, false
}

// MonthName returns the English month name, or "" for an invalid month.
func MonthName(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return m.String()
}
