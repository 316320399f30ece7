package core

import (
	"fmt"
	"strings"
)

// SafeString null terminates s for the driver
func SafeString(s string) string {
	if strings.HasSuffix(s, "\x00") {
		return s
	}
	return fmt.Sprintf("%s\x00", s)
}

// SafeStrings null terminates every string in sgs
func SafeStrings(sgs []string) []string {
	safe := []string{}
	for _, s := range sgs {
		safe = append(safe, SafeString(s))
	}
	return safe
}

// MissingNames returns the names in required that are not in available.
// Matching is exact and case sensitive.
func MissingNames(required, available []string) []string {
	set := make(map[string]struct{}, len(available))
	for _, name := range available {
		set[strings.TrimSuffix(name, "\x00")] = struct{}{}
	}
	var missing []string
	for _, name := range required {
		if _, ok := set[strings.TrimSuffix(name, "\x00")]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}
