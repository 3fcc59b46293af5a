package recipes

import (
	"strings"
)

// SafeString returns s with a trailing NUL byte as expected by the Vulkan
// bindings. Strings which already end with one are returned unchanged.
func SafeString(s string) string {
	if strings.HasSuffix(s, "\x00") {
		return s
	}
	return s + "\x00"
}

// SafeStrings applies SafeString to every element of list.
func SafeStrings(list []string) []string {
	safe := make([]string, 0, len(list))
	for _, s := range list {
		safe = append(safe, SafeString(s))
	}
	return safe
}

// TrimString removes the NUL terminator added by SafeString.
func TrimString(s string) string {
	return strings.TrimRight(s, "\x00")
}
