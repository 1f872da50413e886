package common

import (
	"fmt"
	"strings"
)

// ShortenHex shortens a hex string to its first and last length digits,
// keeping the 0x prefix.
func ShortenHex(s string, length int) string {
	prefix := ""
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		prefix, s = s[:2], s[2:]
	}

	if len(s) <= length*2 {
		return prefix + s
	}

	return fmt.Sprintf("%s%s..%s", prefix, s[:length], s[len(s)-length:])
}
