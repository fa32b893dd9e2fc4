package utils

import (
	"crypto/md5"
	"fmt"
	"strings"
)

func HashString(input string) string {
	hash := md5.Sum([]byte(input))
	return fmt.Sprintf("%x", hash)
}

// HashParts hashes parts joined by a separator that cannot occur in the hex output.
func HashParts(parts ...string) string {
	return HashString(strings.Join(parts, "\x1f"))
}
