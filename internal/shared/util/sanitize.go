package util

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"path"
	"regexp"
	"strings"
	"time"
)

const nameAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases s and joins its alphanumeric runs with hyphens.
func Slugify(s string) string {
	return strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(s), "-"), "-")
}

// SanitizeFileName removes path separators and rejects traversal patterns.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", errors.New("invalid file name")
	}
	s := strings.TrimSpace(name)
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	if s == "" {
		return "", errors.New("invalid file name")
	}
	return s, nil
}

// Extension returns the lowercased text after the last dot of name, or "" when
// there is none.
func Extension(name string) string {
	ext := strings.TrimPrefix(path.Ext(strings.TrimSpace(name)), ".")
	if strings.ContainsAny(ext, "/\\") {
		return ""
	}
	return strings.ToLower(ext)
}

// RandomName returns n random base36 characters.
func RandomName(n int) string {
	if n <= 0 {
		n = 12
	}
	var b strings.Builder
	b.Grow(n)
	max := big.NewInt(int64(len(nameAlphabet)))
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return fmt.Sprintf("%d", time.Now().UnixNano())
		}
		b.WriteByte(nameAlphabet[idx.Int64()])
	}
	return b.String()
}
