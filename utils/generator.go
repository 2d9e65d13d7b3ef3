package utils

import (
	"math/rand"
	"regexp"
	"strings"
	"sync"
	"time"
)

const referenceCodeLength = 8
const letterBytes = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

var (
	seededRand = rand.New(rand.NewSource(time.Now().UnixNano()))
	randMu     sync.Mutex
)

// GenerateReferenceCode returns a short human readable code such as "TRV-7KQ2M9XA".
// Ambiguous characters (0/O, 1/I) are left out so codes can be read over the phone.
func GenerateReferenceCode(prefix string) string {
	randMu.Lock()
	defer randMu.Unlock()

	b := make([]byte, referenceCodeLength)
	for i := range b {
		b[i] = letterBytes[seededRand.Intn(len(letterBytes))]
	}
	if prefix == "" {
		return string(b)
	}
	return prefix + "-" + string(b)
}

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

func Slugify(s string) string {
	slug := nonSlugChars.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "-")
	return strings.Trim(slug, "-")
}

// RandomSuffix is appended to slugs that collide with an existing one.
func RandomSuffix(n int) string {
	randMu.Lock()
	defer randMu.Unlock()

	const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	b := make([]byte, n)
	for i := range b {
		b[i] = alphabet[seededRand.Intn(len(alphabet))]
	}
	return string(b)
}
