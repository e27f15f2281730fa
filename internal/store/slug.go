package store

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

const (
	// slugSuffixRange bounds the random numeric suffix.
	slugSuffixRange = 1000
	// slugNumericAttempts is how many numeric suffixes are tried before
	// switching to a uuid fragment.
	slugNumericAttempts = 8
	slugMaxAttempts     = 16
)

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// slugSuffix is swapped in tests to force collisions.
var slugSuffix = func() string {
	return strconv.Itoa(rand.IntN(slugSuffixRange))
}

// Slugify lower-cases title and collapses every run of characters outside
// [a-z0-9] into a single hyphen.
func Slugify(title string) string {
	s := nonAlphanumeric.ReplaceAllString(strings.ToLower(title), "-")
	return strings.Trim(s, "-")
}

// GenerateSlug derives a slug from title with a random suffix and retries
// until taken reports the candidate as free.
func GenerateSlug(title string, taken func(candidate string) (bool, error)) (string, error) {
	base := Slugify(title)
	for attempt := 0; attempt < slugMaxAttempts; attempt++ {
		suffix := slugSuffix()
		if attempt >= slugNumericAttempts {
			suffix = uuid.NewString()[:8]
		}
		candidate := suffix
		if base != "" {
			candidate = base + "-" + suffix
		}

		exists, err := taken(candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check slug availability: %w", err)
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("failed to generate a unique slug for %q", title)
}
