// Package timeline holds the pure computations behind a backfill: parsing
// track durations, spacing plays backwards from an end time and splitting
// local files into per-album batches.
package timeline

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FallbackSeconds is used whenever a duration is missing, malformed or zero
const FallbackSeconds = 180

// Longest duration accepted from text, anything longer is treated as malformed
const maxSeconds = math.MaxInt32

// ParseDuration converts "M:SS" or "H:MM:SS" to seconds, returning
// FallbackSeconds for anything it can't make sense of
func ParseDuration(text string) int {
	return ParseDurationOr(text, FallbackSeconds)
}

// ParseDurationOr is ParseDuration with a caller supplied fallback
func ParseDurationOr(text string, fallback int) int {
	parts := strings.Split(text, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return fallback
	}

	total := 0
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 0 || total > (maxSeconds-n)/60 {
			return fallback
		}
		total = total*60 + n
	}

	return ResolveDuration(total, fallback)
}

// ResolveDuration replaces a non-positive duration with the fallback
func ResolveDuration(seconds, fallback int) int {
	if seconds <= 0 {
		return fallback
	}
	return seconds
}

// FormatDuration renders seconds as M:SS
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
