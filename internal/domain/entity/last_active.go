package entity

import (
	"fmt"
	"time"
)

const (
	LastActiveNA  = ""
	LastActiveNow = "Active now"
)

const (
	secondsPerMinute = 60
	secondsPerHour   = 60 * secondsPerMinute
	secondsPerDay    = 24 * secondsPerHour
	secondsPerWeek   = 7 * secondsPerDay
	secondsPerMonth  = 4 * secondsPerWeek
	secondsPerYear   = 12 * secondsPerMonth
)

// FormatLastActive buckets the time elapsed since lastSeen into a short label.
// Each bucket floors its unit count and a boundary value belongs to the coarser
// unit, so exactly 60s reads "Active 1m ago". A zero lastSeen yields LastActiveNA.
func FormatLastActive(lastSeen, now time.Time) string {
	if lastSeen.IsZero() {
		return LastActiveNA
	}

	elapsed := int64(now.Sub(lastSeen) / time.Second)

	switch {
	case elapsed < secondsPerMinute:
		return LastActiveNow
	case elapsed < secondsPerHour:
		return fmt.Sprintf("Active %dm ago", elapsed/secondsPerMinute)
	case elapsed < secondsPerDay:
		return fmt.Sprintf("Active %dh ago", elapsed/secondsPerHour)
	case elapsed < secondsPerWeek:
		return fmt.Sprintf("Active %dd ago", elapsed/secondsPerDay)
	case elapsed < secondsPerMonth:
		return fmt.Sprintf("Active %dwk ago", elapsed/secondsPerWeek)
	case elapsed < secondsPerYear:
		return fmt.Sprintf("Active %dmo ago", elapsed/secondsPerMonth)
	default:
		return fmt.Sprintf("Active %dy ago", elapsed/secondsPerYear)
	}
}
