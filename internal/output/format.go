// Package output renders scan results for a human operator: a bordered
// terminal panel per file, a batch summary, and a JSON mode for piping
// into other tools.
package output

import (
	"fmt"
	"time"
)

// FileSize formats a byte count as a human-readable size, "1.5 MB".
func FileSize(bytes int64) string {
	value := float64(bytes)
	for _, unit := range []string{"B", "KB", "MB", "GB", "TB"} {
		if value < 1024 {
			return fmt.Sprintf("%.1f %s", value, unit)
		}
		value /= 1024
	}
	return fmt.Sprintf("%.1f PB", value)
}

// Timestamp formats a Unix timestamp in local time. Zero means the
// service reported no analysis date.
func Timestamp(ts int64) string {
	if ts == 0 {
		return "Unknown"
	}
	if ts < 0 {
		return "Invalid date"
	}
	return time.Unix(ts, 0).Format("2006-01-02 15:04:05")
}

// DetectionSummary formats the verdict count, "3/70 detections".
func DetectionSummary(detections, total int) string {
	return fmt.Sprintf("%d/%d detections", detections, total)
}

// Truncate shortens text to at most limit runes, ellipsis included.
func Truncate(text string, limit int) string {
	if limit <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	ellipsis := "..."
	if limit <= len(ellipsis) {
		return string(runes[:limit])
	}
	return string(runes[:limit-len(ellipsis)]) + ellipsis
}
