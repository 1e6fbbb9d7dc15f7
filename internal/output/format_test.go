package output

import (
	"testing"
	"time"
)

func TestFileSize(t *testing.T) {
	cases := []struct {
		bytes int64
		want  string
	}{
		{500, "500.0 B"},
		{1536, "1.5 KB"},
		{1 << 20, "1.0 MB"},
		{32 << 20, "32.0 MB"},
		{3 << 30, "3.0 GB"},
		{2 << 40, "2.0 TB"},
	}
	for _, tc := range cases {
		if got := FileSize(tc.bytes); got != tc.want {
			t.Errorf("FileSize(%d) = %q, want %q", tc.bytes, got, tc.want)
		}
	}
}

func TestTimestamp(t *testing.T) {
	if got := Timestamp(0); got != "Unknown" {
		t.Errorf("zero timestamp = %q, want Unknown", got)
	}
	if got := Timestamp(-5); got != "Invalid date" {
		t.Errorf("negative timestamp = %q, want Invalid date", got)
	}

	ts := int64(1700000000)
	want := time.Unix(ts, 0).Format("2006-01-02 15:04:05")
	if got := Timestamp(ts); got != want {
		t.Errorf("Timestamp(%d) = %q, want %q", ts, got, want)
	}
}

func TestDetectionSummary(t *testing.T) {
	if got := DetectionSummary(3, 70); got != "3/70 detections" {
		t.Errorf("got %q", got)
	}
	if got := DetectionSummary(0, 70); got != "0/70 detections" {
		t.Errorf("got %q", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 50); got != "short" {
		t.Errorf("got %q", got)
	}

	long := "abcdefghij"
	if got := Truncate(long, 8); got != "abcde..." {
		t.Errorf("got %q", got)
	}
	if got := Truncate(long, 3); got != "abc" {
		t.Errorf("limit at ellipsis width: got %q", got)
	}
	if got := Truncate(long, 0); got != long {
		t.Errorf("non-positive limit must not truncate: got %q", got)
	}

	// Runes, not bytes.
	if got := Truncate("日本語のファイル名です", 6); got != "日本語..." {
		t.Errorf("got %q", got)
	}
}
