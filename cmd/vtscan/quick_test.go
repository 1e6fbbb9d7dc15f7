package main

import (
	"testing"

	"vtscan/internal/vt"
)

func TestQuickVerdict(t *testing.T) {
	tests := []struct {
		name      string
		severity  vt.Severity
		uploaded  bool
		wantTitle string
		wantBody  string
	}{
		{
			name:      "malicious from database",
			severity:  vt.SeverityMalicious,
			wantTitle: "🚨 evil.exe",
			wantBody:  "⚠️ THREAT DETECTED: 43/70 (From VT database)",
		},
		{
			name:      "suspicious newly analyzed",
			severity:  vt.SeveritySuspicious,
			uploaded:  true,
			wantTitle: "⚠️ evil.exe",
			wantBody:  "⚠️ Suspicious: 43/70 (Newly analyzed)",
		},
		{
			name:      "clean from database",
			severity:  vt.SeverityClean,
			wantTitle: "✅ evil.exe",
			wantBody:  "✅ Clean: 43/70 (From VT database)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summary := &vt.Summary{
				Severity:   tt.severity,
				Detections: 43,
				TotalScans: 70,
			}
			title, body := quickVerdict("evil.exe", summary, tt.uploaded)
			if title != tt.wantTitle {
				t.Errorf("title = %q, want %q", title, tt.wantTitle)
			}
			if body != tt.wantBody {
				t.Errorf("body = %q, want %q", body, tt.wantBody)
			}
		})
	}
}
