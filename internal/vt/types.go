// Package vt is a VirusTotal API v3 client covering what a file scan needs:
// hash lookups, uploads and analysis polling, plus verdict parsing.
package vt

import "fmt"

// Severity classifies a verdict by its worst detection bucket.
type Severity string

const (
	SeverityClean      Severity = "CLEAN"
	SeveritySuspicious Severity = "SUSPICIOUS"
	SeverityMalicious  Severity = "MALICIOUS"
)

// Stats holds the per-bucket engine counts of an analysis.
type Stats struct {
	Malicious        int `json:"malicious"`
	Suspicious       int `json:"suspicious"`
	Undetected       int `json:"undetected"`
	Harmless         int `json:"harmless"`
	Timeout          int `json:"timeout"`
	ConfirmedTimeout int `json:"confirmed-timeout"`
	Failure          int `json:"failure"`
	TypeUnsupported  int `json:"type-unsupported"`
}

// TotalScans counts the engines that returned a verdict. Engines that timed
// out, failed or do not support the file type are excluded.
func (s Stats) TotalScans() int {
	return s.Malicious + s.Suspicious + s.Undetected + s.Harmless
}

// Classify maps engine counts to a severity. Any malicious engine wins, then
// suspicious, otherwise the file counts as clean.
func (s Stats) Classify() Severity {
	switch {
	case s.Malicious > 0:
		return SeverityMalicious
	case s.Suspicious > 0:
		return SeveritySuspicious
	default:
		return SeverityClean
	}
}

// FileInfo identifies the analyzed file.
type FileInfo struct {
	SHA256          string `json:"sha256"`
	MD5             string `json:"md5,omitempty"`
	SHA1            string `json:"sha1,omitempty"`
	Size            int64  `json:"size,omitempty"`
	TypeDescription string `json:"type_description,omitempty"`
}

// Summary is the normalized verdict extracted from either response shape the
// API returns for a scan.
type Summary struct {
	Severity     Severity `json:"threat_level"`
	Detections   int      `json:"detections"`
	Suspicious   int      `json:"suspicious"`
	TotalScans   int      `json:"total_scans"`
	File         FileInfo `json:"file_info"`
	LastAnalysis int64    `json:"last_analysis_date,omitempty"` // unix seconds, 0 when unknown
	Permalink    string   `json:"permalink,omitempty"`
	Stats        Stats    `json:"raw_stats"`
}

// PermalinkFor returns the human-facing report URL for a SHA-256 digest.
func PermalinkFor(sha256 string) string {
	return fmt.Sprintf("https://www.virustotal.com/gui/file/%s", sha256)
}
