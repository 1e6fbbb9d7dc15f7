package vt

import (
	"encoding/json"
	"fmt"
)

const (
	dataTypeFile     = "file"
	dataTypeAnalysis = "analysis"
)

// ParseSummary normalizes either response shape the API hands back for a
// scan: a file object (hash lookups) or an analysis object (fresh uploads).
// The data.type discriminator picks the decoder; an unknown type is an
// error, never a guess.
func ParseSummary(payload []byte) (*Summary, error) {
	var env struct {
		Data json.RawMessage `json:"data"`
		Meta struct {
			FileInfo *metaFileInfo `json:"file_info"`
		} `json:"meta"`
	}
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, &ParseError{Reason: err.Error()}
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil, &ParseError{Reason: "missing data object"}
	}

	var header struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(env.Data, &header); err != nil {
		return nil, &ParseError{Reason: "data object: " + err.Error()}
	}

	switch header.Type {
	case dataTypeFile:
		return summaryFromFile(env.Data)
	case dataTypeAnalysis:
		return summaryFromAnalysis(env.Data, env.Meta.FileInfo)
	default:
		return nil, &ParseError{Reason: fmt.Sprintf("unsupported data type %q", header.Type)}
	}
}

// metaFileInfo is the file identity an analysis response carries in its meta
// section. Analysis attributes only describe the analysis itself.
type metaFileInfo struct {
	SHA256 string `json:"sha256"`
	MD5    string `json:"md5"`
	SHA1   string `json:"sha1"`
	Size   int64  `json:"size"`
}

func summaryFromFile(data json.RawMessage) (*Summary, error) {
	var file struct {
		ID         string `json:"id"`
		Attributes struct {
			LastAnalysisStats *Stats `json:"last_analysis_stats"`
			LastAnalysisDate  int64  `json:"last_analysis_date"`
			SHA256            string `json:"sha256"`
			MD5               string `json:"md5"`
			SHA1              string `json:"sha1"`
			Size              int64  `json:"size"`
			TypeDescription   string `json:"type_description"`
		} `json:"attributes"`
	}
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, &ParseError{Reason: "file object: " + err.Error()}
	}
	if file.Attributes.LastAnalysisStats == nil {
		return nil, &ParseError{Reason: "file object missing last_analysis_stats"}
	}

	// The id of a file object is its SHA-256.
	sha := file.Attributes.SHA256
	if sha == "" {
		sha = file.ID
	}

	return newSummary(*file.Attributes.LastAnalysisStats, FileInfo{
		SHA256:          sha,
		MD5:             file.Attributes.MD5,
		SHA1:            file.Attributes.SHA1,
		Size:            file.Attributes.Size,
		TypeDescription: file.Attributes.TypeDescription,
	}, file.Attributes.LastAnalysisDate), nil
}

func summaryFromAnalysis(data json.RawMessage, fileInfo *metaFileInfo) (*Summary, error) {
	var analysis struct {
		Attributes struct {
			Status string `json:"status"`
			Stats  *Stats `json:"stats"`
			Date   int64  `json:"date"`
		} `json:"attributes"`
	}
	if err := json.Unmarshal(data, &analysis); err != nil {
		return nil, &ParseError{Reason: "analysis object: " + err.Error()}
	}
	if analysis.Attributes.Stats == nil {
		return nil, &ParseError{Reason: "analysis object missing stats"}
	}

	var info FileInfo
	if fileInfo != nil {
		info = FileInfo{
			SHA256: fileInfo.SHA256,
			MD5:    fileInfo.MD5,
			SHA1:   fileInfo.SHA1,
			Size:   fileInfo.Size,
		}
	}

	return newSummary(*analysis.Attributes.Stats, info, analysis.Attributes.Date), nil
}

func newSummary(stats Stats, info FileInfo, analyzedAt int64) *Summary {
	summary := &Summary{
		Severity:     stats.Classify(),
		Detections:   stats.Malicious,
		Suspicious:   stats.Suspicious,
		TotalScans:   stats.TotalScans(),
		File:         info,
		LastAnalysis: analyzedAt,
		Stats:        stats,
	}
	if info.SHA256 != "" {
		summary.Permalink = PermalinkFor(info.SHA256)
	}
	return summary
}
