package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"vtscan/internal/scanner"
	"vtscan/internal/vt"
)

// Renderer writes human- or machine-readable scan results to a stream.
type Renderer struct {
	out io.Writer
}

// NewRenderer creates a Renderer. A nil out writes to stdout.
func NewRenderer(out io.Writer) *Renderer {
	if out == nil {
		out = os.Stdout
	}
	return &Renderer{out: out}
}

type row struct {
	label string
	value string
}

// Result renders one scan result as a bordered panel. Failed results
// render as a single error line instead.
func (r *Renderer) Result(res *scanner.Result) {
	if res.Err != nil || res.Summary == nil {
		r.ScanError(res.Path, res.Err)
		return
	}

	summary := res.Summary
	emoji := SeverityEmoji(summary.Severity)
	style := severityStyle(summary.Severity)

	rows := []row{
		{"File", filepath.Base(res.Path)},
		{"Size", FileSize(summary.File.Size)},
		{"Type", fileType(summary.File.TypeDescription)},
		{"SHA-256", shortDigest(summary.File.SHA256)},
		{"Result", style.Render(fmt.Sprintf("%s %s", emoji, summary.Severity))},
		{"Detections", style.Render(DetectionSummary(summary.Detections, summary.TotalScans))},
	}
	if summary.Suspicious > 0 {
		rows = append(rows, row{"Suspicious", styleWarn.Render(strconv.Itoa(summary.Suspicious))})
	}
	rows = append(rows,
		row{"Last Analyzed", Timestamp(summary.LastAnalysis)},
		row{"Report", styleLink.Render(summary.Permalink)},
	)
	if res.Uploaded {
		rows = append(rows, row{"Status", styleWarn.Render("Newly uploaded and analyzed")})
	} else {
		rows = append(rows, row{"Status", styleOK.Render("Retrieved from VT database")})
	}

	title := styleBold.Render(fmt.Sprintf("%s Scan Result", emoji))
	body := title + "\n\n" + renderRows(rows)
	fmt.Fprintln(r.out, panelStyle.BorderForeground(severityColor(summary.Severity)).Render(body))
}

// Summary renders the batch tally panel. Failed results are not counted.
func (r *Renderer) Summary(results []*scanner.Result) {
	var clean, suspicious, malicious int
	for _, res := range results {
		if res.Err != nil || res.Summary == nil {
			continue
		}
		switch res.Summary.Severity {
		case vt.SeverityClean:
			clean++
		case vt.SeveritySuspicious:
			suspicious++
		case vt.SeverityMalicious:
			malicious++
		}
	}

	line := fmt.Sprintf("%s  %s  %s",
		styleOK.Render(fmt.Sprintf("✅ Clean: %d", clean)),
		styleWarn.Render(fmt.Sprintf("⚠️  Suspicious: %d", suspicious)),
		styleDanger.Render(fmt.Sprintf("🚨 Malicious: %d", malicious)))
	body := styleBold.Render("Summary") + "\n\n" + line
	fmt.Fprintln(r.out, panelStyle.BorderForeground(lipgloss.Color("12")).Render(body))
}

// ScanError reports one file's failure without stopping the batch.
func (r *Renderer) ScanError(path string, err error) {
	fmt.Fprintln(r.out, styleDanger.Render(fmt.Sprintf("❌ Error scanning %s: %v", filepath.Base(path), err)))
}

// resultView adds the error as data so JSON consumers see per-file
// failures alongside successes.
type resultView struct {
	*scanner.Result
	Error string `json:"error,omitempty"`
}

func newResultView(res *scanner.Result) resultView {
	view := resultView{Result: res}
	if res.Err != nil {
		view.Error = res.Err.Error()
	}
	return view
}

// JSON writes the batch as one indented JSON array.
func (r *Renderer) JSON(results []*scanner.Result) error {
	views := make([]resultView, 0, len(results))
	for _, res := range results {
		views = append(views, newResultView(res))
	}
	return r.encode(views)
}

// JSONResult writes a single result as one indented JSON object.
func (r *Renderer) JSONResult(res *scanner.Result) error {
	return r.encode(newResultView(res))
}

func (r *Renderer) encode(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderRows(rows []row) string {
	width := 0
	for _, rw := range rows {
		if len(rw.label) > width {
			width = len(rw.label)
		}
	}

	var b strings.Builder
	for i, rw := range rows {
		if i > 0 {
			b.WriteByte('\n')
		}
		// Pad before styling so ANSI codes do not skew the column.
		b.WriteString(styleField.Render(fmt.Sprintf("%-*s", width, rw.label)))
		b.WriteString("  ")
		b.WriteString(rw.value)
	}
	return b.String()
}

func fileType(description string) string {
	if description == "" {
		return "Unknown"
	}
	return description
}

func shortDigest(sha string) string {
	if len(sha) > 32 {
		return sha[:32] + "..."
	}
	return sha
}
