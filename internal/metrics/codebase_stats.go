package metrics

import (
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/standardbeagle/braces/internal/core"
)

// CheckStats summarizes a batch check by language and diagnostic kind
type CheckStats struct {
	// File-level metrics
	TotalFiles   int64
	CheckedFiles int64
	FailedFiles  int64
	SkippedFiles int64
	CleanFiles   int64

	TotalDiagnostics     int64
	KindDistribution     map[core.DiagnosticKind]int64
	LanguageDistribution map[string]LanguageStats

	// Largest offender
	WorstFile        string
	WorstFileProblem int64

	Duration time.Duration
}

// LanguageStats represents metrics for a specific language
type LanguageStats struct {
	FileCount      int64
	Diagnostics    int64
	CleanFiles     int64
	FileExtensions map[string]int64 // extension -> count
}

func NewCheckStats() *CheckStats {
	return &CheckStats{
		KindDistribution:     make(map[core.DiagnosticKind]int64),
		LanguageDistribution: make(map[string]LanguageStats),
	}
}

// CalculateFromReport computes all metrics from a tree report. Reports
// filtered down to failing files still give correct totals for the
// failing part; counts of checked and skipped files come from the report.
func (cs *CheckStats) CalculateFromReport(report *core.TreeReport) {
	cs.CheckedFiles = int64(report.Checked)
	cs.FailedFiles = int64(report.Failed)
	cs.SkippedFiles = int64(report.Skipped)
	cs.TotalFiles = cs.CheckedFiles + cs.FailedFiles + cs.SkippedFiles
	cs.TotalDiagnostics = int64(report.Diagnostics)
	cs.CleanFiles = cs.CheckedFiles
	cs.Duration = report.Duration

	for _, f := range report.Files {
		lang := f.Language
		if lang == "" {
			lang = "unknown"
		}
		stats, ok := cs.LanguageDistribution[lang]
		if !ok {
			stats = LanguageStats{FileExtensions: make(map[string]int64)}
		}
		stats.FileCount++
		if ext := strings.ToLower(path.Ext(f.Path)); ext != "" {
			stats.FileExtensions[ext]++
		}

		n := int64(len(f.Diagnostics))
		stats.Diagnostics += n
		if f.OK() {
			stats.CleanFiles++
		}
		if f.Error == "" && n > 0 {
			cs.CleanFiles--
		}
		for _, d := range f.Diagnostics {
			cs.KindDistribution[d.Kind]++
		}
		if n > cs.WorstFileProblem || (n == cs.WorstFileProblem && n > 0 && f.Path < cs.WorstFile) {
			cs.WorstFile, cs.WorstFileProblem = f.Path, n
		}
		cs.LanguageDistribution[lang] = stats
	}
}

// FormatAsJSON returns stats as a JSON-friendly map
func (cs *CheckStats) FormatAsJSON() map[string]interface{} {
	languages := make(map[string]interface{}, len(cs.LanguageDistribution))
	for name, stats := range cs.LanguageDistribution {
		languages[name] = map[string]interface{}{
			"files":       stats.FileCount,
			"clean":       stats.CleanFiles,
			"diagnostics": stats.Diagnostics,
			"extensions":  stats.FileExtensions,
		}
	}
	kinds := make(map[string]int64, len(cs.KindDistribution))
	for k, n := range cs.KindDistribution {
		kinds[string(k)] = n
	}

	return map[string]interface{}{
		"summary": map[string]interface{}{
			"total_files": cs.TotalFiles,
			"checked":     cs.CheckedFiles,
			"clean":       cs.CleanFiles,
			"failed":      cs.FailedFiles,
			"skipped":     cs.SkippedFiles,
			"diagnostics": cs.TotalDiagnostics,
			"duration_ms": cs.Duration.Milliseconds(),
		},
		"kinds":     kinds,
		"languages": languages,
		"worst_file": map[string]interface{}{
			"path":        cs.WorstFile,
			"diagnostics": cs.WorstFileProblem,
		},
	}
}

// FormatAsText returns stats formatted as human-readable text
func (cs *CheckStats) FormatAsText() string {
	var sb strings.Builder

	sb.WriteString("SUMMARY\n")
	sb.WriteString("-----------------------------------------------\n")
	sb.WriteString(fmt.Sprintf("  Files:        %d (%d checked, %d failed, %d skipped)\n",
		cs.TotalFiles, cs.CheckedFiles, cs.FailedFiles, cs.SkippedFiles))
	sb.WriteString(fmt.Sprintf("  Clean:        %d\n", cs.CleanFiles))
	sb.WriteString(fmt.Sprintf("  Diagnostics:  %d\n", cs.TotalDiagnostics))
	if cs.WorstFileProblem > 0 {
		sb.WriteString(fmt.Sprintf("  Worst file:   %s (%d)\n", cs.WorstFile, cs.WorstFileProblem))
	}

	if len(cs.KindDistribution) > 0 {
		sb.WriteString("\nDIAGNOSTICS BY KIND\n")
		sb.WriteString("-----------------------------------------------\n")
		for _, k := range []core.DiagnosticKind{core.KindUnclosed, core.KindUnexpected, core.KindMismatch} {
			if n := cs.KindDistribution[k]; n > 0 {
				sb.WriteString(fmt.Sprintf("  %-12s %5d\n", string(k)+":", n))
			}
		}
	}

	if len(cs.LanguageDistribution) > 0 {
		sb.WriteString("\nLANGUAGES\n")
		sb.WriteString("-----------------------------------------------\n")

		type langStats struct {
			name  string
			stats LanguageStats
		}
		var langs []langStats
		for name, stats := range cs.LanguageDistribution {
			langs = append(langs, langStats{name, stats})
		}
		sort.Slice(langs, func(i, j int) bool {
			if langs[i].stats.FileCount != langs[j].stats.FileCount {
				return langs[i].stats.FileCount > langs[j].stats.FileCount
			}
			return langs[i].name < langs[j].name
		})
		for _, lang := range langs {
			sb.WriteString(fmt.Sprintf("  %-12s %5d files  %5d problems\n",
				lang.name+":", lang.stats.FileCount, lang.stats.Diagnostics))
		}
	}

	return sb.String()
}
