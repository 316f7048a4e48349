package snapshot

import (
	"os"
	"path/filepath"
)

// Snapshot sources under raw/ and markdown/.
const (
	SourceGitHub  = "github"
	SourceCommits = "commits"
)

// File names shared by every writer and reader of a window directory.
const (
	AggregatedCommitsFile = "aggregated_commits.json"
	CommitSummaryFile     = "summary.json"
	CombinedReportFile    = "github_report-combined.md"
	AIReportsDir          = "ai_reports"
)

// RepoFile is the raw activity snapshot name for a repository.
func RepoFile(repo string) string { return repo + ".json" }

// RepoSummaryFile is the run summary name for a repository.
func RepoSummaryFile(repo string) string { return repo + "_summary.json" }

// ReportFile is the Markdown report name for a repository.
func ReportFile(repo string) string { return "github_report-" + repo + ".md" }

// AIReportFile is the narrative report name for a repository.
func AIReportFile(repo string) string { return "ai_report-" + repo + ".md" }

// Layout resolves paths for one window under an output root.
type Layout struct {
	Root   string
	Window Window
}

// NewLayout returns the layout of window under root.
func NewLayout(root string, window Window) Layout {
	return Layout{Root: root, Window: window}
}

// Dir is <root>/<start>_to_<end>.
func (l Layout) Dir() string {
	return filepath.Join(l.Root, l.Window.Label())
}

// RawDir is <root>/<label>/raw/<source>.
func (l Layout) RawDir(source string) string {
	return filepath.Join(l.Dir(), "raw", source)
}

// MarkdownDir is <root>/<label>/markdown/<source>.
func (l Layout) MarkdownDir(source string) string {
	return filepath.Join(l.Dir(), "markdown", source)
}

// AIReportDir is <root>/<label>/ai_reports.
func (l Layout) AIReportDir() string {
	return filepath.Join(l.Dir(), AIReportsDir)
}

// EnsureRaw creates the raw directory for source and returns it.
func (l Layout) EnsureRaw(source string) (string, error) {
	return ensureDir(l.RawDir(source))
}

// EnsureMarkdown creates the markdown directory for source and returns it.
func (l Layout) EnsureMarkdown(source string) (string, error) {
	return ensureDir(l.MarkdownDir(source))
}

func ensureDir(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}
