package snapshot

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testWindow() Window {
	return NewWindow(time.Date(2025, 5, 8, 12, 0, 0, 0, time.UTC), 7)
}

func TestLayout_Paths(t *testing.T) {
	l := NewLayout("data", testWindow())

	assert.Equal(t, filepath.Join("data", "2025-05-01_to_2025-05-08"), l.Dir())
	assert.Equal(t, filepath.Join("data", "2025-05-01_to_2025-05-08", "raw", "github"), l.RawDir(SourceGitHub))
	assert.Equal(t, filepath.Join("data", "2025-05-01_to_2025-05-08", "raw", "commits"), l.RawDir(SourceCommits))
	assert.Equal(t, filepath.Join("data", "2025-05-01_to_2025-05-08", "markdown", "github"), l.MarkdownDir(SourceGitHub))
	assert.Equal(t, filepath.Join("data", "2025-05-01_to_2025-05-08", "ai_reports"), l.AIReportDir())
}

func TestLayout_FileNames(t *testing.T) {
	assert.Equal(t, "action-board.json", RepoFile("action-board"))
	assert.Equal(t, "action-board_summary.json", RepoSummaryFile("action-board"))
	assert.Equal(t, "github_report-action-board.md", ReportFile("action-board"))
	assert.Equal(t, "ai_report-action-board.md", AIReportFile("action-board"))
}

func TestLayout_EnsureIsIdempotent(t *testing.T) {
	l := NewLayout(t.TempDir(), testWindow())

	dir, err := l.EnsureRaw(SourceGitHub)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "keep.json"), []byte("[]"), 0644))

	again, err := l.EnsureRaw(SourceGitHub)
	require.NoError(t, err)
	assert.Equal(t, dir, again)
	assert.FileExists(t, filepath.Join(dir, "keep.json"))

	md, err := l.EnsureMarkdown(SourceGitHub)
	require.NoError(t, err)
	assert.DirExists(t, md)
}
