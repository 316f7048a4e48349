package looker

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"oss-activity/snapshot"
)

var fixedNow = time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func newTestExporter(reg *snapshot.Registry, usage, prDir string) *Exporter {
	e := NewExporter(reg, usage, prDir, zap.NewNop())
	e.Now = func() time.Time { return fixedNow }
	return e
}

func TestUnify_EmptyInputs(t *testing.T) {
	dir := t.TempDir()
	usage := filepath.Join(dir, "usage.json")
	writeFile(t, usage, `{"data": []}`)

	e := newTestExporter(&snapshot.Registry{}, usage, filepath.Join(dir, "absent"))
	u, err := e.Unify(context.Background(), 30)
	require.NoError(t, err)

	assert.Equal(t, 0, u.Metadata.TotalRecords)
	assert.Equal(t, 30, u.Metadata.PeriodDays)
	assert.Equal(t, DataSources, u.Metadata.DataSources)
	assert.Empty(t, u.GitHubActivity)
	assert.Empty(t, u.DevinUsage)
	assert.Empty(t, u.DevinPRs)
	assert.Empty(t, u.PRStatistics)
	assert.Empty(t, Flatten(u))
}

func TestUnify_AllSources(t *testing.T) {
	dir := t.TempDir()

	snap := filepath.Join(dir, "data", "2024-01-25_to_2024-02-01", "raw", "github", "app.json")
	writeFile(t, snap, `[
		{"number": 1, "title": "bug", "state": "OPEN", "createdAt": "2024-01-26T00:00:00Z",
		 "author": {"login": "alice"}, "labels": [{"name": "bug"}, {"name": "ui"}],
		 "comments": [{"author": {"login": "bob"}, "body": "x"}]},
		{"number": 2, "title": "fix", "state": "MERGED", "mergeable": "UNKNOWN", "author": {"login": "bob"}}
	]`)
	reg := &snapshot.Registry{}
	reg.Add(snapshot.Entry{Source: snapshot.SourceGitHub, Name: "app", Path: snap})

	usage := filepath.Join(dir, "usage.json")
	writeFile(t, usage, `[{"data": [{"session": "s-1", "created_at": "2024-01-30", "acus_used": 2.5}]}]`)

	prDir := filepath.Join(dir, "prs")
	writeFile(t, filepath.Join(prDir, "10.json"), `{"basic_info": {"number": 10, "title": "agent", "state": "closed",
		"created_at": "2024-01-28T00:00:00Z", "merged_at": "2024-01-29T00:00:00Z", "user": {"login": "Devin-AI-Integration[bot]"}}}`)
	writeFile(t, filepath.Join(prDir, "11.json"), `[{"basic_info": {"number": 11, "title": "human", "state": "open",
		"created_at": "2024-01-30T00:00:00Z", "user": {"login": "carol"}}}]`)
	writeFile(t, filepath.Join(prDir, "12.json"), `{"basic_info": {"number": 12, "state": "closed",
		"created_at": "2023-06-01T00:00:00Z", "user": {"login": "carol"}}}`)
	writeFile(t, filepath.Join(prDir, "broken.json"), `{"basic_info": `)

	e := newTestExporter(reg, usage, prDir)
	u, err := e.Unify(context.Background(), 30)
	require.NoError(t, err)

	require.Len(t, u.GitHubActivity, 2)
	issue := u.GitHubActivity[0]
	assert.Equal(t, "app", issue.Repository)
	assert.Equal(t, "issue", issue.Type)
	assert.Equal(t, "alice", issue.User)
	assert.Equal(t, []string{"bug", "ui"}, issue.Labels)
	assert.Equal(t, 1, issue.CommentsCount)
	assert.Equal(t, "pull_request", u.GitHubActivity[1].Type)

	require.Len(t, u.DevinUsage, 1)
	assert.Equal(t, 2.5, u.DevinUsage[0].AcusUsed)

	require.Len(t, u.DevinPRs, 1)
	assert.Equal(t, 10, u.DevinPRs[0].PRNumber)
	assert.Equal(t, "2024-01-28T00:00:00Z", u.DevinPRs[0].CreatedAt)

	require.Len(t, u.PRStatistics, 1)
	stats := u.PRStatistics[0]
	assert.Equal(t, DefaultStatsRepository, stats.Repository)
	assert.Equal(t, 2, stats.TotalPRs)
	assert.Equal(t, 1, stats.MergedPRs)
	assert.Equal(t, 1, stats.OpenPRs)
	assert.InDelta(t, 0.5, stats.MergeRate, 1e-9)

	assert.Equal(t, 5, u.Metadata.TotalRecords)
	assert.Equal(t, Summary{GitHubItems: 2, DevinSessions: 1, DevinPRs: 1, PRStatsRecords: 1}, u.Summary)

	again, err := e.Unify(context.Background(), 30)
	require.NoError(t, err)
	assert.Equal(t, u.Metadata.TotalRecords, again.Metadata.TotalRecords)
}

func TestUnify_EmptyCorpusDirectoryYieldsZeroStats(t *testing.T) {
	prDir := t.TempDir()
	e := newTestExporter(nil, "", prDir)

	u, err := e.Unify(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, u.PRStatistics, 1)
	s := u.PRStatistics[0]
	assert.Zero(t, s.TotalPRs)
	assert.Zero(t, s.MergedPRs)
	assert.Zero(t, s.OpenPRs)
	assert.Zero(t, s.MergeRate)
}

func TestIsDevinLogin(t *testing.T) {
	assert.True(t, IsDevinLogin("devin-ai-integration[bot]"))
	assert.True(t, IsDevinLogin("DEVIN"))
	assert.True(t, IsDevinLogin("my-devin-fork"))
	assert.False(t, IsDevinLogin("alice"))
	assert.False(t, IsDevinLogin(""))
}

func TestWriteUnifiedAndFlat(t *testing.T) {
	dir := t.TempDir()
	u := UnifiedExport{Metadata: Metadata{DataSources: DataSources}}

	require.NoError(t, WriteUnified(filepath.Join(dir, UnifiedFile), u))
	var back UnifiedExport
	require.NoError(t, snapshot.ReadJSON(filepath.Join(dir, UnifiedFile), &back))
	assert.Equal(t, DataSources, back.Metadata.DataSources)

	require.NoError(t, WriteFlat(filepath.Join(dir, FlatFile), nil))
	data, err := os.ReadFile(filepath.Join(dir, FlatFile))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}
