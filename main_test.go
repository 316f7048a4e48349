package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oss-activity/looker"
)

func sampleExport() looker.UnifiedExport {
	return looker.UnifiedExport{
		Metadata:       looker.Metadata{PeriodDays: 30, DataSources: looker.DataSources, TotalRecords: 1},
		GitHubActivity: []looker.ActivityRecord{{Source: looker.SourceGitHubActivity, Repository: "app", Type: "issue", Title: "crash"}},
		DevinUsage:     []looker.UsageRecord{},
		DevinPRs:       []looker.DevinPRRecord{},
		PRStatistics:   []looker.PRStatisticsRecord{},
	}
}

func TestWriteExport_UnifiedOnly(t *testing.T) {
	dir := t.TempDir()

	paths, err := writeExport(dir, looker.UnifiedFile, "unified", sampleExport())
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "looker_studio_data.json")}, paths)
}

func TestWriteExport_FlatAlsoWritesUnified(t *testing.T) {
	for format, flat := range map[string]string{
		"flat": "looker_studio_data_flat.json",
		"csv":  "looker_studio_data_flat.csv",
	} {
		dir := t.TempDir()

		paths, err := writeExport(dir, looker.UnifiedFile, format, sampleExport())
		require.NoError(t, err, format)
		assert.Equal(t, []string{
			filepath.Join(dir, "looker_studio_data.json"),
			filepath.Join(dir, flat),
		}, paths, format)

		for _, p := range paths {
			_, err := os.Stat(p)
			assert.NoError(t, err, p)
		}
	}
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"app", "acme/lib"}, splitList(" app, ,acme/lib,"))
	assert.Nil(t, splitList(""))
}
