package looker

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oss-activity/metrics"
)

func TestFlatten_MapsEverySource(t *testing.T) {
	u := UnifiedExport{
		Metadata: Metadata{TotalRecords: 4},
		GitHubActivity: []ActivityRecord{{
			Source: SourceGitHubActivity, Repository: "app", Type: "issue", Title: "bug",
			State: "OPEN", User: "alice", Labels: []string{"a", "b"}, CommentsCount: 3,
		}},
		DevinUsage: []UsageRecord{{Source: SourceDevinUsage, SessionName: "s-1", AcusUsed: 1.5, Type: "usage"}},
		DevinPRs:   []DevinPRRecord{{Source: SourceDevinPR, PRNumber: 42, State: "closed", Type: "devin_pr"}},
		PRStatistics: []PRStatisticsRecord{{
			Source: SourcePRStatistics, Type: "summary", Repository: "team-mirai/policy", PeriodDays: 30,
			PRStatistics: metrics.PRStatistics{TotalPRs: 4, MergedPRs: 1, MergeRate: 0.25},
			GeneratedAt:  "2024-02-01T09:00:00Z",
		}},
	}

	rows := Flatten(u)
	require.Len(t, rows, 4)

	assert.Equal(t, FlatRecord{
		SourceType: SourceGitHubActivity, Repository: "app", ItemType: "issue", Title: "bug",
		State: "OPEN", User: "alice", Labels: "a|b", CommentsCount: 3, NumericValue: 3,
	}, rows[0])
	assert.Equal(t, "devin", rows[1].User)
	assert.Equal(t, 1.5, rows[1].NumericValue)
	assert.Equal(t, "PR #42", rows[2].Title)
	assert.Equal(t, 42.0, rows[2].NumericValue)
	assert.Equal(t, "PR Statistics (30 days)", rows[3].Title)
	assert.Equal(t, "system", rows[3].User)
	assert.Equal(t, 4, rows[3].CommentsCount)
	assert.Equal(t, 0.25, rows[3].NumericValue)
}

func TestFlatRecord_HasElevenColumns(t *testing.T) {
	data, err := json.Marshal(FlatRecord{})
	require.NoError(t, err)
	var keys map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &keys))
	assert.Len(t, keys, 11)
	for _, c := range FlatColumns {
		assert.Contains(t, keys, c)
	}
	assert.Len(t, FlatRecord{}.Row(), len(FlatColumns))
}
