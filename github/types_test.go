package github

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemUnmarshal_ClassifiesByPullRequestKeys(t *testing.T) {
	data := []byte(`[
		{"number": 1, "title": "bug", "state": "OPEN", "author": {"login": "alice"}, "labels": [{"name": "bug"}]},
		{"number": 2, "title": "fix", "state": "MERGED", "mergedAt": "2024-01-03T00:00:00Z"},
		{"number": 3, "title": "wip", "state": "OPEN", "mergeable": "UNKNOWN"},
		{"number": 4, "title": "diff", "state": "CLOSED", "additions": 0}
	]`)

	var items []Item
	require.NoError(t, json.Unmarshal(data, &items))
	require.Len(t, items, 4)

	assert.Equal(t, KindIssue, items[0].Kind)
	assert.Equal(t, "alice", items[0].AuthorLogin())
	assert.Equal(t, []string{"bug"}, items[0].LabelNames())
	for _, it := range items[1:] {
		assert.True(t, it.IsPullRequest(), "item #%d", it.Number)
	}
	assert.Equal(t, "2024-01-03T00:00:00Z", items[1].MergedAt)
}

func TestItemMarshal_PullRequestKeysOnlyOnPullRequests(t *testing.T) {
	issue, err := json.Marshal(Item{Kind: KindIssue, Number: 1, Title: "t"})
	require.NoError(t, err)
	var keys map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(issue, &keys))
	assert.NotContains(t, keys, "mergedAt")
	assert.NotContains(t, keys, "mergeable")
	assert.NotContains(t, keys, "additions")
	assert.JSONEq(t, `[]`, string(keys["labels"]))
	assert.Equal(t, KindIssue, Classify(keys))

	pr, err := json.Marshal(Item{Kind: KindPullRequest, Number: 2, Mergeable: "MERGEABLE", Additions: 3})
	require.NoError(t, err)
	keys = nil
	require.NoError(t, json.Unmarshal(pr, &keys))
	assert.Contains(t, keys, "mergedAt")
	assert.Equal(t, KindPullRequest, Classify(keys))
}

func TestItem_KindSurvivesRoundTrip(t *testing.T) {
	in := []Item{
		{Kind: KindIssue, Number: 1, Author: &Actor{Login: "a"}},
		{Kind: KindPullRequest, Number: 2, State: "merged", MergedAt: "2024-01-02T00:00:00Z", Deletions: 4},
	}
	data, err := json.Marshal(in)
	require.NoError(t, err)

	var out []Item
	require.NoError(t, json.Unmarshal(data, &out))
	require.Len(t, out, 2)
	assert.Equal(t, KindIssue, out[0].Kind)
	assert.Equal(t, KindPullRequest, out[1].Kind)
	assert.Equal(t, 4, out[1].Deletions)
}

func TestItem_NilAuthor(t *testing.T) {
	var it Item
	require.NoError(t, json.Unmarshal([]byte(`{"number": 5, "author": null}`), &it))
	assert.Equal(t, "", it.AuthorLogin())
	assert.Empty(t, it.LabelNames())
}

func TestRepoHelpers(t *testing.T) {
	owner, name := SplitRepo("team-mirai/policy")
	assert.Equal(t, "team-mirai", owner)
	assert.Equal(t, "policy", name)

	owner, name = SplitRepo("policy")
	assert.Equal(t, "", owner)
	assert.Equal(t, "policy", name)
	assert.Equal(t, "policy", ShortName("team-mirai/policy"))

	repo, ok := RepoFromURL("https://github.com/team-mirai/policy/pull/12")
	assert.True(t, ok)
	assert.Equal(t, "team-mirai/policy", repo)

	_, ok = RepoFromURL("https://gitlab.com/a/b")
	assert.False(t, ok)
	_, ok = RepoFromURL("https://github.com/a")
	assert.False(t, ok)
}
