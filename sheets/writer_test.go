package sheets

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"oss-activity/commits"
)

type fakeWorksheet struct {
	rows    [][]string
	calls   []string
	failGet bool
}

func (f *fakeWorksheet) Values(ctx context.Context) ([][]string, error) {
	f.calls = append(f.calls, "values")
	if f.failGet {
		return nil, errors.New("unavailable")
	}
	return f.rows, nil
}

func (f *fakeWorksheet) Clear(ctx context.Context) error {
	f.calls = append(f.calls, "clear")
	f.rows = nil
	return nil
}

func (f *fakeWorksheet) Append(ctx context.Context, rows [][]string) error {
	f.calls = append(f.calls, "append")
	f.rows = append(f.rows, rows...)
	return nil
}

var aggs = []commits.Aggregate{
	{Repository: "app", Author: "alice", Date: "2024-01-05", Count: 2},
	{Repository: "web", Author: "bob", Date: "2024-01-06", Count: 1},
}

func TestWriteCommits_EmptyWorksheetGetsHeader(t *testing.T) {
	ws := &fakeWorksheet{}
	require.NoError(t, NewWriter(ws, zap.NewNop()).WriteCommits(context.Background(), aggs, false))

	assert.Equal(t, [][]string{
		CommitHeader,
		{"app", "alice", "2024-01-05", "2"},
		{"web", "bob", "2024-01-06", "1"},
	}, ws.rows)
}

func TestWriteCommits_HeaderMismatchClearsWorksheet(t *testing.T) {
	ws := &fakeWorksheet{rows: [][]string{{"repo", "author"}, {"stale", "row"}}}
	require.NoError(t, NewWriter(ws, nil).WriteCommits(context.Background(), aggs[:1], false))

	assert.Equal(t, []string{"values", "clear", "append", "append"}, ws.calls)
	assert.Equal(t, [][]string{CommitHeader, {"app", "alice", "2024-01-05", "2"}}, ws.rows)
}

func TestWriteCommits_MatchingHeaderKeepsRows(t *testing.T) {
	ws := &fakeWorksheet{rows: [][]string{CommitHeader, {"old", "row", "2024-01-01", "1"}}}
	require.NoError(t, NewWriter(ws, nil).WriteCommits(context.Background(), aggs[1:], false))

	assert.Equal(t, []string{"values", "append"}, ws.calls)
	assert.Len(t, ws.rows, 3)
	assert.Equal(t, []string{"old", "row", "2024-01-01", "1"}, ws.rows[1])
}

func TestWriteCommits_ClearExisting(t *testing.T) {
	ws := &fakeWorksheet{rows: [][]string{CommitHeader, {"old", "row", "2024-01-01", "1"}}}
	require.NoError(t, NewWriter(ws, nil).WriteCommits(context.Background(), aggs[:1], true))

	assert.Equal(t, "clear", ws.calls[0])
	assert.Equal(t, [][]string{CommitHeader, {"app", "alice", "2024-01-05", "2"}}, ws.rows)
}

func TestWriteCommits_NoAggregatesNoWrites(t *testing.T) {
	ws := &fakeWorksheet{}
	require.NoError(t, NewWriter(ws, nil).WriteCommits(context.Background(), nil, true))
	assert.Empty(t, ws.calls)
}

func TestWriteCommits_ReadFailure(t *testing.T) {
	ws := &fakeWorksheet{failGet: true}
	err := NewWriter(ws, nil).WriteCommits(context.Background(), aggs, false)
	assert.Error(t, err)
	assert.NotContains(t, ws.calls, "append")
}
