package sheets

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"oss-activity/commits"
)

// CommitHeader is the expected first row of the commit worksheet.
var CommitHeader = []string{"プロジェクト(repository)", "貢献者", "日時", "貢献数(commits)"}

// Writer appends commit aggregates to a worksheet.
type Writer struct {
	ws  Worksheet
	log *zap.Logger
}

func NewWriter(ws Worksheet, log *zap.Logger) *Writer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Writer{ws: ws, log: log}
}

// WriteCommits appends one row per aggregate. With clearExisting the
// worksheet is wiped first. A worksheet whose first row is not
// CommitHeader is cleared entirely and the header rewritten.
func (w *Writer) WriteCommits(ctx context.Context, aggs []commits.Aggregate, clearExisting bool) error {
	if len(aggs) == 0 {
		w.log.Info("no commit rows to write")
		return nil
	}

	if clearExisting {
		if err := w.ws.Clear(ctx); err != nil {
			return fmt.Errorf("error clearing worksheet: %w", err)
		}
	}

	existing, err := w.ws.Values(ctx)
	if err != nil {
		return fmt.Errorf("error reading worksheet: %w", err)
	}
	if len(existing) == 0 || !equalRow(existing[0], CommitHeader) {
		if err := w.ws.Clear(ctx); err != nil {
			return fmt.Errorf("error clearing worksheet: %w", err)
		}
		if err := w.ws.Append(ctx, [][]string{CommitHeader}); err != nil {
			return fmt.Errorf("error writing header: %w", err)
		}
		w.log.Info("worksheet header reset")
	}

	rows := make([][]string, 0, len(aggs))
	for _, a := range aggs {
		rows = append(rows, []string{a.Repository, a.Author, a.Date, strconv.Itoa(a.Count)})
	}
	if err := w.ws.Append(ctx, rows); err != nil {
		return fmt.Errorf("error appending rows: %w", err)
	}
	fmt.Printf("Wrote %d commit rows to the spreadsheet\n", len(rows))
	return nil
}

func equalRow(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
