package snapshot

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fixedResolver() Resolver {
	r := NewResolver(time.UTC)
	r.Now = func() time.Time { return time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC) }
	return r
}

func TestResolve_MarkerPresent(t *testing.T) {
	path := filepath.Join("data", "2025-05-01_to_2025-05-08", "raw", "github", "action-board.json")

	res := fixedResolver().Resolve(path)

	assert.True(t, res.Reconstructed)
	assert.Equal(t, "2025-05-01_to_2025-05-08", res.Layout.Window.Label())
	assert.Equal(t, "data", res.Layout.Root)
	assert.Equal(t, filepath.Join("data", "2025-05-01_to_2025-05-08", "markdown", "github"), res.Layout.MarkdownDir(SourceGitHub))
}

func TestResolve_MarkerAbsentFallsBack(t *testing.T) {
	path := filepath.Join("exports", "misc", "raw", "github", "action-board.json")

	res := fixedResolver().Resolve(path)

	assert.False(t, res.Reconstructed)
	assert.Equal(t, "2025-06-03_to_2025-06-10", res.Layout.Window.Label())
	assert.Equal(t, "exports", res.Layout.Root)
}

func TestResolve_MarkerBeyondDepthFallsBack(t *testing.T) {
	path := filepath.Join("data", "2025-05-01_to_2025-05-08", "raw", "github", "nested", "x.json")

	r := fixedResolver()
	res := r.Resolve(path)
	assert.False(t, res.Reconstructed)

	r.MaxDepth = 4
	res = r.Resolve(path)
	assert.True(t, res.Reconstructed)
	assert.Equal(t, "2025-05-01_to_2025-05-08", res.Layout.Window.Label())
}

func TestResolve_ShallowPath(t *testing.T) {
	res := fixedResolver().Resolve("x.json")
	assert.False(t, res.Reconstructed)
	assert.Equal(t, "2025-06-03_to_2025-06-10", res.Layout.Window.Label())
}

func TestResolve_CustomFallbackDays(t *testing.T) {
	r := fixedResolver()
	r.FallbackDays = 30
	res := r.Resolve(filepath.Join("a", "b.json"))
	assert.False(t, res.Reconstructed)
	assert.Equal(t, "2025-05-11_to_2025-06-10", res.Layout.Window.Label())
}
