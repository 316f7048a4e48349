package snapshot

import (
	"path/filepath"
	"time"
)

// Resolver reconstructs the window of an existing snapshot file from its path.
type Resolver struct {
	MaxDepth     int // directory levels walked above the file before giving up
	FallbackDays int
	Location     *time.Location
	Now          func() time.Time
}

// Resolution is the outcome of Resolve. Reconstructed is false when the
// window was synthesized because no label segment was found.
type Resolution struct {
	Layout        Layout
	Reconstructed bool
}

// NewResolver returns a resolver that walks three levels, which covers
// <root>/<label>/raw/<source>/<file>, and falls back to a 7-day window.
func NewResolver(loc *time.Location) Resolver {
	return Resolver{
		MaxDepth:     3,
		FallbackDays: 7,
		Location:     loc,
		Now:          time.Now,
	}
}

// Resolve walks upward from the directory of path looking for a window
// label segment.
func (r Resolver) Resolve(path string) Resolution {
	dir := filepath.Dir(filepath.Clean(path))
	for level := 0; level < r.MaxDepth; level++ {
		name := filepath.Base(dir)
		if IsLabel(name) {
			if w, err := ParseLabel(name); err == nil {
				return Resolution{
					Layout:        NewLayout(filepath.Dir(dir), w),
					Reconstructed: true,
				}
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	days := r.FallbackDays
	if days <= 0 {
		days = 7
	}

	// the label would sit three levels above the file
	root := filepath.Dir(filepath.Dir(filepath.Dir(filepath.Dir(filepath.Clean(path)))))
	return Resolution{
		Layout:        NewLayout(root, TrailingWindow(now(), days, r.Location)),
		Reconstructed: false,
	}
}
