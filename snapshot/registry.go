package snapshot

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Entry is one raw snapshot file known to a run.
type Entry struct {
	Window  Window    `json:"window"`
	Label   string    `json:"label"`
	Source  string    `json:"source"`
	Name    string    `json:"name"` // repository name, or file stem for commits
	Path    string    `json:"path"`
	ModTime time.Time `json:"mod_time"`
}

// Registry indexes the raw snapshots under an output root. It is built once
// per run and handed to every consumer, so tests can supply one in memory.
type Registry struct {
	Entries []Entry
}

// Scan builds a registry from <root>/*/raw/<source>/*.json. Run summaries
// are not snapshots and are left out. A missing root yields an empty registry.
func Scan(root string) (*Registry, error) {
	reg := &Registry{}

	dirs, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return reg, nil
		}
		return nil, err
	}

	for _, d := range dirs {
		if !d.IsDir() {
			continue
		}
		label := d.Name()
		window, _ := ParseLabel(label)

		for _, source := range []string{SourceGitHub, SourceCommits} {
			matches, err := filepath.Glob(filepath.Join(root, label, "raw", source, "*.json"))
			if err != nil {
				continue
			}
			for _, match := range matches {
				base := filepath.Base(match)
				if isSummaryFile(source, base) {
					continue
				}
				info, err := os.Stat(match)
				if err != nil {
					continue
				}
				reg.Entries = append(reg.Entries, Entry{
					Window:  window,
					Label:   label,
					Source:  source,
					Name:    strings.TrimSuffix(base, ".json"),
					Path:    match,
					ModTime: info.ModTime(),
				})
			}
		}
	}

	return reg, nil
}

func isSummaryFile(source, base string) bool {
	switch source {
	case SourceCommits:
		return base == CommitSummaryFile
	default:
		return strings.HasSuffix(base, "_summary.json")
	}
}

// Add appends an entry.
func (r *Registry) Add(e Entry) {
	r.Entries = append(r.Entries, e)
}

// BySource returns the entries of one source in registry order.
func (r *Registry) BySource(source string) []Entry {
	var out []Entry
	for _, e := range r.Entries {
		if e.Source == source {
			out = append(out, e)
		}
	}
	return out
}

// Latest returns the most recently modified entry of source named name.
func (r *Registry) Latest(source, name string) (Entry, bool) {
	var (
		best  Entry
		found bool
	)
	for _, e := range r.Entries {
		if e.Source != source || e.Name != name {
			continue
		}
		if !found || e.ModTime.After(best.ModTime) {
			best = e
			found = true
		}
	}
	return best, found
}

// InWindow returns the entries of source stored under label.
func (r *Registry) InWindow(source, label string) []Entry {
	var out []Entry
	for _, e := range r.Entries {
		if e.Source == source && e.Label == label {
			out = append(out, e)
		}
	}
	return out
}

// Labels returns the distinct window labels in ascending order.
func (r *Registry) Labels() []string {
	seen := make(map[string]bool)
	var labels []string
	for _, e := range r.Entries {
		if !seen[e.Label] {
			seen[e.Label] = true
			labels = append(labels, e.Label)
		}
	}
	sort.Strings(labels)
	return labels
}
