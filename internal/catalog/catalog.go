// Package catalog lists the collection folders under a browse path and keeps
// the cursor and scroll window the browser renders from.
//
// Every path handled here ends in "/". Listing never shows plain files, only
// immediate child folders.
package catalog

import (
	"os"
	"sort"
	"strings"

	"github.com/Helaas/nextui-moflex-pak/internal/mover"
)

// Uncounted marks an entry whose eligible files have not been counted yet.
const Uncounted = -1

// Defaults used when Options leaves a field at zero.
const (
	DefaultVisibleLines = 25
	DefaultMaxEntries   = 256
)

// Entry is one immediate child folder of the browsed path.
type Entry struct {
	Name          string
	IsDir         bool
	EligibleCount int
}

// Options tunes listing and the scroll window.
type Options struct {
	VisibleLines int
	// MaxEntries caps the listing; negative means unlimited.
	MaxEntries int
}

func (o Options) withDefaults() Options {
	if o.VisibleLines <= 0 {
		o.VisibleLines = DefaultVisibleLines
	}
	if o.MaxEntries == 0 {
		o.MaxEntries = DefaultMaxEntries
	}
	return o
}

// Catalog is the listing of one path.
type Catalog struct {
	Path    string
	Entries []Entry

	cursor  int
	scroll  int
	visible int
}

// List reads the immediate child folders of path. ok is false when path
// cannot be opened; an empty folder yields a valid empty Catalog.
func List(path string, opts Options) (*Catalog, bool) {
	opts = opts.withDefaults()
	path = WithSeparator(path)

	dir, err := os.ReadDir(path)
	if err != nil {
		return nil, false
	}

	c := &Catalog{Path: path, visible: opts.VisibleLines}
	for _, e := range dir {
		if opts.MaxEntries > 0 && len(c.Entries) >= opts.MaxEntries {
			break
		}
		name := e.Name()
		if name == "." || name == ".." || mover.IsHidden(name) {
			continue
		}
		info, err := os.Stat(path + name)
		if err != nil || !info.IsDir() {
			continue
		}
		c.Entries = append(c.Entries, Entry{Name: name, IsDir: true, EligibleCount: Uncounted})
	}
	Sort(c.Entries)
	return c, true
}

// Sort orders folders before anything else, then by name ignoring case.
func Sort(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return less(entries[i], entries[j])
	})
}

func less(a, b Entry) bool {
	if a.IsDir != b.IsDir {
		return a.IsDir
	}
	return strings.ToLower(a.Name) < strings.ToLower(b.Name)
}

// Len returns the number of entries.
func (c *Catalog) Len() int { return len(c.Entries) }

// Cursor returns the selected index.
func (c *Catalog) Cursor() int { return c.cursor }

// Scroll returns the index of the first visible entry.
func (c *Catalog) Scroll() int { return c.scroll }

// Selected returns the entry under the cursor.
func (c *Catalog) Selected() (*Entry, bool) {
	if len(c.Entries) == 0 {
		return nil, false
	}
	return &c.Entries[c.cursor], true
}

// Up moves the cursor one entry up. It reports whether anything changed.
func (c *Catalog) Up() bool {
	if c.cursor == 0 {
		return false
	}
	c.cursor--
	if c.cursor < c.scroll {
		c.scroll = c.cursor
	}
	return true
}

// Down moves the cursor one entry down. It reports whether anything changed.
func (c *Catalog) Down() bool {
	if c.cursor >= len(c.Entries)-1 {
		return false
	}
	c.cursor++
	if c.cursor >= c.scroll+c.visible {
		c.scroll = c.cursor - c.visible + 1
	}
	return true
}

// Jump places the cursor on index i, clamped to the listing, and scrolls the
// minimum needed to keep it visible.
func (c *Catalog) Jump(i int) {
	if len(c.Entries) == 0 {
		c.cursor, c.scroll = 0, 0
		return
	}
	i = max(0, min(i, len(c.Entries)-1))
	c.cursor = i
	switch {
	case i < c.scroll:
		c.scroll = i
	case i >= c.scroll+c.visible:
		c.scroll = i - c.visible + 1
	}
}

// Window returns the half-open range of visible entries.
func (c *Catalog) Window() (first, last int) {
	last = min(c.scroll+c.visible, len(c.Entries))
	return c.scroll, last
}

// Overflows reports whether the listing needs a scroll indicator.
func (c *Catalog) Overflows() bool { return len(c.Entries) > c.visible }

// SourceFolder returns the absolute path of entry i, without a trailing separator.
func (c *Catalog) SourceFolder(i int) string {
	return c.Path + c.Entries[i].Name
}

// EnsureEligibleCount counts the eligible files in entry i the first time it
// is asked and returns the cached value afterwards. A folder that cannot be
// read stays Uncounted.
func (c *Catalog) EnsureEligibleCount(i int) (int, error) {
	e := &c.Entries[i]
	if e.EligibleCount == Uncounted {
		n, err := mover.Count(c.Path + e.Name)
		if err != nil {
			return 0, err
		}
		e.EligibleCount = n
	}
	return e.EligibleCount, nil
}
