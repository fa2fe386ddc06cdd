package gallery

import (
	"bytes"
	"encoding/json"
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Entry is one file of a directory listing.
type Entry struct {
	Filename string `json:"filename"`
	// Rating is in [0,5], zero when the file is unrated.
	Rating float64 `json:"rating,omitempty"`
	// Mtime is the modification time in unix seconds.
	Mtime float64 `json:"mtime"`
}

// UnmarshalJSON accepts both the object form and a bare filename string,
// which older listing services return.
func (e *Entry) UnmarshalJSON(data []byte) error {
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte(`"`)) {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		*e = Entry{Filename: name}
		return nil
	}

	type plain Entry
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*e = Entry(p)
	return nil
}

// SortKey is the field a collection is ordered by.
type SortKey int

const (
	SortByMtime SortKey = iota
	SortByRating
	SortByFilename
)

var sortKeyLabels = map[SortKey]string{
	SortByMtime:    "Date",
	SortByRating:   "Rating",
	SortByFilename: "Name",
}

func (k SortKey) String() string {
	if l, ok := sortKeyLabels[k]; ok {
		return l
	}
	return "Unknown"
}

// SortSpec is the active order of the collection.
type SortSpec struct {
	Key       SortKey
	Ascending bool
}

// DefaultSort shows the newest files first.
var DefaultSort = SortSpec{Key: SortByMtime, Ascending: false}

// ListStore holds the current file collection in its sorted order.
type ListStore struct {
	entries []Entry
	spec    SortSpec

	// OnChanged is called after the collection or its order changed.
	OnChanged func()
}

func NewListStore() *ListStore {
	return &ListStore{spec: DefaultSort}
}

// SetEntries replaces the collection wholesale.
func (s *ListStore) SetEntries(entries []Entry) {
	s.entries = make([]Entry, len(entries))
	copy(s.entries, entries)
	s.sort()
	s.notify()
}

// SetSort changes the order without refetching.
func (s *ListStore) SetSort(spec SortSpec) {
	s.spec = spec
	s.sort()
	s.notify()
}

func (s *ListStore) Sort() SortSpec {
	return s.spec
}

func (s *ListStore) Len() int {
	return len(s.entries)
}

func (s *ListStore) At(i int) Entry {
	return s.entries[i]
}

// Entries returns the collection in display order. The slice must not be modified.
func (s *ListStore) Entries() []Entry {
	return s.entries
}

// Filenames lists the filenames in display order.
func (s *ListStore) Filenames() []string {
	names := make([]string, len(s.entries))
	for i, e := range s.entries {
		names[i] = e.Filename
	}
	return names
}

func (s *ListStore) notify() {
	if s.OnChanged != nil {
		s.OnChanged()
	}
}

func (s *ListStore) sort() {
	sortEntries(s.entries, s.spec)
}

func sortEntries(entries []Entry, spec SortSpec) {
	switch spec.Key {
	case SortByRating:
		sort.SliceStable(entries, func(i, j int) bool {
			a, b := entries[i], entries[j]
			if a.Rating != b.Rating {
				if spec.Ascending {
					return a.Rating < b.Rating
				}
				return a.Rating > b.Rating
			}
			// Equal ratings always show the newest first.
			return a.Mtime > b.Mtime
		})
	case SortByFilename:
		c := collate.New(language.Und)
		sort.SliceStable(entries, func(i, j int) bool {
			cmp := c.CompareString(entries[i].Filename, entries[j].Filename)
			if spec.Ascending {
				return cmp < 0
			}
			return cmp > 0
		})
	default:
		sort.SliceStable(entries, func(i, j int) bool {
			if spec.Ascending {
				return entries[i].Mtime < entries[j].Mtime
			}
			return entries[i].Mtime > entries[j].Mtime
		})
	}
}
