// Package appearance names the visual templates an entity can wear.
//
// An appearance is identified by its position in the ordered list of asset names
// supplied once at startup; that position is the stable Index used everywhere
// else in the viewer.
package appearance

import (
	"strconv"

	"github.com/rotisserie/eris"
)

// ErrUnknownName is returned when a name is not part of the record.
var ErrUnknownName = eris.New("unknown appearance name")

// Index is a stable position in the startup asset list.
type Index int

func (i Index) String() string { return strconv.Itoa(int(i)) }

// Record is the ordered list of asset names.
type Record struct {
	names []string
	index map[string]Index
}

// NewRecord builds a record from names. Duplicate names resolve to their first
// position.
func NewRecord(names []string) *Record {
	r := &Record{
		names: append([]string(nil), names...),
		index: make(map[string]Index, len(names)),
	}
	for i, n := range r.names {
		if _, ok := r.index[n]; !ok {
			r.index[n] = Index(i)
		}
	}
	return r
}

// Names returns a copy of the ordered names.
func (r *Record) Names() []string { return append([]string(nil), r.names...) }

// Len returns the number of appearances.
func (r *Record) Len() int { return len(r.names) }

// Name returns the asset name at i.
func (r *Record) Name(i Index) (string, bool) {
	if i < 0 || int(i) >= len(r.names) {
		return "", false
	}
	return r.names[i], true
}

// IndexOf returns the index of name.
func (r *Record) IndexOf(name string) (Index, error) {
	if i, ok := r.index[name]; ok {
		return i, nil
	}
	return -1, eris.Wrapf(ErrUnknownName, "appearance %q (expected one of %q)", name, r.names)
}

// Valid reports whether i addresses an entry of the record.
func (r *Record) Valid(i Index) bool {
	return i >= 0 && int(i) < len(r.names)
}
