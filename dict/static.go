// Package dict implements the static and CMP-argument dictionaries
// that feed the mutator's overwrite/insert primitives (spec §4.3).
// Both dictionaries are backed by github.com/google/btree, an
// ordered-index generalization of the pattern the teacher's
// indextree/b package shows (an ordered tree queried for range/prefix
// lookups), swapped for a pure-Go, byte-string-keyed tree since our
// keys are dictionary entries, not the teacher's opaque uint64 values.
package dict

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/btree"

	"github.com/moeing-labs/centifuzz/shardrng"
)

// MaxEntryLen is the longest a dict entry or CMP pair half may be.
const MaxEntryLen = 15

// StaticDict is a deduplicated set of dict entries, ordered
// lexicographically by content (which, for byte strings, orders a
// prefix before any string it prefixes — "then length" for free).
type StaticDict struct {
	tree     *btree.BTreeG[string]
	snapshot []string
	dirty    bool
}

// NewStaticDict returns an empty static dictionary.
func NewStaticDict() *StaticDict {
	return &StaticDict{tree: btree.NewG(32, func(a, b string) bool { return a < b })}
}

// Add inserts entries, silently dropping any that are empty or longer
// than MaxEntryLen bytes. Repeated Add calls with the same entry, in
// any order, converge to the same dictionary content.
func (d *StaticDict) Add(entries ...[]byte) {
	for _, e := range entries {
		if len(e) == 0 || len(e) > MaxEntryLen {
			continue
		}
		d.tree.ReplaceOrInsert(string(e))
	}
	d.dirty = true
}

// Len returns the number of distinct entries.
func (d *StaticDict) Len() int { return d.tree.Len() }

// Pick returns a uniformly random entry, or ok=false if the
// dictionary is empty.
func (d *StaticDict) Pick(r *shardrng.RNG) (entry []byte, ok bool) {
	d.ensureSnapshot()
	if len(d.snapshot) == 0 {
		return nil, false
	}
	idx := r.Intn(len(d.snapshot))
	return []byte(d.snapshot[idx]), true
}

func (d *StaticDict) ensureSnapshot() {
	if !d.dirty && d.snapshot != nil {
		return
	}
	d.snapshot = d.snapshot[:0]
	d.tree.Ascend(func(s string) bool {
		d.snapshot = append(d.snapshot, s)
		return true
	})
	d.dirty = false
}

// AddFromText parses AFL/libFuzzer dictionary text: lines of the form
// `["name"]="value"` or bare `"value"`, where value may contain
// \xNN, \" and \\ escapes. Blank lines and lines starting with '#'
// are ignored. A malformed line fails the call with an error naming
// that line; lines after it are not parsed (entries already added by
// earlier successful lines within the same call remain, matching the
// teacher's own append-then-fail-loud style rather than an
// all-or-nothing transaction the spec does not ask for).
func (d *StaticDict) AddFromText(text string) error {
	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if eq := strings.IndexByte(line, '='); eq >= 0 && eq+1 < len(line) && line[eq+1] == '"' {
			line = line[eq+1:]
		}
		entry, err := parseQuoted(line)
		if err != nil {
			return fmt.Errorf("dict: line %d: %w", i+1, err)
		}
		d.Add(entry)
	}
	return nil
}

func parseQuoted(s string) ([]byte, error) {
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return nil, fmt.Errorf("expected a quoted string, got %q", s)
	}
	body := s[1 : len(s)-1]
	out := make([]byte, 0, len(body))
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' {
			out = append(out, c)
			continue
		}
		i++
		if i >= len(body) {
			return nil, fmt.Errorf("dangling escape in %q", s)
		}
		switch body[i] {
		case '"':
			out = append(out, '"')
		case '\\':
			out = append(out, '\\')
		case 'x':
			if i+2 >= len(body) {
				return nil, fmt.Errorf("truncated \\xNN escape in %q", s)
			}
			v, err := strconv.ParseUint(body[i+1:i+3], 16, 8)
			if err != nil {
				return nil, fmt.Errorf("bad \\xNN escape in %q: %w", s, err)
			}
			out = append(out, byte(v))
			i += 2
		default:
			return nil, fmt.Errorf("unknown escape \\%c in %q", body[i], s)
		}
	}
	return out, nil
}
