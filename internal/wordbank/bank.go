// Package wordbank provides the candidate words for drawing rounds, keyed by
// language and category.
package wordbank

import (
	"bytes"
	"encoding/json"
	"errors"
	"math/rand"
	"os"
	"strings"
	"sync"

	_ "embed"
)

// CategoryAll selects the union of every category in a language.
const CategoryAll = "all"

var ErrInvalidBank = errors.New("invalid word bank")

// Entry is one candidate word. Banks may list entries either as bare strings
// or as objects carrying extra metadata; both decode into the same shape.
type Entry struct {
	Word        string `json:"word"`
	Translation string `json:"translation,omitempty"`
	Difficulty  string `json:"difficulty,omitempty"`
}

func (e *Entry) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*e = Entry{Word: s}
		return nil
	}
	type plain Entry
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*e = Entry(p)
	return nil
}

// Bank maps language -> category -> entries. Clients may also send just the
// category map for a single language; Parse stores that under the empty
// language key and Pick falls back to it.
type Bank map[string]map[string][]Entry

// Parse decodes a bank from JSON, tolerating both the full two-level shape
// and a bare category map. Entries without a word are discarded.
func Parse(raw []byte) (Bank, error) {
	var b Bank
	if err := json.Unmarshal(raw, &b); err == nil {
		return b.pruned(), nil
	}
	var byCategory map[string][]Entry
	if err := json.Unmarshal(raw, &byCategory); err == nil {
		return Bank{"": byCategory}.pruned(), nil
	}
	return nil, ErrInvalidBank
}

func Load(path string) (Bank, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(raw)
}

func (b Bank) pruned() Bank {
	for _, categories := range b {
		for cat, entries := range categories {
			kept := entries[:0]
			for _, e := range entries {
				if Normalize(e.Word) != "" {
					kept = append(kept, e)
				}
			}
			categories[cat] = kept
		}
	}
	return b
}

//go:embed words.json
var defaultRaw []byte

var (
	defaultOnce sync.Once
	defaultBank Bank
)

// Default returns the bank embedded in the binary, used when a room starts a
// game without supplying its own bank.
func Default() Bank {
	defaultOnce.Do(func() {
		b, err := Parse(defaultRaw)
		if err != nil {
			panic("wordbank: embedded words.json is invalid: " + err.Error())
		}
		defaultBank = b
	})
	return defaultBank
}

// Normalize is the comparison form for words and guesses.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Pick selects one unused word uniformly at random. Words whose normalized
// text appears in used are skipped; once the whole pool has been seen the
// filter resets and repeats are allowed. ok is false only when the resolved
// pool itself is empty.
func Pick(b Bank, language, category string, used []string) (Entry, bool) {
	if b == nil {
		return Entry{}, false
	}
	categories := b[language]
	if categories == nil {
		categories = b[""]
	}
	if categories == nil {
		return Entry{}, false
	}

	var pool []Entry
	if category == CategoryAll {
		for _, entries := range categories {
			pool = append(pool, entries...)
		}
	} else {
		pool = categories[category]
	}
	if len(pool) == 0 {
		return Entry{}, false
	}

	usedSet := make(map[string]struct{}, len(used))
	for _, w := range used {
		if n := Normalize(w); n != "" {
			usedSet[n] = struct{}{}
		}
	}

	available := make([]Entry, 0, len(pool))
	for _, e := range pool {
		if _, seen := usedSet[Normalize(e.Word)]; !seen {
			available = append(available, e)
		}
	}
	if len(available) == 0 {
		available = pool
	}
	return available[rand.Intn(len(available))], true
}
