package types

import (
	"bytes"
	"encoding/json"
	"iter"
)

// Query is one input row: the category to search for and how many
// listings to collect from the top of its result list.
type Query struct {
	Category       string
	RequestedCount int
}

// ListingRecord represents the data extracted from one listing's detail panel.
// Every field is best-effort text; a field that was not found is "".
type ListingRecord struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Rating      string `json:"rating"`
	ReviewCount string `json:"review_count"`
	Address     string `json:"address"`
}

// ResultSet holds the records of one query, indexed by ordinal.
type ResultSet []ListingRecord

// MarshalJSON encodes an empty set as [] rather than null.
func (rs ResultSet) MarshalJSON() ([]byte, error) {
	if rs == nil {
		return []byte("[]"), nil
	}
	return marshal([]ListingRecord(rs))
}

// marshal encodes v without escaping &, < and >.
func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Accumulator collects the result sets of a run keyed by category, keeping
// the order in which categories were first stored.
type Accumulator struct {
	order []string
	sets  map[string]ResultSet
}

// NewAccumulator creates an empty Accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{sets: make(map[string]ResultSet)}
}

// Put stores rs under category. A category stored twice keeps its original
// position and the later result set.
func (a *Accumulator) Put(category string, rs ResultSet) {
	if _, ok := a.sets[category]; !ok {
		a.order = append(a.order, category)
	}
	a.sets[category] = rs
}

// Get returns the result set stored for category.
func (a *Accumulator) Get(category string) (ResultSet, bool) {
	rs, ok := a.sets[category]
	return rs, ok
}

// Len returns the number of categories stored.
func (a *Accumulator) Len() int {
	return len(a.order)
}

// Categories returns the stored categories in insertion order.
func (a *Accumulator) Categories() []string {
	out := make([]string, len(a.order))
	copy(out, a.order)
	return out
}

// All iterates over categories and their result sets in insertion order.
func (a *Accumulator) All() iter.Seq2[string, ResultSet] {
	return func(yield func(string, ResultSet) bool) {
		for _, category := range a.order {
			if !yield(category, a.sets[category]) {
				return
			}
		}
	}
}

// MarshalJSON encodes the accumulator as an object whose keys follow
// insertion order.
func (a *Accumulator) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, category := range a.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshal(category)
		if err != nil {
			return nil, err
		}
		value, err := marshal(a.sets[category])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
