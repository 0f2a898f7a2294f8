package form

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind says what a read produced.
type Kind int

const (
	Empty Kind = iota
	Number
	Text
)

// Value is the normalized result of reading one field.
type Value struct {
	Kind Kind
	Num  float64
	Str  string
}

// Present reports whether the value is not empty.
func (v Value) Present() bool {
	return v.Kind != Empty
}

// Form holds raw input strings keyed by field.
type Form struct {
	raw map[FieldID]string
}

// New returns a form with metadata defaults applied.
func New() *Form {
	f := &Form{raw: make(map[FieldID]string)}
	f.Reset()
	return f
}

// Set stores the raw input for id.
func (f *Form) Set(id FieldID, raw string) error {
	if !Known(id) {
		return fmt.Errorf("unknown field %q", id)
	}
	f.raw[id] = raw
	return nil
}

// Raw returns the unnormalized input for id.
func (f *Form) Raw(id FieldID) string {
	return f.raw[id]
}

// Reset clears every input and restores metadata defaults.
func (f *Form) Reset() {
	clear(f.raw)
	for id, c := range Choices {
		f.raw[id] = c.Default
	}
}

// Read returns the normalized value of id. Grades clamp to [0,100]; the
// rank percentile rounds to an integer in [1,100]. Unparseable numbers and
// blank input read as empty. Other fields are trimmed text.
func (f *Form) Read(id FieldID) Value {
	s := strings.TrimSpace(f.raw[id])
	if s == "" {
		return Value{}
	}
	if !IsNumeric(id) {
		return Value{Kind: Text, Str: s}
	}

	n, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil || math.IsNaN(n) {
		return Value{}
	}
	if id == RankPercentile {
		return Value{Kind: Number, Num: clamp(math.Round(n), 1, 100)}
	}
	return Value{Kind: Number, Num: clamp(n, 0, 100)}
}

// Grade returns the number for id and whether it is present.
func (f *Form) Grade(id FieldID) (float64, bool) {
	v := f.Read(id)
	return v.Num, v.Kind == Number
}

// Text returns the trimmed text for id, or "" when empty.
func (f *Form) Text(id FieldID) string {
	return f.Read(id).Str
}

// Snapshot copies the raw inputs.
func (f *Form) Snapshot() map[FieldID]string {
	out := make(map[FieldID]string, len(f.raw))
	for k, v := range f.raw {
		out[k] = v
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
