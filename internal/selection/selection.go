// Package selection coordinates the three university/major choice slots.
//
// Uniqueness across slots is enforced by exclusion from the availability
// lists, not by rejecting a Select call.
package selection

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/cases"

	"github.com/p-n-ai/unimatch/internal/catalog"
)

// Slots is the number of choice slots.
const Slots = 3

// MaxResults caps the dropdown search list.
const MaxResults = 12

// Kind picks one of a slot's two selectors.
type Kind string

const (
	University Kind = "university"
	Major      Kind = "major"
)

// ParseKind converts a wire string into a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case University, Major:
		return Kind(s), nil
	}
	return "", fmt.Errorf("unknown selector kind %q", s)
}

// Selector is one dropdown's state.
type Selector struct {
	Selected string `json:"selected"`
	Enabled  bool   `json:"enabled"`
}

// Slot is one choice: a university and a major scoped to it.
type Slot struct {
	University Selector `json:"university"`
	Major      Selector `json:"major"`
}

// Change identifies the selector that changed.
type Change struct {
	Slot int
	Kind Kind
}

type slotState struct {
	Slot
	query map[Kind]string
}

// Coordinator owns the slot states and the catalog they choose from.
type Coordinator struct {
	kb        *catalog.Snapshot
	slots     [Slots]slotState
	listeners []func(Change)
}

// New creates a coordinator over kb with every slot empty.
func New(kb *catalog.Snapshot) *Coordinator {
	if kb == nil {
		kb = catalog.Empty()
	}
	c := &Coordinator{kb: kb}
	c.reset()
	return c
}

// Subscribe registers fn to run after every selector change.
func (c *Coordinator) Subscribe(fn func(Change)) {
	c.listeners = append(c.listeners, fn)
}

// Catalog returns the snapshot the coordinator chooses from.
func (c *Coordinator) Catalog() *catalog.Snapshot {
	return c.kb
}

// Slot returns the state of slot n (1-based).
func (c *Coordinator) Slot(n int) (Slot, error) {
	s, err := c.state(n)
	if err != nil {
		return Slot{}, err
	}
	return s.Slot, nil
}

// Slots returns a copy of every slot in order.
func (c *Coordinator) Slots() []Slot {
	out := make([]Slot, Slots)
	for i := range c.slots {
		out[i] = c.slots[i].Slot
	}
	return out
}

// Select sets the selector's value and clears its search query. Choosing a
// university clears and enables the sibling major. The value is not checked
// against AvailableFor.
func (c *Coordinator) Select(n int, kind Kind, value string) error {
	s, err := c.state(n)
	if err != nil {
		return err
	}

	switch kind {
	case University:
		s.University.Selected = value
		s.Major = Selector{Enabled: value != ""}
		s.query[University] = ""
		s.query[Major] = ""
		c.notify(Change{Slot: n, Kind: University})
		c.notify(Change{Slot: n, Kind: Major})
	case Major:
		s.Major.Selected = value
		s.query[Major] = ""
		c.notify(Change{Slot: n, Kind: Major})
	default:
		return fmt.Errorf("unknown selector kind %q", kind)
	}
	return nil
}

// Clear empties the selector. Clearing a university also clears and
// disables the sibling major.
func (c *Coordinator) Clear(n int, kind Kind) error {
	s, err := c.state(n)
	if err != nil {
		return err
	}

	switch kind {
	case University:
		s.University.Selected = ""
		s.Major = Selector{}
		c.notify(Change{Slot: n, Kind: University})
		c.notify(Change{Slot: n, Kind: Major})
	case Major:
		s.Major.Selected = ""
		c.notify(Change{Slot: n, Kind: Major})
	default:
		return fmt.Errorf("unknown selector kind %q", kind)
	}
	return nil
}

// AvailableFor lists the values slot n may pick for kind, in catalog order,
// excluding values already chosen by the other slots. Majors are limited to
// the slot's university and empty while the major selector is disabled.
func (c *Coordinator) AvailableFor(n int, kind Kind) []string {
	s, err := c.state(n)
	if err != nil {
		return nil
	}

	var source []string
	switch kind {
	case University:
		source = c.kb.Universities()
	case Major:
		if !s.Major.Enabled {
			return nil
		}
		source = c.kb.MajorsOf(s.University.Selected)
	default:
		return nil
	}

	taken := make(map[string]bool, Slots-1)
	for i := range c.slots {
		if i == n-1 {
			continue
		}
		if v := c.slots[i].selector(kind).Selected; v != "" {
			taken[v] = true
		}
	}

	out := make([]string, 0, len(source))
	for _, v := range source {
		if !taken[v] {
			out = append(out, v)
		}
	}
	return out
}

// Search records query as the selector's dropdown text and returns up to
// MaxResults available values containing it, compared with Unicode case
// folding. An empty query matches nothing.
func (c *Coordinator) Search(n int, kind Kind, query string) []string {
	s, err := c.state(n)
	if err != nil {
		return nil
	}
	if kind == University || kind == Major {
		s.query[kind] = query
	}
	return Filter(c.AvailableFor(n, kind), query)
}

// Query returns the current dropdown text for the selector.
func (c *Coordinator) Query(n int, kind Kind) string {
	s, err := c.state(n)
	if err != nil {
		return ""
	}
	return s.query[kind]
}

// Reset clears every slot and notifies each selector.
func (c *Coordinator) Reset() {
	c.reset()
	for n := 1; n <= Slots; n++ {
		c.notify(Change{Slot: n, Kind: University})
		c.notify(Change{Slot: n, Kind: Major})
	}
}

// Universities returns the selected universities in slot order, skipping
// empty slots.
func (c *Coordinator) Universities() []string {
	return c.selected(University)
}

// Majors returns the selected majors in slot order, skipping empty slots.
func (c *Coordinator) Majors() []string {
	return c.selected(Major)
}

// Filter returns up to MaxResults items containing query, ignoring case.
func Filter(items []string, query string) []string {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	fold := cases.Fold()
	needle := fold.String(query)

	var out []string
	for _, item := range items {
		if strings.Contains(fold.String(item), needle) {
			out = append(out, item)
			if len(out) == MaxResults {
				break
			}
		}
	}
	return out
}

func (c *Coordinator) selected(kind Kind) []string {
	var out []string
	for i := range c.slots {
		if v := c.slots[i].selector(kind).Selected; v != "" {
			out = append(out, v)
		}
	}
	return out
}

func (c *Coordinator) reset() {
	for i := range c.slots {
		c.slots[i] = slotState{
			Slot:  Slot{University: Selector{Enabled: true}},
			query: make(map[Kind]string, 2),
		}
	}
}

func (c *Coordinator) state(n int) (*slotState, error) {
	if n < 1 || n > Slots {
		return nil, fmt.Errorf("slot %d out of range 1..%d", n, Slots)
	}
	return &c.slots[n-1], nil
}

func (c *Coordinator) notify(ch Change) {
	for _, fn := range slices.Clone(c.listeners) {
		fn(ch)
	}
}

func (s *slotState) selector(kind Kind) Selector {
	if kind == University {
		return s.University
	}
	return s.Major
}
