// Package catalog holds the read-only knowledge base snapshot: the
// universities, majors and per-program metadata offered by the prediction
// service.
package catalog

import (
	"context"
	"log/slog"
	"sort"
	"strings"
)

// WireSeparator joins university and major in the service's detail keys.
const WireSeparator = " | "

// Key identifies one program offered by a university.
type Key struct {
	University string
	Major      string
}

// String renders the key in the service's "University | Major" form.
func (k Key) String() string {
	return k.University + WireSeparator + k.Major
}

// Detail is the metadata attached to a university/major pair.
type Detail struct {
	Program string   `json:"program"`
	Tags    []string `json:"tags,omitempty"`
}

// Snapshot is an immutable view of the knowledge base.
type Snapshot struct {
	universities []string
	majors       []string
	details      map[Key]Detail
	byUniversity map[string][]string
}

// Empty returns a snapshot with no selectable options.
func Empty() *Snapshot {
	return New(nil, nil, nil)
}

// New builds a snapshot. Duplicate names are dropped, first occurrence wins.
// Majors per university follow the order of the majors list; majors that
// only appear in details are appended in lexical order.
func New(universities, majors []string, details map[Key]Detail) *Snapshot {
	s := &Snapshot{
		universities: dedupe(universities),
		majors:       dedupe(majors),
		details:      make(map[Key]Detail, len(details)),
		byUniversity: make(map[string][]string),
	}
	for k, d := range details {
		s.details[k] = d
	}

	listed := make(map[string]int, len(s.majors))
	for i, m := range s.majors {
		listed[m] = i
	}
	extra := make(map[string][]string)
	for k := range s.details {
		if _, ok := listed[k.Major]; ok {
			continue
		}
		extra[k.University] = append(extra[k.University], k.Major)
	}
	for _, u := range s.universities {
		var ms []string
		for _, m := range s.majors {
			if _, ok := s.details[Key{University: u, Major: m}]; ok {
				ms = append(ms, m)
			}
		}
		more := extra[u]
		sort.Strings(more)
		s.byUniversity[u] = append(ms, more...)
	}
	return s
}

// FromWire builds a snapshot from the service's string-keyed details map.
// Keys are split against the known universities first so that names which
// themselves contain the separator still resolve; unknown keys fall back to
// splitting at the first separator. Keys without a separator are dropped.
func FromWire(universities, majors []string, wire map[string]Detail) *Snapshot {
	details := make(map[Key]Detail, len(wire))
	for raw, d := range wire {
		k, ok := ParseKey(raw, universities)
		if !ok {
			slog.Debug("dropping malformed catalog key", "key", raw)
			continue
		}
		details[k] = d
	}
	return New(universities, majors, details)
}

// ParseKey splits a "University | Major" key. Known universities are tried
// longest first.
func ParseKey(raw string, universities []string) (Key, bool) {
	best := ""
	for _, u := range universities {
		if len(u) > len(best) && strings.HasPrefix(raw, u+WireSeparator) {
			best = u
		}
	}
	if best != "" {
		major := raw[len(best)+len(WireSeparator):]
		if major == "" {
			return Key{}, false
		}
		return Key{University: best, Major: major}, true
	}
	u, m, ok := strings.Cut(raw, WireSeparator)
	if !ok || u == "" || m == "" {
		return Key{}, false
	}
	return Key{University: u, Major: m}, true
}

// Universities returns all universities in service order.
func (s *Snapshot) Universities() []string {
	return append([]string(nil), s.universities...)
}

// Majors returns all major names in service order.
func (s *Snapshot) Majors() []string {
	return append([]string(nil), s.majors...)
}

// MajorsOf returns the majors offered by university u.
func (s *Snapshot) MajorsOf(u string) []string {
	return append([]string(nil), s.byUniversity[u]...)
}

// Detail returns the metadata for k.
func (s *Snapshot) Detail(k Key) (Detail, bool) {
	d, ok := s.details[k]
	return d, ok
}

// IsEmpty reports whether the snapshot offers nothing to select.
func (s *Snapshot) IsEmpty() bool {
	return len(s.universities) == 0 && len(s.majors) == 0
}

// Fetcher reads the knowledge base from the prediction service.
type Fetcher interface {
	FetchUniversities(ctx context.Context) ([]string, error)
	FetchMajors(ctx context.Context) ([]string, map[string]Detail, error)
}

// Load fetches a snapshot once. Failures degrade to empty lists and are
// only logged; the caller always gets a usable snapshot.
func Load(ctx context.Context, f Fetcher) *Snapshot {
	universities, err := f.FetchUniversities(ctx)
	if err != nil {
		slog.Warn("knowledge base universities unavailable", "error", err)
		universities = nil
	}

	majors, details, err := f.FetchMajors(ctx)
	if err != nil {
		slog.Warn("knowledge base majors unavailable", "error", err)
		majors, details = nil, nil
	}

	s := FromWire(universities, majors, details)
	slog.Info("knowledge base loaded",
		"universities", len(s.universities),
		"majors", len(s.majors),
		"programs", len(s.details),
	)
	return s
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
