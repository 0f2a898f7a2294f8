package catalog_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/p-n-ai/unimatch/internal/catalog"
)

func TestParseKey(t *testing.T) {
	unis := []string{"Universitas Indonesia", "Kampus A | B"}

	tests := []struct {
		name   string
		raw    string
		want   catalog.Key
		wantOK bool
	}{
		{"known university", "Universitas Indonesia | Kedokteran", catalog.Key{University: "Universitas Indonesia", Major: "Kedokteran"}, true},
		{"separator inside university", "Kampus A | B | Hukum", catalog.Key{University: "Kampus A | B", Major: "Hukum"}, true},
		{"unknown university", "ITB | Informatika", catalog.Key{University: "ITB", Major: "Informatika"}, true},
		{"no separator", "Informatika", catalog.Key{}, false},
		{"empty major", "ITB | ", catalog.Key{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := catalog.ParseKey(tt.raw, unis)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("ParseKey(%q) = %+v, %v; want %+v, %v", tt.raw, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestKey_String(t *testing.T) {
	k := catalog.Key{University: "UGM", Major: "Farmasi"}
	if k.String() != "UGM | Farmasi" {
		t.Errorf("String() = %q, want UGM | Farmasi", k.String())
	}
}

func TestFromWire_MajorsOf(t *testing.T) {
	s := catalog.FromWire(
		[]string{"UI", "ITB", "UI"},
		[]string{"Kedokteran", "Informatika", "Hukum"},
		map[string]catalog.Detail{
			"UI | Hukum":         {Program: "soshum"},
			"UI | Kedokteran":    {Program: "saintek", Tags: []string{"kesehatan"}},
			"ITB | Informatika":  {Program: "saintek"},
			"ITB | Astronomi":    {Program: "saintek"},
			"malformed key only": {Program: "saintek"},
		},
	)

	if got := s.Universities(); !reflect.DeepEqual(got, []string{"UI", "ITB"}) {
		t.Errorf("Universities() = %v, want deduped [UI ITB]", got)
	}
	if got := s.MajorsOf("UI"); !reflect.DeepEqual(got, []string{"Kedokteran", "Hukum"}) {
		t.Errorf("MajorsOf(UI) = %v, want majors-list order", got)
	}
	if got := s.MajorsOf("ITB"); !reflect.DeepEqual(got, []string{"Informatika", "Astronomi"}) {
		t.Errorf("MajorsOf(ITB) = %v, want listed then unlisted", got)
	}
	if got := s.MajorsOf("Unknown"); len(got) != 0 {
		t.Errorf("MajorsOf(Unknown) = %v, want empty", got)
	}

	d, ok := s.Detail(catalog.Key{University: "UI", Major: "Kedokteran"})
	if !ok || d.Program != "saintek" || len(d.Tags) != 1 {
		t.Errorf("Detail() = %+v, %v", d, ok)
	}
}

func TestSnapshot_ReturnsCopies(t *testing.T) {
	s := catalog.New([]string{"UI"}, []string{"Hukum"}, map[catalog.Key]catalog.Detail{
		{University: "UI", Major: "Hukum"}: {Program: "soshum"},
	})
	u := s.Universities()
	u[0] = "mutated"
	if s.Universities()[0] != "UI" {
		t.Error("Universities() exposed internal slice")
	}
	m := s.MajorsOf("UI")
	m[0] = "mutated"
	if s.MajorsOf("UI")[0] != "Hukum" {
		t.Error("MajorsOf() exposed internal slice")
	}
}

type fakeFetcher struct {
	unis     []string
	unisErr  error
	majors   []string
	details  map[string]catalog.Detail
	majorErr error
}

func (f fakeFetcher) FetchUniversities(context.Context) ([]string, error) {
	return f.unis, f.unisErr
}

func (f fakeFetcher) FetchMajors(context.Context) ([]string, map[string]catalog.Detail, error) {
	return f.majors, f.details, f.majorErr
}

func TestLoad_DegradesToEmpty(t *testing.T) {
	s := catalog.Load(context.Background(), fakeFetcher{
		unisErr:  errors.New("connection refused"),
		majorErr: errors.New("connection refused"),
	})
	if !s.IsEmpty() {
		t.Error("Load() with failing fetcher should return an empty snapshot")
	}
}

func TestLoad_PartialFailure(t *testing.T) {
	s := catalog.Load(context.Background(), fakeFetcher{
		unis:     []string{"UI"},
		majorErr: errors.New("503"),
	})
	if len(s.Universities()) != 1 {
		t.Errorf("Universities() = %v, want [UI]", s.Universities())
	}
	if len(s.MajorsOf("UI")) != 0 {
		t.Errorf("MajorsOf(UI) = %v, want empty when majors failed", s.MajorsOf("UI"))
	}
}
