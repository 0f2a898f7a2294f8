package payload_test

import (
	"encoding/json"
	"testing"

	"github.com/p-n-ai/unimatch/internal/form"
	"github.com/p-n-ai/unimatch/internal/payload"
	"github.com/p-n-ai/unimatch/internal/selection"
)

func TestBuild_OnlySecondSlot(t *testing.T) {
	s := make([]selection.Slot, selection.Slots)
	s[1] = selection.Slot{
		University: selection.Selector{Selected: "Universitas Gadjah Mada", Enabled: true},
		Major:      selection.Selector{Selected: "Hukum", Enabled: true},
	}

	p := payload.Build(form.New(), s)

	if p.TargetUniversity != "Universitas Gadjah Mada" {
		t.Errorf("TargetUniversity = %q", p.TargetUniversity)
	}
	if p.TargetUniversity1 != nil {
		t.Errorf("TargetUniversity1 = %q, want nil", *p.TargetUniversity1)
	}
	if p.TargetUniversity2 == nil || *p.TargetUniversity2 != "Universitas Gadjah Mada" {
		t.Errorf("TargetUniversity2 = %v", p.TargetUniversity2)
	}
	if len(p.TargetUniversities) != 1 || p.TargetUniversities[0] != "Universitas Gadjah Mada" {
		t.Errorf("TargetUniversities = %v", p.TargetUniversities)
	}
	if p.TargetMajor != "Hukum" || p.TargetMajor2 == nil || *p.TargetMajor2 != "Hukum" {
		t.Errorf("major fields = %q / %v", p.TargetMajor, p.TargetMajor2)
	}
}

func TestBuild_Defaults(t *testing.T) {
	p := payload.Build(form.New(), make([]selection.Slot, selection.Slots))

	if p.TargetUniversity != payload.Unknown || p.TargetMajor != payload.Unknown {
		t.Errorf("singular targets = %q / %q, want Unknown", p.TargetUniversity, p.TargetMajor)
	}
	if p.RankPercentile != 100 {
		t.Errorf("RankPercentile = %d, want 100", p.RankPercentile)
	}
	if p.Program != "saintek" || p.Achievement != "none" || p.Accreditation != "B" {
		t.Errorf("metadata = %q %q %q", p.Program, p.Achievement, p.Accreditation)
	}
}

func TestBuild_GradesAndRank(t *testing.T) {
	f := form.New()
	_ = f.Set(form.S1, "105")
	_ = f.Set(form.Math, "88.5")
	_ = f.Set(form.RankPercentile, "0.4")

	p := payload.Build(f, nil)

	if p.S1 == nil || *p.S1 != 100 {
		t.Errorf("S1 = %v, want clamped 100", p.S1)
	}
	if p.Math == nil || *p.Math != 88.5 {
		t.Errorf("Math = %v, want 88.5", p.Math)
	}
	if p.Physics != nil {
		t.Errorf("Physics = %v, want nil", *p.Physics)
	}
	if p.RankPercentile != 1 {
		t.Errorf("RankPercentile = %d, want 1", p.RankPercentile)
	}
}

func TestBuild_JSONShape(t *testing.T) {
	data, err := json.Marshal(payload.Build(form.New(), nil))
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	for _, key := range []string{"s1", "history", "target_university_1", "target_major_3"} {
		v, ok := m[key]
		if !ok {
			t.Errorf("key %q missing", key)
		} else if v != nil {
			t.Errorf("%s = %v, want null", key, v)
		}
	}
	if list, ok := m["target_universities"].([]any); !ok || len(list) != 0 {
		t.Errorf("target_universities = %v, want empty array", m["target_universities"])
	}
}

func TestBuild_DoesNotMutateInputs(t *testing.T) {
	f := form.New()
	_ = f.Set(form.S1, "150")
	s := []selection.Slot{{University: selection.Selector{Selected: "UI", Enabled: true}}}

	_ = payload.Build(f, s)

	if f.Raw(form.S1) != "150" || s[0].University.Selected != "UI" {
		t.Error("Build() modified its inputs")
	}
}
