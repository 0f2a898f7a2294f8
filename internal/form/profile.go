package form

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Choice is one saved university/major pair.
type Choice struct {
	University string `yaml:"university"`
	Major      string `yaml:"major,omitempty"`
}

// Profile is the on-disk shape of a filled form.
type Profile struct {
	Program         string            `yaml:"program,omitempty"`
	Competitiveness string            `yaml:"competitiveness,omitempty"`
	Achievement     string            `yaml:"achievement,omitempty"`
	Accreditation   string            `yaml:"accreditation,omitempty"`
	RankPercentile  string            `yaml:"rank_percentile,omitempty"`
	Grades          map[string]string `yaml:"grades,omitempty"`
	Choices         []Choice          `yaml:"choices,omitempty"`
}

// LoadProfile reads a YAML profile from path.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profile: %w", err)
	}

	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing profile %s: %w", path, err)
	}
	return &p, nil
}

// SaveProfile writes p to path as YAML, creating parent directories.
func SaveProfile(path string, p *Profile) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding profile: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating profile dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing profile: %w", err)
	}
	return nil
}

// Apply copies the profile's inputs onto f. Unknown grade keys are rejected.
// Blank metadata keeps the current value.
func (p *Profile) Apply(f *Form) error {
	meta := map[FieldID]string{
		Program:         p.Program,
		Competitiveness: p.Competitiveness,
		Achievement:     p.Achievement,
		Accreditation:   p.Accreditation,
		RankPercentile:  p.RankPercentile,
	}
	for id, v := range meta {
		if v == "" {
			continue
		}
		if err := f.Set(id, v); err != nil {
			return err
		}
	}

	for k, v := range p.Grades {
		id := FieldID(k)
		if !IsGrade(id) {
			return fmt.Errorf("profile grade %q is not a grade field", k)
		}
		if err := f.Set(id, v); err != nil {
			return err
		}
	}
	return nil
}

// ProfileOf captures the current inputs of f. Choices are left to the caller.
func ProfileOf(f *Form) *Profile {
	p := &Profile{
		Program:         f.Raw(Program),
		Competitiveness: f.Raw(Competitiveness),
		Achievement:     f.Raw(Achievement),
		Accreditation:   f.Raw(Accreditation),
		RankPercentile:  f.Raw(RankPercentile),
	}
	for _, id := range GradeFields {
		if v := f.Raw(id); v != "" {
			if p.Grades == nil {
				p.Grades = make(map[string]string)
			}
			p.Grades[string(id)] = v
		}
	}
	return p
}
