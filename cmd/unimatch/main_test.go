package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/p-n-ai/unimatch/internal/result"
	"github.com/p-n-ai/unimatch/internal/session"
)

const validProfile = `program: saintek
grades:
  s1: "88"
  math: "90"
  biology: "85"
choices:
  - university: Universitas Indonesia
    major: Kedokteran
`

type fakeService struct {
	predictStatus int
	predicts      atomic.Int32
}

func (f *fakeService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/api/kb/universities":
		w.Write([]byte(`{"universities":["Universitas Indonesia"]}`))
	case "/api/kb/majors-full":
		w.Write([]byte(`{"majors":["Kedokteran"],"details":{"Universitas Indonesia | Kedokteran":{"program":"saintek"}}}`))
	case "/api/predict":
		f.predicts.Add(1)
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if f.predictStatus != 0 {
			w.WriteHeader(f.predictStatus)
			w.Write([]byte(`{"error":"model unavailable"}`))
			return
		}
		w.Write([]byte(`{"probability":0.8,"label":"high","tips":["Keep it up"]}`))
	case "/api/recommend":
		w.Write([]byte(`{"preferred":[{"university":"Universitas Indonesia","major":"Kedokteran","probability":0.8}],
			"alternatives":[{"university":"Universitas Indonesia","major":"Farmasi","probability":0.9,"tags":["health"]}]}`))
	default:
		http.NotFound(w, r)
	}
}

// setup points the CLI at a fake service and isolates config from the host.
func setup(t *testing.T, svc *fakeService) (apiURL, dir string) {
	t.Helper()
	server := httptest.NewServer(svc)
	t.Cleanup(server.Close)

	dir = t.TempDir()
	for _, k := range []string{"UNIMATCH_DATABASE_URL", "UNIMATCH_CACHE_URL", "UNIMATCH_API_BASE", "UNIMATCH_LOG_FORMAT"} {
		t.Setenv(k, "")
	}
	t.Setenv("UNIMATCH_PREFS_PATH", filepath.Join(dir, "prefs.yaml"))
	return server.URL, dir
}

func writeProfile(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "me.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestPredict(t *testing.T) {
	svc := &fakeService{}
	apiURL, dir := setup(t, svc)
	profile := writeProfile(t, dir, validProfile)

	out, err := run(t, "predict", "--api", apiURL, "--locale", "en", "--plain", "--profile", profile)
	if err != nil {
		t.Fatalf("predict error = %v\n%s", err, out)
	}
	for _, want := range []string{"Admission probability", "80.0%", "Keep it up", "Farmasi [health]"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if svc.predicts.Load() != 1 {
		t.Errorf("predict calls = %d, want 1", svc.predicts.Load())
	}
}

func TestPredict_Invalid(t *testing.T) {
	svc := &fakeService{}
	apiURL, dir := setup(t, svc)
	profile := writeProfile(t, dir, "program: saintek\n")

	out, err := run(t, "predict", "--api", apiURL, "--locale", "en", "--profile", profile)
	if !errors.Is(err, session.ErrInvalid) {
		t.Fatalf("predict error = %v, want ErrInvalid", err)
	}
	if !strings.Contains(out, "Choose at least one university.") {
		t.Errorf("issues not printed:\n%s", out)
	}
	if svc.predicts.Load() != 0 {
		t.Error("invalid profile should not reach the service")
	}
}

func TestPredict_ServiceError(t *testing.T) {
	apiURL, dir := setup(t, &fakeService{predictStatus: http.StatusInternalServerError})
	profile := writeProfile(t, dir, validProfile)

	out, err := run(t, "predict", "--api", apiURL, "--locale", "en", "--profile", profile)
	if !errors.Is(err, errNoResult) {
		t.Fatalf("predict error = %v, want errNoResult", err)
	}
	if !strings.Contains(out, "Something went wrong while contacting the server.") {
		t.Errorf("generic error not printed:\n%s", out)
	}
}

func TestPredict_MissingProfileFlag(t *testing.T) {
	apiURL, _ := setup(t, &fakeService{})
	if _, err := run(t, "predict", "--api", apiURL); err == nil {
		t.Fatal("predict without --profile should fail")
	}
}

func TestExport(t *testing.T) {
	apiURL, dir := setup(t, &fakeService{})
	profile := writeProfile(t, dir, validProfile)
	out := filepath.Join(dir, "recs.xlsx")

	stdout, err := run(t, "export", "--api", apiURL, "--locale", "en", "--profile", profile, "--out", out)
	if err != nil {
		t.Fatalf("export error = %v\n%s", err, stdout)
	}
	if !strings.Contains(stdout, "wrote 2 recommendations") {
		t.Errorf("stdout = %q", stdout)
	}

	f, err := excelize.OpenFile(out)
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(result.SheetAlternatives)
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) != 2 || rows[1][2] != "Farmasi" || rows[1][6] != "health" {
		t.Errorf("alternatives rows = %v", rows)
	}
}

func TestTheme(t *testing.T) {
	_, dir := setup(t, &fakeService{})

	out, err := run(t, "theme", "dark")
	if err != nil {
		t.Fatalf("theme dark error = %v", err)
	}
	if strings.TrimSpace(out) != "dark" {
		t.Errorf("output = %q, want dark", out)
	}
	if _, err := os.Stat(filepath.Join(dir, "prefs.yaml")); err != nil {
		t.Errorf("prefs file not written: %v", err)
	}

	out, err = run(t, "theme")
	if err != nil {
		t.Fatalf("theme error = %v", err)
	}
	if strings.TrimSpace(out) != "dark" {
		t.Errorf("stored theme = %q, want dark", out)
	}

	if _, err := run(t, "theme", "purple"); err == nil {
		t.Error("theme should reject unknown values")
	}
}
