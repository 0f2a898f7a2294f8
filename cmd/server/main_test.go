package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/p-n-ai/unimatch/internal/api"
	"github.com/p-n-ai/unimatch/internal/app"
	"github.com/p-n-ai/unimatch/internal/catalog"
	"github.com/p-n-ai/unimatch/internal/platform/config"
	"github.com/p-n-ai/unimatch/internal/session"
)

func testApp(t *testing.T, svc api.Service, mutate func(*config.Config)) *app.App {
	t.Helper()
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	cfg.API.BaseURL = "http://127.0.0.1:1"
	cfg.Database.URL = ""
	cfg.Cache.URL = ""
	cfg.Log.Format = "json"
	cfg.Chat.Enabled = true
	cfg.Locale = "en"
	cfg.Prefs.Path = filepath.Join(t.TempDir(), "prefs.yaml")
	if mutate != nil {
		mutate(cfg)
	}

	a, err := app.Open(context.Background(), cfg, app.WithService(svc))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(a.Close)
	return a
}

func newMock() *api.MockService {
	svc := api.NewMockService()
	svc.Universities = []string{"Universitas Indonesia"}
	svc.Majors = []string{"Kedokteran"}
	svc.Details = map[string]catalog.Detail{"Universitas Indonesia | Kedokteran": {Program: "saintek"}}
	svc.Prediction = &api.PredictResult{Probability: 0.7, Label: "high"}
	return svc
}

func TestHealthEndpoints(t *testing.T) {
	mux := newMux(testApp(t, newMock(), nil))

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantBody   string
	}{
		{
			name:       "healthz returns 200",
			path:       "/healthz",
			wantStatus: http.StatusOK,
			wantBody:   `{"status":"ok"}`,
		},
		{
			name:       "readyz without backends returns 200",
			path:       "/readyz",
			wantStatus: http.StatusOK,
			wantBody:   `{"status":"ready"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			rec := httptest.NewRecorder()

			mux.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if got := strings.TrimSpace(rec.Body.String()); got != tt.wantBody {
				t.Errorf("body = %q, want %q", got, tt.wantBody)
			}
		})
	}
}

func TestReadyz_CacheDown(t *testing.T) {
	mr := miniredis.RunT(t)
	a := testApp(t, newMock(), func(c *config.Config) { c.Cache.URL = "redis://" + mr.Addr() })
	mux := newMux(a)

	check := func() int {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
		return rec.Code
	}

	if got := check(); got != http.StatusOK {
		t.Fatalf("status with cache up = %d, want 200", got)
	}
	mr.Close()
	if got := check(); got != http.StatusServiceUnavailable {
		t.Errorf("status with cache down = %d, want 503", got)
	}
}

func TestReadyz_APIDown(t *testing.T) {
	svc := newMock()
	mux := newMux(testApp(t, svc, nil))

	svc.HealthErr = errors.New("connection refused")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"component":"api"`) {
		t.Errorf("body = %q, want api component", rec.Body.String())
	}
	if svc.CallCount("HealthCheck") != 1 {
		t.Errorf("HealthCheck calls = %d, want 1", svc.CallCount("HealthCheck"))
	}
}

// dial opens a relay connection and returns the initial frame.
func dial(t *testing.T, a *app.App, query string) (*websocket.Conn, frame) {
	t.Helper()
	server := httptest.NewServer(newMux(a))
	t.Cleanup(server.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws" + query
	c, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { c.Close(websocket.StatusNormalClosure, "") })

	return c, read(t, c)
}

func read(t *testing.T, c *websocket.Conn) frame {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var f frame
	if err := wsjson.Read(ctx, c, &f); err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	return f
}

func send(t *testing.T, c *websocket.Conn, ev session.Event) frame {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := wsjson.Write(ctx, c, ev); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	return read(t, c)
}

func TestRelay_InitialView(t *testing.T) {
	_, f := dial(t, testApp(t, newMock(), nil), "")

	if f.View.SessionID == "" {
		t.Error("initial view has no session id")
	}
	if !f.View.ChatEnabled {
		t.Error("chat should be enabled")
	}
	if len(f.View.Slots) != 3 {
		t.Errorf("slots = %d, want 3", len(f.View.Slots))
	}
	if f.View.Theme != "light" {
		t.Errorf("theme = %q, want light", f.View.Theme)
	}
}

func TestRelay_Submit(t *testing.T) {
	svc := newMock()
	c, _ := dial(t, testApp(t, svc, nil), "")

	for _, ev := range []session.Event{
		{Type: session.EventField, Field: "s1", Value: "88"},
		{Type: session.EventField, Field: "math", Value: "90"},
		{Type: session.EventField, Field: "physics", Value: "85"},
		{Type: session.EventSelect, Slot: 1, Kind: "university", Value: "Universitas Indonesia"},
		{Type: session.EventSelect, Slot: 1, Kind: "major", Value: "Kedokteran"},
	} {
		if f := send(t, c, ev); f.Error != "" {
			t.Fatalf("event %+v error = %q", ev, f.Error)
		}
	}

	f := send(t, c, session.Event{Type: session.EventSubmit})
	if !f.View.Busy {
		t.Error("view should be busy right after submit")
	}

	f = read(t, c)
	if f.View.Busy {
		t.Error("view still busy after the reply")
	}
	if f.View.Result.Prediction == nil || f.View.Result.Prediction.Probability != 0.7 {
		t.Fatalf("prediction = %+v", f.View.Result.Prediction)
	}
	if n := svc.CallCount("Predict"); n != 1 {
		t.Errorf("Predict calls = %d, want 1", n)
	}
}

func TestRelay_InvalidSubmit(t *testing.T) {
	c, _ := dial(t, testApp(t, newMock(), nil), "")

	f := send(t, c, session.Event{Type: session.EventSubmit})
	if f.Error != "" {
		t.Errorf("validation should not be reported as an error, got %q", f.Error)
	}
	if len(f.View.Result.Issues) == 0 {
		t.Error("issues missing from the view")
	}
}

func TestRelay_BusyAndBadEvents(t *testing.T) {
	svc := newMock()
	svc.Gate = make(chan struct{})
	c, _ := dial(t, testApp(t, svc, nil), "")

	for _, ev := range []session.Event{
		{Type: session.EventField, Field: "s1", Value: "88"},
		{Type: session.EventField, Field: "math", Value: "90"},
		{Type: session.EventField, Field: "biology", Value: "85"},
		{Type: session.EventSelect, Slot: 1, Kind: "university", Value: "Universitas Indonesia"},
		{Type: session.EventSelect, Slot: 1, Kind: "major", Value: "Kedokteran"},
	} {
		send(t, c, ev)
	}

	send(t, c, session.Event{Type: session.EventSubmit})
	f := send(t, c, session.Event{Type: session.EventSubmit})
	if f.Error != "A prediction is already in progress." {
		t.Errorf("second submit error = %q", f.Error)
	}

	f = send(t, c, session.Event{Type: "bogus"})
	if f.Error == "" {
		t.Error("unknown event type should be reported")
	}

	close(svc.Gate)
	if f := read(t, c); f.View.Busy {
		t.Error("view still busy after the gate opened")
	}
}

func TestRelay_Chat(t *testing.T) {
	svc := newMock()
	svc.Reply = &api.ChatReply{Response: "Halo!"}
	c, _ := dial(t, testApp(t, svc, nil), "")

	f := send(t, c, session.Event{Type: session.EventChat, Text: "hai"})
	if !f.View.Typing || len(f.View.Chat) != 1 {
		t.Fatalf("after send: typing=%v chat=%d", f.View.Typing, len(f.View.Chat))
	}

	f = read(t, c)
	if f.View.Typing {
		t.Error("typing indicator still on")
	}
	if n := len(f.View.Chat); n != 2 || f.View.Chat[1].Text != "Halo!" {
		t.Errorf("transcript = %+v", f.View.Chat)
	}
}

func TestRelay_SharedTheme(t *testing.T) {
	mr := miniredis.RunT(t)
	a := testApp(t, newMock(), func(c *config.Config) { c.Cache.URL = "redis://" + mr.Addr() })

	c, _ := dial(t, a, "?client=abc")
	if f := send(t, c, session.Event{Type: session.EventTheme, Value: "dark"}); f.View.Theme != "dark" {
		t.Fatalf("theme = %q, want dark", f.View.Theme)
	}

	_, f := dial(t, a, "?client=abc")
	if f.View.Theme != "dark" {
		t.Errorf("second connection theme = %q, want dark", f.View.Theme)
	}
	_, f = dial(t, a, "?client=other")
	if f.View.Theme != "light" {
		t.Errorf("other client theme = %q, want light", f.View.Theme)
	}
}
