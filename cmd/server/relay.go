package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/p-n-ai/unimatch/internal/app"
	"github.com/p-n-ai/unimatch/internal/i18n"
	"github.com/p-n-ai/unimatch/internal/prefs"
	"github.com/p-n-ai/unimatch/internal/session"
)

// frame is what the server pushes after every change.
type frame struct {
	View  session.View `json:"view"`
	Error string       `json:"error,omitempty"`
}

// inbound is one item on a relay's loop: a client event, a finished
// network call or a read failure.
type inbound struct {
	event *session.Event
	apply session.Apply
	err   error
}

// handleWS upgrades the request and runs one session until the client
// leaves. The optional client query parameter keys the shared theme
// preference.
func handleWS(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, nil)
		if err != nil {
			slog.Warn("websocket accept failed", "error", err)
			return
		}
		defer c.CloseNow()

		var store prefs.Store
		if client := r.URL.Query().Get("client"); client != "" && a.Cache != nil {
			store = a.Prefs(client)
		}
		s := a.NewSession(store, true, session.WithDarkBackground(func() bool { return false }))

		err = relay(r.Context(), c, s)
		switch websocket.CloseStatus(err) {
		case websocket.StatusNormalClosure, websocket.StatusGoingAway:
			slog.Info("client disconnected", "session_id", s.ID())
			c.Close(websocket.StatusNormalClosure, "")
		default:
			if !errors.Is(err, context.Canceled) {
				slog.Warn("relay stopped", "session_id", s.ID(), "error", err)
			}
			c.Close(websocket.StatusInternalError, "relay stopped")
		}
	}
}

// relay is the session's event loop. Client events and network results
// arrive on one channel so the session is only touched here.
func relay(ctx context.Context, c *websocket.Conn, s *session.Session) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.Start(ctx)

	inbox := make(chan inbound)
	post := func(in inbound) bool {
		select {
		case inbox <- in:
			return true
		case <-ctx.Done():
			return false
		}
	}

	go func() {
		for {
			var ev session.Event
			if err := wsjson.Read(ctx, c, &ev); err != nil {
				post(inbound{err: err})
				return
			}
			if !post(inbound{event: &ev}) {
				return
			}
		}
	}()

	if err := wsjson.Write(ctx, c, frame{View: s.Snapshot()}); err != nil {
		return err
	}

	for {
		var in inbound
		select {
		case <-ctx.Done():
			return ctx.Err()
		case in = <-inbox:
		}

		var out frame
		switch {
		case in.err != nil:
			return in.err
		case in.apply != nil:
			in.apply(s)
		default:
			follow, err := s.Dispatch(ctx, *in.event)
			out.Error = clientError(s, err)
			if follow != nil {
				go func() {
					post(inbound{apply: follow(ctx)})
				}()
			}
		}

		out.View = s.Snapshot()
		if err := wsjson.Write(ctx, c, out); err != nil {
			return err
		}
	}
}

// clientError maps a Dispatch error to the text shown to the user.
// Validation failures are already part of the view.
func clientError(s *session.Session, err error) string {
	switch {
	case err == nil, errors.Is(err, session.ErrInvalid):
		return ""
	case errors.Is(err, session.ErrBusy):
		return s.Printer().Sprintf(i18n.SubmitBusy)
	default:
		slog.Debug("event rejected", "session_id", s.ID(), "error", err)
		return err.Error()
	}
}
