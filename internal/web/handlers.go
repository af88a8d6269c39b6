package web

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jaminalder/tictactoe-history/internal/app"
	"go.uber.org/zap"
)

type handlers struct {
	svc       *app.Service
	tpl       *templates
	log       *zap.Logger
	heartbeat time.Duration
}

func (h *handlers) renderFragment(sess app.Session) ([]byte, error) {
	return renderTemplate(h.tpl.game, "fragment", newFragmentData(sess))
}

// broadcastFragment is the service's renderer for subscribers.
func (h *handlers) broadcastFragment(sess app.Session) []byte {
	b, err := h.renderFragment(sess)
	if err != nil {
		h.log.Error("render broadcast", zap.String("game_id", sess.ID), zap.Error(err))
		return nil
	}
	return b
}

func (h *handlers) writeHTML(w http.ResponseWriter, b []byte, err error) {
	if err != nil {
		h.log.Error("render", zap.Error(err))
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

func (h *handlers) index(w http.ResponseWriter, r *http.Request) {
	b, err := renderTemplate(h.tpl.index, "", nil)
	h.writeHTML(w, b, err)
}

func (h *handlers) healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok")
}

func (h *handlers) create(w http.ResponseWriter, r *http.Request) {
	sess, err := h.svc.CreateGame()
	if err != nil {
		http.Error(w, "failed to create", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/game/"+sess.ID, http.StatusSeeOther)
}

func (h *handlers) view(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.svc.Get(chi.URLParam(r, "id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	b, err := renderTemplate(h.tpl.game, "", newFragmentData(*sess))
	h.writeHTML(w, b, err)
}

func (h *handlers) play(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, "cell", h.svc.Play)
}

func (h *handlers) jump(w http.ResponseWriter, r *http.Request) {
	h.command(w, r, "step", h.svc.JumpTo)
}

func (h *handlers) sort(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sess, err := h.svc.ToggleSort(id)
	h.respond(w, r, sess, err)
}

// command dispatches an intent carrying one integer form field. A missing or
// malformed value is treated like any other rejected intent.
func (h *handlers) command(w http.ResponseWriter, r *http.Request, field string, fn func(string, int) (*app.Session, error)) {
	id := chi.URLParam(r, "id")
	_ = r.ParseForm()
	n, convErr := strconv.Atoi(r.Form.Get(field))
	if convErr != nil {
		sess, ok := h.svc.Get(id)
		if !ok {
			http.NotFound(w, r)
			return
		}
		h.log.Debug("ignoring malformed intent", zap.String("game_id", id), zap.String("field", field))
		h.respond(w, r, sess, nil)
		return
	}
	sess, err := fn(id, n)
	h.respond(w, r, sess, err)
}

// respond renders the fragment. Engine rejections are no-ops for the player,
// so only a missing session changes the response.
func (h *handlers) respond(w http.ResponseWriter, r *http.Request, sess *app.Session, err error) {
	if errors.Is(err, app.ErrNotFound) || sess == nil {
		http.NotFound(w, r)
		return
	}
	b, rerr := h.renderFragment(*sess)
	h.writeHTML(w, b, rerr)
}

func (h *handlers) events(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := h.svc.Get(id); !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")
	// In tests or non-EventSource requests, just acknowledge headers and return
	if r.Header.Get("Accept") != "text/event-stream" {
		w.WriteHeader(http.StatusOK)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		w.WriteHeader(http.StatusOK)
		return
	}
	ctx := r.Context()
	ch, unsub, err := h.svc.Subscribe(ctx, id)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer unsub()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()
	w.WriteHeader(http.StatusOK)
	flusher.Flush()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = io.WriteString(w, ": ping\n\n")
			flusher.Flush()
		case b, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(sseEvent("game", b))
			flusher.Flush()
		}
	}
}

// sseEvent frames payload as one server-sent event, one data line per
// payload line.
func sseEvent(name string, payload []byte) []byte {
	var buf bytes.Buffer
	buf.WriteString("event: " + name + "\n")
	for _, line := range bytes.Split(payload, []byte("\n")) {
		buf.WriteString("data: ")
		buf.Write(line)
		buf.WriteByte('\n')
	}
	buf.WriteByte('\n')
	return buf.Bytes()
}
