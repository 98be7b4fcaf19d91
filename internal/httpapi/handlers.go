package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"outreach-engine/internal/config"
	"outreach-engine/internal/events"
	"outreach-engine/internal/ledger"
	"outreach-engine/internal/pipeline"
)

type HealthHandler struct {
	Ledger *ledger.Ledger
}

func (h HealthHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"ok":               true,
		"time":             time.Now().Format(time.RFC3339),
		"ledger_persisted": h.Ledger.Persistent(),
		"responded":        h.Ledger.RespondedCount(),
	})
}

type DecisionsHandler struct {
	Ledger *ledger.Ledger
}

func (h DecisionsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	rows, err := h.Ledger.ListDecisions(r.Context(), limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if rows == nil {
		rows = []ledger.DecisionRow{}
	}
	writeJSON(w, rows)
}

type OutreachHandler struct {
	Runner *pipeline.Runner
}

func (h OutreachHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.Runner.Status())
}

// Run kicks a detached cycle by hand. The claim is a check-and-set inside
// the runner, so two concurrent POSTs can never start overlapping cycles.
func (h OutreachHandler) Run(w http.ResponseWriter, r *http.Request) {
	if !h.Runner.StartCycle() {
		http.Error(w, "cycle already running", http.StatusConflict)
		return
	}
	w.WriteHeader(http.StatusAccepted)
	writeJSON(w, map[string]string{"status": "started"})
}

type ConfigHandler struct {
	CfgVal *atomic.Value // stores config.Config
}

func (h ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	cfgAny := h.CfgVal.Load()
	if cfgAny == nil {
		http.Error(w, "config not loaded", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, cfgAny.(config.Config))
}

type EventsHandler struct {
	Hub interface {
		Subscribe() chan events.Event
		Unsubscribe(chan events.Event)
	}
}

func (h EventsHandler) ServeSSE(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	ch := h.Hub.Subscribe()
	defer h.Hub.Unsubscribe(ch)

	fmt.Fprintf(w, "event: ping\ndata: %s\n\n", events.New("ping", nil).Encode())
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case e := <-ch:
			fmt.Fprintf(w, "event: message\ndata: %s\n\n", e.Encode())
			flusher.Flush()
		}
	}
}
