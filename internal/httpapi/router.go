package httpapi

import (
	"net/http"
	"sync/atomic"

	"outreach-engine/internal/events"
	"outreach-engine/internal/ledger"
	"outreach-engine/internal/pipeline"
)

type Deps struct {
	Ledger *ledger.Ledger
	Runner *pipeline.Runner
	Hub    *events.Hub
	CfgVal *atomic.Value // stores config.Config
}

func NewMux(d Deps) *http.ServeMux {
	mux := http.NewServeMux()

	hh := HealthHandler{Ledger: d.Ledger}
	mux.HandleFunc("/health", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: hh.Get,
	}))

	dh := DecisionsHandler{Ledger: d.Ledger}
	mux.HandleFunc("/decisions", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: dh.List,
	}))

	oh := OutreachHandler{Runner: d.Runner}
	mux.HandleFunc("/outreach/status", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: oh.Status,
	}))
	mux.HandleFunc("/outreach/run", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: oh.Run,
	}))

	ch := ConfigHandler{CfgVal: d.CfgVal}
	mux.HandleFunc("/config", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Get,
	}))

	eh := EventsHandler{Hub: d.Hub}
	mux.HandleFunc("/events", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: eh.ServeSSE,
	}))

	return mux
}
