package console

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

func (p *Plugin) router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/report", p.handleReport)

	return r
}

func (p *Plugin) handleReport(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Console-Run", p.runID)

	err := json.NewEncoder(w).Encode(p.Report())
	if err != nil {
		p.log.Error("failed to write the run report", zap.Error(err))
	}
}
