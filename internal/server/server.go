// Package server exposes the service over a JSON HTTP API. Handlers are
// thin: decode, call the service, encode. All domain rules live below.
package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nkathuria/settleup/internal/service"
)

// Server wires the HTTP routes to the service layer.
type Server struct {
	groups   *service.GroupService
	expenses *service.ExpenseService
	mux      *http.ServeMux
}

// New builds the server and registers all routes.
func New(groups *service.GroupService, expenses *service.ExpenseService) *Server {
	s := &Server{
		groups:   groups,
		expenses: expenses,
		mux:      http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.Handle("GET /metrics", promhttp.Handler())

	s.mux.HandleFunc("POST /api/v1/groups", s.handleCreateGroup)
	s.mux.HandleFunc("GET /api/v1/groups", s.handleListGroups)
	s.mux.HandleFunc("GET /api/v1/groups/{groupID}", s.handleGetGroup)

	s.mux.HandleFunc("POST /api/v1/groups/{groupID}/expenses", s.handleCreateExpense)
	s.mux.HandleFunc("DELETE /api/v1/groups/{groupID}/expenses/{expenseID}", s.handleDeleteExpense)

	s.mux.HandleFunc("GET /api/v1/groups/{groupID}/balances", s.handleGetBalances)
	s.mux.HandleFunc("GET /api/v1/groups/{groupID}/settlements", s.handleGetSettlements)
}

// Handler returns the full middleware-wrapped handler chain.
func (s *Server) Handler() http.Handler {
	return loggingMiddleware(metricsMiddleware(corsMiddleware(s.mux)))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
