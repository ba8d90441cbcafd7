package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/nkathuria/settleup/internal/calculator"
	"github.com/nkathuria/settleup/internal/models"
	"github.com/nkathuria/settleup/internal/money"
	"github.com/nkathuria/settleup/internal/service"
	"github.com/nkathuria/settleup/internal/storage"
)

type createGroupRequest struct {
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

type groupResponse struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Members   []string `json:"members"`
	CreatedAt int64    `json:"created_at"`
}

type createExpenseRequest struct {
	PayerID      string      `json:"payer_id"`
	Total        money.Money `json:"total"`
	Participants []string    `json:"participants"`
	Policy       string      `json:"policy"`
	Description  string      `json:"description"`
}

type shareResponse struct {
	MemberID string      `json:"member_id"`
	Amount   money.Money `json:"amount"`
}

type expenseResponse struct {
	ID          string          `json:"id"`
	GroupID     string          `json:"group_id"`
	PayerID     string          `json:"payer_id"`
	Total       money.Money     `json:"total"`
	Policy      string          `json:"policy"`
	Shares      []shareResponse `json:"shares"`
	Description string          `json:"description,omitempty"`
	CreatedAt   int64           `json:"created_at"`
}

type balanceResponse struct {
	MemberID string      `json:"member_id"`
	Net      money.Money `json:"net"`
}

type transferResponse struct {
	From   string      `json:"from"`
	To     string      `json:"to"`
	Amount money.Money `json:"amount"`
}

func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var req createGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	group, err := s.groups.CreateGroup(r.Context(), req.Name, req.Members)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toGroupResponse(group))
}

func (s *Server) handleListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := s.groups.ListGroups(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out := make([]groupResponse, len(groups))
	for i, g := range groups {
		out[i] = toGroupResponse(g)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetGroup(w http.ResponseWriter, r *http.Request) {
	group, err := s.groups.GetGroup(r.Context(), r.PathValue("groupID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toGroupResponse(group))
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req createExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	expense, err := s.expenses.CreateExpense(
		r.Context(),
		r.PathValue("groupID"),
		req.PayerID,
		req.Total,
		req.Participants,
		calculator.SplitPolicy(req.Policy),
		req.Description,
	)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	expensesCreated.Inc()
	writeJSON(w, http.StatusCreated, toExpenseResponse(expense))
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	err := s.expenses.DeleteExpense(r.Context(), r.PathValue("groupID"), r.PathValue("expenseID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetBalances(w http.ResponseWriter, r *http.Request) {
	balances, err := s.expenses.GetBalances(r.Context(), r.PathValue("groupID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out := make([]balanceResponse, len(balances))
	for i, b := range balances {
		out[i] = balanceResponse{MemberID: b.MemberID, Net: b.Net}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetSettlements(w http.ResponseWriter, r *http.Request) {
	plan, err := s.expenses.GetSettlements(r.Context(), r.PathValue("groupID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out := make([]transferResponse, len(plan))
	for i, t := range plan {
		out[i] = transferResponse{From: t.From, To: t.To, Amount: t.Amount}
	}
	writeJSON(w, http.StatusOK, out)
}

func toGroupResponse(g *models.Group) groupResponse {
	return groupResponse{ID: g.ID, Name: g.Name, Members: g.Members, CreatedAt: g.CreatedAt}
}

func toExpenseResponse(e *models.Expense) expenseResponse {
	shares := make([]shareResponse, len(e.Shares))
	for i, share := range e.Shares {
		shares[i] = shareResponse{MemberID: share.MemberID, Amount: share.Amount}
	}
	return expenseResponse{
		ID:          e.ID,
		GroupID:     e.GroupID,
		PayerID:     e.PayerID,
		Total:       e.Total,
		Policy:      string(e.Policy),
		Shares:      shares,
		Description: e.Description,
		CreatedAt:   e.CreatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps core failures onto HTTP statuses. Core errors are
// deterministic pure-function outcomes, never transient, so nothing here is
// worth retrying and the message is surfaced verbatim.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrDuplicateExpense):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, calculator.ErrUnbalancedLedger):
		// Corrupted stored data, not client input.
		ledgerIntegrityAlarms.Inc()
		writeError(w, http.StatusInternalServerError, err.Error())
	case errors.Is(err, calculator.ErrInvalidAmount),
		errors.Is(err, calculator.ErrNoParticipants),
		errors.Is(err, calculator.ErrDuplicateParticipant),
		errors.Is(err, calculator.ErrUnsupportedSplitPolicy),
		errors.Is(err, calculator.ErrUnknownMember),
		errors.Is(err, service.ErrWrongGroup),
		errors.Is(err, money.ErrInvalidFormat),
		errors.Is(err, models.ErrEmptyRoster),
		errors.Is(err, models.ErrEmptyMemberID),
		errors.Is(err, models.ErrDuplicateMember):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error("Unhandled service error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
