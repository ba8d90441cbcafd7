package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkathuria/settleup/internal/events"
	"github.com/nkathuria/settleup/internal/service"
	"github.com/nkathuria/settleup/internal/storage/sqlite"
)

func setupTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	srv := New(
		service.NewGroupService(store),
		service.NewExpenseService(store, events.Noop{}),
	)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func createTestGroup(t *testing.T, ts *httptest.Server, members ...string) groupResponse {
	t.Helper()
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/v1/groups", map[string]any{
		"name":    "Roommates",
		"members": members,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decode[groupResponse](t, resp)
}

func TestHealthz(t *testing.T) {
	ts := setupTestServer(t)
	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCreateAndGetGroup(t *testing.T) {
	ts := setupTestServer(t)
	group := createTestGroup(t, ts, "alice", "bob", "carol")
	assert.NotEmpty(t, group.ID)
	assert.Equal(t, []string{"alice", "bob", "carol"}, group.Members)

	resp := doJSON(t, http.MethodGet, ts.URL+"/api/v1/groups/"+group.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[groupResponse](t, resp)
	assert.Equal(t, group.ID, got.ID)
	assert.Equal(t, "Roommates", got.Name)
}

func TestCreateGroupRejectsBadRoster(t *testing.T) {
	ts := setupTestServer(t)

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/v1/groups", map[string]any{
		"name": "Empty", "members": []string{},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, ts.URL+"/api/v1/groups", map[string]any{
		"name": "Dupes", "members": []string{"alice", "alice"},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetGroupNotFound(t *testing.T) {
	ts := setupTestServer(t)
	resp := doJSON(t, http.MethodGet, ts.URL+"/api/v1/groups/no-such-id", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestExpenseLifecycle(t *testing.T) {
	ts := setupTestServer(t)
	group := createTestGroup(t, ts, "alice", "bob", "carol")

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/v1/groups/"+group.ID+"/expenses", map[string]any{
		"payer_id":     "alice",
		"total":        "100.00",
		"participants": []string{"alice", "bob", "carol"},
		"policy":       "EQUAL",
		"description":  "groceries",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	expense := decode[expenseResponse](t, resp)
	require.Len(t, expense.Shares, 3)
	// Amounts cross the wire as exact decimal strings.
	assert.Equal(t, "33.34", expense.Shares[0].Amount.String())
	assert.Equal(t, "33.33", expense.Shares[1].Amount.String())

	// Balances reflect the committed expense.
	resp = doJSON(t, http.MethodGet, ts.URL+"/api/v1/groups/"+group.ID+"/balances", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	balances := decode[[]balanceResponse](t, resp)
	require.Len(t, balances, 3)
	assert.Equal(t, "66.66", balances[0].Net.String())
	assert.Equal(t, "-33.33", balances[1].Net.String())
	assert.Equal(t, "-33.33", balances[2].Net.String())

	// Settlement plan pays alice back.
	resp = doJSON(t, http.MethodGet, ts.URL+"/api/v1/groups/"+group.ID+"/settlements", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	plan := decode[[]transferResponse](t, resp)
	require.Len(t, plan, 2)
	assert.Equal(t, "bob", plan[0].From)
	assert.Equal(t, "alice", plan[0].To)
	assert.Equal(t, "33.33", plan[0].Amount.String())
	assert.Equal(t, "carol", plan[1].From)

	// Deleting the expense settles everyone again.
	resp = doJSON(t, http.MethodDelete, ts.URL+"/api/v1/groups/"+group.ID+"/expenses/"+expense.ID, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/v1/groups/"+group.ID+"/settlements", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	plan = decode[[]transferResponse](t, resp)
	assert.Empty(t, plan)
}

func TestCreateExpenseRejections(t *testing.T) {
	ts := setupTestServer(t)
	group := createTestGroup(t, ts, "alice", "bob")
	url := ts.URL + "/api/v1/groups/" + group.ID + "/expenses"

	tests := []struct {
		name       string
		body       map[string]any
		wantStatus int
	}{
		{
			name: "zero amount",
			body: map[string]any{
				"payer_id": "alice", "total": "0.00",
				"participants": []string{"alice"}, "policy": "EQUAL",
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "malformed amount",
			body: map[string]any{
				"payer_id": "alice", "total": "12.345",
				"participants": []string{"alice"}, "policy": "EQUAL",
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "float amount rejected",
			body: map[string]any{
				"payer_id": "alice", "total": 12.34,
				"participants": []string{"alice"}, "policy": "EQUAL",
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "unknown participant",
			body: map[string]any{
				"payer_id": "alice", "total": "10.00",
				"participants": []string{"mallory"}, "policy": "EQUAL",
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "unsupported policy",
			body: map[string]any{
				"payer_id": "alice", "total": "10.00",
				"participants": []string{"alice", "bob"}, "policy": "PERCENT",
			},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doJSON(t, http.MethodPost, url, tt.body)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestCreateExpenseDuplicateConflict(t *testing.T) {
	ts := setupTestServer(t)
	group := createTestGroup(t, ts, "alice", "bob")
	url := ts.URL + "/api/v1/groups/" + group.ID + "/expenses"
	body := map[string]any{
		"payer_id": "alice", "total": "30.00",
		"participants": []string{"alice", "bob"}, "policy": "EQUAL",
	}

	resp := doJSON(t, http.MethodPost, url, body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, url, body)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := setupTestServer(t)
	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
