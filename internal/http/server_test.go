package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/records"
	"fintrack/internal/services"
)

type memKV struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemKV() *memKV {
	return &memKV{data: make(map[string][]byte)}
}

func (m *memKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memKV) Put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	store := records.NewStore(newMemKV())
	require.NoError(t, store.Load(context.Background()))

	service := services.NewRecordService(store, nil)
	logger := log.New(log.DefaultConfig()).WithComponent(log.ComponentHTTP)

	srv := NewServer(":0", store, service, logger)
	srv.now = func() time.Time {
		return time.Date(2024, time.February, 10, 15, 0, 0, 0, time.Local)
	}
	t.Cleanup(func() {
		_ = srv.Shutdown(context.Background())
	})
	return srv
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.RemoteAddr = "203.0.113.7:43210"
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestCreateAndListTransactions(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/transactions", map[string]string{
		"type":        "income",
		"amount":      "1000.00",
		"category":    "Salário",
		"description": "pagamento",
		"date":        "2024-01-15",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created core.Transaction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, int64(100000), created.Amount.Cents)

	rec = doJSON(t, srv, http.MethodGet, "/api/transactions", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var list []core.Transaction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)
}

func TestCreateTransactionRejection(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/transactions", map[string]string{
		"type":     "income",
		"amount":   "abc",
		"category": "Salário",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/transactions", nil)
	var list []core.Transaction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Empty(t, list)
}

func TestCreateTransactionBadJSON(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/transactions", bytes.NewBufferString("{"))
	req.RemoteAddr = "203.0.113.7:43210"
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSummaryEndpoint(t *testing.T) {
	srv := newTestServer(t)

	doJSON(t, srv, http.MethodPost, "/api/transactions", map[string]string{
		"type": "income", "amount": "1000.00", "category": "Salário", "date": "2024-01-15",
	})
	doJSON(t, srv, http.MethodPost, "/api/transactions", map[string]string{
		"type": "expense", "amount": "300.00", "category": "Alimentação", "date": "2024-01-20",
	})

	rec := doJSON(t, srv, http.MethodGet, "/api/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var summary core.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, int64(100000), summary.TotalIncome.Cents)
	assert.Equal(t, int64(30000), summary.TotalExpenses.Cents)
	assert.Equal(t, int64(70000), summary.Balance.Cents)
	assert.InDelta(t, 70.0, summary.BalancePercent, 0.001)
}

func TestSummaryCachedBySnapshotVersion(t *testing.T) {
	srv := newTestServer(t)

	doJSON(t, srv, http.MethodPost, "/api/transactions", map[string]string{
		"type": "income", "amount": "100.00", "category": "Salário", "date": "2024-01-15",
	})
	rec := doJSON(t, srv, http.MethodGet, "/api/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, srv.summaryCache.Size())

	// A new mutation bumps the snapshot version; the next read must not
	// reuse the old entry.
	doJSON(t, srv, http.MethodPost, "/api/transactions", map[string]string{
		"type": "expense", "amount": "40.00", "category": "Transporte", "date": "2024-01-16",
	})
	rec = doJSON(t, srv, http.MethodGet, "/api/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var summary core.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, int64(6000), summary.Balance.Cents)
	assert.Equal(t, 2, srv.summaryCache.Size())
}

func TestBreakdownEndpoint(t *testing.T) {
	srv := newTestServer(t)

	doJSON(t, srv, http.MethodPost, "/api/transactions", map[string]string{
		"type": "expense", "amount": "300.00", "category": "Alimentação", "date": "2024-01-20",
	})
	doJSON(t, srv, http.MethodPost, "/api/transactions", map[string]string{
		"type": "expense", "amount": "200.00", "category": "Transporte", "date": "2024-02-01",
	})

	rec := doJSON(t, srv, http.MethodGet, "/api/breakdown", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var breakdown []core.CategoryAmount
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &breakdown))
	require.Len(t, breakdown, 2)
	assert.Equal(t, "Alimentação", breakdown[0].Name)
	assert.Equal(t, "Transporte", breakdown[1].Name)
}

func TestTrendEndpoint(t *testing.T) {
	srv := newTestServer(t)

	doJSON(t, srv, http.MethodPost, "/api/transactions", map[string]string{
		"type": "income", "amount": "1000.00", "category": "Salário", "date": "2024-01-15",
	})

	rec := doJSON(t, srv, http.MethodGet, "/api/trend", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var trend []core.MonthPoint
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &trend))
	require.Len(t, trend, 6)
	// Pinned clock is February 2024, so the series runs Sep 2023..Feb 2024.
	assert.Equal(t, 2023, trend[0].Year)
	assert.Equal(t, 9, trend[0].Month)
	assert.Equal(t, 2024, trend[5].Year)
	assert.Equal(t, 2, trend[5].Month)
	assert.Equal(t, int64(100000), trend[4].Income.Cents)
}

func TestGoalLifecycle(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/goals", map[string]string{
		"name":     "Viagem",
		"target":   "1000.00",
		"category": "viagem",
		"deadline": "2024-02-20",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created core.Goal
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)

	rec = doJSON(t, srv, http.MethodPost, "/api/goals/progress", map[string]string{
		"id": created.ID, "amount": "250.00",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/goals", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var views []goalView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &views))
	require.Len(t, views, 1)
	assert.Equal(t, int64(25000), views[0].Current.Cents)
	assert.InDelta(t, 25.0, views[0].Progress.Pct, 0.001)
	assert.False(t, views[0].Progress.Completed)
	require.NotNil(t, views[0].Progress.DaysRemaining)
	assert.Equal(t, 10, *views[0].Progress.DaysRemaining)
}

func TestGoalProgressUnknownID(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/goals/progress", map[string]string{
		"id": "missing", "amount": "10.00",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodDelete, "/api/summary", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRateLimiter(t *testing.T) {
	rl := newRateLimiter()
	defer rl.stop()

	metrics := &securityMetrics{}
	for i := 0; i < rateLimitMax; i++ {
		assert.True(t, rl.allow("198.51.100.1", metrics))
	}
	assert.False(t, rl.allow("198.51.100.1", metrics))
	assert.Equal(t, int64(1), metrics.rateLimitHits)

	// Other clients are unaffected.
	assert.True(t, rl.allow("198.51.100.2", metrics))
}

func TestExtractClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		want       string
	}{
		{"direct", "203.0.113.7:1234", "", "203.0.113.7"},
		{"forwarded from trusted proxy", "127.0.0.1:1234", "203.0.113.9", "203.0.113.9"},
		{"forwarded from untrusted peer ignored", "203.0.113.7:1234", "198.51.100.5", "203.0.113.7"},
		{"garbage forwarded header ignored", "127.0.0.1:1234", "not-an-ip", "127.0.0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			assert.Equal(t, tt.want, extractClientIP(req))
		})
	}
}

func TestSanitizeInput(t *testing.T) {
	assert.Equal(t, "mercado", sanitizeInput("mercado\x00"))
	assert.Equal(t, "ab", sanitizeInput("a\tb"))
	assert.Equal(t, "café", sanitizeInput("café"))
}
