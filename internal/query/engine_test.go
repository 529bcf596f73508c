package query

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raushan1140/invoice-po-matcher/internal/config"
	"github.com/raushan1140/invoice-po-matcher/internal/repository"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupTestStore(t *testing.T) *repository.Store {
	t.Helper()
	store, err := repository.Open(filepath.Join(t.TempDir(), "test.db"), time.Second, discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestTranslatePatternFallback(t *testing.T) {
	engine := NewEngine(setupTestStore(t), nil, discardLogger())

	tests := []struct {
		name    string
		query   string
		wantSQL string
	}{
		{
			name:    "leaderboard",
			query:   "Show me the current leaderboard",
			wantSQL: `SELECT team_name, score, validations_completed, queries_executed FROM leaderboard ORDER BY score DESC`,
		},
		{
			name:    "top vendors by spend",
			query:   "What are the top 10 vendors by spending?",
			wantSQL: `SELECT vendor, SUM(total) as total_spend FROM purchase_orders GROUP BY vendor ORDER BY total_spend DESC LIMIT 10`,
		},
		{
			name:    "recent invoices",
			query:   "What are the recent invoices?",
			wantSQL: `SELECT invoice_id, vendor, total, date FROM invoices ORDER BY created_at DESC LIMIT 10`,
		},
		{
			name:    "average order value",
			query:   "what is the average order value?",
			wantSQL: `SELECT AVG(total) as average_order_value FROM purchase_orders`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sqlQuery, method, err := engine.Translate(context.Background(), tt.query)
			require.NoError(t, err)
			assert.Equal(t, MethodPattern, method)
			assert.Equal(t, tt.wantSQL, sqlQuery)
		})
	}
}

func TestTranslateNoMatch(t *testing.T) {
	engine := NewEngine(setupTestStore(t), nil, discardLogger())

	_, _, err := engine.Translate(context.Background(), "what is the meaning of life")
	assert.ErrorIs(t, err, ErrNoTranslation)
}

func TestExecuteRecordsHistoryAndScores(t *testing.T) {
	store := setupTestStore(t)
	engine := NewEngine(store, nil, discardLogger())
	ctx := context.Background()

	before, err := store.GetTeam(ctx, "team-001")
	require.NoError(t, err)

	res, err := engine.Execute(ctx, "show me the leaderboard", "team-001")
	require.NoError(t, err)
	assert.Equal(t, MethodPattern, res.Method)
	assert.Equal(t, 7, res.ResultCount)
	assert.Len(t, res.Results, 7)
	assert.Equal(t, "Tech Titans", res.Results[0]["team_name"])

	after, err := store.GetTeam(ctx, "team-001")
	require.NoError(t, err)
	assert.Equal(t, before.Score+10, after.Score)
	assert.Equal(t, before.QueriesExecuted+1, after.QueriesExecuted)

	history, err := store.ListQueryHistory(ctx, "team-001", 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "show me the leaderboard", history[0].NaturalQuery)
	assert.Equal(t, 7, history[0].ResultCount)
}

func TestExecuteWithoutTeam(t *testing.T) {
	store := setupTestStore(t)
	engine := NewEngine(store, nil, discardLogger())

	res, err := engine.Execute(context.Background(), "how many total purchase orders do we have", "")
	require.NoError(t, err)
	require.Len(t, res.Results, 1)

	history, err := store.ListQueryHistory(context.Background(), "", 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Nil(t, history[0].TeamID)
}

func newFakeOpenAI(t *testing.T, content string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4", req["model"])

		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": content}},
			},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testTranslator(t *testing.T, srv *httptest.Server) *Translator {
	t.Helper()
	tr := NewTranslator(config.LLMConfig{
		APIKey:  "test-key",
		BaseURL: srv.URL,
		Model:   "gpt-4",
	}, discardLogger())
	require.NotNil(t, tr)
	return tr
}

func TestTranslatorStripsFencesAndValidates(t *testing.T) {
	srv := newFakeOpenAI(t, "```sql\nSELECT vendor FROM purchase_orders\n```")
	tr := testTranslator(t, srv)

	sqlQuery, err := tr.Translate(context.Background(), "list vendors")
	require.NoError(t, err)
	assert.Equal(t, "SELECT vendor FROM purchase_orders", sqlQuery)
}

func TestTranslatorRejectsUnsafeOutput(t *testing.T) {
	srv := newFakeOpenAI(t, "DROP TABLE invoices")
	tr := testTranslator(t, srv)

	_, err := tr.Translate(context.Background(), "remove everything")
	assert.ErrorIs(t, err, ErrUnsafeQuery)
}

func TestNewTranslatorWithoutKey(t *testing.T) {
	assert.Nil(t, NewTranslator(config.LLMConfig{}, discardLogger()))
}

func TestTranslatorFailureFallsBackToPatterns(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	engine := NewEngine(setupTestStore(t), testTranslator(t, srv), discardLogger())

	sqlQuery, method, err := engine.Translate(context.Background(), "show me the leaderboard")
	require.NoError(t, err)
	assert.Equal(t, MethodPattern, method)
	assert.Contains(t, sqlQuery, "FROM leaderboard")
}

func TestSuggestionsAndSamples(t *testing.T) {
	assert.Len(t, Suggestions(), 10)

	samples := Samples()
	require.Len(t, samples, 3)
	for _, s := range samples {
		assert.NotEmpty(t, s.Natural)
		assert.True(t, strings.HasPrefix(s.SQL, "SELECT"))
	}
}
