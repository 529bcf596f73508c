package query

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/raushan1140/invoice-po-matcher/internal/repository"
)

// ErrNoTranslation is returned when neither the LLM nor the fallback
// patterns can produce SQL for a query.
var ErrNoTranslation = errors.New("could not translate query")

// Translation methods reported back to the client.
const (
	MethodGPT     = "gpt4"
	MethodPattern = "pattern_matching"
)

type fallbackPattern struct {
	re  *regexp.Regexp
	sql string
}

// fallbackPatterns cover the common demo questions so the engine keeps
// working without an API key. Checked in order, first match wins.
var fallbackPatterns = []fallbackPattern{
	{regexp.MustCompile(`total.*spend.*vendor.*quarter`), `SELECT vendor, SUM(total) as total_spend FROM purchase_orders WHERE date >= date("now", "-3 months") GROUP BY vendor ORDER BY total_spend DESC`},
	{regexp.MustCompile(`top.*vendor.*spend`), `SELECT vendor, SUM(total) as total_spend FROM purchase_orders GROUP BY vendor ORDER BY total_spend DESC LIMIT 10`},
	{regexp.MustCompile(`leaderboard|top.*team`), `SELECT team_name, score, validations_completed, queries_executed FROM leaderboard ORDER BY score DESC`},
	{regexp.MustCompile(`recent.*invoice`), `SELECT invoice_id, vendor, total, date FROM invoices ORDER BY created_at DESC LIMIT 10`},
	{regexp.MustCompile(`total.*purchase.*order`), `SELECT COUNT(*) as total_pos, SUM(total) as total_value FROM purchase_orders`},
	{regexp.MustCompile(`average.*order.*value`), `SELECT AVG(total) as average_order_value FROM purchase_orders`},
	{regexp.MustCompile(`vendor.*count`), `SELECT vendor, COUNT(*) as order_count FROM purchase_orders GROUP BY vendor ORDER BY order_count DESC`},
}

// Engine translates natural language questions to SQL and executes them.
type Engine struct {
	store      *repository.Store
	translator *Translator // nil when no API key is configured
	logger     *slog.Logger
}

// NewEngine wires the query engine. translator may be nil.
func NewEngine(store *repository.Store, translator *Translator, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{store: store, translator: translator, logger: logger}
}

// Result is the outcome of an executed natural language query.
type Result struct {
	NaturalQuery  string           `json:"natural_query"`
	SQLQuery      string           `json:"sql_query"`
	Results       []map[string]any `json:"results"`
	ResultCount   int              `json:"result_count"`
	ExecutionTime float64          `json:"execution_time"`
	Method        string           `json:"method"`
}

// Translate converts a natural language query to SQL, preferring the LLM
// when configured and falling back to the pattern table.
func (e *Engine) Translate(ctx context.Context, naturalQuery string) (sqlQuery, method string, err error) {
	if e.translator != nil {
		sqlQuery, err = e.translator.Translate(ctx, naturalQuery)
		if err == nil {
			return sqlQuery, MethodGPT, nil
		}
		e.logger.Warn("query.llm_fallback", "error", err)
	}

	lower := strings.ToLower(naturalQuery)
	for _, p := range fallbackPatterns {
		if p.re.MatchString(lower) {
			return p.sql, MethodPattern, nil
		}
	}
	return "", "", ErrNoTranslation
}

// Execute runs a natural language query end to end: translate, validate,
// execute, record history and credit the team.
func (e *Engine) Execute(ctx context.Context, naturalQuery, teamID string) (*Result, error) {
	start := time.Now()

	// LLM output is validated inside Translate; the fallback table is
	// static SQL. Note the keyword scan would false-positive on column
	// names like created_at, so it must not run against the table.
	sqlQuery, method, err := e.Translate(ctx, naturalQuery)
	if err != nil {
		return nil, err
	}

	results, err := e.store.ExecuteSelect(ctx, sqlQuery)
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(start).Seconds()

	rec := repository.QueryRecord{
		NaturalQuery:  naturalQuery,
		SQLQuery:      sqlQuery,
		ExecutionTime: elapsed,
		ResultCount:   len(results),
	}
	if teamID != "" {
		rec.TeamID = &teamID
	}
	if err := e.store.RecordQuery(ctx, rec); err != nil {
		e.logger.Error("query.history_save_failed", "error", err)
	}

	if teamID != "" {
		if err := e.store.UpdateTeamScore(ctx, teamID, 0, 1, 10); err != nil {
			e.logger.Warn("query.score_update_failed", "team_id", teamID, "error", err)
		}
	}

	e.logger.Info("query.executed",
		"method", method,
		"result_count", len(results),
		"elapsed_ms", time.Since(start).Milliseconds())

	return &Result{
		NaturalQuery:  naturalQuery,
		SQLQuery:      sqlQuery,
		Results:       results,
		ResultCount:   len(results),
		ExecutionTime: elapsed,
		Method:        method,
	}, nil
}

// Suggestions lists example questions for the UI.
func Suggestions() []string {
	return []string{
		"Show me total spend per vendor this quarter",
		"What are the top 10 vendors by spending?",
		"Show me the current leaderboard",
		"What are the recent invoices?",
		"What is the average purchase order value?",
		"How many orders does each vendor have?",
		"Show me invoices from last month",
		"What items do we buy most frequently?",
		"Which team has completed the most validations?",
		"Show me all purchase orders over $5000",
	}
}

// Sample pairs a natural language question with its SQL rendition.
type Sample struct {
	Natural string `json:"natural"`
	SQL     string `json:"sql"`
}

// Samples returns demonstration query pairs.
func Samples() []Sample {
	return []Sample{
		{
			Natural: "Show me total spend per vendor",
			SQL:     "SELECT vendor, SUM(total) as total_spend FROM purchase_orders GROUP BY vendor ORDER BY total_spend DESC",
		},
		{
			Natural: "What are the recent invoices?",
			SQL:     "SELECT invoice_id, vendor, total, date FROM invoices ORDER BY created_at DESC LIMIT 10",
		},
		{
			Natural: "Show me the leaderboard",
			SQL:     "SELECT team_name, score, validations_completed, queries_executed FROM leaderboard ORDER BY score DESC",
		},
	}
}
