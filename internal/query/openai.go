package query

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/raushan1140/invoice-po-matcher/internal/config"
)

// Translator converts natural language to SQL via the OpenAI
// chat/completions endpoint.
type Translator struct {
	cfg    config.LLMConfig
	http   *http.Client
	logger *slog.Logger
}

// NewTranslator builds a Translator. A nil return means no API key is
// configured and the caller should use pattern fallback only.
func NewTranslator(cfg config.LLMConfig, logger *slog.Logger) *Translator {
	if cfg.APIKey == "" {
		return nil
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Translator{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

const schemaDescription = `Database Tables:

Table: purchase_orders
Description: Contains purchase order records with vendor, item details, quantities, prices and dates
Columns: po_id, vendor, item, qty, unit_price, total, date, created_at

Table: invoices
Description: Contains invoice records with vendor, item details, and validation status
Columns: invoice_id, vendor, item, qty, unit_price, total, date, po_id, status, validation_result, created_at

Table: leaderboard
Description: Contains team performance metrics and scores
Columns: team_id, team_name, score, validations_completed, queries_executed, last_updated

Table: query_history
Description: Contains history of natural language queries and their SQL translations
Columns: id, natural_language_query, sql_query, execution_time, result_count, team_id, created_at
`

// Translate asks the model for a SQL rendition of the natural language
// query. The result has already passed ValidateSQL.
func (t *Translator) Translate(ctx context.Context, naturalQuery string) (string, error) {
	start := time.Now()

	prompt := fmt.Sprintf(`You are a SQL expert. Convert the following natural language query to SQL.

Database Schema:
%s
Rules:
1. Only use SELECT statements
2. Use proper SQLite syntax
3. Return only the SQL query, no explanations
4. Use appropriate JOINs when needed
5. Include proper GROUP BY and ORDER BY clauses
6. Use date functions like date('now', '-3 months') for relative dates

Natural Language Query: %s

SQL Query:`, schemaDescription, naturalQuery)

	body := map[string]any{
		"model":       t.cfg.Model,
		"temperature": t.cfg.Temperature,
		"max_tokens":  200,
		"messages": []map[string]any{
			{"role": "system", "content": "You are a SQL expert that converts natural language to SQL queries."},
			{"role": "user", "content": prompt},
		},
	}

	endpoint := strings.TrimRight(t.cfg.BaseURL, "/") + "/chat/completions"
	raw, err := t.post(ctx, endpoint, body)
	if err != nil {
		t.logger.Error("query.translate.http_error", "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return "", err
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		return "", fmt.Errorf("decode openai response: %w", err)
	}
	if len(cc.Choices) == 0 {
		return "", fmt.Errorf("no choices in openai response")
	}

	sqlQuery := stripCodeFences(cc.Choices[0].Message.Content)
	if err := ValidateSQL(sqlQuery); err != nil {
		t.logger.Warn("query.translate.rejected", "sql", sqlQuery)
		return "", err
	}

	t.logger.Info("query.translate.ok",
		"model", t.cfg.Model,
		"elapsed_ms", time.Since(start).Milliseconds())
	return sqlQuery, nil
}

func (t *Translator) post(ctx context.Context, url string, body map[string]any) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+t.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openai http error: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("openai status %d: %s", resp.StatusCode, data)
	}
	return data, nil
}

// stripCodeFences removes markdown ```sql fences the model sometimes wraps
// its answer in.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```sql")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
