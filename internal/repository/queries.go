package repository

import (
	"context"
	"database/sql"
)

// QueryRecord is one entry of the natural-language query history.
type QueryRecord struct {
	ID            int64   `json:"id"`
	NaturalQuery  string  `json:"natural_language_query"`
	SQLQuery      string  `json:"sql_query"`
	ExecutionTime float64 `json:"execution_time"`
	ResultCount   int     `json:"result_count"`
	TeamID        *string `json:"team_id"`
	CreatedAt     string  `json:"created_at"`
}

// RecordQuery appends an executed query to the history.
func (s *Store) RecordQuery(ctx context.Context, rec QueryRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO query_history (natural_language_query, sql_query, execution_time, result_count, team_id)
		VALUES (?, ?, ?, ?, ?)`,
		rec.NaturalQuery, rec.SQLQuery, rec.ExecutionTime, rec.ResultCount, rec.TeamID)
	return storageErr(err)
}

// ListQueryHistory returns recent query history, newest first. An empty
// teamID lists history across all teams.
func (s *Store) ListQueryHistory(ctx context.Context, teamID string, limit int) ([]QueryRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	var (
		rows *sql.Rows
		err  error
	)
	if teamID != "" {
		rows, err = s.db.QueryContext(ctx, `
			SELECT id, natural_language_query, sql_query, execution_time, result_count, team_id, created_at
			FROM query_history WHERE team_id = ? ORDER BY created_at DESC LIMIT ?`, teamID, limit)
	} else {
		rows, err = s.db.QueryContext(ctx, `
			SELECT id, natural_language_query, sql_query, execution_time, result_count, team_id, created_at
			FROM query_history ORDER BY created_at DESC LIMIT ?`, limit)
	}
	if err != nil {
		return nil, storageErr(err)
	}
	defer rows.Close()

	var out []QueryRecord
	for rows.Next() {
		var rec QueryRecord
		var execTime sql.NullFloat64
		var resultCount sql.NullInt64
		var tID, createdAt sql.NullString
		if err := rows.Scan(&rec.ID, &rec.NaturalQuery, &rec.SQLQuery, &execTime, &resultCount, &tID, &createdAt); err != nil {
			return nil, storageErr(err)
		}
		rec.ExecutionTime = execTime.Float64
		rec.ResultCount = int(resultCount.Int64)
		if tID.Valid {
			rec.TeamID = &tID.String
		}
		rec.CreatedAt = createdAt.String
		out = append(out, rec)
	}
	return out, storageErr(rows.Err())
}

// ExecuteSelect runs an arbitrary SELECT statement and returns its rows as
// generic maps. Callers are responsible for validating the statement first.
func (s *Store) ExecuteSelect(ctx context.Context, query string) ([]map[string]any, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, storageErr(err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, storageErr(err)
	}

	results := []map[string]any{}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, storageErr(err)
		}
		row := make(map[string]any, len(cols))
		for i, col := range cols {
			v := values[i]
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			row[col] = v
		}
		results = append(results, row)
	}
	return results, storageErr(rows.Err())
}
