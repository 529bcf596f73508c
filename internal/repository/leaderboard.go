package repository

import (
	"context"
	"database/sql"
	"errors"
	"math"
)

// ErrTeamExists is returned by CreateTeam when the team id is taken.
var ErrTeamExists = errors.New("team already exists")

// Team is a leaderboard row. Rank is filled in when listing ranked teams.
type Team struct {
	TeamID               string `json:"team_id"`
	TeamName             string `json:"team_name"`
	Score                int    `json:"score"`
	ValidationsCompleted int    `json:"validations_completed"`
	QueriesExecuted      int    `json:"queries_executed"`
	LastUpdated          string `json:"last_updated"`
	Rank                 int    `json:"rank,omitempty"`
}

// ListLeaderboard returns teams ordered by score (validations break ties),
// with 1-based ranks assigned.
func (s *Store) ListLeaderboard(ctx context.Context, limit int) ([]Team, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT team_id, team_name, score, validations_completed, queries_executed, last_updated
		FROM leaderboard
		ORDER BY score DESC, validations_completed DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, storageErr(err)
	}
	defer rows.Close()

	var teams []Team
	for rows.Next() {
		var t Team
		var lastUpdated sql.NullString
		if err := rows.Scan(&t.TeamID, &t.TeamName, &t.Score, &t.ValidationsCompleted, &t.QueriesExecuted, &lastUpdated); err != nil {
			return nil, storageErr(err)
		}
		t.LastUpdated = lastUpdated.String
		t.Rank = len(teams) + 1
		teams = append(teams, t)
	}
	return teams, storageErr(rows.Err())
}

// GetTeam fetches a single team by id.
func (s *Store) GetTeam(ctx context.Context, teamID string) (*Team, error) {
	var t Team
	var lastUpdated sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT team_id, team_name, score, validations_completed, queries_executed, last_updated
		FROM leaderboard WHERE team_id = ?`, teamID).
		Scan(&t.TeamID, &t.TeamName, &t.Score, &t.ValidationsCompleted, &t.QueriesExecuted, &lastUpdated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, storageErr(err)
	}
	t.LastUpdated = lastUpdated.String
	return &t, nil
}

// UpdateTeamScore applies increments to a team's counters. Returns
// ErrNotFound when no row matched.
func (s *Store) UpdateTeamScore(ctx context.Context, teamID string, validationInc, queryInc, scoreInc int) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE leaderboard
		SET score = score + ?,
		    validations_completed = validations_completed + ?,
		    queries_executed = queries_executed + ?,
		    last_updated = CURRENT_TIMESTAMP
		WHERE team_id = ?`, scoreInc, validationInc, queryInc, teamID)
	if err != nil {
		return storageErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storageErr(err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateTeam registers a new team with zeroed counters.
func (s *Store) CreateTeam(ctx context.Context, teamID, teamName string) error {
	var existing string
	err := s.db.QueryRowContext(ctx, `SELECT team_id FROM leaderboard WHERE team_id = ?`, teamID).Scan(&existing)
	if err == nil {
		return ErrTeamExists
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return storageErr(err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO leaderboard (team_id, team_name, score, validations_completed, queries_executed)
		VALUES (?, ?, 0, 0, 0)`, teamID, teamName)
	return storageErr(err)
}

// LeaderboardStats is the aggregate view across all teams.
type LeaderboardStats struct {
	TotalTeams       int     `json:"total_teams"`
	TotalScore       int     `json:"total_score"`
	TotalValidations int     `json:"total_validations"`
	TotalQueries     int     `json:"total_queries"`
	AverageScore     float64 `json:"average_score"`
	TopTeam          *Team   `json:"top_team"`
	RecentActivity   int     `json:"recent_activity"`
}

// GetLeaderboardStats computes totals, averages, the top scorer and the
// number of teams active in the last 24 hours.
func (s *Store) GetLeaderboardStats(ctx context.Context) (*LeaderboardStats, error) {
	stats := &LeaderboardStats{}

	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(score), 0), COALESCE(SUM(validations_completed), 0), COALESCE(SUM(queries_executed), 0)
		FROM leaderboard`).
		Scan(&stats.TotalTeams, &stats.TotalScore, &stats.TotalValidations, &stats.TotalQueries)
	if err != nil {
		return nil, storageErr(err)
	}
	if stats.TotalTeams > 0 {
		stats.AverageScore = round2(float64(stats.TotalScore) / float64(stats.TotalTeams))
	}

	var top Team
	err = s.db.QueryRowContext(ctx,
		`SELECT team_id, team_name, score FROM leaderboard ORDER BY score DESC LIMIT 1`).
		Scan(&top.TeamID, &top.TeamName, &top.Score)
	if err == nil {
		stats.TopTeam = &top
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, storageErr(err)
	}

	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM leaderboard WHERE last_updated >= datetime('now', '-24 hours')`).
		Scan(&stats.RecentActivity)
	if err != nil {
		return nil, storageErr(err)
	}
	return stats, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
