package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/raushan1140/invoice-po-matcher/internal/repository"
)

func (s *Server) getLeaderboard(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	teams, err := s.store.ListLeaderboard(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"leaderboard": teams,
		"total_teams": len(teams),
	})
}

// teamStats returns a team's row plus its recent query history and derived
// timing statistics.
func (s *Server) teamStats(c *gin.Context) {
	teamID := c.Param("team_id")

	team, err := s.store.GetTeam(c.Request.Context(), teamID)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Team not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	history, err := s.store.ListQueryHistory(c.Request.Context(), teamID, 10)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var totalExecTime float64
	for _, h := range history {
		totalExecTime += h.ExecutionTime
	}
	avgExecTime := 0.0
	if len(history) > 0 {
		avgExecTime = totalExecTime / float64(len(history))
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"team_data":     team,
		"query_history": history,
		"stats": gin.H{
			"total_execution_time":   totalExecTime,
			"average_execution_time": avgExecTime,
			"recent_queries":         len(history),
		},
	})
}

type scoreUpdateRequest struct {
	TeamID              string `json:"team_id"`
	ValidationIncrement int    `json:"validation_increment"`
	QueryIncrement      int    `json:"query_increment"`
	ScoreIncrement      int    `json:"score_increment"`
}

func (s *Server) updateTeamScore(c *gin.Context) {
	var req scoreUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No data provided"})
		return
	}
	if req.TeamID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Team ID is required"})
		return
	}

	err := s.store.UpdateTeamScore(c.Request.Context(), req.TeamID,
		req.ValidationIncrement, req.QueryIncrement, req.ScoreIncrement)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Team not found or update failed"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Team score updated successfully"})
}

type createTeamRequest struct {
	TeamID   string `json:"team_id"`
	TeamName string `json:"team_name"`
}

func (s *Server) createTeam(c *gin.Context) {
	var req createTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No data provided"})
		return
	}
	if req.TeamID == "" || req.TeamName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Team ID and team name are required"})
		return
	}

	err := s.store.CreateTeam(c.Request.Context(), req.TeamID, req.TeamName)
	if errors.Is(err, repository.ErrTeamExists) {
		c.JSON(http.StatusConflict, gin.H{"error": "Team already exists"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "Team created successfully",
		"team_id":   req.TeamID,
		"team_name": req.TeamName,
	})
}

func (s *Server) leaderboardStats(c *gin.Context) {
	stats, err := s.store.GetLeaderboardStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "stats": stats})
}
