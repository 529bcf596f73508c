package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/raushan1140/invoice-po-matcher/internal/query"
)

type queryRequest struct {
	Query  string `json:"query"`
	TeamID string `json:"team_id"`
}

func (s *Server) executeQuery(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Query) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No query provided"})
		return
	}

	result, err := s.engine.Execute(c.Request.Context(), strings.TrimSpace(req.Query), req.TeamID)
	if errors.Is(err, query.ErrNoTranslation) {
		c.JSON(http.StatusOK, gin.H{
			"success": false,
			"error":   "Could not translate query. Try asking about vendors, purchase orders, invoices, or leaderboard.",
			"suggestions": []string{
				"Show me total spend per vendor",
				"What are the recent invoices?",
				"Show me the leaderboard",
				"What is the average order value?",
			},
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"natural_query":  result.NaturalQuery,
		"sql_query":      result.SQLQuery,
		"results":        result.Results,
		"result_count":   result.ResultCount,
		"execution_time": result.ExecutionTime,
		"method":         result.Method,
	})
}

// translateQuery converts natural language to SQL without executing it.
func (s *Server) translateQuery(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Query) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No query provided"})
		return
	}

	sqlQuery, method, err := s.engine.Translate(c.Request.Context(), strings.TrimSpace(req.Query))
	if errors.Is(err, query.ErrNoTranslation) {
		c.JSON(http.StatusOK, gin.H{
			"success": false,
			"error":   "Could not translate query. Try asking about vendors, purchase orders, invoices, or leaderboard.",
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"sql_query":     sqlQuery,
		"method":        method,
		"natural_query": strings.TrimSpace(req.Query),
	})
}

type sqlRequest struct {
	SQL    string `json:"sql"`
	TeamID string `json:"team_id"`
}

// executeSQL runs caller-written SQL. SELECT only; direct SQL earns fewer
// points than a natural language query.
func (s *Server) executeSQL(c *gin.Context) {
	var req sqlRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.SQL) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No SQL query provided"})
		return
	}
	sqlQuery := strings.TrimSpace(req.SQL)

	if err := query.ValidateSQL(sqlQuery); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only SELECT statements are allowed"})
		return
	}

	results, err := s.store.ExecuteSelect(c.Request.Context(), sqlQuery)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	if req.TeamID != "" {
		if err := s.store.UpdateTeamScore(c.Request.Context(), req.TeamID, 0, 1, 5); err != nil {
			s.logger.Warn("query.score_update_failed", "team_id", req.TeamID, "error", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"sql_query":    sqlQuery,
		"results":      results,
		"result_count": len(results),
	})
}

func (s *Server) querySuggestions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "suggestions": query.Suggestions()})
}

func (s *Server) querySamples(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "samples": query.Samples()})
}

func (s *Server) queryHistory(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	teamID := c.Query("team_id")

	history, err := s.store.ListQueryHistory(c.Request.Context(), teamID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"history":     history,
		"total_count": len(history),
		"limit":       limit,
	})
}
