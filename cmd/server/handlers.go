package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ZanzyTHEbar/criteria-ranker/internal/errors"
	"github.com/ZanzyTHEbar/criteria-ranker/internal/ranking"
	"github.com/ZanzyTHEbar/criteria-ranker/internal/types"
)

// rankInput is a bound POST /rank request. Absent fields are nil.
type rankInput struct {
	criteria   any
	candidates any
	template   string
}

// handleRank godoc
// @Summary Rank candidates
// @Tags ranking
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param request body types.RankRequest true "Criteria, candidates and optional template"
// @Success 200 {object} types.RankResponse
// @Failure 400 {object} errors.ErrorBody
// @Failure 500 {object} errors.ErrorBody
// @Router /rank [post]
func (s *server) handleRank(c *gin.Context) {
	in, err := bindRankInput(c)
	if err != nil {
		errors.Respond(c, err)
		return
	}

	criteria, err := resolveCriteria(in.criteria, in.template)
	if err != nil {
		errors.Respond(c, err)
		return
	}

	start := time.Now()
	result, err := s.ranker.Rank(c.Request.Context(), criteria, in.candidates)
	if err != nil {
		errors.Respond(c, err)
		return
	}

	s.metrics.ObserveRanking(result)
	s.logger.RankingLogger(result, time.Since(start))

	c.JSON(http.StatusOK, types.RankResponse{OK: true, Ranking: result})
}

// handleStatus godoc
// @Summary External ranking service status
// @Tags ranking
// @Produce json
// @Success 200 {object} types.StatusResponse
// @Router /rank [get]
func (s *server) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, types.StatusResponse{
		OK:                true,
		ServiceConfigured: s.status.Configured(),
		Model:             s.status.Model(),
		Timestamp:         time.Now().UnixMilli(),
	})
}

// handleScore godoc
// @Summary Score items with the weighted factor formula
// @Tags ranking
// @Accept json
// @Produce json
// @Param request body types.ScoreRequest true "Factor criteria and items"
// @Success 200 {object} types.ScoreResponse
// @Failure 400 {object} errors.ErrorBody
// @Router /score [post]
func (s *server) handleScore(c *gin.Context) {
	var req types.ScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errors.Respond(c, errors.NewValidationError("invalid JSON body", err))
		return
	}

	results, err := ranking.ScoreItems(req.Items, req.Criteria)
	if err != nil {
		errors.Respond(c, err)
		return
	}

	s.metrics.ObserveScoring()
	c.JSON(http.StatusOK, types.ScoreResponse{OK: true, Results: results})
}

// handleTemplates godoc
// @Summary Criteria presets
// @Tags ranking
// @Produce json
// @Success 200 {object} types.TemplatesResponse
// @Router /templates [get]
func (s *server) handleTemplates(c *gin.Context) {
	c.JSON(http.StatusOK, types.TemplatesResponse{
		OK:        true,
		Default:   ranking.DefaultCriteria.Clone(),
		Templates: ranking.Templates(),
	})
}

// handleHealth godoc
// @Summary Service health
// @Tags system
// @Produce json
// @Success 200 {object} types.HealthResponse
// @Router /health [get]
func (s *server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, types.HealthResponse{
		Status:            "ok",
		Timestamp:         time.Now().UTC().Format(time.RFC3339),
		Version:           version,
		ServiceConfigured: s.status.Configured(),
		Metrics:           s.metrics.GetStats(),
		CircuitBreaker:    s.breaker.GetStats(),
		CallBudget:        s.limiter.GetStats(),
	})
}

// bindRankInput reads a JSON body, or form fields for any other content type
func bindRankInput(c *gin.Context) (rankInput, error) {
	if c.ContentType() == gin.MIMEJSON {
		var req types.RankRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			return rankInput{}, errors.NewValidationError("invalid JSON body", err)
		}
		return rankInput{
			criteria:   present(req.Criteria),
			candidates: present(req.Candidates),
			template:   req.Template,
		}, nil
	}

	var form types.RankForm
	if err := c.ShouldBind(&form); err != nil {
		return rankInput{}, errors.NewValidationError("invalid form body", err)
	}
	in := rankInput{template: form.Template}
	if form.Criteria != "" {
		in.criteria = form.Criteria
	}
	if form.Candidates != "" {
		in.candidates = form.Candidates
	}
	return in, nil
}

// present maps an absent or null JSON field to nil
func present(raw json.RawMessage) any {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	return raw
}

// resolveCriteria substitutes a named template when no criteria were sent.
// Explicit criteria always win over the template.
func resolveCriteria(criteria any, template string) (any, error) {
	if criteria != nil || template == "" {
		return criteria, nil
	}
	t, ok := ranking.LookupTemplate(template)
	if !ok {
		return nil, errors.NewValidationError(fmt.Sprintf("unknown template %q", template), nil)
	}
	return t.Criteria, nil
}
