package types

import (
	"encoding/json"

	"github.com/ZanzyTHEbar/criteria-ranker/internal/ranking"
)

// RankRequest is the JSON body of POST /rank. Criteria and candidates stay raw
// so the normalizer can accept objects, arrays and encoded strings alike.
type RankRequest struct {
	Criteria   json.RawMessage `json:"criteria" swaggertype:"object"`
	Candidates json.RawMessage `json:"candidates" swaggertype:"array,string"`
	Template   string          `json:"template,omitempty" example:"balanced"`
}

// RankForm is the form encoded variant of RankRequest
type RankForm struct {
	Criteria   string `form:"criteria"`
	Candidates string `form:"candidates"`
	Template   string `form:"template"`
}

// RankResponse is returned by POST /rank
type RankResponse struct {
	OK bool `json:"ok"`
	*ranking.Ranking
}

// StatusResponse is returned by GET /rank
type StatusResponse struct {
	OK                bool   `json:"ok"`
	ServiceConfigured bool   `json:"serviceConfigured"`
	Model             string `json:"model,omitempty"`
	Timestamp         int64  `json:"ts"`
}

// ScoreRequest is the body of POST /score
type ScoreRequest struct {
	Criteria ranking.FactorCriteria `json:"criteria"`
	Items    []ranking.FactorItem   `json:"items"`
}

// ScoreResponse is returned by POST /score
type ScoreResponse struct {
	OK      bool             `json:"ok"`
	Results []ranking.Result `json:"results"`
}

// TemplatesResponse is returned by GET /templates
type TemplatesResponse struct {
	OK        bool               `json:"ok"`
	Default   ranking.Criteria   `json:"default"`
	Templates []ranking.Template `json:"templates"`
}

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status            string                 `json:"status"`
	Timestamp         string                 `json:"timestamp"`
	Version           string                 `json:"version"`
	ServiceConfigured bool                   `json:"serviceConfigured"`
	Metrics           map[string]interface{} `json:"metrics,omitempty"`
	CircuitBreaker    map[string]interface{} `json:"circuit_breaker,omitempty"`
	CallBudget        map[string]interface{} `json:"call_budget,omitempty"`
}
