package dto

import (
	"time"

	"restaurant-advisor-be/pkg/advisor/evidence"
	"restaurant-advisor-be/pkg/advisor/orchestrator"
	"restaurant-advisor-be/pkg/advisor/permission"

	"github.com/google/uuid"
)

type QueryRequest struct {
	SessionId uuid.UUID `json:"session_id"` // zero value starts a new session
	Query     string    `json:"query" validate:"required"`
}

type QueryResponse struct {
	SessionId       uuid.UUID            `json:"session_id"`
	Outcome         string               `json:"outcome"`
	Answer          string               `json:"answer"`
	Citations       []evidence.Citation  `json:"citations"`
	SpecialistsRun  []string             `json:"specialists_run"`
	Denials         []permission.Denial  `json:"denials,omitempty"`
	DegradedSources []string             `json:"degraded_sources,omitempty"`
	Ambiguous       bool                 `json:"ambiguous,omitempty"`
	Opportunity     *OpportunityResponse `json:"opportunity,omitempty"`
}

type OpportunityResponse struct {
	Total          float64             `json:"total"`
	Interpretation string              `json:"interpretation"`
	Location       SubScoreResponse    `json:"location"`
	Uniqueness     SubScoreResponse    `json:"uniqueness"`
	Sentiment      SubScoreResponse    `json:"sentiment"`
	Regulatory     SubScoreResponse    `json:"regulatory"`
	Citations      []evidence.Citation `json:"citations,omitempty"`
}

type SubScoreResponse struct {
	Value     float64             `json:"value"`
	Citations []evidence.Citation `json:"citations,omitempty"`
}

type SessionResponse struct {
	Id           uuid.UUID `json:"id"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
}

type TurnResponse struct {
	Seq         int       `json:"seq"`
	Query       string    `json:"query"`
	Response    string    `json:"response"`
	Specialists []string  `json:"specialists"`
	CreatedAt   time.Time `json:"created_at"`
}

type LongTermResponse struct {
	Preferences map[string]PreferenceResponse `json:"preferences"`
	Insights    []string                      `json:"insights"`
	UpdatedAt   time.Time                     `json:"updated_at"`
}

type PreferenceResponse struct {
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ScoreRequest struct {
	Area    string `json:"area" validate:"required"`
	Cuisine string `json:"cuisine" validate:"required"`
}

type MarketGapResponse struct {
	Cuisine string  `json:"cuisine"`
	Area    string  `json:"area"`
	Rivals  int     `json:"rivals"`
	Total   float64 `json:"total"`
}

// FromResult maps the orchestrator outcome onto the wire shape.
func FromResult(r *orchestrator.Result) *QueryResponse {
	resp := &QueryResponse{
		SessionId:       r.SessionId,
		Outcome:         string(r.Outcome),
		Answer:          r.AnswerText,
		Citations:       r.Citations,
		SpecialistsRun:  r.SpecialistsRun,
		Denials:         r.Denials,
		DegradedSources: r.DegradedSources,
		Ambiguous:       r.Ambiguous,
	}
	if r.Opportunity != nil {
		o := r.Opportunity
		resp.Opportunity = &OpportunityResponse{
			Total:          o.Total,
			Interpretation: o.Interpretation(),
			Location:       SubScoreResponse{Value: o.SubScores.Location.Value, Citations: o.SubScores.Location.Citations},
			Uniqueness:     SubScoreResponse{Value: o.SubScores.Uniqueness.Value, Citations: o.SubScores.Uniqueness.Citations},
			Sentiment:      SubScoreResponse{Value: o.SubScores.Sentiment.Value, Citations: o.SubScores.Sentiment.Citations},
			Regulatory:     SubScoreResponse{Value: o.SubScores.Regulatory.Value, Citations: o.SubScores.Regulatory.Citations},
		}
	}
	return resp
}
