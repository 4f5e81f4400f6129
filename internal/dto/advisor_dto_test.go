package dto

import (
	"testing"

	"restaurant-advisor-be/pkg/advisor/evidence"
	"restaurant-advisor-be/pkg/advisor/fusion"
	"restaurant-advisor-be/pkg/advisor/orchestrator"
	"restaurant-advisor-be/pkg/advisor/permission"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestFromResultMapsSuccessfulQuery(t *testing.T) {
	sessionId := uuid.New()
	score, err := fusion.Score(
		fusion.SubScores{
			Location:   fusion.SubScore{Value: 0.9, Citations: []evidence.Citation{{Source: evidence.SourceKnowledgeGraph, Reference: "T Nagar"}}},
			Uniqueness: fusion.SubScore{Value: 0.8},
			Sentiment:  fusion.SubScore{Value: 0.7},
			Regulatory: fusion.SubScore{Value: 0.6},
		},
		fusion.Weights{Location: 0.35, Uniqueness: 0.25, Sentiment: 0.25, Regulatory: 0.15},
	)
	assert.NoError(t, err)

	result := &orchestrator.Result{
		SessionId:      sessionId,
		Outcome:        orchestrator.OutcomeSuccess,
		AnswerText:     "T Nagar looks promising for an Italian concept.",
		Citations:      []evidence.Citation{{Source: evidence.SourceKnowledgeBase, Reference: "doc:12", Title: "Retail survey"}},
		SpecialistsRun: []string{"location", "market"},
		Opportunity:    &score,
	}

	resp := FromResult(result)

	assert.Equal(t, sessionId, resp.SessionId)
	assert.Equal(t, "success", resp.Outcome)
	assert.Equal(t, result.AnswerText, resp.Answer)
	assert.Equal(t, []string{"location", "market"}, resp.SpecialistsRun)
	assert.Len(t, resp.Citations, 1)
	assert.Empty(t, resp.Denials)

	if assert.NotNil(t, resp.Opportunity) {
		assert.InDelta(t, score.Total, resp.Opportunity.Total, 1e-12)
		assert.Equal(t, score.Interpretation(), resp.Opportunity.Interpretation)
		assert.Equal(t, 0.9, resp.Opportunity.Location.Value)
		assert.Len(t, resp.Opportunity.Location.Citations, 1)
		assert.Equal(t, 0.6, resp.Opportunity.Regulatory.Value)
	}
}

func TestFromResultMapsDenialWithoutOpportunity(t *testing.T) {
	result := &orchestrator.Result{
		SessionId:  uuid.New(),
		Outcome:    orchestrator.OutcomeDenied,
		AnswerText: "Your current role does not include location analysis.",
		Denials:    []permission.Denial{{Domain: "location", RequiredRole: "premium"}},
	}

	resp := FromResult(result)

	assert.Equal(t, "denied", resp.Outcome)
	assert.Nil(t, resp.Opportunity)
	if assert.Len(t, resp.Denials, 1) {
		assert.Equal(t, "location", resp.Denials[0].Domain)
		assert.Equal(t, "premium", resp.Denials[0].RequiredRole)
	}
}

func TestFromResultCarriesDegradationFlags(t *testing.T) {
	result := &orchestrator.Result{
		SessionId:       uuid.New(),
		Outcome:         orchestrator.OutcomeSuccess,
		AnswerText:      "Partial answer from the knowledge base only.",
		SpecialistsRun:  []string{"general"},
		DegradedSources: []string{evidence.SourceKnowledgeGraph},
		Ambiguous:       true,
	}

	resp := FromResult(result)

	assert.True(t, resp.Ambiguous)
	assert.Equal(t, []string{evidence.SourceKnowledgeGraph}, resp.DegradedSources)
}
