// Package fusion turns heterogeneous evidence into a deterministic
// opportunity score: four sub-scores in [0,1] combined by caller-supplied
// weights, each sub-score carrying the citations that produced it.
package fusion

import (
	"math"
	"sort"

	"restaurant-advisor-be/pkg/advisor/errs"
	"restaurant-advisor-be/pkg/advisor/evidence"
)

// weightTolerance absorbs float addition noise when checking the sum.
const weightTolerance = 1e-9

// Weights distribute the total across the four sub-scores and must sum
// to 1.0.
type Weights struct {
	Location   float64 `json:"location"`
	Uniqueness float64 `json:"uniqueness"`
	Sentiment  float64 `json:"sentiment"`
	Regulatory float64 `json:"regulatory"`
}

// DefaultWeights favors location and uniqueness over sentiment and
// regulatory ease.
var DefaultWeights = Weights{
	Location:   0.35,
	Uniqueness: 0.25,
	Sentiment:  0.25,
	Regulatory: 0.15,
}

func (w Weights) Validate() error {
	for _, v := range []float64{w.Location, w.Uniqueness, w.Sentiment, w.Regulatory} {
		if v < 0 {
			return errs.InvalidConfiguration("fusion weight %v is negative", v)
		}
	}
	sum := w.Location + w.Uniqueness + w.Sentiment + w.Regulatory
	if math.Abs(sum-1.0) > weightTolerance {
		return errs.InvalidConfiguration("fusion weights sum to %v, want 1.0", sum)
	}
	return nil
}

// SubScore is one scored dimension with the evidence that justified it.
type SubScore struct {
	Value     float64             `json:"value"`
	Citations []evidence.Citation `json:"citations,omitempty"`
}

// SubScores groups the four dimensions of one candidate.
type SubScores struct {
	Location   SubScore `json:"location"`
	Uniqueness SubScore `json:"uniqueness"`
	Sentiment  SubScore `json:"sentiment"`
	Regulatory SubScore `json:"regulatory"`
}

// OpportunityScore is the fused result. Total is the weighted sum of the
// clamped sub-scores; the per-dimension breakdown and citations survive so
// the narrative can justify the number.
type OpportunityScore struct {
	SubScores SubScores `json:"sub_scores"`
	Weights   Weights   `json:"weights"`
	Total     float64   `json:"total"`
}

// Interpretation buckets the total the way an advisor would phrase it.
func (s OpportunityScore) Interpretation() string {
	switch {
	case s.Total >= 0.85:
		return "excellent opportunity with strong indicators"
	case s.Total >= 0.70:
		return "good opportunity with favorable conditions"
	case s.Total >= 0.55:
		return "moderate opportunity worth deeper research"
	case s.Total >= 0.40:
		return "challenging opportunity requiring differentiation"
	default:
		return "difficult opportunity with unfavorable conditions"
	}
}

// Score clamps every sub-score to [0,1] and combines them. The computation
// is a fixed-order weighted sum, so the same inputs always produce the same
// bits. Holding three sub-scores and the weights fixed, raising the fourth
// never lowers the total.
func Score(scores SubScores, weights Weights) (OpportunityScore, error) {
	if err := weights.Validate(); err != nil {
		return OpportunityScore{}, err
	}

	scores.Location.Value = clamp01(scores.Location.Value)
	scores.Uniqueness.Value = clamp01(scores.Uniqueness.Value)
	scores.Sentiment.Value = clamp01(scores.Sentiment.Value)
	scores.Regulatory.Value = clamp01(scores.Regulatory.Value)

	total := weights.Location*scores.Location.Value +
		weights.Uniqueness*scores.Uniqueness.Value +
		weights.Sentiment*scores.Sentiment.Value +
		weights.Regulatory*scores.Regulatory.Value

	return OpportunityScore{
		SubScores: scores,
		Weights:   weights,
		Total:     total,
	}, nil
}

// Candidate is a cuisine/area combination under consideration, with its
// sub-scores and the number of rival entries found in competition evidence.
type Candidate struct {
	Cuisine string
	Area    string
	Rivals  int
	Scores  SubScores
}

// MarketGap is a candidate with no or few rivals, annotated with its fused
// score.
type MarketGap struct {
	Cuisine string           `json:"cuisine"`
	Area    string           `json:"area"`
	Rivals  int              `json:"rivals"`
	Score   OpportunityScore `json:"score"`
}

// FindMarketGaps keeps candidates with at most maxRivals competing entries,
// scores each and sorts by total descending, ties broken by descending
// uniqueness sub-score, then by cuisine for a stable order.
func FindMarketGaps(candidates []Candidate, weights Weights, maxRivals int) ([]MarketGap, error) {
	if err := weights.Validate(); err != nil {
		return nil, err
	}

	gaps := make([]MarketGap, 0, len(candidates))
	for _, c := range candidates {
		if c.Rivals > maxRivals {
			continue
		}
		score, err := Score(c.Scores, weights)
		if err != nil {
			return nil, err
		}
		gaps = append(gaps, MarketGap{
			Cuisine: c.Cuisine,
			Area:    c.Area,
			Rivals:  c.Rivals,
			Score:   score,
		})
	}

	sort.SliceStable(gaps, func(i, j int) bool {
		if gaps[i].Score.Total != gaps[j].Score.Total {
			return gaps[i].Score.Total > gaps[j].Score.Total
		}
		if gaps[i].Score.SubScores.Uniqueness.Value != gaps[j].Score.SubScores.Uniqueness.Value {
			return gaps[i].Score.SubScores.Uniqueness.Value > gaps[j].Score.SubScores.Uniqueness.Value
		}
		return gaps[i].Cuisine < gaps[j].Cuisine
	})
	return gaps, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
