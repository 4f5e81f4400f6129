package fusion

import (
	"errors"
	"math"
	"testing"

	"restaurant-advisor-be/pkg/advisor/errs"
	"restaurant-advisor-be/pkg/advisor/evidence"
)

func TestScoreWeightedSum(t *testing.T) {
	scores := SubScores{
		Location:   SubScore{Value: 0.8},
		Uniqueness: SubScore{Value: 0.6},
		Sentiment:  SubScore{Value: 0.7},
		Regulatory: SubScore{Value: 0.5},
	}
	weights := Weights{Location: 0.4, Uniqueness: 0.2, Sentiment: 0.2, Regulatory: 0.2}

	first, err := Score(scores, weights)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if math.Abs(first.Total-0.68) > 1e-12 {
		t.Errorf("Total = %v, want 0.68", first.Total)
	}

	// Identical inputs must reproduce the exact same bits.
	second, err := Score(scores, weights)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if first.Total != second.Total {
		t.Errorf("Total not reproducible: %v vs %v", first.Total, second.Total)
	}
}

func TestScoreClampsSubScores(t *testing.T) {
	scores := SubScores{
		Location:   SubScore{Value: 1.7},
		Uniqueness: SubScore{Value: -0.3},
		Sentiment:  SubScore{Value: 0.5},
		Regulatory: SubScore{Value: 0.5},
	}
	result, err := Score(scores, Weights{0.25, 0.25, 0.25, 0.25})
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if result.SubScores.Location.Value != 1.0 {
		t.Errorf("location clamped to %v, want 1.0", result.SubScores.Location.Value)
	}
	if result.SubScores.Uniqueness.Value != 0.0 {
		t.Errorf("uniqueness clamped to %v, want 0.0", result.SubScores.Uniqueness.Value)
	}
}

func TestScoreRejectsBadWeights(t *testing.T) {
	tests := []struct {
		name    string
		weights Weights
	}{
		{"sum below one", Weights{0.3, 0.2, 0.2, 0.2}},
		{"sum above one", Weights{0.5, 0.3, 0.3, 0.2}},
		{"negative weight", Weights{1.2, -0.2, 0.5, 0.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Score(SubScores{}, tt.weights)
			if !errors.Is(err, errs.ErrInvalidConfiguration) {
				t.Fatalf("err = %v, want ErrInvalidConfiguration", err)
			}
		})
	}
}

func TestScoreMonotonicInEachSubScore(t *testing.T) {
	weights := Weights{0.4, 0.2, 0.2, 0.2}
	base := SubScores{
		Location:   SubScore{Value: 0.3},
		Uniqueness: SubScore{Value: 0.3},
		Sentiment:  SubScore{Value: 0.3},
		Regulatory: SubScore{Value: 0.3},
	}
	baseScore, err := Score(base, weights)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}

	bump := []func(s SubScores) SubScores{
		func(s SubScores) SubScores { s.Location.Value += 0.4; return s },
		func(s SubScores) SubScores { s.Uniqueness.Value += 0.4; return s },
		func(s SubScores) SubScores { s.Sentiment.Value += 0.4; return s },
		func(s SubScores) SubScores { s.Regulatory.Value += 0.4; return s },
	}
	for i, mutate := range bump {
		raised, err := Score(mutate(base), weights)
		if err != nil {
			t.Fatalf("Score: %v", err)
		}
		if raised.Total < baseScore.Total {
			t.Errorf("dimension %d: total decreased from %v to %v", i, baseScore.Total, raised.Total)
		}
	}
}

func TestScoreKeepsCitations(t *testing.T) {
	cite := evidence.Citation{Source: evidence.SourceKnowledgeBase, Reference: "doc1:3"}
	scores := SubScores{
		Sentiment:  SubScore{Value: 0.9, Citations: []evidence.Citation{cite}},
		Location:   SubScore{Value: 0.5},
		Uniqueness: SubScore{Value: 0.5},
		Regulatory: SubScore{Value: 0.5},
	}
	result, err := Score(scores, Weights{0.25, 0.25, 0.25, 0.25})
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if len(result.SubScores.Sentiment.Citations) != 1 || result.SubScores.Sentiment.Citations[0] != cite {
		t.Fatal("sentiment citation lost through fusion")
	}
}

func TestFindMarketGapsOrdering(t *testing.T) {
	weights := Weights{0.25, 0.25, 0.25, 0.25}
	even := func(v float64) SubScores {
		return SubScores{
			Location:   SubScore{Value: v},
			Uniqueness: SubScore{Value: v},
			Sentiment:  SubScore{Value: v},
			Regulatory: SubScore{Value: v},
		}
	}
	// Same total, different uniqueness: korean should outrank lebanese.
	tied := SubScores{
		Location:   SubScore{Value: 0.8},
		Uniqueness: SubScore{Value: 0.4},
		Sentiment:  SubScore{Value: 0.6},
		Regulatory: SubScore{Value: 0.6},
	}
	tiedHighUnique := SubScores{
		Location:   SubScore{Value: 0.4},
		Uniqueness: SubScore{Value: 0.8},
		Sentiment:  SubScore{Value: 0.6},
		Regulatory: SubScore{Value: 0.6},
	}

	candidates := []Candidate{
		{Cuisine: "thai", Area: "Adyar", Rivals: 0, Scores: even(0.9)},
		{Cuisine: "lebanese", Area: "Adyar", Rivals: 1, Scores: tied},
		{Cuisine: "korean", Area: "Adyar", Rivals: 1, Scores: tiedHighUnique},
		{Cuisine: "italian", Area: "Adyar", Rivals: 7, Scores: even(1.0)},
	}

	gaps, err := FindMarketGaps(candidates, weights, 2)
	if err != nil {
		t.Fatalf("FindMarketGaps: %v", err)
	}
	if len(gaps) != 3 {
		t.Fatalf("gaps = %d, want 3 (crowded candidate dropped)", len(gaps))
	}
	wantOrder := []string{"thai", "korean", "lebanese"}
	for i, want := range wantOrder {
		if gaps[i].Cuisine != want {
			t.Fatalf("gap order = [%s %s %s], want %v", gaps[0].Cuisine, gaps[1].Cuisine, gaps[2].Cuisine, wantOrder)
		}
	}
}

func TestDeriveSentimentSubScore(t *testing.T) {
	snippets := []evidence.Snippet{
		{DocumentId: "d1", Content: "Demand is growing and the trend is positive"},
		{DocumentId: "d2", Content: "The segment is saturated"},
	}
	got := SentimentSubScore(snippets)
	// 3 positive hits (demand, growing, trend) vs 1 negative (saturated).
	want := 3.0 / 4.0
	if got.Value != want {
		t.Errorf("sentiment = %v, want %v", got.Value, want)
	}
	if len(got.Citations) != 2 {
		t.Errorf("citations = %d, want 2", len(got.Citations))
	}
}

func TestDeriveLocationAndUniqueness(t *testing.T) {
	hits := []evidence.GraphHit{
		{
			Node: "T Nagar",
			Path: []string{"LOCATED_IN"},
			Properties: map[string]interface{}{
				"foot_traffic":     float64(8000),
				"popular_cuisines": []interface{}{"South Indian", "Chinese"},
			},
		},
	}

	loc := LocationSubScore(hits, "T Nagar")
	if loc.Value != 0.8 {
		t.Errorf("location = %v, want 0.8", loc.Value)
	}
	if len(loc.Citations) != 1 {
		t.Errorf("location citations = %d, want 1", len(loc.Citations))
	}

	saturated := UniquenessSubScore(hits, "T Nagar", "chinese")
	if saturated.Value != 0.5 {
		t.Errorf("saturated uniqueness = %v, want 0.5", saturated.Value)
	}
	open := UniquenessSubScore(hits, "T Nagar", "korean")
	if open.Value != 1.0 {
		t.Errorf("open uniqueness = %v, want 1.0", open.Value)
	}

	missing := LocationSubScore(hits, "Unknown Area")
	if missing.Value != 0.5 || len(missing.Citations) != 0 {
		t.Errorf("missing area = %+v, want neutral 0.5 with no citations", missing)
	}
}

func TestDeriveRegulatorySubScore(t *testing.T) {
	hits := []evidence.GraphHit{
		{Node: "FSSAI License", Path: []string{"REGULATES"}},
		{Node: "Fire NOC", Path: []string{"REGULATES"}},
		{Node: "T Nagar", Path: []string{"LOCATED_IN"}},
	}
	got := RegulatorySubScore(hits)
	if got.Value != 0.9 {
		t.Errorf("regulatory ease = %v, want 0.9", got.Value)
	}
	if len(got.Citations) != 2 {
		t.Errorf("citations = %d, want 2", len(got.Citations))
	}
}
