package fusion

import (
	"strings"

	"restaurant-advisor-be/pkg/advisor/evidence"
)

// Sentiment keyword lists applied to knowledge-base snippets.
var positiveKeywords = []string{"growing", "increasing", "popular", "demand", "opportunity", "trend"}
var negativeKeywords = []string{"declining", "saturated", "competitive", "struggling", "oversupplied"}

// LocationSubScore scales foot traffic from the matched area node. 10000
// daily visitors saturates the score; an area missing from the graph scores
// a neutral 0.5 with no citation.
func LocationSubScore(hits []evidence.GraphHit, area string) SubScore {
	for _, hit := range hits {
		if !strings.EqualFold(hit.Node, area) {
			continue
		}
		traffic := propertyFloat(hit.Properties, "foot_traffic")
		return SubScore{
			Value:     clamp01(traffic / 10000),
			Citations: []evidence.Citation{hit.Citation()},
		}
	}
	return SubScore{Value: 0.5}
}

// UniquenessSubScore halves when the cuisine already appears among the
// area's popular cuisines. An area missing from the graph scores a moderate
// 0.7.
func UniquenessSubScore(hits []evidence.GraphHit, area, cuisine string) SubScore {
	for _, hit := range hits {
		if !strings.EqualFold(hit.Node, area) {
			continue
		}
		value := 1.0
		for _, existing := range propertyStrings(hit.Properties, "popular_cuisines") {
			if strings.EqualFold(existing, cuisine) {
				value = 0.5
				break
			}
		}
		return SubScore{
			Value:     value,
			Citations: []evidence.Citation{hit.Citation()},
		}
	}
	return SubScore{Value: 0.7}
}

// SentimentSubScore counts positive and negative keyword occurrences across
// the snippets and takes the positive ratio. No signal at all yields a
// slightly positive 0.7.
func SentimentSubScore(snippets []evidence.Snippet) SubScore {
	positive, negative := 0, 0
	var citations []evidence.Citation
	for _, s := range snippets {
		content := strings.ToLower(s.Content)
		hit := false
		for _, word := range positiveKeywords {
			if n := strings.Count(content, word); n > 0 {
				positive += n
				hit = true
			}
		}
		for _, word := range negativeKeywords {
			if n := strings.Count(content, word); n > 0 {
				negative += n
				hit = true
			}
		}
		if hit {
			citations = append(citations, s.Citation())
		}
	}
	if positive+negative == 0 {
		return SubScore{Value: 0.7}
	}
	return SubScore{
		Value:     float64(positive) / float64(positive+negative),
		Citations: citations,
	}
}

// RegulatorySubScore inverts regulatory burden: every applicable regulation
// found in the graph lowers ease by 0.05, floored at 0.1.
func RegulatorySubScore(hits []evidence.GraphHit) SubScore {
	count := 0
	var citations []evidence.Citation
	for _, hit := range hits {
		for _, rel := range hit.Path {
			if rel == "REGULATES" {
				count++
				citations = append(citations, hit.Citation())
				break
			}
		}
	}
	value := 1.0 - float64(count)*0.05
	if value < 0.1 {
		value = 0.1
	}
	return SubScore{Value: value, Citations: citations}
}

func propertyFloat(props map[string]interface{}, key string) float64 {
	if props == nil {
		return 0
	}
	switch v := props[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return 0
	}
}

func propertyStrings(props map[string]interface{}, key string) []string {
	if props == nil {
		return nil
	}
	switch v := props[key].(type) {
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
