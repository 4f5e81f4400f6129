package memory

import (
	"strings"

	"restaurant-advisor-be/internal/entity"
)

// Keyword tables for salient-preference extraction. Matching is on lowered
// query text; the canonical value on the right is what gets stored.
var cuisineKeywords = map[string]string{
	"italian":        "Italian",
	"chinese":        "Chinese",
	"indian":         "Indian",
	"mexican":        "Mexican",
	"thai":           "Thai",
	"japanese":       "Japanese",
	"french":         "French",
	"mediterranean":  "Mediterranean",
	"american":       "American",
	"middle eastern": "Middle Eastern",
	"south indian":   "South Indian",
	"north indian":   "North Indian",
	"punjabi":        "Punjabi",
	"bengali":        "Bengali",
	"gujarati":       "Gujarati",
}

var cityKeywords = map[string]string{
	"mumbai":    "Mumbai",
	"delhi":     "Delhi",
	"bangalore": "Bangalore",
	"chennai":   "Chennai",
	"hyderabad": "Hyderabad",
	"kolkata":   "Kolkata",
	"pune":      "Pune",
	"ahmedabad": "Ahmedabad",
	"jaipur":    "Jaipur",
	"lucknow":   "Lucknow",
}

var budgetKeywords = map[string]string{
	"low budget":      "Low",
	"budget friendly": "Low",
	"affordable":      "Low",
	"mid budget":      "Medium",
	"medium budget":   "Medium",
	"moderate":        "Medium",
	"high budget":     "High",
	"luxury":          "High",
	"premium":         "High",
	"expensive":       "High",
}

// ExtractPreferences reduces a buffer of turns to salient preference facts.
// The rule is deterministic: scanning turns in arrival order, the value
// mentioned last per key wins. Within one query, position of the last
// occurrence decides; overlapping phrases ("south indian" vs "indian")
// resolve to the longer phrase.
func ExtractPreferences(turns []entity.ConversationTurn) map[string]string {
	prefs := make(map[string]string)
	for _, turn := range turns {
		text := strings.ToLower(turn.Query)
		if v, ok := lastMention(text, cuisineKeywords); ok {
			prefs["cuisine"] = v
		}
		if v, ok := lastMention(text, cityKeywords); ok {
			prefs["city"] = v
		}
		if v, ok := lastMention(text, budgetKeywords); ok {
			prefs["budget"] = v
		}
	}
	return prefs
}

func lastMention(text string, keywords map[string]string) (string, bool) {
	bestEnd := -1
	bestLen := 0
	value := ""
	for keyword, canonical := range keywords {
		pos := strings.LastIndex(text, keyword)
		if pos < 0 {
			continue
		}
		end := pos + len(keyword)
		if end > bestEnd || (end == bestEnd && len(keyword) > bestLen) {
			bestEnd = end
			bestLen = len(keyword)
			value = canonical
		}
	}
	return value, bestEnd >= 0
}
