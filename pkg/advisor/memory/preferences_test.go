package memory

import (
	"testing"

	"restaurant-advisor-be/internal/entity"
)

func TestExtractPreferences(t *testing.T) {
	tests := []struct {
		name    string
		queries []string
		want    map[string]string
	}{
		{
			name:    "nothing salient",
			queries: []string{"what permits do I need?"},
			want:    map[string]string{},
		},
		{
			name:    "single turn all keys",
			queries: []string{"affordable Italian restaurant in Mumbai"},
			want:    map[string]string{"cuisine": "Italian", "city": "Mumbai", "budget": "Low"},
		},
		{
			name:    "later turn wins",
			queries: []string{"Italian food in Mumbai", "actually Thai in Chennai"},
			want:    map[string]string{"cuisine": "Thai", "city": "Chennai"},
		},
		{
			name:    "last mention within one query wins",
			queries: []string{"not Chinese, I want Mexican"},
			want:    map[string]string{"cuisine": "Mexican"},
		},
		{
			name:    "overlapping phrase resolves to longer",
			queries: []string{"best south indian breakfast places"},
			want:    map[string]string{"cuisine": "South Indian"},
		},
		{
			name:    "luxury maps to high budget",
			queries: []string{"luxury dining in Delhi"},
			want:    map[string]string{"budget": "High", "city": "Delhi"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			turns := make([]entity.ConversationTurn, len(tt.queries))
			for i, q := range tt.queries {
				turns[i] = entity.ConversationTurn{Seq: i + 1, Query: q}
			}
			got := ExtractPreferences(turns)
			if len(got) != len(tt.want) {
				t.Fatalf("ExtractPreferences = %v, want %v", got, tt.want)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("pref[%s] = %q, want %q", k, got[k], v)
				}
			}
		})
	}
}
