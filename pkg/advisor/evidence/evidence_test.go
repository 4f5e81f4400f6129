package evidence

import "testing"

func TestFullyDegraded(t *testing.T) {
	tests := []struct {
		name     string
		degraded []string
		want     bool
	}{
		{name: "no sources degraded", degraded: nil, want: false},
		{name: "one source degraded", degraded: []string{SourceKnowledgeGraph}, want: false},
		{name: "every source degraded", degraded: []string{SourceKnowledgeBase, SourceKnowledgeGraph}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Result{Degraded: tt.degraded}
			if got := r.FullyDegraded(); got != tt.want {
				t.Errorf("FullyDegraded() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFullyDegradedTracksSourceList(t *testing.T) {
	// A subset one short of the full source list must never count as fully
	// degraded, regardless of how many sources are configured.
	partial := make([]string, 0, len(AllSources)-1)
	for _, s := range AllSources[:len(AllSources)-1] {
		partial = append(partial, s)
	}

	r := Result{Degraded: partial}
	if r.FullyDegraded() {
		t.Errorf("FullyDegraded() = true with %d of %d sources degraded", len(partial), len(AllSources))
	}
}
