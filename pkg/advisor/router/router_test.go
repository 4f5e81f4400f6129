package router

import (
	"testing"

	"restaurant-advisor-be/internal/constant"
	"restaurant-advisor-be/internal/entity"
	"restaurant-advisor-be/pkg/advisor/specialist"
)

func newRouter() *Router {
	return New(specialist.NewRegistry(), 3)
}

func TestRouteSingleDomain(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"location", "Which area has the best foot traffic?", constant.DomainLocation},
		{"regulatory", "What FSSAI license do I need?", constant.DomainRegulatory},
		{"market", "How saturated is the market here?", constant.DomainMarket},
		{"financial", "What is the break-even investment?", constant.DomainFinancial},
		{"cuisine", "Suggest a menu around coastal food", constant.DomainCuisine},
		{"staffing", "How many waiter and manager roles to hire?", constant.DomainStaffing},
	}
	r := newRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := r.Route(tt.query, nil)
			if d.Ambiguous {
				t.Fatalf("Route(%q) ambiguous, want %s", tt.query, tt.want)
			}
			got := d.Domains()
			if len(got) != 1 || got[0] != tt.want {
				t.Fatalf("Route(%q) = %v, want [%s]", tt.query, got, tt.want)
			}
		})
	}
}

func TestRouteCompositeQueryOrdersByPriority(t *testing.T) {
	r := newRouter()
	d := r.Route("Compare location, market demand and regulatory requirements for T Nagar", nil)
	want := []string{constant.DomainLocation, constant.DomainRegulatory, constant.DomainMarket}
	got := d.Domains()
	if len(got) != len(want) {
		t.Fatalf("domains = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("domains = %v, want priority order %v", got, want)
		}
	}
	if d.Ambiguous {
		t.Error("composite match flagged ambiguous")
	}
}

func TestRouteAmbiguousFallsBackToGeneral(t *testing.T) {
	r := newRouter()
	d := r.Route("help me please", nil)
	if !d.Ambiguous {
		t.Fatal("no-signal query not flagged ambiguous")
	}
	got := d.Domains()
	if len(got) != 1 || got[0] != constant.DomainGeneral {
		t.Fatalf("domains = %v, want [general]", got)
	}
}

func TestRouteContextAloneIsNotConfident(t *testing.T) {
	r := newRouter()
	history := []entity.ConversationTurn{
		{Query: "Tell me about the market"},
	}
	d := r.Route("and what do you think?", history)
	if !d.Ambiguous {
		t.Fatalf("single context mention routed to %v, want ambiguous fallback", d.Domains())
	}
}

func TestRouteContextReinforcesQuerySignal(t *testing.T) {
	r := newRouter()
	history := []entity.ConversationTurn{
		{Query: "I am planning an Italian restaurant"},
		{Query: "What about the local market and competition?"},
	}
	// "demand" alone scores 2 from the query; context keeps market in play
	// for the follow-up phrasing.
	d := r.Route("is there enough demand?", history)
	got := d.Domains()
	found := false
	for _, domain := range got {
		if domain == constant.DomainMarket {
			found = true
		}
	}
	if !found {
		t.Fatalf("domains = %v, want market included", got)
	}
}

func TestRouteUsesOnlyRecentContext(t *testing.T) {
	r := New(specialist.NewRegistry(), 1)
	history := []entity.ConversationTurn{
		{Query: "what about staff salary and hiring?"},
		{Query: "thanks, that helps"},
	}
	// The staffing turn is outside the 1-turn context window, so the two
	// staffing signals cannot accumulate.
	d := r.Route("anything else I should know?", history)
	if !d.Ambiguous {
		t.Fatalf("stale context routed to %v, want ambiguous fallback", d.Domains())
	}
}

func TestRouteIsDeterministic(t *testing.T) {
	r := newRouter()
	first := r.Route("location and market analysis for Indiranagar", nil)
	for i := 0; i < 10; i++ {
		again := r.Route("location and market analysis for Indiranagar", nil)
		a, b := first.Domains(), again.Domains()
		if len(a) != len(b) {
			t.Fatalf("run %d: %v != %v", i, b, a)
		}
		for j := range a {
			if a[j] != b[j] {
				t.Fatalf("run %d: %v != %v", i, b, a)
			}
		}
	}
}
