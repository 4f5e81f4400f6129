// Package router classifies a query into specialist domains using lexical
// signals from the query text and recent conversation context. Routing is a
// pure function of its inputs.
package router

import (
	"strings"

	"restaurant-advisor-be/internal/constant"
	"restaurant-advisor-be/internal/entity"
	"restaurant-advisor-be/pkg/advisor/specialist"
)

// Decision is the routing outcome for one query: the matched specialists
// ordered by priority, highest first. Ambiguous is set when no domain
// matched with confidence and the general specialist was chosen as fallback.
type Decision struct {
	Specialists []specialist.Descriptor
	Ambiguous   bool
}

// Domains returns the selected domain names in order.
func (d Decision) Domains() []string {
	out := make([]string, len(d.Specialists))
	for i, s := range d.Specialists {
		out[i] = s.Domain
	}
	return out
}

// domainSignals are the lexical triggers per domain. A query matches a
// domain when any signal occurs in the query text; context turns contribute
// at reduced weight.
var domainSignals = map[string][]string{
	constant.DomainLocation: {
		"location", "area", "neighborhood", "place", "where", "site",
		"locality", "foot traffic", "rent", "real estate",
	},
	constant.DomainRegulatory: {
		"regulation", "regulatory", "license", "licence", "permit", "fssai", "legal",
		"compliance", "liquor", "alcohol", "gst",
	},
	constant.DomainMarket: {
		"market", "competition", "competitor", "demand", "trend",
		"saturation", "analysis", "consumer",
	},
	constant.DomainCuisine: {
		"cuisine", "food", "menu", "dish", "taste", "flavor", "recipe",
		"ingredient", "culinary", "cooking",
	},
	constant.DomainFinancial: {
		"finance", "cost", "budget", "investment", "revenue", "profit",
		"break-even", "funding", "loan", "capital", "roi", "cash flow",
	},
	constant.DomainStaffing: {
		"staff", "employee", "hiring", "training", "workforce", "waiter",
		"manager", "hr", "personnel", "recruitment", "salary", "wage",
	},
	constant.DomainMarketing: {
		"marketing", "promotion", "advertis", "brand", "social media",
		"campaign", "influencer", "loyalty", "customer acquisition",
	},
	constant.DomainTechnology: {
		"technology", "software", "pos", "point of sale", "inventory system",
		"online ordering", "app", "payment", "reservation system",
	},
	constant.DomainDesign: {
		"design", "interior", "decor", "ambiance", "ambience", "layout",
		"lighting", "furniture", "seating", "aesthetic", "theme",
	},
}

const (
	querySignalWeight   = 2
	contextSignalWeight = 1
	confidenceThreshold = 2 // a single context-only mention is not enough
)

// Router selects specialists for a query.
type Router struct {
	registry *specialist.Registry
	ctxTurns int
}

// New builds a router. ctxTurns bounds how many recent turns contribute
// lexical context.
func New(registry *specialist.Registry, ctxTurns int) *Router {
	if ctxTurns <= 0 {
		ctxTurns = 3
	}
	return &Router{registry: registry, ctxTurns: ctxTurns}
}

// Route classifies the query. Multiple domains may match a composite query;
// the result is ordered by descriptor priority. With no confident match the
// decision falls back to the general specialist with Ambiguous set.
func (r *Router) Route(query string, context []entity.ConversationTurn) Decision {
	queryText := strings.ToLower(query)

	contextText := ""
	turns := context
	if len(turns) > r.ctxTurns {
		turns = turns[len(turns)-r.ctxTurns:]
	}
	for _, t := range turns {
		contextText += " " + strings.ToLower(t.Query)
	}

	var matched []specialist.Descriptor
	for _, domain := range constant.AllDomains {
		signals, ok := domainSignals[domain]
		if !ok {
			continue
		}
		score := 0
		for _, sig := range signals {
			if strings.Contains(queryText, sig) {
				score += querySignalWeight
			} else if strings.Contains(contextText, sig) {
				score += contextSignalWeight
			}
		}
		if score >= confidenceThreshold {
			if d, ok := r.registry.Get(domain); ok {
				matched = append(matched, d)
			}
		}
	}

	if len(matched) == 0 {
		return Decision{
			Specialists: []specialist.Descriptor{r.registry.General()},
			Ambiguous:   true,
		}
	}

	specialist.SortByPriority(matched)
	return Decision{Specialists: matched}
}
