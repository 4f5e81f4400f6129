// Package permission enforces the static role -> capability matrix. The
// table is immutable configuration, loaded once per process; authorization
// is a pure lookup.
package permission

import (
	"restaurant-advisor-be/internal/constant"
	"restaurant-advisor-be/pkg/advisor/errs"
	"restaurant-advisor-be/pkg/advisor/evidence"
	"restaurant-advisor-be/pkg/advisor/router"
	"restaurant-advisor-be/pkg/advisor/specialist"
)

// Denial records one domain removed from an execution set, with the lowest
// role that would have been allowed.
type Denial struct {
	Domain       string `json:"domain"`
	RequiredRole string `json:"required_role"`
}

// Table is the compiled permission matrix.
type Table struct {
	roleDomains  map[string]map[string]bool
	requiredRole map[string]string
}

// NewTable compiles the matrix from the static configuration. It fails with
// InvalidConfiguration if a role references an unknown domain.
func NewTable() (*Table, error) {
	known := make(map[string]bool, len(constant.AllDomains))
	for _, d := range constant.AllDomains {
		known[d] = true
	}

	t := &Table{
		roleDomains:  make(map[string]map[string]bool, len(constant.RoleDomains)),
		requiredRole: make(map[string]string, len(constant.AllDomains)),
	}
	for role, domains := range constant.RoleDomains {
		if _, ok := constant.RoleRanks[role]; !ok {
			return nil, errs.InvalidConfiguration("unknown role %q in permission matrix", role)
		}
		set := make(map[string]bool, len(domains))
		for _, d := range domains {
			if !known[d] {
				return nil, errs.InvalidConfiguration("role %q references unknown domain %q", role, d)
			}
			set[d] = true
		}
		t.roleDomains[role] = set
	}

	// Required role per domain: the lowest-ranked role that allows it.
	for _, domain := range constant.AllDomains {
		best := ""
		for role, set := range t.roleDomains {
			if !set[domain] {
				continue
			}
			if best == "" || constant.RoleRanks[role] < constant.RoleRanks[best] {
				best = role
			}
		}
		t.requiredRole[domain] = best
	}
	return t, nil
}

// Authorize reports whether the role may invoke the domain specialist.
// Deterministic: same inputs always yield the same answer.
func (t *Table) Authorize(role, domain string) (bool, error) {
	set, ok := t.roleDomains[role]
	if !ok {
		return false, errs.InvalidConfiguration("unknown role %q", role)
	}
	return set[domain], nil
}

// RequiredRole returns the minimum role able to invoke the domain.
func (t *Table) RequiredRole(domain string) string {
	return t.requiredRole[domain]
}

// Filter removes unauthorized specialists from a routing decision. Denied
// domains are returned with the minimum role; the specialists' logic is
// never entered.
func (t *Table) Filter(role string, decision router.Decision) ([]specialist.Descriptor, []Denial, error) {
	var allowed []specialist.Descriptor
	var denials []Denial
	for _, d := range decision.Specialists {
		ok, err := t.Authorize(role, d.Domain)
		if err != nil {
			return nil, nil, err
		}
		if ok {
			allowed = append(allowed, d)
		} else {
			denials = append(denials, Denial{Domain: d.Domain, RequiredRole: t.RequiredRole(d.Domain)})
		}
	}
	return allowed, denials, nil
}

// RetrievalFilter builds the evidence visibility filter for the permitted
// domains: the union of their KB categories and KG relationship types.
// Applied as a query parameter, not post-hoc redaction.
func (t *Table) RetrievalFilter(permitted []specialist.Descriptor) evidence.PermissionFilter {
	catSet := map[string]bool{}
	relSet := map[string]bool{}
	var cats, rels []string
	for _, d := range permitted {
		for _, c := range constant.DomainCategories[d.Domain] {
			if !catSet[c] {
				catSet[c] = true
				cats = append(cats, c)
			}
		}
		for _, r := range constant.DomainRelationships[d.Domain] {
			if !relSet[r] {
				relSet[r] = true
				rels = append(rels, r)
			}
		}
	}
	return evidence.PermissionFilter{Categories: cats, Relationships: rels}
}
