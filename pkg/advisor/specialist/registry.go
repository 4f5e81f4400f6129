package specialist

import (
	"sort"

	"restaurant-advisor-be/internal/constant"
)

// Descriptor identifies one domain specialist. Priority breaks ties and
// orders execution when several specialists match one query; higher runs
// first.
type Descriptor struct {
	Id         string
	Domain     string
	Capability string
	Priority   int
}

// Registry is the fixed table of available specialists, built once at
// startup from the domain enumeration.
type Registry struct {
	byDomain map[string]Descriptor
	ordered  []Descriptor
}

// NewRegistry builds the descriptor table. Priorities follow the domain
// enumeration order, highest first, so routing output is deterministic.
func NewRegistry() *Registry {
	r := &Registry{byDomain: make(map[string]Descriptor, len(constant.AllDomains))}
	n := len(constant.AllDomains)
	for i, domain := range constant.AllDomains {
		d := Descriptor{
			Id:         domain + "_specialist",
			Domain:     domain,
			Capability: domain,
			Priority:   n - i,
		}
		r.byDomain[domain] = d
		r.ordered = append(r.ordered, d)
	}
	return r
}

// Get returns the descriptor for a domain.
func (r *Registry) Get(domain string) (Descriptor, bool) {
	d, ok := r.byDomain[domain]
	return d, ok
}

// General returns the fallback specialist.
func (r *Registry) General() Descriptor {
	return r.byDomain[constant.DomainGeneral]
}

// SortByPriority orders descriptors highest priority first; equal priorities
// keep lexical domain order so the result is stable.
func SortByPriority(ds []Descriptor) {
	sort.Slice(ds, func(i, j int) bool {
		if ds[i].Priority != ds[j].Priority {
			return ds[i].Priority > ds[j].Priority
		}
		return ds[i].Domain < ds[j].Domain
	})
}
