package constant

// Specialist domains. The enumeration is fixed: routing, permissions and
// specialist execution all key off these values.
const (
	DomainLocation   = "location"
	DomainRegulatory = "regulatory"
	DomainMarket     = "market"
	DomainCuisine    = "cuisine"
	DomainFinancial  = "financial"
	DomainStaffing   = "staffing"
	DomainMarketing  = "marketing"
	DomainTechnology = "technology"
	DomainDesign     = "design"
	DomainGeneral    = "general"
)

// AllDomains lists every specialist domain in priority order (highest first).
var AllDomains = []string{
	DomainLocation,
	DomainRegulatory,
	DomainMarket,
	DomainFinancial,
	DomainCuisine,
	DomainMarketing,
	DomainStaffing,
	DomainTechnology,
	DomainDesign,
	DomainGeneral,
}

// User roles, rank-ordered. A higher rank includes strictly more capability;
// the minimum role required for a domain is the lowest-ranked role allowing it.
const (
	RoleGuest      = "guest"
	RoleOwner      = "owner"
	RoleOperations = "operations"
	RoleAnalyst    = "analyst"
	RolePremium    = "premium"
	RoleAdmin      = "admin"
)

// RoleRanks orders roles for required-role resolution. Guest is the floor.
var RoleRanks = map[string]int{
	RoleGuest:      0,
	RoleOwner:      1,
	RoleOperations: 1,
	RoleAnalyst:    2,
	RolePremium:    3,
	RoleAdmin:      4,
}

// RoleDomains is the static permission matrix, role -> allowed specialist
// domains. Loaded once per process, never mutated.
var RoleDomains = map[string][]string{
	RoleGuest:      {DomainGeneral},
	RoleOwner:      {DomainGeneral, DomainCuisine, DomainDesign, DomainStaffing},
	RoleOperations: {DomainGeneral, DomainStaffing, DomainTechnology, DomainDesign},
	RoleAnalyst:    {DomainGeneral, DomainCuisine, DomainMarket, DomainFinancial, DomainMarketing},
	RolePremium:    AllDomains,
	RoleAdmin:      AllDomains,
}

// Knowledge-base document categories.
const (
	CategoryRealEstate      = "real_estate"
	CategoryDemographics    = "demographics"
	CategoryFoodConsumption = "food_consumption"
	CategoryRegulation      = "regulation"
	CategoryResearch        = "research"
	CategoryGeneral         = "general"
)

// Knowledge-graph relationship types.
const (
	RelLocatedIn  = "LOCATED_IN"
	RelNear       = "NEAR"
	RelPopularIn  = "POPULAR_IN"
	RelRegulates  = "REGULATES"
	RelCompetesIn = "COMPETES_IN"
)

// DomainCategories maps a specialist domain to the KB categories its evidence
// may come from. The permission filter is the union over permitted domains.
var DomainCategories = map[string][]string{
	DomainLocation:   {CategoryRealEstate, CategoryDemographics, CategoryFoodConsumption},
	DomainRegulatory: {CategoryRegulation, CategoryFoodConsumption},
	DomainMarket:     {CategoryFoodConsumption, CategoryDemographics, CategoryRealEstate},
	DomainCuisine:    {CategoryFoodConsumption, CategoryResearch},
	DomainFinancial:  {CategoryRealEstate, CategoryResearch},
	DomainStaffing:   {CategoryResearch, CategoryRegulation},
	DomainMarketing:  {CategoryDemographics, CategoryResearch},
	DomainTechnology: {CategoryResearch},
	DomainDesign:     {CategoryResearch},
	DomainGeneral:    {CategoryGeneral, CategoryFoodConsumption, CategoryDemographics},
}

// DomainRelationships maps a specialist domain to the KG relationship types
// its traversals may follow.
var DomainRelationships = map[string][]string{
	DomainLocation:   {RelLocatedIn, RelNear, RelPopularIn},
	DomainRegulatory: {RelRegulates},
	DomainMarket:     {RelPopularIn, RelCompetesIn},
	DomainCuisine:    {RelPopularIn},
	DomainFinancial:  {RelLocatedIn, RelCompetesIn},
	DomainStaffing:   {RelLocatedIn},
	DomainMarketing:  {RelPopularIn, RelCompetesIn},
	DomainTechnology: {},
	DomainDesign:     {},
	DomainGeneral:    {RelLocatedIn, RelPopularIn},
}
