package main

import (
	"context"
	"log"
	"os"
	"time"

	"restaurant-advisor-be/internal/constant"
	"restaurant-advisor-be/internal/model"
	"restaurant-advisor-be/internal/repository/unitofwork"
	"restaurant-advisor-be/pkg/database"
	"restaurant-advisor-be/pkg/embedding"
	"restaurant-advisor-be/pkg/kb"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	color.Cyan("🚀 Seeding restaurant advisor demo data\n")

	seedUsers(db)
	nodeIds := seedGraphNodes(db)
	seedGraphEdges(db, nodeIds)
	seedDocuments(db)

	color.Cyan("\n✅ Seeding completed")
}

func seedUsers(db *gorm.DB) {
	color.Yellow("\n[1/4] Demo users")

	users := []struct {
		username string
		fullName string
		role     string
	}{
		{"demo-guest", "Demo Guest", constant.RoleGuest},
		{"demo-owner", "Demo Owner", constant.RoleOwner},
		{"demo-operations", "Demo Operations", constant.RoleOperations},
		{"demo-analyst", "Demo Analyst", constant.RoleAnalyst},
		{"demo-premium", "Demo Premium", constant.RolePremium},
		{"demo-admin", "Demo Admin", constant.RoleAdmin},
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("advisor123"), bcrypt.DefaultCost)
	if err != nil {
		color.Red("Failed to hash demo password: %v", err)
		return
	}

	for _, u := range users {
		var existing model.User
		if err := db.Where("username = ?", u.username).First(&existing).Error; err == nil {
			color.White("User '%s' already exists, skipping", u.username)
			continue
		}

		passwordHash := string(hash)
		user := model.User{
			Username:     u.username,
			PasswordHash: &passwordHash,
			FullName:     u.fullName,
			Role:         u.role,
		}
		if err := db.Create(&user).Error; err != nil {
			color.Red("Failed to create user '%s': %v", u.username, err)
		} else {
			color.Green("Created user %s (%s)", u.username, u.role)
		}
	}
}

func seedGraphNodes(db *gorm.DB) map[string]uuid.UUID {
	color.Yellow("\n[2/4] Knowledge graph nodes")

	nodes := []model.GraphNode{
		{Name: "Chennai", Kind: "city", Properties: datatypes.JSONMap{
			"population": 7100000, "metro": true,
		}},
		{Name: "Bengaluru", Kind: "city", Properties: datatypes.JSONMap{
			"population": 8400000, "metro": true,
		}},
		{Name: "T Nagar", Kind: "area", Properties: datatypes.JSONMap{
			"foot_traffic": 8000, "avg_rent_sqft": 180, "commercial": true,
		}},
		{Name: "Anna Nagar", Kind: "area", Properties: datatypes.JSONMap{
			"foot_traffic": 5200, "avg_rent_sqft": 120, "commercial": true,
		}},
		{Name: "Indiranagar", Kind: "area", Properties: datatypes.JSONMap{
			"foot_traffic": 6700, "avg_rent_sqft": 210, "commercial": true,
		}},
		{Name: "Koramangala", Kind: "area", Properties: datatypes.JSONMap{
			"foot_traffic": 7400, "avg_rent_sqft": 195, "commercial": true,
		}},
		{Name: "Italian", Kind: "cuisine", Properties: datatypes.JSONMap{
			"avg_ticket": 850, "dinner_heavy": true,
		}},
		{Name: "South Indian", Kind: "cuisine", Properties: datatypes.JSONMap{
			"avg_ticket": 220, "breakfast_heavy": true,
		}},
		{Name: "Chinese", Kind: "cuisine", Properties: datatypes.JSONMap{
			"avg_ticket": 480,
		}},
		{Name: "Cafe", Kind: "cuisine", Properties: datatypes.JSONMap{
			"avg_ticket": 350, "all_day": true,
		}},
		{Name: "FSSAI License", Kind: "regulation", Properties: datatypes.JSONMap{
			"authority": "FSSAI", "renewal_years": 1, "mandatory": true,
		}},
		{Name: "GST Registration", Kind: "regulation", Properties: datatypes.JSONMap{
			"authority": "GSTN", "mandatory": true,
		}},
		{Name: "Fire Safety NOC", Kind: "regulation", Properties: datatypes.JSONMap{
			"authority": "State Fire Department", "seating_above": 50,
		}},
	}

	ids := make(map[string]uuid.UUID, len(nodes))
	for _, n := range nodes {
		var existing model.GraphNode
		if err := db.Where("name = ? AND kind = ?", n.Name, n.Kind).First(&existing).Error; err == nil {
			ids[n.Name] = existing.Id
			color.White("Node '%s' already exists, skipping", n.Name)
			continue
		}

		node := n
		if err := db.Create(&node).Error; err != nil {
			color.Red("Failed to create node '%s': %v", n.Name, err)
			continue
		}
		ids[n.Name] = node.Id
		color.Green("Created %s node %s", node.Kind, node.Name)
	}
	return ids
}

func seedGraphEdges(db *gorm.DB, ids map[string]uuid.UUID) {
	color.Yellow("\n[3/4] Knowledge graph edges")

	edges := []struct {
		from, to, relation string
		properties         datatypes.JSONMap
	}{
		{"T Nagar", "Chennai", constant.RelLocatedIn, nil},
		{"Anna Nagar", "Chennai", constant.RelLocatedIn, nil},
		{"Indiranagar", "Bengaluru", constant.RelLocatedIn, nil},
		{"Koramangala", "Bengaluru", constant.RelLocatedIn, nil},

		{"T Nagar", "Anna Nagar", constant.RelNear, datatypes.JSONMap{"distance_km": 6.5}},
		{"Anna Nagar", "T Nagar", constant.RelNear, datatypes.JSONMap{"distance_km": 6.5}},
		{"Indiranagar", "Koramangala", constant.RelNear, datatypes.JSONMap{"distance_km": 5.1}},
		{"Koramangala", "Indiranagar", constant.RelNear, datatypes.JSONMap{"distance_km": 5.1}},

		{"T Nagar", "South Indian", constant.RelPopularIn, datatypes.JSONMap{"demand_index": 0.92}},
		{"T Nagar", "Cafe", constant.RelPopularIn, datatypes.JSONMap{"demand_index": 0.61}},
		{"Anna Nagar", "South Indian", constant.RelPopularIn, datatypes.JSONMap{"demand_index": 0.88}},
		{"Indiranagar", "Italian", constant.RelPopularIn, datatypes.JSONMap{"demand_index": 0.74}},
		{"Koramangala", "Cafe", constant.RelPopularIn, datatypes.JSONMap{"demand_index": 0.83}},

		// rivals counts existing establishments of the cuisine in the area;
		// anything at or below the gap ceiling surfaces as a market gap.
		{"T Nagar", "South Indian", constant.RelCompetesIn, datatypes.JSONMap{"rivals": 14}},
		{"T Nagar", "Italian", constant.RelCompetesIn, datatypes.JSONMap{"rivals": 2}},
		{"T Nagar", "Chinese", constant.RelCompetesIn, datatypes.JSONMap{"rivals": 6}},
		{"Anna Nagar", "Italian", constant.RelCompetesIn, datatypes.JSONMap{"rivals": 1}},
		{"Anna Nagar", "Cafe", constant.RelCompetesIn, datatypes.JSONMap{"rivals": 3}},
		{"Indiranagar", "Italian", constant.RelCompetesIn, datatypes.JSONMap{"rivals": 9}},
		{"Indiranagar", "Chinese", constant.RelCompetesIn, datatypes.JSONMap{"rivals": 2}},
		{"Koramangala", "South Indian", constant.RelCompetesIn, datatypes.JSONMap{"rivals": 5}},
		{"Koramangala", "Chinese", constant.RelCompetesIn, datatypes.JSONMap{"rivals": 2}},

		{"Italian", "FSSAI License", constant.RelRegulates, nil},
		{"Italian", "Fire Safety NOC", constant.RelRegulates, nil},
		{"South Indian", "FSSAI License", constant.RelRegulates, nil},
		{"Chinese", "FSSAI License", constant.RelRegulates, nil},
		{"Cafe", "FSSAI License", constant.RelRegulates, nil},
		{"Cafe", "GST Registration", constant.RelRegulates, nil},
	}

	for _, e := range edges {
		fromId, okFrom := ids[e.from]
		toId, okTo := ids[e.to]
		if !okFrom || !okTo {
			color.Red("Skipping edge %s -%s-> %s: endpoint missing", e.from, e.relation, e.to)
			continue
		}

		var existing model.GraphEdge
		err := db.Where("from_node_id = ? AND to_node_id = ? AND relation = ?", fromId, toId, e.relation).
			First(&existing).Error
		if err == nil {
			color.White("Edge %s -%s-> %s already exists, skipping", e.from, e.relation, e.to)
			continue
		}

		edge := model.GraphEdge{
			FromNodeId: fromId,
			ToNodeId:   toId,
			Relation:   e.relation,
			Properties: e.properties,
		}
		if err := db.Create(&edge).Error; err != nil {
			color.Red("Failed to create edge %s -%s-> %s: %v", e.from, e.relation, e.to, err)
		} else {
			color.Green("Created edge %s -%s-> %s", e.from, e.relation, e.to)
		}
	}
}

func seedDocuments(db *gorm.DB) {
	color.Yellow("\n[4/4] Knowledge base documents")

	docs := []struct {
		title, content, category, sourceRef string
		page                                int
	}{
		{
			title:     "T Nagar retail corridor survey 2025",
			content:   "Ranganathan Street and the surrounding T Nagar corridor record some of the highest pedestrian counts in Chennai, peaking above 8000 per hour on weekends. Ground-floor retail rents average Rs 180 per sqft with a 10-15% premium on main-road frontage.",
			category:  constant.CategoryRealEstate,
			sourceRef: "chennai-retail-survey-2025",
			page:      12,
		},
		{
			title:     "Chennai dining demographics",
			content:   "Households in central Chennai dine out 2.3 times per week on average. The 22-35 age band drives the fastest growth in cafe and casual dining spend, while traditional South Indian breakfast formats retain the broadest reach across income bands.",
			category:  constant.CategoryDemographics,
			sourceRef: "urban-dining-panel-2025",
			page:      4,
		},
		{
			title:     "Cuisine preference index, South India",
			content:   "South Indian cuisine holds over half of restaurant visits in Chennai neighbourhoods, but Italian and pan-Asian formats show the strongest year-on-year growth from a small base. Average ticket sizes for Italian dining run three to four times the vegetarian thali benchmark.",
			category:  constant.CategoryFoodConsumption,
			sourceRef: "cuisine-index-2025",
			page:      7,
		},
		{
			title:     "FSSAI licensing requirements for restaurants",
			content:   "Any food business with annual turnover above Rs 12 lakh requires an FSSAI State License; above Rs 20 crore, a Central License. Restaurants must display the license at the premises and renew annually. Operating without a valid license carries penalties up to Rs 5 lakh.",
			category:  constant.CategoryRegulation,
			sourceRef: "fssai-handbook",
			page:      23,
		},
		{
			title:     "Fire safety norms for dining establishments",
			content:   "Restaurants seating more than 50 guests require a Fire Safety NOC from the state fire department before opening. Kitchens using LPG banks above 100 kg need a separate storage clearance and two independent evacuation routes.",
			category:  constant.CategoryRegulation,
			sourceRef: "fire-safety-norms",
			page:      9,
		},
		{
			title:     "Restaurant unit economics primer",
			content:   "A mid-market 40-cover restaurant typically reaches break-even at 55-65% occupancy with food costs held under 32% of revenue. Rent above 18% of projected revenue is the single strongest predictor of first-year failure in tier-1 Indian cities.",
			category:  constant.CategoryResearch,
			sourceRef: "unit-economics-primer",
			page:      2,
		},
		{
			title:     "Staffing benchmarks for casual dining",
			content:   "Casual dining formats in India staff roughly one front-of-house employee per 12 covers and one kitchen employee per 18 covers. Attrition in metro markets runs 40-60% annually; structured training programs cut it by a third.",
			category:  constant.CategoryResearch,
			sourceRef: "staffing-benchmarks",
			page:      15,
		},
		{
			title:     "Opening a restaurant: a field guide",
			content:   "Location, concept, and compliance are the three decisions that lock in most of a new restaurant's risk before the first guest is served. This guide walks through site selection, cuisine positioning, licensing, and the first ninety days of operations.",
			category:  constant.CategoryGeneral,
			sourceRef: "field-guide",
			page:      1,
		},
	}

	ingester := newIngester(db)

	for _, d := range docs {
		var existing model.KnowledgeDocument
		if err := db.Where("title = ?", d.title).First(&existing).Error; err == nil {
			color.White("Document '%s' already exists, skipping", d.title)
			continue
		}

		if ingester != nil {
			if err := ingester.Ingest(context.Background(), d.title, d.content, d.category, d.sourceRef, d.page); err == nil {
				color.Green("Ingested document '%s' with embedding", d.title)
				continue
			} else {
				color.Red("Embedding ingest failed for '%s': %v. Storing without embedding.", d.title, err)
			}
		}

		doc := model.KnowledgeDocument{
			Title:     d.title,
			Content:   d.content,
			Category:  d.category,
			SourceRef: d.sourceRef,
			Page:      d.page,
			CreatedAt: time.Now(),
		}
		if err := db.Create(&doc).Error; err != nil {
			color.Red("Failed to create document '%s': %v", d.title, err)
		} else {
			color.Green("Created document '%s' (no embedding)", d.title)
		}
	}
}

// newIngester builds a kb ingest pipeline when an embedding provider is
// configured; returns nil otherwise so documents fall back to plain rows.
func newIngester(db *gorm.DB) *kb.Service {
	provider := os.Getenv("EMBEDDING_PROVIDER")
	if provider == "" {
		color.White("EMBEDDING_PROVIDER not set, documents will be seeded without embeddings")
		return nil
	}

	embedder, err := embedding.NewEmbeddingProvider(
		provider,
		os.Getenv("GEMINI_API_KEY"),
		os.Getenv("OLLAMA_BASE_URL"),
		os.Getenv("EMBEDDING_MODEL"),
	)
	if err != nil {
		color.Red("Embedding provider unavailable: %v. Documents will be seeded without embeddings.", err)
		return nil
	}

	return kb.NewService(unitofwork.NewRepositoryFactory(db), embedder, 0)
}
