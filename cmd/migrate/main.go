package main

import (
	"log"
	"os"

	"restaurant-advisor-be/internal/model"
	"restaurant-advisor-be/pkg/database"

	"github.com/joho/godotenv"
)

func main() {
	// 1. Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	// 2. Connect to Database using existing GORM helpers
	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Starting Authoritative GORM Migration...")

	// 3. Pre-Migration: Extensions (Things GORM AutoMigrate doesn't do perfectly)
	log.Println("Step 1: Setting up Extensions...")

	setupSQL := []string{
		`CREATE EXTENSION IF NOT EXISTS pgcrypto;`,
		`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
		`CREATE EXTENSION IF NOT EXISTS vector;`,
	}

	for _, sql := range setupSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute setup SQL: %v. Continuing...", err)
		}
	}

	// 4. Run AutoMigrate for all models
	log.Println("Step 2: Running AutoMigrate...")

	models := []interface{}{
		&model.User{},
		&model.AdvisorSession{},
		&model.ConversationTurn{},
		&model.LongTermRecord{},
		&model.KnowledgeDocument{},
		&model.DocumentEmbedding{},
		&model.GraphNode{},
		&model.GraphEdge{},
	}

	// Migrate strictly
	if err := db.AutoMigrate(models...); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	// 5. Post-Migration: composite indexes GORM tags cannot express
	log.Println("Step 3: Creating supporting indexes...")

	postMigrationSQL := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_conversation_turns_session_seq
		 ON conversation_turns (session_id, seq);`,

		`CREATE UNIQUE INDEX IF NOT EXISTS idx_graph_edges_from_to_relation
		 ON graph_edges (from_node_id, to_node_id, relation);`,

		`CREATE UNIQUE INDEX IF NOT EXISTS idx_graph_nodes_name_kind
		 ON graph_nodes (name, kind);`,
	}

	for _, sql := range postMigrationSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute post-migration SQL: %v", err)
		}
	}

	log.Println("✅ Success: Database migration completed successfully via GORM.")
}
