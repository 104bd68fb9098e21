package cmd

import (
	"fmt"
	"log"

	"github.com/frahmantamala/agency-portal/internal/auth"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer db.Close()

		if clearData {
			// children first, FK order
			for _, table := range []string{"messages", "conversations", "change_requests", "milestones", "analytics_events", "analytics_sessions", "projects", "leads", "users"} {
				if _, err := db.Exec(fmt.Sprintf("DELETE FROM %s", table)); err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		password := "password"
		hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

		staff := []struct {
			Email string
			Name  string
			Role  string
		}{
			{"admin@agency.test", "Agency Admin", "ADMIN"},
			{"editor@agency.test", "Agency Editor", "EDITOR"},
			{"viewer@agency.test", "Agency Viewer", "VIEWER"},
		}

		for _, s := range staff {
			if userExists(db, s.Email) {
				fmt.Println("staff user already exists:", s.Email)
				continue
			}
			if _, err := db.Exec(
				"INSERT INTO users (email, name, role, password_hash, is_active, created_at, updated_at) VALUES ($1, $2, $3, $4, true, now(), now())",
				s.Email, s.Name, s.Role, string(hash),
			); err != nil {
				log.Fatalf("failed to insert staff user %s: %v", s.Email, err)
			}
			fmt.Printf("Seeded %s user: %s (password: %s)\n", s.Role, s.Email, password)
		}

		clientEmail := "client@example.test"
		if !userExists(db, clientEmail) {
			code, err := auth.GenerateAccessCode()
			if err != nil {
				log.Fatalf("failed to generate access code: %v", err)
			}
			if _, err := db.Exec(
				"INSERT INTO users (email, name, role, access_code, company_name, is_active, created_at, updated_at) VALUES ($1, $2, 'CLIENT', $3, $4, true, now(), now())",
				clientEmail, "Sample Client", code, "Example Co",
			); err != nil {
				log.Fatalf("failed to insert client user: %v", err)
			}
			fmt.Printf("Seeded client user: %s (access code: %s)\n", clientEmail, code)
		} else {
			fmt.Println("client user already exists:", clientEmail)
		}

		var adminID, clientID int64
		if err := db.QueryRow("SELECT id FROM users WHERE email = $1", "admin@agency.test").Scan(&adminID); err != nil {
			log.Fatalf("failed to lookup admin user id: %v", err)
		}
		if err := db.QueryRow("SELECT id FROM users WHERE email = $1", clientEmail).Scan(&clientID); err != nil {
			log.Fatalf("failed to lookup client user id: %v", err)
		}

		projectName := "Website Redesign"
		var projectID int64
		err = db.QueryRow("SELECT id FROM projects WHERE name = $1 AND client_id = $2", projectName, clientID).Scan(&projectID)
		if err != nil {
			if err := db.QueryRow(
				"INSERT INTO projects (name, description, scope, status, progress, client_id, manager_id, created_at, updated_at) VALUES ($1, $2, $3, 'active', 25, $4, $5, now(), now()) RETURNING id",
				projectName, "Full redesign of the marketing website", "Design, build and launch", clientID, adminID,
			).Scan(&projectID); err != nil {
				log.Fatalf("failed to insert sample project: %v", err)
			}
			fmt.Println("Seeded sample project:", projectName)
		}

		var convExists int
		if err := db.QueryRow("SELECT 1 FROM conversations WHERE project_id = $1", projectID).Scan(&convExists); err != nil {
			if _, err := db.Exec(
				"INSERT INTO conversations (project_id, created_at, updated_at) VALUES ($1, now(), now())",
				projectID,
			); err != nil {
				log.Fatalf("failed to insert sample conversation: %v", err)
			}
			fmt.Println("Seeded conversation for sample project")
		}

		fmt.Println("Seeding completed")
	},
}

func userExists(db *sqlx.DB, email string) bool {
	var exists int
	return db.QueryRow("SELECT 1 FROM users WHERE email = $1", email).Scan(&exists) == nil
}
