package cmd

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/user/blog-platform/internal/auth"
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

		sqlxDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		db, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: sqlxDB.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to open gorm: %v", err)
		}

		if clearData {
			for _, table := range []string{"blogs", "categories", "users"} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		hash, _ := bcrypt.GenerateFromPassword([]byte("ChangeMe123"), cfg.Security.BCryptCost)

		users := []struct {
			Email string
			Name  string
			Role  auth.Role
		}{
			{"owner@example.com", "Site Owner", auth.RoleOwner},
			{"writer@example.com", "Staff Writer", auth.RoleWriter},
			{"reader@example.com", "Casual Reader", auth.RoleMember},
		}

		for _, u := range users {
			var exists int
			if err := db.Raw("SELECT 1 FROM users WHERE email = ?", u.Email).Row().Scan(&exists); err == nil {
				fmt.Printf("user %s already exists, skipping\n", u.Email)
				continue
			}

			permissions, err := json.Marshal(auth.PermissionsForRole(u.Role))
			if err != nil {
				log.Fatalf("failed to marshal permissions for %s: %v", u.Role, err)
			}

			if err := db.Exec(
				"INSERT INTO users (email, name, password_hash, role, permissions, is_active, created_at) VALUES (?, ?, ?, ?, ?, true, now())",
				u.Email, u.Name, string(hash), string(u.Role), string(permissions),
			).Error; err != nil {
				log.Fatalf("failed to insert user %s: %v", u.Email, err)
			}
			fmt.Printf("Seeded %s user: %s\n", u.Role, u.Email)
		}

		categories := []struct {
			Name string
			Slug string
			Desc string
		}{
			{"Technology", "technology", "Software, hardware and everything between"},
			{"Travel", "travel", "Trip reports and travel notes"},
			{"Food", "food", "Recipes and restaurant reviews"},
			{"Life", "life", "Everything else worth writing down"},
		}

		for _, c := range categories {
			var exists int
			if err := db.Raw("SELECT 1 FROM categories WHERE slug = ?", c.Slug).Row().Scan(&exists); err == nil {
				continue
			}

			if err := db.Exec(
				"INSERT INTO categories (name, slug, description, is_active, created_at, updated_at) VALUES (?, ?, ?, true, now(), now())",
				c.Name, c.Slug, c.Desc,
			).Error; err != nil {
				log.Fatalf("failed to insert category %s: %v", c.Name, err)
			}
			fmt.Printf("Seeded category: %s\n", c.Name)
		}

		fmt.Println("Seeding complete")
	},
}
