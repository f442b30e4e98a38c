package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/frahmantamala/company-management/internal/company"
)

var seedDemoData bool

// seedCmd applies the bootstrap policy: the first admin account is created
// explicitly here when the users table is empty, never implicitly during
// registration or login.
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the first admin account",
	Long:  `Create the bootstrap admin account when the users table is empty, optionally with demo data.`,
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

		var userCount int
		if err := db.Get(&userCount, "SELECT COUNT(*) FROM users"); err != nil {
			log.Fatalf("failed to count users: %v", err)
		}
		if userCount > 0 {
			fmt.Println("users table is not empty; bootstrap admin already provisioned")
			return
		}

		password := "changeme"
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("failed to hash bootstrap password: %v", err)
		}

		adminEmail := "admin@example.com"
		var adminID int64
		err = db.QueryRow(
			`INSERT INTO users (email, name, password_hash, role, account_state, created_at, updated_at)
			 VALUES ($1, $2, $3, 'admin', 'active', now(), now()) RETURNING id`,
			adminEmail, "Bootstrap Admin", string(hash),
		).Scan(&adminID)
		if err != nil {
			log.Fatalf("failed to insert bootstrap admin: %v", err)
		}
		fmt.Printf("seeded bootstrap admin %s (id %d), password %q\n", adminEmail, adminID, password)

		if !seedDemoData {
			return
		}

		demoName := "Demo Company"
		var companyID int64
		err = db.QueryRow(
			`INSERT INTO companies (name, normalized_name, description, owner_id, status, created_at, updated_at)
			 VALUES ($1, $2, 'Seeded for development', $3, 'active', now(), now()) RETURNING id`,
			demoName, company.NormalizeName(demoName), adminID,
		).Scan(&companyID)
		if err != nil {
			log.Fatalf("failed to insert demo company: %v", err)
		}

		_, err = db.Exec(
			`INSERT INTO branches (company_id, name, active, created_at, updated_at)
			 VALUES ($1, 'Main Branch', true, now(), now())`,
			companyID,
		)
		if err != nil {
			log.Fatalf("failed to insert demo branch: %v", err)
		}

		fmt.Printf("seeded demo company %d with one branch\n", companyID)
	},
}
