package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/judychuepursuit/change-4-change-back/internal/modules/charities"
)

// Seeds the charity directory with test rows. Account ids must be connected
// accounts in the Stripe test environment.
func main() {
	_ = godotenv.Load()

	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("DB_DSN environment variable is required")
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	seed := []charities.Charity{
		{Name: "Ocean Cleanup Fund", StripeAccountID: envOr("SEED_ACCT_1", "acct_test_ocean")},
		{Name: "Food For All", StripeAccountID: envOr("SEED_ACCT_2", "acct_test_food")},
		{Name: "Shelter Now", StripeAccountID: envOr("SEED_ACCT_3", "acct_test_shelter")},
	}

	for _, c := range seed {
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"stripe_account_id"}),
		}).Create(&c).Error
		if err != nil {
			log.Fatalf("Failed to seed charity %q: %v", c.Name, err)
		}
		log.Printf("seeded charity id=%d name=%q", c.ID, c.Name)
	}
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
