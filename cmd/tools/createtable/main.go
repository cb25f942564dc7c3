package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// One statement per Exec; multi-statement batches need multiStatements=true
// on the DSN, which is not assumed here.
var ddl = []string{
	`CREATE TABLE IF NOT EXISTS charities (
	  id BIGINT NOT NULL AUTO_INCREMENT,
	  name VARCHAR(255) NOT NULL,
	  stripe_account_id VARCHAR(64) NOT NULL,
	  PRIMARY KEY (id),
	  UNIQUE KEY ux_charities_name (name)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS users (
	  id CHAR(36) NOT NULL,
	  first_name VARCHAR(100) NOT NULL,
	  last_name VARCHAR(100) NOT NULL,
	  birth_date VARCHAR(10) NOT NULL,
	  email VARCHAR(255) NOT NULL,
	  password VARCHAR(255) NOT NULL,
	  created_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
	  PRIMARY KEY (id),
	  UNIQUE KEY ux_users_email (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS transactions (
	  id CHAR(36) NOT NULL,
	  charity_id BIGINT NOT NULL,
	  amount DECIMAL(12,2) NOT NULL,
	  currency CHAR(3) NOT NULL,
	  donation_frequency VARCHAR(16) NOT NULL,
	  stripe_transaction_id VARCHAR(128) NOT NULL,
	  created_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
	  PRIMARY KEY (id),
	  KEY ix_transactions_charity_id (charity_id),
	  UNIQUE KEY ux_transactions_stripe_transaction_id (stripe_transaction_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS provider_events (
	  id CHAR(36) NOT NULL,
	  provider VARCHAR(64) NOT NULL,
	  event_id VARCHAR(128) NOT NULL,
	  event_type VARCHAR(64) NOT NULL,
	  payload_json JSON NOT NULL,
	  received_at DATETIME(3) NOT NULL,
	  processed_at DATETIME(3) NULL,
	  process_error VARCHAR(255) NULL,
	  PRIMARY KEY (id),
	  UNIQUE KEY ux_provider_events_provider_event (provider, event_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

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

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get DB: %v", err)
	}

	for _, stmt := range ddl {
		if _, err := sqlDB.Exec(stmt); err != nil {
			log.Fatalf("Failed to create table: %v", err)
		}
	}

	log.Println("Tables created.")
}
