// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup (sqlite or postgres), migrations
//	├── dialect.go       # Dialect-specific SQL fragments
//	├── errors.go        # Constraint error classification
//	├── users/           # Credential store
//	├── words/           # Global word catalog
//	├── userwords/       # Per-user ledger and progress queries
//	└── audit/           # Sign-in and account-change events
//
// # Using Sub-packages
//
//	db, err := database.NewDatabase(cfg.Database)
//
//	usersRepo := users.NewRepository(db.DB)
//	catalog := words.NewRepository(db.DB)
//	ledger := userwords.NewRepository(db.DB)
//
// Repositories accept a *gorm.DB, so the same constructors work inside a
// transaction:
//
//	db.DB.Transaction(func(tx *gorm.DB) error {
//		word, err := words.NewRepository(tx).FindByText("apple")
//		...
//	})
//
// # Uniqueness
//
// Word text, user email and the (user_id, word_id) pair carry unique indexes.
// Those constraints are the final arbiter for check-then-create sequences;
// repositories translate violations into their own "already exists" errors
// via IsUniqueViolation.
package database
