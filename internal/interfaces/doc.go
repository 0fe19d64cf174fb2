// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Service Interfaces
//
//   - VocabularyService: word tracking, definitions and reports (internal/http/stores.go)
//   - UserService: profile and account status (internal/http/stores.go)
//   - AccountAuditor: account changes and the audit log (internal/http/stores.go)
//   - auth.Auditor: sign-in attempts (internal/auth/handlers.go)
//
// ## External Service Interfaces
//
//   - dictionary.Client: word audio and definitions (internal/dictionary/client.go)
//   - auth.GoogleVerifier: Google access token to profile (internal/auth/google.go)
//
// ## Background Work Interfaces
//
//   - tasks.WordEnricher: fills catalog words from the dictionary (internal/tasks/enrich_word.go)
//   - vocabulary.Enqueuer: schedules enrichment for new words (internal/vocabulary/service.go)
//   - scheduler.PendingEnqueuer: periodic sweep trigger (internal/scheduler/enrichment.go)
//
// # Adding a New Dictionary Provider
//
//  1. Implement Client in internal/dictionary/
//
//     type WiktionaryClient struct {
//         httpClient *http.Client
//     }
//
//     func (c *WiktionaryClient) Lookup(ctx context.Context, word string, pair LanguagePair) (*LookupResult, error)
//     func (c *WiktionaryClient) Name() string
//
//     var _ Client = (*WiktionaryClient)(nil)
//
//  2. Configure in entrypoint.go
//
// # Adding a New Database Domain
//
//  1. Create sub-package: internal/database/<domain>/
//
//  2. Define repository:
//
//     type Repository struct { db *gorm.DB }
//
//     func NewRepository(db *gorm.DB) *Repository
//
//  3. Map unique violations with database.IsUniqueViolation
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go for examples.
package interfaces
