// Package repositories implements SQLite persistence.
//
// Key Implementations:
//   - [SecretRepository] : the sqlite backend of [credentials.Store], one row per tag in the secrets table
//
// Schema changes live in the embedded migrations of the shared package; callers open the database
// with [shared.OpenDatabase], which applies pending migrations before returning.
package repositories
