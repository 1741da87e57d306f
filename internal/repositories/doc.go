// Package repositories implements SQLite persistence for the Stand catalog.
//
// The catalog is an optional source of the reference table: it is seeded from the bundled dataset
// and read back in the same order. Matching never writes to the database.
//
// Key Implementations:
//   - [StandRepository] : catalog seeding, loading, and name lookups
//
// Row order is kept in a dedicated position column independent of the UUID primary keys.
package repositories
