// Package persistence provides database repository implementations.
// It uses GORM as the ORM layer to store the operation journal in
// PostgreSQL or SQLite.
package persistence
