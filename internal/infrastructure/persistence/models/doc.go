// Package models contains the GORM database models of the operation journal.
// They are kept apart from the journal domain entities so the domain stays
// free of ORM tags.
package models
