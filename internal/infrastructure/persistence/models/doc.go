// Package models contains GORM persistence models for tables this service reads
// but does not own: timesheets written by the labor workflow and invoices written
// by billing. Ledger, catalog and project entities map their own tables.
package models
