// Package models holds the GORM row types of the receivables schema and
// their conversions to and from domain aggregates. Domain types carry no
// GORM tags; repositories only ever hand models to the database.
//
// receivable.go maps customers, debt documents, receipts, allocations,
// period locks and the audit log. outbox.go maps the event outbox.
package models
