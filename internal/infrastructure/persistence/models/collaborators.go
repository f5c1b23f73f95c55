package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceStatusVoid marks a cancelled invoice; void invoices never count as revenue
const InvoiceStatusVoid = "void"

// TimesheetEntryModel is one block of hours booked against a project
type TimesheetEntryModel struct {
	BaseModel
	ProjectID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	WorkerID   *uuid.UUID      `gorm:"type:uuid"`
	Hours      decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	HourlyCost decimal.Decimal `gorm:"type:decimal(18,4);not null"` // CLP
	WorkDate   time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (TimesheetEntryModel) TableName() string {
	return "timesheet_entries"
}

// InvoiceModel is the billing view of an invoice issued for a project
type InvoiceModel struct {
	BaseModel
	ProjectID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Number    string          `gorm:"type:varchar(50);not null"`
	Total     decimal.Decimal `gorm:"type:decimal(18,4);not null"` // CLP
	Status    string          `gorm:"type:varchar(20);not null"`
	IssuedAt  time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}
