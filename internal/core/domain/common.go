package domain

import "time"

// AuditFields holds standard audit information for domain entities.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"` // UserID Reference
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"` // UserID Reference
}

// CounterpartyKind distinguishes the two mutually exclusive counterparty families.
type CounterpartyKind string

const (
	CounterpartyCustomer CounterpartyKind = "CUSTOMER"
	CounterpartySupplier CounterpartyKind = "SUPPLIER"
)
