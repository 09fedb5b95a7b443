package core

import "time"

type AlertType string

const (
	AlertLowStock         AlertType = "LOW_STOCK"
	AlertExpiringLot      AlertType = "EXPIRING_LOT"
	AlertProductionNeeded AlertType = "PRODUCTION_NEEDED"
)

type EntityKind string

const (
	EntityMaterial EntityKind = "MATERIAL"
	EntityProduct  EntityKind = "PRODUCT"
	EntityLot      EntityKind = "LOT"
)

type Severity string

const (
	SeverityHigh   Severity = "HIGH"
	SeverityMedium Severity = "MEDIUM"
	SeverityLow    Severity = "LOW"
)

// Alert is an operator notification. Alerts are append-only except for acknowledgement.
type Alert struct {
	ID         int        `json:"id"`
	Type       AlertType  `json:"alert_type"`
	EntityKind EntityKind `json:"entity_kind"`
	EntityID   int        `json:"entity_id"`
	Message    string     `json:"message"`
	Severity   Severity   `json:"severity"`
	IsRead     bool       `json:"is_read"`
	ReadAt     *time.Time `json:"read_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}
