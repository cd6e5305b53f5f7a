package dto

import (
	"encoding/json"
	"time"

	"facturo/internal/infrastructure/storage/postgres"
)

// AuditEntryResponse is one change-history entry. Changes are returned
// decompressed regardless of how they are stored.
type AuditEntryResponse struct {
	ID         string          `json:"id"`
	EntityType string          `json:"entityType"`
	EntityID   string          `json:"entityId"`
	Action     string          `json:"action"`
	UserID     string          `json:"userId,omitempty"`
	Changes    json.RawMessage `json:"changes,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// FromAuditEntry converts an audit entry to its response DTO.
func FromAuditEntry(e postgres.AuditEntry) AuditEntryResponse {
	return AuditEntryResponse{
		ID:         e.ID.String(),
		EntityType: e.EntityType,
		EntityID:   e.EntityID.String(),
		Action:     string(e.Action),
		UserID:     e.UserID,
		Changes:    e.Changes,
		CreatedAt:  e.CreatedAt,
	}
}
