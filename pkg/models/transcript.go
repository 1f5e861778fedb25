package models

import (
	"time"

	"github.com/google/uuid"
)

// Transcript is an immutable sales-conversation text blob with free-form
// metadata, optionally linked to the representative being assessed.
type Transcript struct {
	ID               uuid.UUID      `json:"id"`
	OrganizationID   uuid.UUID      `json:"organization_id"`
	RepresentativeID *uuid.UUID     `json:"representative_id,omitempty"`
	Content          string         `json:"content"`
	Metadata         map[string]any `json:"metadata,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
}

// Representative is a salesperson whose conversations are assessed.
type Representative struct {
	ID             uuid.UUID `json:"id"`
	OrganizationID uuid.UUID `json:"organization_id"`
	Name           string    `json:"name"`
	Email          string    `json:"email,omitempty"`
	Team           string    `json:"team,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
