package models

import (
	"time"

	"github.com/google/uuid"
)

// Organization is the tenant boundary. Every credential, template, transcript
// and dataset belongs to exactly one organization; deleting an organization
// cascades to all of them.
type Organization struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"` // unique, case-insensitive
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
