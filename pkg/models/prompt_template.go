package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// TranscriptPlaceholder is the token a user template must contain; the
// renderer substitutes the transcript text for it.
const TranscriptPlaceholder = "{transcript}"

// PromptTemplate is an organization-scoped scoring prompt. At most one
// template per organization is active at any time; activation atomically
// deactivates its siblings. A default v0 template is provisioned whenever an
// organization is created.
type PromptTemplate struct {
	ID             uuid.UUID `json:"id"`
	OrganizationID uuid.UUID `json:"organization_id"`
	Name           string    `json:"name"`
	Version        string    `json:"version"` // e.g. "v0", "v1", "custom_v2"
	SystemPrompt   string    `json:"system_prompt"`
	UserTemplate   string    `json:"user_template"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// HasPlaceholder reports whether the user template contains the transcript
// placeholder. Enforced at write time and re-checked before rendering.
func (t *PromptTemplate) HasPlaceholder() bool {
	return strings.Contains(t.UserTemplate, TranscriptPlaceholder)
}
