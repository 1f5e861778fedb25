// Package audit provides security audit logging for SIEM consumption.
// Credential lifecycle and authentication events are logged in structured
// JSON format for easy parsing and alerting.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spincoach-ai/engine/pkg/auth"
)

// SecurityEventType categorizes security-relevant events for filtering and alerting.
type SecurityEventType string

const (
	// EventCredentialCreated is logged when an organization stores a new provider key.
	EventCredentialCreated SecurityEventType = "credential_created"
	// EventCredentialRotated is logged when a provider key is replaced.
	EventCredentialRotated SecurityEventType = "credential_rotated"
	// EventCredentialDeactivated is logged when a provider key is taken out of use.
	EventCredentialDeactivated SecurityEventType = "credential_deactivated"
	// EventCredentialUnusable is logged when a stored key fails to decrypt,
	// which usually means the encryption key changed underneath it.
	EventCredentialUnusable SecurityEventType = "credential_unusable"
	// EventLoginFailed is logged on failed login attempts.
	EventLoginFailed SecurityEventType = "login_failed"
)

// SecurityEvent represents an auditable security event with all relevant
// context for SIEM ingestion and analysis.
type SecurityEvent struct {
	Timestamp      time.Time         `json:"timestamp"`
	EventType      SecurityEventType `json:"event_type"`
	OrganizationID uuid.UUID         `json:"organization_id,omitempty"`
	UserID         string            `json:"user_id,omitempty"`
	Details        any               `json:"details,omitempty"`
	Severity       string            `json:"severity"` // info, warning, critical
}

// CredentialDetails identifies the credential an event concerns. It never
// carries key material, masked or otherwise.
type CredentialDetails struct {
	CredentialID uuid.UUID `json:"credential_id,omitempty"`
	Provider     string    `json:"provider"`
}

// SecurityAuditor logs security events for SIEM consumption.
type SecurityAuditor struct {
	logger *zap.Logger
}

// NewSecurityAuditor creates a new security auditor with a dedicated logger
// namespace. The "security_audit" namespace makes filtering in SIEM systems
// straightforward.
func NewSecurityAuditor(logger *zap.Logger) *SecurityAuditor {
	return &SecurityAuditor{logger: logger.Named("security_audit")}
}

// LogCredentialEvent records a credential lifecycle event at INFO level.
func (a *SecurityAuditor) LogCredentialEvent(ctx context.Context, eventType SecurityEventType, orgID uuid.UUID, details CredentialDetails) {
	event := a.newEvent(ctx, eventType, orgID, details, "info")
	eventJSON, _ := json.Marshal(event)

	a.logger.Info("Credential lifecycle event",
		zap.String("event_json", string(eventJSON)),
		zap.String("event_type", string(eventType)),
		zap.String("organization_id", orgID.String()),
		zap.String("provider", details.Provider),
	)
}

// LogCredentialUnusable records a stored key that no longer decrypts. Logged
// at ERROR level with "critical" severity: scoring for the organization is
// broken until the key is rotated.
func (a *SecurityAuditor) LogCredentialUnusable(ctx context.Context, orgID uuid.UUID, details CredentialDetails) {
	event := a.newEvent(ctx, EventCredentialUnusable, orgID, details, "critical")
	eventJSON, _ := json.Marshal(event)

	a.logger.Error("Stored credential failed to decrypt",
		zap.String("event_json", string(eventJSON)),
		zap.String("organization_id", orgID.String()),
		zap.String("credential_id", details.CredentialID.String()),
		zap.String("provider", details.Provider),
	)
}

// LogLoginFailed records a failed login attempt at WARN level. The email is
// included so repeated attempts against one account are visible; the reason
// distinguishes unknown accounts from bad passwords for the SIEM only, never
// for the API response.
func (a *SecurityAuditor) LogLoginFailed(ctx context.Context, email, reason string) {
	event := a.newEvent(ctx, EventLoginFailed, uuid.Nil, map[string]string{
		"email":  email,
		"reason": reason,
	}, "warning")
	eventJSON, _ := json.Marshal(event)

	a.logger.Warn("Login failed",
		zap.String("event_json", string(eventJSON)),
		zap.String("email", email),
		zap.String("reason", reason),
	)
}

func (a *SecurityAuditor) newEvent(ctx context.Context, eventType SecurityEventType, orgID uuid.UUID, details any, severity string) SecurityEvent {
	var userID string
	if claims, ok := auth.GetClaims(ctx); ok {
		userID = claims.Subject
	}

	return SecurityEvent{
		Timestamp:      time.Now().UTC(),
		EventType:      eventType,
		OrganizationID: orgID,
		UserID:         userID,
		Details:        details,
		Severity:       severity,
	}
}
