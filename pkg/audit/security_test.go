package audit

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spincoach-ai/engine/pkg/auth"
)

func newObservedAuditor() (*SecurityAuditor, *observer.ObservedLogs) {
	core, logs := observer.New(zap.InfoLevel)
	return NewSecurityAuditor(zap.New(core)), logs
}

func TestLogCredentialEvent(t *testing.T) {
	auditor, logs := newObservedAuditor()
	orgID := uuid.New()
	credID := uuid.New()

	claims := &auth.Claims{OrganizationID: orgID.String()}
	claims.Subject = "user-123"
	ctx := auth.SetClaims(context.Background(), claims)

	auditor.LogCredentialEvent(ctx, EventCredentialRotated, orgID, CredentialDetails{
		CredentialID: credID,
		Provider:     "openai",
	})

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}

	entry := entries[0]
	if entry.Level != zap.InfoLevel {
		t.Errorf("expected info level, got %s", entry.Level)
	}

	fields := entry.ContextMap()
	if fields["event_type"] != string(EventCredentialRotated) {
		t.Errorf("expected event_type credential_rotated, got %v", fields["event_type"])
	}

	var event SecurityEvent
	if err := json.Unmarshal([]byte(fields["event_json"].(string)), &event); err != nil {
		t.Fatalf("event_json is not valid JSON: %v", err)
	}
	if event.UserID != "user-123" {
		t.Errorf("expected user_id from claims, got %q", event.UserID)
	}
	if event.Severity != "info" {
		t.Errorf("expected severity info, got %q", event.Severity)
	}
}

func TestLogCredentialEvent_NeverLogsKeyMaterial(t *testing.T) {
	auditor, logs := newObservedAuditor()

	auditor.LogCredentialEvent(context.Background(), EventCredentialCreated, uuid.New(), CredentialDetails{
		CredentialID: uuid.New(),
		Provider:     "anthropic",
	})

	for _, entry := range logs.All() {
		for key := range entry.ContextMap() {
			if key == "api_key" || key == "masked_api_key" || key == "encrypted_api_key" {
				t.Errorf("audit log must not carry key field %q", key)
			}
		}
	}
}

func TestLogCredentialUnusable(t *testing.T) {
	auditor, logs := newObservedAuditor()

	auditor.LogCredentialUnusable(context.Background(), uuid.New(), CredentialDetails{
		CredentialID: uuid.New(),
		Provider:     "openai",
	})

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	if entries[0].Level != zap.ErrorLevel {
		t.Errorf("expected error level, got %s", entries[0].Level)
	}

	var event SecurityEvent
	fields := entries[0].ContextMap()
	if err := json.Unmarshal([]byte(fields["event_json"].(string)), &event); err != nil {
		t.Fatalf("event_json is not valid JSON: %v", err)
	}
	if event.Severity != "critical" {
		t.Errorf("expected severity critical, got %q", event.Severity)
	}
}

func TestLogLoginFailed(t *testing.T) {
	auditor, logs := newObservedAuditor()

	auditor.LogLoginFailed(context.Background(), "rep@acme.test", "wrong_password")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	if entries[0].Level != zap.WarnLevel {
		t.Errorf("expected warn level, got %s", entries[0].Level)
	}

	fields := entries[0].ContextMap()
	if fields["email"] != "rep@acme.test" {
		t.Errorf("expected email field, got %v", fields["email"])
	}
	if fields["reason"] != "wrong_password" {
		t.Errorf("expected reason field, got %v", fields["reason"])
	}
}

func TestAuditorUsesSecurityNamespace(t *testing.T) {
	auditor, logs := newObservedAuditor()

	auditor.LogLoginFailed(context.Background(), "rep@acme.test", "unknown_email")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	if entries[0].LoggerName != "security_audit" {
		t.Errorf("expected security_audit namespace, got %q", entries[0].LoggerName)
	}
}
