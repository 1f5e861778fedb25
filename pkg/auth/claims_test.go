package auth

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrganizationID(t *testing.T) {
	orgID := uuid.New()
	ctx := SetClaims(context.Background(), &Claims{OrganizationID: orgID.String()})

	assert.Equal(t, orgID, GetOrganizationID(ctx))
}

func TestGetOrganizationIDMissing(t *testing.T) {
	assert.Equal(t, uuid.Nil, GetOrganizationID(context.Background()))

	ctx := SetClaims(context.Background(), &Claims{})
	assert.Equal(t, uuid.Nil, GetOrganizationID(ctx))

	ctx = SetClaims(context.Background(), &Claims{OrganizationID: "not-a-uuid"})
	assert.Equal(t, uuid.Nil, GetOrganizationID(ctx))
}

func TestRequireOrganizationID(t *testing.T) {
	orgID := uuid.New()
	ctx := SetClaims(context.Background(), &Claims{OrganizationID: orgID.String()})

	got, err := RequireOrganizationID(ctx)
	require.NoError(t, err)
	assert.Equal(t, orgID, got)

	_, err = RequireOrganizationID(context.Background())
	assert.Error(t, err)

	_, err = RequireOrganizationID(SetClaims(context.Background(), &Claims{}))
	assert.Error(t, err)
}
