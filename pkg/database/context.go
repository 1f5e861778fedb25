package database

import (
	"context"
)

type contextKey string

// tenantScopeKey is the context key for the tenant-scoped database connection.
const tenantScopeKey contextKey = "tenantScope"

// GetTenantScope retrieves the tenant-scoped database connection from context.
func GetTenantScope(ctx context.Context) (*TenantScope, bool) {
	scope, ok := ctx.Value(tenantScopeKey).(*TenantScope)
	return scope, ok
}

// SetTenantScope stores the tenant-scoped database connection in context.
func SetTenantScope(ctx context.Context, scope *TenantScope) context.Context {
	return context.WithValue(ctx, tenantScopeKey, scope)
}
