package middleware

import (
	"context"
	"travelbook/pkg/config"
)

type contextKey string

const (
	RequestIDKey      contextKey = "request_id"
	OrganizationIDKey contextKey = "organization_id"
	requestInfoKey    contextKey = "request_info"
)

// requestInfo lets outer middleware see values set further down the chain.
type requestInfo struct {
	organizationID string
}

func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

// OrganizationID returns the caller's organization, or the default one.
func OrganizationID(ctx context.Context) string {
	if id, ok := ctx.Value(OrganizationIDKey).(string); ok && id != "" {
		return id
	}
	if info, ok := ctx.Value(requestInfoKey).(*requestInfo); ok && info.organizationID != "" {
		return info.organizationID
	}
	return config.DefaultOrganizationID
}

func WithOrganizationID(ctx context.Context, orgID string) context.Context {
	if info, ok := ctx.Value(requestInfoKey).(*requestInfo); ok {
		info.organizationID = orgID
	}
	return context.WithValue(ctx, OrganizationIDKey, orgID)
}
