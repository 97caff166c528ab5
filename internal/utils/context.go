package utils

import (
	"context"

	"github.com/gin-gonic/gin"
)

type CustomContext struct {
	AppSource       string
	OrganizationID  string
	ConfigurationID string
	RunID           string
}

type customContextKeyType string

const customContextKey customContextKeyType = "CUSTOM_CONTEXT"

func WithCustomContext(ctx context.Context, customContext *CustomContext) context.Context {
	return context.WithValue(ctx, customContextKey, customContext)
}

func WithCustomContextFromGinRequest(c *gin.Context, appSource string) context.Context {
	customContext := &CustomContext{
		AppSource: appSource,
	}
	return WithCustomContext(c.Request.Context(), customContext)
}

func GetContext(ctx context.Context) *CustomContext {
	customContext, ok := ctx.Value(customContextKey).(*CustomContext)
	if !ok {
		return new(CustomContext)
	}
	return customContext
}

func GetAppSourceFromContext(ctx context.Context) string {
	return GetContext(ctx).AppSource
}

func GetOrganizationFromContext(ctx context.Context) string {
	return GetContext(ctx).OrganizationID
}

func GetConfigurationFromContext(ctx context.Context) string {
	return GetContext(ctx).ConfigurationID
}

func GetRunIDFromContext(ctx context.Context) string {
	return GetContext(ctx).RunID
}

// WithRunContext copies the current custom context and attaches the run scope.
func WithRunContext(ctx context.Context, organizationID, configurationID, runID string) context.Context {
	current := *GetContext(ctx)
	current.OrganizationID = organizationID
	current.ConfigurationID = configurationID
	current.RunID = runID
	return WithCustomContext(ctx, &current)
}
