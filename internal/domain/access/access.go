// Package access holds the requester identity consumed by the access-policy decorator.
package access

import "context"

// Context is the requester identity resolved by the auth layer for one request.
// A zero Context is anonymous.
type Context struct {
	subject         string
	organization    string
	assetSearchOnly bool
}

// Anonymous returns an unauthenticated context.
func Anonymous() Context { return Context{} }

// New creates a context for subject. An empty subject is anonymous.
func New(subject, organization string) Context {
	return Context{subject: subject, organization: organization}
}

// WithAssetSearchOnly returns a copy restricted to asset item categories.
func (c Context) WithAssetSearchOnly(v bool) Context {
	c.assetSearchOnly = v
	return c
}

// Subject returns the subject id and whether the requester is authenticated.
func (c Context) Subject() (string, bool) { return c.subject, c.subject != "" }

// Organization returns the requester organization id, if any.
func (c Context) Organization() string { return c.organization }

// IsAuthenticated reports whether a subject is present.
func (c Context) IsAuthenticated() bool { return c.subject != "" }

// IsAssetSearchOnly reports whether results are limited to asset categories.
func (c Context) IsAssetSearchOnly() bool { return c.assetSearchOnly }

type ctxKey struct{}

// ContextWith stores the requester identity in ctx.
func ContextWith(ctx context.Context, ac Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, ac)
}

// FromContext returns the requester identity stored in ctx, anonymous if none.
func FromContext(ctx context.Context) Context {
	if ac, ok := ctx.Value(ctxKey{}).(Context); ok {
		return ac
	}
	return Anonymous()
}
