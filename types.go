package authgate

import (
	"context"
	"fmt"
	"strings"
)

type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

// Identity holds the attributes of an identity resolved from the
// authentication provider
type Identity interface {
	ID() string
	Email() string
	Role() UserRole
}

// IdentityProvider resolves an authenticated user ID into an Identity
type IdentityProvider interface {
	FindIdentityByIdentifier(ctx context.Context, identifier string) (Identity, error)
}

// IdentityProviderFunc adapts a function into an IdentityProvider.
type IdentityProviderFunc func(ctx context.Context, identifier string) (Identity, error)

// FindIdentityByIdentifier satisfies the IdentityProvider interface.
func (f IdentityProviderFunc) FindIdentityByIdentifier(ctx context.Context, identifier string) (Identity, error) {
	if f == nil {
		return nil, ErrIdentityNotFound
	}
	return f(ctx, identifier)
}

// Config holds the options read by the webhook receiver and the access router
type Config interface {
	GetWebhookSecret() string
	GetPublicRoutes() []string
}

type defLogger struct{}

func (d defLogger) Error(msg string, args ...any) {
	fmt.Print("[ERR] AUTHGATE " + line(msg, args...))
}

func (d defLogger) Info(msg string, args ...any) {
	fmt.Print("[INF] AUTHGATE " + line(msg, args...))
}

func (d defLogger) Debug(msg string, args ...any) {
	fmt.Print("[DBG] AUTHGATE " + line(msg, args...))
}

// line renders msg followed by key=value pairs. A trailing key without
// a value is printed as is.
func line(msg string, args ...any) string {
	var b strings.Builder
	b.WriteString(msg)
	for i := 0; i < len(args); i += 2 {
		b.WriteByte(' ')
		if i+1 >= len(args) {
			fmt.Fprintf(&b, "%v", args[i])
			break
		}
		fmt.Fprintf(&b, "%v=%v", args[i], args[i+1])
	}
	b.WriteByte('\n')
	return b.String()
}

// DefaultLogger returns the stdout logger used when none is configured.
func DefaultLogger() Logger {
	return defLogger{}
}
