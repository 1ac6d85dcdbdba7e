package clerk

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	clerksdk "github.com/clerk/clerk-sdk-go/v2"
	"github.com/clerk/clerk-sdk-go/v2/user"
	"github.com/goliatone/go-authgate"
)

// UserReader reads a Clerk user by ID. *user.Client satisfies it.
type UserReader interface {
	Get(ctx context.Context, id string) (*clerksdk.User, error)
}

// IdentityProviderConfig configures the Clerk identity provider.
type IdentityProviderConfig struct {
	// SecretKey is the Clerk backend API secret key.
	SecretKey string

	// Users overrides the backend API client (optional).
	Users UserReader
}

// IdentityProvider implements authgate.IdentityProvider backed by Clerk.
type IdentityProvider struct {
	users UserReader
}

var _ authgate.IdentityProvider = (*IdentityProvider)(nil)

// NewIdentityProvider creates a Clerk-backed identity provider.
func NewIdentityProvider(cfg IdentityProviderConfig) (*IdentityProvider, error) {
	if cfg.Users != nil {
		return &IdentityProvider{users: cfg.Users}, nil
	}

	if strings.TrimSpace(cfg.SecretKey) == "" {
		return nil, fmt.Errorf("clerk: secret key is required")
	}

	client := user.NewClient(&clerksdk.ClientConfig{
		BackendConfig: clerksdk.BackendConfig{
			Key: clerksdk.String(cfg.SecretKey),
		},
	})

	return &IdentityProvider{users: client}, nil
}

// FindIdentityByIdentifier implements authgate.IdentityProvider.
func (p *IdentityProvider) FindIdentityByIdentifier(ctx context.Context, identifier string) (authgate.Identity, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, authgate.ErrIdentityNotFound
	}

	u, err := p.users.Get(ctx, identifier)
	if err != nil {
		return nil, fmt.Errorf("clerk: user lookup failed: %w", err)
	}

	identity, err := mapClerkUser(u)
	if err != nil {
		return nil, err
	}
	return identity, nil
}

func mapClerkUser(u *clerksdk.User) (*ClerkIdentity, error) {
	if u == nil {
		return nil, authgate.ErrIdentityNotFound
	}

	metadata, err := decodeMetadata(u.PublicMetadata)
	if err != nil {
		return nil, fmt.Errorf("clerk: invalid public metadata for %s: %w", u.ID, err)
	}

	return &ClerkIdentity{
		id:       u.ID,
		email:    primaryEmail(u),
		role:     authgate.RoleFromMetadata(metadata),
		metadata: metadata,
	}, nil
}

func decodeMetadata(raw json.RawMessage) (map[string]any, error) {
	metadata := map[string]any{}
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return metadata, nil
	}

	if err := json.Unmarshal(raw, &metadata); err != nil {
		return nil, err
	}
	return metadata, nil
}

func primaryEmail(u *clerksdk.User) string {
	if u.PrimaryEmailAddressID == nil {
		return ""
	}

	for _, addr := range u.EmailAddresses {
		if addr != nil && addr.ID == *u.PrimaryEmailAddressID {
			return addr.EmailAddress
		}
	}
	return ""
}

// ClerkIdentity is a Clerk user projected into authgate.Identity.
type ClerkIdentity struct {
	id       string
	email    string
	role     authgate.UserRole
	metadata map[string]any
}

func (u *ClerkIdentity) ID() string              { return u.id }
func (u *ClerkIdentity) Email() string           { return u.email }
func (u *ClerkIdentity) Role() authgate.UserRole { return u.role }
func (u *ClerkIdentity) Metadata() map[string]any {
	if u == nil {
		return nil
	}
	return u.metadata
}
