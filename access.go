package authgate

import (
	"context"
	"slices"
)

const (
	RouteHome           = "/"
	RouteWebhook        = "/api/webhook/register"
	RouteSignUp         = "/sign-up"
	RouteSignIn         = "/sign-in"
	RouteDashboard      = "/dashboard"
	RouteAdminDashboard = "/admin/dashboard"
	RouteError          = "/error"
)

// adminDashboardAlias is compared literally against the request path.
// Request paths always carry a leading slash so this never matches.
const adminDashboardAlias = "dashboard"

// DefaultPublicRoutes returns the paths reachable without authentication
func DefaultPublicRoutes() []string {
	return []string{RouteHome, RouteWebhook, RouteSignUp, RouteSignIn}
}

// AuthContext is the authentication state of a single request. An empty
// UserID means the request is anonymous.
type AuthContext struct {
	UserID    string
	SessionID string
}

// Anonymous returns an unauthenticated context
func Anonymous() AuthContext {
	return AuthContext{}
}

// IsAuthenticated reports whether the request carries a user
func (a AuthContext) IsAuthenticated() bool {
	return a.UserID != ""
}

// Decision is the outcome of routing a request
type Decision struct {
	Redirect bool
	Location string
}

// Continue lets the request through
func Continue() Decision {
	return Decision{}
}

// RedirectTo sends the request to location
func RedirectTo(location string) Decision {
	return Decision{Redirect: true, Location: location}
}

// AccessRouter decides where a request goes based on its authentication
// state, the requested path and the role of the user.
type AccessRouter struct {
	identities   IdentityProvider
	publicRoutes []string
	logger       Logger
}

type AccessRouterOption func(*AccessRouter)

// WithPublicRoutes replaces the default public routes
func WithPublicRoutes(routes ...string) AccessRouterOption {
	return func(r *AccessRouter) {
		r.publicRoutes = slices.Clone(routes)
	}
}

// WithConfig takes the public routes from cfg. An empty list keeps
// the defaults.
func WithConfig(cfg Config) AccessRouterOption {
	return func(r *AccessRouter) {
		if cfg == nil {
			return
		}
		if routes := cfg.GetPublicRoutes(); len(routes) > 0 {
			r.publicRoutes = slices.Clone(routes)
		}
	}
}

// WithAccessLogger sets the logger
func WithAccessLogger(logger Logger) AccessRouterOption {
	return func(r *AccessRouter) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func NewAccessRouter(identities IdentityProvider, opts ...AccessRouterOption) *AccessRouter {
	r := &AccessRouter{
		identities:   identities,
		publicRoutes: DefaultPublicRoutes(),
		logger:       defLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// IsPublic reports whether path is one of the public routes
func (r *AccessRouter) IsPublic(path string) bool {
	return slices.Contains(r.publicRoutes, path)
}

// PublicRoutes returns a copy of the public routes
func (r *AccessRouter) PublicRoutes() []string {
	return slices.Clone(r.publicRoutes)
}

// Decide routes a request. Anonymous requests always continue.
// Authenticated requests off the public routes go home, and
// authenticated requests on a public route go to the dashboard for their
// role. Identity lookup failures redirect to the error page.
func (r *AccessRouter) Decide(ctx context.Context, auth AuthContext, path string) Decision {
	if !auth.IsAuthenticated() {
		return Continue()
	}

	if !r.IsPublic(path) {
		return RedirectTo(RouteHome)
	}

	role, err := r.resolveRole(ctx, auth.UserID)
	if err != nil {
		r.logger.Error("identity lookup failed", "user_id", auth.UserID, "path", path, "error", err)
		return RedirectTo(RouteError)
	}

	if role.IsAdmin() && path == adminDashboardAlias {
		return RedirectTo(RouteAdminDashboard)
	}

	if r.IsPublic(path) {
		return RedirectTo(DashboardFor(role))
	}

	return Continue()
}

// DashboardFor returns the dashboard route for role
func DashboardFor(role UserRole) string {
	if role.IsAdmin() {
		return RouteAdminDashboard
	}
	return RouteDashboard
}

func (r *AccessRouter) resolveRole(ctx context.Context, userID string) (role UserRole, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("identity provider panic", "user_id", userID, "panic", rec)
			role, err = RoleUnset, ErrIdentityLookup
		}
	}()

	if r.identities == nil {
		return RoleUnset, ErrIdentityLookup
	}

	identity, err := r.identities.FindIdentityByIdentifier(ctx, userID)
	if err != nil {
		return RoleUnset, err
	}

	if identity == nil {
		return RoleUnset, ErrIdentityNotFound
	}

	return identity.Role(), nil
}
