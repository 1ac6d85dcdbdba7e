package server

import (
	"github.com/gofiber/fiber/v2"

	"github.com/goliatone/go-authgate"
)

// SessionResolver derives the AuthContext of a request
type SessionResolver interface {
	Resolve(c *fiber.Ctx) authgate.AuthContext
}

// SessionResolverFunc adapts a function into a SessionResolver
type SessionResolverFunc func(c *fiber.Ctx) authgate.AuthContext

func (f SessionResolverFunc) Resolve(c *fiber.Ctx) authgate.AuthContext {
	return f(c)
}

// AccessConfig configures the access middleware
type AccessConfig struct {
	Router   *authgate.AccessRouter
	Sessions SessionResolver
	Matcher  *authgate.RouteMatcher
	// RedirectStatus defaults to 307 Temporary Redirect.
	RedirectStatus int
}

// AccessMiddleware runs the access router for every matched request and
// redirects when it says so.
func AccessMiddleware(cfg AccessConfig) fiber.Handler {
	if cfg.Matcher == nil {
		cfg.Matcher = authgate.NewRouteMatcher()
	}

	if cfg.Sessions == nil {
		cfg.Sessions = SessionResolverFunc(func(*fiber.Ctx) authgate.AuthContext {
			return authgate.Anonymous()
		})
	}

	if cfg.RedirectStatus == 0 {
		cfg.RedirectStatus = fiber.StatusTemporaryRedirect
	}

	if cfg.Router == nil {
		panic("AUTHGATE: access middleware configuration: Router is required.")
	}

	return func(c *fiber.Ctx) error {
		path := c.Path()
		if !cfg.Matcher.Applies(path) {
			return c.Next()
		}

		auth := cfg.Sessions.Resolve(c)
		c.SetUserContext(authgate.WithAuthContext(c.UserContext(), auth))

		decision := cfg.Router.Decide(c.UserContext(), auth, path)
		if decision.Redirect {
			return c.Redirect(decision.Location, cfg.RedirectStatus)
		}

		return c.Next()
	}
}
