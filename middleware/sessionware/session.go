package sessionware

import (
	"errors"
	"fmt"
	"log"
	"slices"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-authgate"
)

var (
	defaultTokenLookup = "cookie:__session,header:" + fiber.HeaderAuthorization

	ErrSessionMissingOrMalformed = errors.New("missing or malformed session token")
	ErrUnauthorizedParty         = errors.New("session token issued for an unauthorized party")
	ErrMissingSubject            = errors.New("session token has no subject")
)

// DefaultContextKey is the Locals key the resolved AuthContext is stored under
const DefaultContextKey = "auth_context"

type Config struct {
	// KeyFunc verifies token signatures. Takes precedence over JWKSetURL.
	KeyFunc jwt.Keyfunc
	// JWKSetURL is the provider's JWKS endpoint.
	JWKSetURL string
	// TokenLookup lists token sources, i.e. "cookie:__session,header:Authorization".
	TokenLookup string
	AuthScheme  string
	// AuthorizedParties restricts the azp claim when not empty.
	AuthorizedParties []string
	// ValidMethods restricts signing algorithms. Defaults to RS256.
	ValidMethods []string
	Leeway       time.Duration
	ContextKey   string
	Logger       authgate.Logger
}

// Resolver derives the AuthContext of a request from its session token.
type Resolver struct {
	cfg        Config
	extractors []Extractor
}

func New(config ...Config) (*Resolver, error) {
	cfg, err := GetDefaultConfig(config...)
	if err != nil {
		return nil, err
	}
	return &Resolver{
		cfg:        cfg,
		extractors: GetExtractors(cfg.TokenLookup, cfg.AuthScheme),
	}, nil
}

func GetDefaultConfig(config ...Config) (cfg Config, err error) {
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.KeyFunc == nil {
		if cfg.JWKSetURL == "" {
			return cfg, errors.New("AUTHGATE: session configuration: KeyFunc or JWKSetURL is required")
		}
		jwks, err := keyfunc.Get(cfg.JWKSetURL, keyfuncOptions())
		if err != nil {
			return cfg, fmt.Errorf("failed to get JWK set: %w", err)
		}
		cfg.KeyFunc = jwks.Keyfunc
	}

	if cfg.TokenLookup == "" {
		cfg.TokenLookup = defaultTokenLookup
	}

	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "Bearer"
	}

	if len(cfg.ValidMethods) == 0 {
		cfg.ValidMethods = []string{"RS256"}
	}

	if cfg.Leeway == 0 {
		cfg.Leeway = 5 * time.Second
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = DefaultContextKey
	}

	if cfg.Logger == nil {
		cfg.Logger = authgate.DefaultLogger()
	}

	return cfg, nil
}

func keyfuncOptions() keyfunc.Options {
	return keyfunc.Options{
		RefreshErrorHandler: func(err error) {
			log.Printf("failed to do a background refresh of JWT set: %s", err)
		},
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  time.Minute * 5,
		RefreshTimeout:    time.Second * 10,
		RefreshUnknownKID: true,
	}
}

// Resolve returns the AuthContext for c. Requests without a valid session
// token are anonymous.
func (r *Resolver) Resolve(c *fiber.Ctx) authgate.AuthContext {
	raw, err := ExtractRawToken(c, r.extractors)
	if err != nil {
		return authgate.Anonymous()
	}

	auth, err := r.Verify(raw)
	if err != nil {
		r.cfg.Logger.Debug("session token rejected", "path", c.Path(), "error", err)
		return authgate.Anonymous()
	}
	return auth
}

// Verify validates a raw session token and maps its claims.
func (r *Resolver) Verify(raw string) (authgate.AuthContext, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, r.cfg.KeyFunc,
		jwt.WithValidMethods(r.cfg.ValidMethods),
		jwt.WithLeeway(r.cfg.Leeway),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return authgate.Anonymous(), err
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return authgate.Anonymous(), ErrMissingSubject
	}

	if len(r.cfg.AuthorizedParties) > 0 {
		azp, _ := claims["azp"].(string)
		if !slices.Contains(r.cfg.AuthorizedParties, azp) {
			return authgate.Anonymous(), ErrUnauthorizedParty
		}
	}

	sid, _ := claims["sid"].(string)
	return authgate.AuthContext{UserID: sub, SessionID: sid}, nil
}

// Handler resolves the session and stores the AuthContext under the
// configured context key before calling the next handler.
func (r *Resolver) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(r.cfg.ContextKey, r.Resolve(c))
		return c.Next()
	}
}

// ContextKey returns the Locals key used by Handler
func (r *Resolver) ContextKey() string {
	return r.cfg.ContextKey
}

// AuthContextFrom returns the AuthContext stored by Handler under key.
func AuthContextFrom(c *fiber.Ctx, key string) (authgate.AuthContext, bool) {
	auth, ok := c.Locals(key).(authgate.AuthContext)
	return auth, ok
}

type Extractor func(c *fiber.Ctx) (string, error)

func ExtractRawToken(c *fiber.Ctx, extractors []Extractor) (string, error) {
	var raw string
	err := ErrSessionMissingOrMalformed

	for _, extractor := range extractors {
		raw, err = extractor(c)
		if raw != "" && err == nil {
			break
		}
	}

	return raw, err
}

func GetExtractors(tokenLookup string, authSchemes ...string) []Extractor {
	extractors := make([]Extractor, 0)

	authScheme := "Bearer"
	if len(authSchemes) > 0 {
		authScheme = authSchemes[0]
	}

	// cookie:__session,header:Authorization
	for _, rootPart := range strings.Split(tokenLookup, ",") {
		parts := strings.Split(strings.TrimSpace(rootPart), ":")
		if len(parts) != 2 {
			continue
		}

		for i, el := range parts {
			parts[i] = strings.TrimSpace(el)
		}

		switch parts[0] {
		case "header":
			extractors = append(extractors, tokenFromHeader(parts[1], authScheme))
		case "cookie":
			extractors = append(extractors, tokenFromCookie(parts[1]))
		}
	}

	return extractors
}

func tokenFromHeader(header string, authScheme string) Extractor {
	authScheme = strings.TrimSpace(authScheme)
	return func(c *fiber.Ctx) (string, error) {
		a := c.Get(header)
		l := len(authScheme)
		if len(a) > l+1 && strings.EqualFold(a[:l], authScheme) {
			return strings.TrimSpace(a[l:]), nil
		}
		return "", ErrSessionMissingOrMalformed
	}
}

func tokenFromCookie(name string) Extractor {
	return func(c *fiber.Ctx) (string, error) {
		token := c.Cookies(name)
		if token == "" {
			return "", ErrSessionMissingOrMalformed
		}
		return token, nil
	}
}
