// Package authgate connects an identity provider to an application's user
// store and request routing.
//
// Webhooks:
//   - WebhookReceiver verifies signed deliveries (svix-id, svix-timestamp,
//     svix-signature) against the configured secret and decodes the event.
//     user.created events insert a User keyed by the provider's user ID with
//     the primary email address. Other event types are accepted and ignored.
//   - Failures are rich errors; OutcomeFromError maps them to the status and
//     plain text message reported to the sender.
//
// Routing:
//   - AccessRouter decides, per request, whether to continue or redirect
//     based on the AuthContext, the path and the role returned by an
//     IdentityProvider. RouteMatcher selects which requests it runs for.
//
// Storage:
//   - ClientHandle owns the single shared database client. It opens the
//     database and applies the embedded migrations on first use.
package authgate
