package authgate

import (
	"context"
	"strings"
)

// SecretSource returns the webhook signing secret. It is read on every
// delivery so a missing secret fails requests, not startup.
type SecretSource func() string

// StaticSecret returns a SecretSource for a fixed secret
func StaticSecret(secret string) SecretSource {
	return func() string { return secret }
}

// SecretFromConfig reads the secret from cfg on every delivery
func SecretFromConfig(cfg Config) SecretSource {
	return func() string {
		if cfg == nil {
			return ""
		}
		return cfg.GetWebhookSecret()
	}
}

// WebhookReceiver verifies deliveries and applies user.created events
type WebhookReceiver struct {
	verifier   *Verifier
	secret     SecretSource
	createUser *CreateUserHandler
	logger     Logger
}

type ReceiverOption func(*WebhookReceiver)

// WithReceiverLogger sets the logger
func WithReceiverLogger(logger Logger) ReceiverOption {
	return func(r *WebhookReceiver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithReceiverVerifier replaces the default verifier
func WithReceiverVerifier(v *Verifier) ReceiverOption {
	return func(r *WebhookReceiver) {
		if v != nil {
			r.verifier = v
		}
	}
}

func NewWebhookReceiver(secret SecretSource, repos RepositoryResolver, opts ...ReceiverOption) *WebhookReceiver {
	r := &WebhookReceiver{
		verifier: NewVerifier(),
		secret:   secret,
		logger:   defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}

	r.createUser = NewCreateUserHandler(repos, r.logger)
	return r
}

// Receive verifies a delivery and handles its event. A nil error means
// the delivery was accepted, including event types that are ignored.
func (r *WebhookReceiver) Receive(ctx context.Context, rawBody []byte, headers VerificationHeaders) error {
	secret := ""
	if r.secret != nil {
		secret = strings.TrimSpace(r.secret())
	}

	event, err := r.verifier.Verify(rawBody, headers, secret)
	if err != nil {
		r.logger.Error("webhook verification failed", "delivery", headers.ID, "error", err)
		return err
	}

	switch event.Type {
	case EventUserCreated:
		return r.handleUserCreated(ctx, event)
	default:
		r.logger.Debug("webhook event ignored", "delivery", headers.ID, "type", string(event.Type))
		return nil
	}
}

// Handle is Receive reported as an Outcome.
func (r *WebhookReceiver) Handle(ctx context.Context, rawBody []byte, headers VerificationHeaders) Outcome {
	return OutcomeFromError(r.Receive(ctx, rawBody, headers))
}

func (r *WebhookReceiver) handleUserCreated(ctx context.Context, event *InboundEvent) error {
	data, err := event.UserCreated()
	if err != nil {
		return err
	}

	msg, err := CreateUserMessageFromEvent(data)
	if err != nil {
		r.logger.Error("user.created without primary email", "id", data.ID, "primary_email_address_id", data.PrimaryEmailAddressID)
		return err
	}

	return r.createUser.Execute(ctx, msg)
}
