package authgate

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	svix "github.com/svix/svix-webhooks/go"
)

const (
	HeaderWebhookID        = "svix-id"
	HeaderWebhookTimestamp = "svix-timestamp"
	HeaderWebhookSignature = "svix-signature"
)

// VerificationHeaders are the signing headers sent with a webhook delivery.
// Missing headers are empty strings.
type VerificationHeaders struct {
	ID        string
	Timestamp string
	Signature string
}

// HeaderFunc returns the value of a request header, or "" when missing.
// http.Header.Get and fiber's Ctx.Get adapted to a single argument fit it.
type HeaderFunc func(key string) string

// HeadersFrom extracts the verification headers with get.
func HeadersFrom(get HeaderFunc) VerificationHeaders {
	if get == nil {
		return VerificationHeaders{}
	}
	return VerificationHeaders{
		ID:        get(HeaderWebhookID),
		Timestamp: get(HeaderWebhookTimestamp),
		Signature: get(HeaderWebhookSignature),
	}
}

// HTTPHeader returns the headers in the shape the signing library reads.
func (v VerificationHeaders) HTTPHeader() http.Header {
	h := http.Header{}
	h.Set(HeaderWebhookID, v.ID)
	h.Set(HeaderWebhookTimestamp, v.Timestamp)
	h.Set(HeaderWebhookSignature, v.Signature)
	return h
}

// Verifier checks webhook signatures and decodes verified events
type Verifier struct{}

// NewVerifier returns a Verifier
func NewVerifier() *Verifier {
	return &Verifier{}
}

// Verify checks rawBody against the signature headers using secret and
// decodes the verified payload.
func (v *Verifier) Verify(rawBody []byte, headers VerificationHeaders, secret string) (*InboundEvent, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrSecretNotConfigured
	}

	wh, err := svix.NewWebhook(secret)
	if err != nil {
		return nil, ErrSecretInvalid
	}

	payload, err := CanonicalPayload(rawBody)
	if err != nil {
		return nil, ErrInvalidPayload
	}

	if err := wh.Verify(payload, headers.HTTPHeader()); err != nil {
		return nil, ErrInvalidSignature
	}

	return DecodeEvent(payload)
}

// CanonicalPayload returns the compact serialization of a JSON body.
// Key order and values are preserved so compact input is returned as is.
func CanonicalPayload(rawBody []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.Compact(&buf, rawBody); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
