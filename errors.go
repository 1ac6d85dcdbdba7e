package authgate

import (
	"net/http"

	goerrors "github.com/goliatone/go-errors"
)

const (
	TextCodeSecretNotConfigured  = "webhook_secret_not_configured"
	TextCodeSecretInvalid        = "webhook_secret_invalid"
	TextCodeInvalidSignature     = "webhook_invalid_signature"
	TextCodeInvalidPayload       = "webhook_invalid_payload"
	TextCodePrimaryEmailNotFound = "webhook_primary_email_not_found"
	TextCodeUserAlreadyExists    = "user_already_exists"
	TextCodeUserNotFound         = "user_not_found"
	TextCodeIdentityLookup       = "identity_lookup_failed"
	TextCodeIdentityNotFound     = "identity_not_found"
	TextCodeStorage              = "storage_failure"
)

// ErrSecretNotConfigured is returned when no webhook signing secret is set.
var ErrSecretNotConfigured = goerrors.New("secret not configured", goerrors.CategoryInternal).
	WithTextCode(TextCodeSecretNotConfigured).
	WithCode(http.StatusInternalServerError)

// ErrSecretInvalid is returned when the signing secret can not be used by the verifier.
var ErrSecretInvalid = goerrors.New("secret misconfigured", goerrors.CategoryInternal).
	WithTextCode(TextCodeSecretInvalid).
	WithCode(http.StatusInternalServerError)

// ErrInvalidSignature is returned when the payload does not match its signature.
var ErrInvalidSignature = goerrors.New("invalid signature", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidSignature).
	WithCode(http.StatusBadRequest)

// ErrInvalidPayload is returned for bodies that are not JSON or do not decode
// into the expected event shape.
var ErrInvalidPayload = goerrors.New("invalid payload", goerrors.CategoryBadInput).
	WithTextCode(TextCodeInvalidPayload).
	WithCode(http.StatusBadRequest)

// ErrPrimaryEmailNotFound is returned when no email address matches the
// primary email address ID of a user.created event.
var ErrPrimaryEmailNotFound = goerrors.New("primary email not found", goerrors.CategoryValidation).
	WithTextCode(TextCodePrimaryEmailNotFound).
	WithCode(http.StatusBadRequest)

// ErrUserAlreadyExists is returned when a user record with the same ID is stored.
var ErrUserAlreadyExists = goerrors.New("user already exists", goerrors.CategoryConflict).
	WithTextCode(TextCodeUserAlreadyExists).
	WithCode(http.StatusConflict)

// ErrUserNotFound is returned when no user record matches.
var ErrUserNotFound = goerrors.New("user not found", goerrors.CategoryNotFound).
	WithTextCode(TextCodeUserNotFound).
	WithCode(http.StatusNotFound)

// ErrIdentityNotFound is returned by identity providers for unknown identifiers.
var ErrIdentityNotFound = goerrors.New("identity not found", goerrors.CategoryNotFound).
	WithTextCode(TextCodeIdentityNotFound).
	WithCode(http.StatusNotFound)

// ErrIdentityLookup marks a failed role resolution during routing.
var ErrIdentityLookup = goerrors.New("identity lookup failed", goerrors.CategoryOperation).
	WithTextCode(TextCodeIdentityLookup).
	WithCode(http.StatusBadGateway)

// ErrStorage is the public face of storage failures.
var ErrStorage = goerrors.New("internal error", goerrors.CategoryInternal).
	WithTextCode(TextCodeStorage).
	WithCode(http.StatusInternalServerError)

const receivedMessage = "received"

// Outcome is the status and plain text message reported to the webhook sender
type Outcome struct {
	Status  int
	Message string
}

// Received is the outcome of a successfully processed delivery.
func Received() Outcome {
	return Outcome{Status: http.StatusOK, Message: receivedMessage}
}

// OutcomeFromError maps an error into the response contract. Errors that
// are not rich errors are reported as internal errors.
func OutcomeFromError(err error) Outcome {
	if err == nil {
		return Received()
	}

	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) || richErr.Code == 0 {
		return Outcome{Status: ErrStorage.Code, Message: ErrStorage.Message}
	}

	if richErr.Code >= http.StatusInternalServerError && richErr.TextCode != TextCodeSecretNotConfigured && richErr.TextCode != TextCodeSecretInvalid {
		return Outcome{Status: richErr.Code, Message: ErrStorage.Message}
	}

	return Outcome{Status: richErr.Code, Message: richErr.Message}
}
