package authgate_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-authgate"
)

func countUsers(t *testing.T, client *authgate.ClientHandle) int {
	t.Helper()
	repos, err := client.Repositories(context.Background())
	require.NoError(t, err)
	n, err := repos.Users().Count(context.Background())
	require.NoError(t, err)
	return n
}

func TestWebhookReceiver_UserCreated(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)
	receiver := authgate.NewWebhookReceiver(authgate.StaticSecret(testSecret), client,
		authgate.WithReceiverLogger(nopLogger{}),
	)

	body := userCreatedPayload("user_2abc", "idn_2",
		authgate.EmailAddress{ID: "idn_1", EmailAddress: "old@example.com"},
		authgate.EmailAddress{ID: "idn_2", EmailAddress: "ada@example.com"},
	)

	outcome := receiver.Handle(ctx, body, signPayload(t, testSecret, body))
	assert.Equal(t, authgate.Outcome{Status: http.StatusOK, Message: "received"}, outcome)

	repos, err := client.Repositories(ctx)
	require.NoError(t, err)

	user, err := repos.Users().GetByID(ctx, "user_2abc")
	require.NoError(t, err)
	assert.Equal(t, "user_2abc", user.ID)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.False(t, user.IsSubscribed)
}

func TestWebhookReceiver_MissingPrimaryEmail(t *testing.T) {
	client := newTestClient(t)
	receiver := authgate.NewWebhookReceiver(authgate.StaticSecret(testSecret), client,
		authgate.WithReceiverLogger(nopLogger{}),
	)

	body := userCreatedPayload("user_3", "idn_missing",
		authgate.EmailAddress{ID: "idn_1", EmailAddress: "ada@example.com"},
	)

	outcome := receiver.Handle(context.Background(), body, signPayload(t, testSecret, body))
	assert.Equal(t, http.StatusBadRequest, outcome.Status)
	assert.Equal(t, "primary email not found", outcome.Message)
	assert.Zero(t, countUsers(t, client))
}

func TestWebhookReceiver_OtherEventTypesAreAccepted(t *testing.T) {
	client := newTestClient(t)
	receiver := authgate.NewWebhookReceiver(authgate.StaticSecret(testSecret), client,
		authgate.WithReceiverLogger(nopLogger{}),
	)

	body := []byte(`{"type":"user.updated","object":"event","data":{"id":"user_4"}}`)

	outcome := receiver.Handle(context.Background(), body, signPayload(t, testSecret, body))
	assert.Equal(t, authgate.Received(), outcome)
	assert.Zero(t, countUsers(t, client))
}

func TestWebhookReceiver_InvalidSignature(t *testing.T) {
	client := newTestClient(t)
	receiver := authgate.NewWebhookReceiver(authgate.StaticSecret(testSecret), client,
		authgate.WithReceiverLogger(nopLogger{}),
	)

	body := userCreatedPayload("user_5", "idn_1", authgate.EmailAddress{ID: "idn_1", EmailAddress: "ada@example.com"})
	headers := signPayload(t, testSecret, body)
	headers.Signature = "v1,bm90LWEtc2lnbmF0dXJl"

	outcome := receiver.Handle(context.Background(), body, headers)
	assert.Equal(t, authgate.Outcome{Status: http.StatusBadRequest, Message: "invalid signature"}, outcome)
	assert.Zero(t, countUsers(t, client))
}

func TestWebhookReceiver_SecretNotConfigured(t *testing.T) {
	client := newTestClient(t)
	receiver := authgate.NewWebhookReceiver(authgate.StaticSecret(""), client,
		authgate.WithReceiverLogger(nopLogger{}),
	)

	body := userCreatedPayload("user_6", "idn_1", authgate.EmailAddress{ID: "idn_1", EmailAddress: "ada@example.com"})

	outcome := receiver.Handle(context.Background(), body, signPayload(t, testSecret, body))
	assert.Equal(t, authgate.Outcome{Status: http.StatusInternalServerError, Message: "secret not configured"}, outcome)
	assert.Zero(t, countUsers(t, client))
}

func TestWebhookReceiver_SecretIsReadPerDelivery(t *testing.T) {
	client := newTestClient(t)

	secret := ""
	receiver := authgate.NewWebhookReceiver(func() string { return secret }, client,
		authgate.WithReceiverLogger(nopLogger{}),
	)

	body := userCreatedPayload("user_7", "idn_1", authgate.EmailAddress{ID: "idn_1", EmailAddress: "ada@example.com"})

	err := receiver.Receive(context.Background(), body, signPayload(t, testSecret, body))
	assert.ErrorIs(t, err, authgate.ErrSecretNotConfigured)

	secret = testSecret
	err = receiver.Receive(context.Background(), body, signPayload(t, testSecret, body))
	require.NoError(t, err)
	assert.Equal(t, 1, countUsers(t, client))
}

func TestWebhookReceiver_DuplicateDelivery(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)
	receiver := authgate.NewWebhookReceiver(authgate.StaticSecret(testSecret), client,
		authgate.WithReceiverLogger(nopLogger{}),
	)

	body := userCreatedPayload("user_8", "idn_1", authgate.EmailAddress{ID: "idn_1", EmailAddress: "ada@example.com"})

	require.NoError(t, receiver.Receive(ctx, body, signPayload(t, testSecret, body)))

	err := receiver.Receive(ctx, body, signPayload(t, testSecret, body))
	assert.ErrorIs(t, err, authgate.ErrUserAlreadyExists)

	outcome := authgate.OutcomeFromError(err)
	assert.Equal(t, http.StatusConflict, outcome.Status)
	assert.Equal(t, 1, countUsers(t, client))
}

func TestWebhookReceiver_InvalidEmail(t *testing.T) {
	client := newTestClient(t)
	receiver := authgate.NewWebhookReceiver(authgate.StaticSecret(testSecret), client,
		authgate.WithReceiverLogger(nopLogger{}),
	)

	body := userCreatedPayload("user_9", "idn_1", authgate.EmailAddress{ID: "idn_1", EmailAddress: "not-an-email"})

	err := receiver.Receive(context.Background(), body, signPayload(t, testSecret, body))
	assert.ErrorIs(t, err, authgate.ErrInvalidPayload)
	assert.Zero(t, countUsers(t, client))
}

func TestWebhookReceiver_ContextCancelled(t *testing.T) {
	client := newTestClient(t)
	receiver := authgate.NewWebhookReceiver(authgate.StaticSecret(testSecret), client,
		authgate.WithReceiverLogger(nopLogger{}),
	)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	body := userCreatedPayload("user_10", "idn_1", authgate.EmailAddress{ID: "idn_1", EmailAddress: "ada@example.com"})

	err := receiver.Receive(ctx, body, signPayload(t, testSecret, body))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, http.StatusServiceUnavailable, authgate.OutcomeFromError(err).Status)
	assert.Zero(t, countUsers(t, client))
}
