package authgate_test

import (
	"context"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	svix "github.com/svix/svix-webhooks/go"

	"github.com/goliatone/go-authgate"
)

const testSecret = "whsec_MfKQ9r8GKYqrTwjUPD8ILPZIo2LaLaSw"

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

func memoryDSN() string {
	return fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
}

func newTestClient(t *testing.T) *authgate.ClientHandle {
	t.Helper()
	client := authgate.NewClientHandle(memoryDSN(), authgate.WithClientLogger(nopLogger{}))
	t.Cleanup(func() { _ = client.Close() })
	_, err := client.DB(context.Background())
	require.NoError(t, err)
	return client
}

func signPayload(t *testing.T, secret string, body []byte) authgate.VerificationHeaders {
	t.Helper()
	wh, err := svix.NewWebhook(secret)
	require.NoError(t, err)

	msgID := "msg_" + uuid.NewString()
	ts := time.Now()
	signature, err := wh.Sign(msgID, ts, body)
	require.NoError(t, err)

	return authgate.VerificationHeaders{
		ID:        msgID,
		Timestamp: strconv.FormatInt(ts.Unix(), 10),
		Signature: signature,
	}
}

func userCreatedPayload(id, primaryID string, addrs ...authgate.EmailAddress) []byte {
	out := `{"type":"user.created","object":"event","data":{"id":"` + id + `","email_addresses":[`
	for i, a := range addrs {
		if i > 0 {
			out += ","
		}
		out += `{"id":"` + a.ID + `","email_address":"` + a.EmailAddress + `"}`
	}
	out += `],"primary_email_address_id":"` + primaryID + `"}}`
	return []byte(out)
}
