package server

import (
	"bytes"

	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"

	"github.com/goliatone/go-authgate"
)

// WebhookController serves the identity provider webhook endpoint
type WebhookController struct {
	Receiver *authgate.WebhookReceiver
	Logger   authgate.Logger
}

func NewWebhookController(receiver *authgate.WebhookReceiver, logger authgate.Logger) *WebhookController {
	if logger == nil {
		logger = authgate.DefaultLogger()
	}
	return &WebhookController{Receiver: receiver, Logger: logger}
}

// Register verifies the delivery and answers with a plain text status.
func (w *WebhookController) Register(c *fiber.Ctx) error {
	headers := authgate.HeadersFrom(func(key string) string {
		return c.Get(key)
	})

	// fasthttp reuses the request buffer after the handler returns
	body := bytes.Clone(c.Body())

	err := w.Receiver.Receive(c.UserContext(), body, headers)
	if err != nil {
		w.logError(c, err)
	}

	outcome := authgate.OutcomeFromError(err)
	return c.Status(outcome.Status).SendString(outcome.Message)
}

func (w *WebhookController) logError(c *fiber.Ctx, err error) {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		w.Logger.Error("webhook delivery failed", "path", c.Path(), "error", err)
		return
	}

	w.Logger.Error(
		"webhook delivery rejected",
		"error", richErr.Message,
		"text_code", richErr.TextCode,
		"category", richErr.Category,
		"details", print.MaybePrettyJSON(richErr.Metadata),
	)
}
