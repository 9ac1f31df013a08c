package mailer

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

const (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

// SendGridSender delivers email through the SendGrid v3 API.
type SendGridSender struct {
	key  string
	from *sgmail.Email
}

// NewSendGridSender creates a SendGridSender.
func NewSendGridSender(apiKey, fromName, fromAddr string) *SendGridSender {
	return &SendGridSender{
		key:  apiKey,
		from: sgmail.NewEmail(fromName, fromAddr),
	}
}

func (s *SendGridSender) Send(ctx context.Context, toName, toAddr, subject, body string) error {
	to := sgmail.NewEmail(toName, toAddr)
	msg := sgmail.NewSingleEmail(s.from, subject, to, body, "")

	req := sendgrid.GetRequest(s.key, sendgridEndpoint, sendgridHost)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(msg)

	res, err := sendgrid.MakeRequestWithContext(ctx, req)
	if err != nil {
		return fmt.Errorf("sendgrid request: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid responded %d: %s", res.StatusCode, res.Body)
	}
	return nil
}
