// Package mail delivers the temporary passwords issued by password resets.
package mail

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

const (
	defaultSendgridHost = "https://api.sendgrid.com"
	sendgridEndpoint    = "/v3/mail/send"
	appName             = "classboard"
)

type SendgridMailer struct {
	key           string
	host          string
	from          *sgmail.Email
	subjectPrefix string
}

func NewSendgridMailer(apiKey string, fromEmail string) *SendgridMailer {
	return &SendgridMailer{
		key:           apiKey,
		host:          defaultSendgridHost,
		from:          sgmail.NewEmail(appName, fromEmail),
		subjectPrefix: "[" + appName + "] ",
	}
}

// WithHost points the mailer at another API host.
func (mailer *SendgridMailer) WithHost(host string) *SendgridMailer {
	mailer.host = strings.TrimRight(host, "/")
	return mailer
}

// SendTemporaryPassword gives up when ctx is done, including while the
// request is in flight.
func (mailer *SendgridMailer) SendTemporaryPassword(ctx context.Context, toEmail string, userID string, temporaryPassword string) error {
	personalization := sgmail.NewPersonalization()
	personalization.Subject = mailer.subjectPrefix + "Your temporary password"
	personalization.AddTos(sgmail.NewEmail(userID, toEmail))

	message := sgmail.NewV3Mail()
	message.SetFrom(mailer.from)
	message.AddPersonalizations(personalization)
	message.AddContent(sgmail.NewContent("text/plain", temporaryPasswordText(userID, temporaryPassword)))

	request := sendgrid.GetRequest(mailer.key, sendgridEndpoint, mailer.host)
	request.Method = http.MethodPost
	request.Body = sgmail.GetRequestBody(message)

	response, err := sendgrid.MakeRequestWithContext(ctx, request)
	if err != nil {
		return fmt.Errorf("send reset email: %w", err)
	}
	if response.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("send reset email: status %d: %s", response.StatusCode, response.Body)
	}
	return nil
}

func temporaryPasswordText(userID string, temporaryPassword string) string {
	var body strings.Builder
	fmt.Fprintf(&body, "Hello %s,\r\n\r\n", userID)
	fmt.Fprintf(&body, "Your password was reset. Sign in with this temporary password:\r\n\r\n    %s\r\n\r\n", temporaryPassword)
	body.WriteString("Change it right after signing in.\r\n")
	return body.String()
}
