package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mailersend/mailersend-go"
)

// MailerSendNotifier sends notifications through MailerSend. Only used
// when dev mode is off and an API key is configured.
type MailerSendNotifier struct {
	client *mailersend.Mailersend
	from   mailersend.From
}

func NewMailerSendNotifier(apiKey, fromName, fromEmail string) (*MailerSendNotifier, error) {
	if apiKey == "" || fromEmail == "" {
		return nil, errors.New("mailersend notifier requires MAILERSEND_API_KEY and NOTIFY_FROM_EMAIL")
	}
	return &MailerSendNotifier{
		client: mailersend.NewMailersend(apiKey),
		from: mailersend.From{
			Name:  fromName,
			Email: fromEmail,
		},
	}, nil
}

func (n *MailerSendNotifier) Notify(toEmail, toName, subject, text string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	msg := n.client.Email.NewMessage()
	msg.SetFrom(n.from)
	msg.SetRecipients([]mailersend.Recipient{{Name: toName, Email: toEmail}})
	msg.SetSubject(subject)
	msg.SetText(text)

	res, err := n.client.Email.Send(ctx, msg)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("mailersend error: status=%d body=%s", res.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}
