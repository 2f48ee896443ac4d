// Package notify implements the order confirmation channels: SMTP email
// and a chat-bot webhook. Both are best-effort collaborators of the
// orders service; their errors surface as warnings, never as placement
// failures.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/meshforge/printquote/orders"
)

// ErrNoRecipient is returned when the order carries no email address.
var ErrNoRecipient = errors.New("notify: no email address provided")

// Emailer sends the order confirmation mail over SMTP (STARTTLS when
// the server offers it).
type Emailer struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// NewEmailer creates an Emailer. From defaults to the SMTP user.
func NewEmailer(host string, port int, user, password, from string) *Emailer {
	if from == "" {
		from = user
	}
	return &Emailer{Host: host, Port: port, User: user, Password: password, From: from}
}

func (e *Emailer) Name() string { return "email" }

// NotifyOrder sends the confirmation to the order's email address.
func (e *Emailer) NotifyOrder(ctx context.Context, o *orders.Order) error {
	if o.Email == "" {
		return ErrNoRecipient
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := e.buildMessage(o)
	addr := fmt.Sprintf("%s:%d", e.Host, e.Port)
	auth := smtp.PlainAuth("", e.User, e.Password, e.Host)
	if err := smtp.SendMail(addr, auth, e.From, []string{o.Email}, msg); err != nil {
		return fmt.Errorf("notify: send mail: %w", err)
	}
	return nil
}

func (e *Emailer) buildMessage(o *orders.Order) []byte {
	var quote map[string]any
	_ = json.Unmarshal(o.Quote, &quote)

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", e.From)
	fmt.Fprintf(&b, "To: %s\r\n", o.Email)
	b.WriteString("Subject: 3D print order confirmation\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")

	b.WriteString("<h3>3D print order</h3>\n<ul>\n")
	fmt.Fprintf(&b, "<li><b>Customer:</b> %s</li>\n", htmlEscape(o.Name))
	fmt.Fprintf(&b, "<li><b>Phone:</b> %s</li>\n", htmlEscape(o.Phone))
	fmt.Fprintf(&b, "<li><b>Delivery address:</b> %s</li>\n", htmlEscape(o.Address))
	b.WriteString("</ul>\n<h4>Item</h4>\n<ul>\n")
	fmt.Fprintf(&b, "<li><b>File:</b> %s</li>\n", htmlEscape(str(quote["filename"])))
	fmt.Fprintf(&b, "<li><b>Technology:</b> %s</li>\n", htmlEscape(str(quote["tech"])))
	fmt.Fprintf(&b, "<li><b>Mass:</b> %s g</li>\n", htmlEscape(str(quote["mass_grams"])))
	fmt.Fprintf(&b, "<li><b>Price:</b> %s</li>\n", htmlEscape(str(quote["price"])))
	b.WriteString("</ul>\n")
	return []byte(b.String())
}

func str(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

func htmlEscape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return r.Replace(s)
}
