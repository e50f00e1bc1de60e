package mail

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/url"
	"strings"
	"time"

	"github.com/iliyamo/easyshop/internal/model"
	"github.com/iliyamo/easyshop/internal/utils"
)

//go:embed templates/verification.html
var templateFS embed.FS

var verificationTmpl = template.Must(template.ParseFS(templateFS, "templates/verification.html"))

// VerificationSubject is the subject line of the verification email.
const VerificationSubject = "Ecommerce API Account Verification Email"

// Dispatcher sends the verification email for newly registered users.
type Dispatcher struct {
	Sender  Sender
	Secret  string        // JWT signing secret
	BaseURL string        // e.g. https://shop.example.com
	TTL     time.Duration // verification link lifetime, zero for none
}

// VerificationLink builds <base-url>/verify?token=<token>.
func (d *Dispatcher) VerificationLink(token string) string {
	return strings.TrimRight(d.BaseURL, "/") + "/verify?token=" + url.QueryEscape(token)
}

// SendVerification issues a token for u and emails the verification link to
// u.Email. Transport errors are returned unchanged.
func (d *Dispatcher) SendVerification(ctx context.Context, u *model.User) error {
	token, err := utils.EncodeToken(d.Secret, u.ID, u.Username, d.TTL)
	if err != nil {
		return fmt.Errorf("encode verification token: %w", err)
	}
	var body bytes.Buffer
	data := struct {
		Username string
		Link     string
	}{Username: u.Username, Link: d.VerificationLink(token)}
	if err := verificationTmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("render verification email: %w", err)
	}
	return d.Sender.Send(ctx, Message{
		To:      []string{u.Email},
		Subject: VerificationSubject,
		HTML:    body.String(),
	})
}
