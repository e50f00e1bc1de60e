package mail

import (
	"context"
	"errors"
	"net/url"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/easyshop/internal/config"
	"github.com/iliyamo/easyshop/internal/model"
	"github.com/iliyamo/easyshop/internal/utils"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []Message
	err  error
}

func (r *recordingSender) Send(_ context.Context, msg Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, msg)
	return nil
}

var hrefRe = regexp.MustCompile(`href="([^"]+)"`)

func TestSendVerification(t *testing.T) {
	sender := &recordingSender{}
	d := &Dispatcher{Sender: sender, Secret: "secret", BaseURL: "https://shop.example.com/", TTL: time.Hour}

	err := d.SendVerification(context.Background(), &model.User{ID: 4, Username: "dave", Email: "dave@example.com"})
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)

	msg := sender.sent[0]
	assert.Equal(t, []string{"dave@example.com"}, msg.To)
	assert.Equal(t, VerificationSubject, msg.Subject)
	assert.Contains(t, msg.HTML, "Hi dave")

	m := hrefRe.FindStringSubmatch(msg.HTML)
	require.Len(t, m, 2)
	link, err := url.Parse(m[1])
	require.NoError(t, err)
	assert.Equal(t, "shop.example.com", link.Host)
	assert.Equal(t, "/verify", link.Path)

	claims, err := utils.DecodeToken("secret", link.Query().Get("token"))
	require.NoError(t, err)
	assert.Equal(t, uint64(4), claims.ID)
	assert.Equal(t, "dave", claims.Username)
}

func TestSendVerificationPropagatesTransportError(t *testing.T) {
	down := errors.New("dial tcp: connection refused")
	d := &Dispatcher{Sender: &recordingSender{err: down}, Secret: "secret", BaseURL: "http://localhost:8000"}

	err := d.SendVerification(context.Background(), &model.User{ID: 1, Username: "x", Email: "x@example.com"})
	assert.ErrorIs(t, err, down)
}

func TestSMTPSenderHonoursCancelledContext(t *testing.T) {
	s := NewSMTPSender(config.MailConfig{Host: "127.0.0.1", Port: 1, Username: "u", Password: "p", From: "u@example.com"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Send(ctx, Message{To: []string{"a@example.com"}, Subject: "s", HTML: "<p>x</p>"})
	assert.ErrorIs(t, err, context.Canceled)
}
