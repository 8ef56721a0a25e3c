package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/seeg/onehcm/internal/synthesis"
)

type stubSender struct {
	name  string
	err   error
	calls int
}

func (s *stubSender) Name() string { return s.name }

func (s *stubSender) Send(_ context.Context, _ string, _ Message) error {
	s.calls++
	return s.err
}

func testMessage() Message {
	return Message{To: "awa@example.com", Subject: "Bonjour", Text: "texte", HTML: "<p>texte</p>"}
}

func TestMailerFallsBackToSecondProvider(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	smtpStub := &stubSender{name: "smtp", err: errors.New("connection refused")}
	resendStub := &stubSender{name: "resend"}

	mailer, err := NewMailer("rh@seeg.ga", zap.New(core), smtpStub, nil, resendStub)
	require.NoError(t, err)

	result := mailer.Send(context.Background(), testMessage())
	assert.Equal(t, Result{OK: true, Provider: "resend"}, result)
	assert.Equal(t, 1, smtpStub.calls)
	assert.Equal(t, 1, resendStub.calls)
	assert.Equal(t, 1, logs.FilterMessage("email provider failed").Len())
}

func TestMailerStopsAtFirstSuccess(t *testing.T) {
	first := &stubSender{name: "smtp"}
	second := &stubSender{name: "resend"}

	mailer, err := NewMailer("rh@seeg.ga", nil, first, second)
	require.NoError(t, err)

	result := mailer.Send(context.Background(), testMessage())
	assert.True(t, result.OK)
	assert.Equal(t, "smtp", result.Provider)
	assert.Zero(t, second.calls)
}

func TestMailerReportsAllFailures(t *testing.T) {
	mailer, err := NewMailer("rh@seeg.ga", nil,
		&stubSender{name: "smtp", err: errors.New("timeout")},
		&stubSender{name: "resend", err: errors.New("bad status: 401")},
	)
	require.NoError(t, err)

	result := mailer.Send(context.Background(), testMessage())
	assert.False(t, result.OK)
	assert.Equal(t, "email delivery failed", result.Error)
	assert.Equal(t, "smtp: timeout; resend: bad status: 401", result.Details)
}

func TestMailerRejectsInvalidMessage(t *testing.T) {
	sender := &stubSender{name: "smtp"}
	mailer, err := NewMailer("rh@seeg.ga", nil, sender)
	require.NoError(t, err)

	result := mailer.Send(context.Background(), Message{To: "not-an-email", Subject: "x", Text: "y"})
	assert.False(t, result.OK)
	assert.Equal(t, "invalid message", result.Error)
	assert.Zero(t, sender.calls)

	result = mailer.Send(context.Background(), Message{To: "a@example.com", Subject: "x"})
	assert.False(t, result.OK)
}

func TestNewMailerRequiresSenderAndFrom(t *testing.T) {
	_, err := NewMailer("rh@seeg.ga", nil)
	assert.ErrorIs(t, err, ErrNoSender)

	_, err = NewMailer(" ", nil, &stubSender{name: "smtp"})
	assert.Error(t, err)
}

func TestSMTPSenderBuildsMessage(t *testing.T) {
	var gotAddr, gotFrom string
	var gotTo []string
	var gotBody []byte
	var gotAuth smtp.Auth

	sender := NewSMTPSender("smtp.example.com", 0, "user", "pass")
	sender.now = func() time.Time { return time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC) }
	sender.sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotAuth, gotFrom, gotTo, gotBody = addr, a, from, to, msg
		return nil
	}

	require.NoError(t, sender.Send(context.Background(), "rh@seeg.ga", Message{
		To:      "awa@example.com",
		Subject: "Candidature reçue",
		Text:    "texte",
		HTML:    "<p>html</p>",
	}))

	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.NotNil(t, gotAuth)
	assert.Equal(t, "rh@seeg.ga", gotFrom)
	assert.Equal(t, []string{"awa@example.com"}, gotTo)

	body := string(gotBody)
	assert.Contains(t, body, "To: awa@example.com\r\n")
	assert.Contains(t, body, "Subject: =?utf-8?q?Candidature_re=C3=A7ue?=\r\n")
	assert.Contains(t, body, "Content-Type: multipart/alternative; boundary=")
	assert.Contains(t, body, "<p>html</p>")
	assert.Contains(t, body, "texte")
}

func TestSMTPSenderErrors(t *testing.T) {
	sender := NewSMTPSender("", 25, "", "")
	assert.Error(t, sender.Send(context.Background(), "rh@seeg.ga", testMessage()))

	sender = NewSMTPSender("smtp.example.com", 25, "", "")
	sender.sendMail = func(string, smtp.Auth, string, []string, []byte) error {
		return errors.New("554 rejected")
	}
	err := sender.Send(context.Background(), "rh@seeg.ga", testMessage())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "smtp.example.com:25")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sender.Send(ctx, "rh@seeg.ga", testMessage()), context.Canceled)
}

func TestResendSender(t *testing.T) {
	var payload resendPayload
	var auth, path string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		auth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&payload)
		_, _ = w.Write([]byte(`{"id":"email-1"}`))
	}))
	defer srv.Close()

	sender := NewResendSender(srv.URL+"/", "re_key")
	require.NoError(t, sender.Send(context.Background(), "rh@seeg.ga", testMessage()))

	assert.Equal(t, "/emails", path)
	assert.Equal(t, "Bearer re_key", auth)
	assert.Equal(t, []string{"awa@example.com"}, payload.To)
	assert.Equal(t, "rh@seeg.ga", payload.From)
	assert.Equal(t, "<p>texte</p>", payload.HTML)
}

func TestResendSenderErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"message":"invalid api key"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	err := NewResendSender(srv.URL, "bad").Send(context.Background(), "rh@seeg.ga", testMessage())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid api key")

	err = NewResendSender(srv.URL, "").Send(context.Background(), "rh@seeg.ga", testMessage())
	assert.Error(t, err)

	assert.Equal(t, DefaultResendURL, NewResendSender("", "k").APIURL)
}

func TestTemplates(t *testing.T) {
	t.Parallel()

	to := Recipient{Email: " awa@example.com ", FirstName: "Awa", LastName: "<Ndong>"}

	msg, err := ApplicationReceived(to, "Chef de Projet")
	require.NoError(t, err)
	assert.Equal(t, "awa@example.com", msg.To)
	assert.Equal(t, "Candidature reçue : Chef de Projet", msg.Subject)
	assert.Contains(t, msg.HTML, "Bonjour Awa &lt;Ndong&gt;,")
	assert.Contains(t, msg.Text, "Bonjour Awa <Ndong>,")
	require.NoError(t, msg.Validate())

	for verdict, wording := range verdictWording {
		msg, err := StatusChanged(to, "Chef de Projet", verdict)
		require.NoError(t, err)
		assert.True(t, strings.Contains(msg.Text, wording), "missing wording for %s", verdict)
	}

	_, err = StatusChanged(to, "Chef de Projet", synthesis.Verdict("unknown"))
	assert.Error(t, err)

	anonymous, err := ApplicationReceived(Recipient{Email: "x@example.com"}, "Comptable")
	require.NoError(t, err)
	assert.Contains(t, anonymous.Text, "Bonjour Madame, Monsieur,")
}
