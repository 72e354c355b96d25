package email

import (
	"errors"
	"testing"

	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	sent []*resend.SendEmailRequest
	err  error
}

func (s *recordingSender) Send(params *resend.SendEmailRequest) (*resend.SendEmailResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.sent = append(s.sent, params)
	return &resend.SendEmailResponse{Id: "email-1"}, nil
}

func TestRender_Welcome(t *testing.T) {
	html, err := Render(TemplateWelcome, PreviewData[TemplateWelcome])
	require.NoError(t, err)
	assert.Contains(t, html, "Welcome, Ana!")
}

func TestRender_EscapesData(t *testing.T) {
	html, err := Render(TemplateWelcome, map[string]string{"UserFirstName": "<b>Ana</b>"})
	require.NoError(t, err)
	assert.NotContains(t, html, "<b>Ana</b>")
	assert.Contains(t, html, "&lt;b&gt;Ana&lt;/b&gt;")
}

func TestRender_UnknownTemplate(t *testing.T) {
	_, err := Render(Template("missing"), nil)
	assert.Error(t, err)
}

func TestClient_SendWelcomeEmail(t *testing.T) {
	logger := zerolog.Nop()
	sender := &recordingSender{}
	client := NewClientWithSender(sender, &logger)

	require.NoError(t, client.SendWelcomeEmail("ana@x.io", "Ana"))
	require.Len(t, sender.sent, 1)

	msg := sender.sent[0]
	assert.Equal(t, []string{"ana@x.io"}, msg.To)
	assert.Equal(t, "User Service <onboarding@resend.dev>", msg.From)
	assert.Contains(t, msg.Html, "Welcome, Ana!")
}

func TestClient_SendEmailFailure(t *testing.T) {
	logger := zerolog.Nop()
	client := NewClientWithSender(&recordingSender{err: errors.New("rate limited")}, &logger)

	err := client.SendWelcomeEmail("ana@x.io", "Ana")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}
