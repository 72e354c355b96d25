package job

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	to, name string
	err      error
}

func (f *fakeSender) SendWelcomeEmail(to, firstName string) error {
	f.to, f.name = to, firstName
	return f.err
}

func newTestJobService(sender WelcomeSender) *JobService {
	logger := zerolog.Nop()
	return &JobService{email: sender, logger: &logger}
}

func TestNewWelcomeEmailTask(t *testing.T) {
	task, err := NewWelcomeEmailTask("ana@x.io", "Ana")
	require.NoError(t, err)

	assert.Equal(t, TaskWelcome, task.Type())

	var p WelcomeEmailPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &p))
	assert.Equal(t, WelcomeEmailPayload{To: "ana@x.io", FirstName: "Ana"}, p)
}

func TestHandleWelcomeEmailTask(t *testing.T) {
	sender := &fakeSender{}
	j := newTestJobService(sender)

	task, err := NewWelcomeEmailTask("ana@x.io", "Ana")
	require.NoError(t, err)

	require.NoError(t, j.handleWelcomeEmailTask(context.Background(), task))
	assert.Equal(t, "ana@x.io", sender.to)
	assert.Equal(t, "Ana", sender.name)
}

func TestHandleWelcomeEmailTask_SendFailureIsRetried(t *testing.T) {
	sendErr := errors.New("provider down")
	j := newTestJobService(&fakeSender{err: sendErr})

	task, err := NewWelcomeEmailTask("ana@x.io", "Ana")
	require.NoError(t, err)

	err = j.handleWelcomeEmailTask(context.Background(), task)
	assert.ErrorIs(t, err, sendErr)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
}

func TestHandleWelcomeEmailTask_BadPayloadSkipsRetry(t *testing.T) {
	j := newTestJobService(&fakeSender{})

	err := j.handleWelcomeEmailTask(context.Background(), asynq.NewTask(TaskWelcome, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}
