package notify

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockNotifier struct {
	mock.Mock
}

var _ Notifier = (*MockNotifier)(nil)

func (m *MockNotifier) Send(ctx context.Context, subject, message, from, to string) error {
	args := m.Called(ctx, subject, message, from, to)
	return args.Error(0)
}

func TestEventTexts(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name    string
		event   Event
		subject string
		message string
	}{
		{
			name:    "completed",
			event:   TaskCompleted(id, "Ship release", "from@x", "bob@x"),
			subject: "Your task, that was commented is completed!",
			message: "You have just executed a task!\n The completed task is Ship release.",
		},
		{
			name:    "reassigned",
			event:   Reassigned(id, "Ship release", "from@x", "alice@x"),
			subject: "You have been assigned to a new task!",
			message: "You have been assigned to a new task!\n The new task is \"Ship release\".",
		},
		{
			name:    "comment",
			event:   NewComment(id, "Ship release", "looks good", "from@x", "alice@x"),
			subject: "Your task got a new comment!",
			message: "The task \"Ship release\" got a new comment :\n looks good",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.subject, tt.event.Subject)
			assert.Equal(t, tt.message, tt.event.Message)
			assert.Equal(t, id, tt.event.TaskID)
			assert.Equal(t, "from@x", tt.event.From)
		})
	}
}

// TestDispatcher_PartialFailure проверяет, что ошибка одного получателя не мешает остальным
func TestDispatcher_PartialFailure(t *testing.T) {
	m := new(MockNotifier)
	id := uuid.New()
	events := []Event{
		TaskCompleted(id, "t", "from@x", "a@x"),
		TaskCompleted(id, "t", "from@x", "b@x"),
		TaskCompleted(id, "t", "from@x", "c@x"),
	}

	m.On("Send", mock.Anything, SubjectTaskCompleted, mock.Anything, "from@x", "a@x").Return(nil)
	m.On("Send", mock.Anything, SubjectTaskCompleted, mock.Anything, "from@x", "b@x").Return(errors.New("mailbox full"))
	m.On("Send", mock.Anything, SubjectTaskCompleted, mock.Anything, "from@x", "c@x").Return(nil)

	d := NewDispatcher(m, 2, time.Second)
	assert.Equal(t, 2, d.Dispatch(context.Background(), events))
	m.AssertNumberOfCalls(t, "Send", 3)
}

func TestDispatcher_Empty(t *testing.T) {
	m := new(MockNotifier)
	d := NewDispatcher(m, 0, 0)
	assert.Equal(t, 0, d.Dispatch(context.Background(), nil))
	m.AssertNotCalled(t, "Send")
}

type recorder struct {
	mu    sync.Mutex
	calls int
	fails int
	msgs  [][]byte
	to    []string
}

func (r *recorder) send(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.calls <= r.fails {
		return errors.New("421 try again later")
	}
	r.msgs = append(r.msgs, msg)
	r.to = append(r.to, to...)
	return nil
}

func newTestSMTP(rec *recorder, retries uint64) *SMTPNotifier {
	n := NewSMTP(SMTPOptions{Host: "localhost", Port: 2525, MaxRetries: retries})
	n.initial = time.Millisecond
	n.send = rec.send
	return n
}

func TestSMTP_RetriesThenSucceeds(t *testing.T) {
	rec := &recorder{fails: 2}
	n := newTestSMTP(rec, 3)

	err := n.Send(context.Background(), "subj", "line1\nline2", "from@x", "to@x")
	require.NoError(t, err)

	assert.Equal(t, 3, rec.calls)
	require.Len(t, rec.msgs, 1)
	assert.Equal(t, []string{"to@x"}, rec.to)

	body := string(rec.msgs[0])
	assert.Contains(t, body, "Subject: subj\r\n")
	assert.Contains(t, body, "To: to@x\r\n")
	assert.True(t, strings.HasSuffix(body, "line1\r\nline2\r\n"))
}

func TestSMTP_GivesUp(t *testing.T) {
	rec := &recorder{fails: 10}
	n := newTestSMTP(rec, 2)

	err := n.Send(context.Background(), "subj", "msg", "from@x", "to@x")
	require.Error(t, err)
	// первая попытка плюс два повтора
	assert.Equal(t, 3, rec.calls)
}

func TestSMTP_ContextCancelled(t *testing.T) {
	rec := &recorder{fails: 10}
	n := newTestSMTP(rec, 5)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := n.Send(ctx, "subj", "msg", "from@x", "to@x")
	require.Error(t, err)
	assert.LessOrEqual(t, rec.calls, 1)
}

func TestLogNotifier(t *testing.T) {
	assert.NoError(t, LogNotifier{}.Send(context.Background(), "s", "m", "f", "t"))
}
