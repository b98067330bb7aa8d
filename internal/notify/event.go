package notify

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Kind string

const (
	KindTaskCompleted Kind = "task_completed"
	KindReassigned    Kind = "task_reassigned"
	KindNewComment    Kind = "new_comment"
)

const (
	SubjectTaskCompleted = "Your task, that was commented is completed!"
	SubjectReassigned    = "You have been assigned to a new task!"
	SubjectNewComment    = "Your task got a new comment!"
)

// Event адресован ровно одному получателю
type Event struct {
	Kind    Kind      `json:"kind"`
	TaskID  uuid.UUID `json:"task_id"`
	Subject string    `json:"subject"`
	Message string    `json:"message"`
	From    string    `json:"from"`
	To      string    `json:"to"`
}

// Notifier доставляет одно письмо; ошибки доставки не влияют на бизнес-операцию
type Notifier interface {
	Send(ctx context.Context, subject, message, from, to string) error
}

func TaskCompleted(taskID uuid.UUID, title, from, to string) Event {
	return Event{
		Kind:    KindTaskCompleted,
		TaskID:  taskID,
		Subject: SubjectTaskCompleted,
		Message: fmt.Sprintf("You have just executed a task!\n The completed task is %s.", title),
		From:    from,
		To:      to,
	}
}

func Reassigned(taskID uuid.UUID, title, from, to string) Event {
	return Event{
		Kind:    KindReassigned,
		TaskID:  taskID,
		Subject: SubjectReassigned,
		Message: fmt.Sprintf("You have been assigned to a new task!\n The new task is %q.", title),
		From:    from,
		To:      to,
	}
}

func NewComment(taskID uuid.UUID, title, text, from, to string) Event {
	return Event{
		Kind:    KindNewComment,
		TaskID:  taskID,
		Subject: SubjectNewComment,
		Message: fmt.Sprintf("The task %q got a new comment :\n %s", title, text),
		From:    from,
		To:      to,
	}
}
