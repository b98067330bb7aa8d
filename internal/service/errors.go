package service

import "fmt"

const (
	CodeNotFound        = "NOT_FOUND"
	CodeValidation      = "VALIDATION_ERROR"
	CodeVersionConflict = "VERSION_CONFLICT"
	CodeNoOngoingTimer  = "NO_ONGOING_TIMER"
)

type Resource string

const (
	ResourceTask  Resource = "task"
	ResourceTimer Resource = "timer"
	ResourceUser  Resource = "user"
)

type BusinessError struct {
	Code    string
	Message string
	Details map[string]any
	Err     error
}

type Detail struct {
	Key     string
	Payload any
}

func (b *BusinessError) Error() string {
	if b.Err != nil {
		return fmt.Sprintf("[%s] %s: %s", b.Code, b.Message, b.Err.Error())
	}
	return fmt.Sprintf("[%s] %s", b.Code, b.Message)
}

func (b *BusinessError) Unwrap() error {
	return b.Err
}

func ToDetail(key string, payload any) Detail {
	return Detail{
		Key:     key,
		Payload: payload,
	}
}

func NewBusinessError(code string, message string, details ...Detail) *BusinessError {
	busErr := &BusinessError{
		Code:    code,
		Message: message,
		Details: make(map[string]any),
	}

	for _, detail := range details {
		busErr.Details[detail.Key] = detail.Payload
	}

	return busErr
}

func NewNotFound(resource Resource, id string) *BusinessError {
	return NewBusinessError(CodeNotFound,
		fmt.Sprintf("%s %s не найден(а)", resource, id),
		ToDetail("resource", resource),
		ToDetail("id", id))
}

func NewValidationError(field, reason string) *BusinessError {
	return NewBusinessError(CodeValidation,
		fmt.Sprintf("Неверное значение поля '%s': %s", field, reason),
		ToDetail("field", field),
		ToDetail("reason", reason))
}

func NewVersionConflict(resource Resource, id string, err error) *BusinessError {
	busErr := NewBusinessError(CodeVersionConflict,
		fmt.Sprintf("%s %s был изменён параллельно", resource, id),
		ToDetail("resource", resource),
		ToDetail("id", id))
	busErr.Err = err
	return busErr
}

// NewNoOngoingTimer - остановка таймера, который не запущен. Текст отдаётся клиенту как есть
func NewNoOngoingTimer(taskID, timerID string) *BusinessError {
	return NewBusinessError(CodeNoOngoingTimer,
		fmt.Sprintf("Task id:%s has no ongoing timer", taskID),
		ToDetail("task_id", taskID),
		ToDetail("timer_id", timerID))
}
