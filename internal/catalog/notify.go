package catalog

import (
	"context"

	"shop-catalog/internal/client"
	"shop-catalog/internal/model"

	"github.com/go-faster/errors"
)

// Level classifies a notice.
type Level int

const (
	LevelInfo Level = iota
	LevelError
)

func (l Level) String() string {
	if l == LevelError {
		return "error"
	}
	return "info"
}

// Notice is a user-facing message emitted by the store.
type Notice struct {
	Level   Level
	Message string
}

// Notifier receives notices. Implementations must not call back into the store.
type Notifier interface {
	Notify(n Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(n Notice)

// Notify calls f(n).
func (f NotifierFunc) Notify(n Notice) {
	f(n)
}

// Confirmer gates destructive operations on an explicit yes/no answer.
type Confirmer interface {
	Confirm(ctx context.Context, product model.Product) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, product model.Product) (bool, error)

// Confirm calls f(ctx, product).
func (f ConfirmFunc) Confirm(ctx context.Context, product model.Product) (bool, error) {
	return f(ctx, product)
}

// Describe turns an operation error into a message fit for the user.
func Describe(err error) string {
	var (
		validationErr *ValidationError
		apiErr        *client.APIError
		transportErr  *client.TransportError
	)

	switch {
	case errors.As(err, &validationErr):
		return "invalid " + validationErr.Error()
	case errors.As(err, &apiErr):
		return apiErr.Message
	case errors.As(err, &transportErr):
		if transportErr.Timeout() {
			return "the catalog service did not respond in time"
		}
		return "could not reach the catalog service"
	case errors.Is(err, ErrBusy):
		return "another change is still in progress"
	case errors.Is(err, ErrNoDraft):
		return "no product is being edited"
	case errors.Is(err, ErrProductNotFound):
		return "no such product"
	case errors.Is(err, ErrClosed):
		return "the catalog session is closed"
	default:
		return err.Error()
	}
}
