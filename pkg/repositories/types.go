package repositories

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when no score is stored for a client.
type ErrNotFound struct {
	ClientID string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("score for client %s not found", e.ClientID)
}

func IsNotFound(err error) bool {
	var notFound *ErrNotFound
	return errors.As(err, &notFound)
}
