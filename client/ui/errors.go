package ui

// ActionableError carries a message the player can act on. Scenes show
// the message instead of a generic failure.
type ActionableError struct {
	Message string
}

func (e *ActionableError) Error() string {
	return e.Message
}

func NewActionableError(msg string) *ActionableError {
	return &ActionableError{Message: msg}
}
