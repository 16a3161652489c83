package messages

import (
	"errors"

	"github.com/cbodonnell/skirmish/pkg/log"
)

// Handler processes one decoded message.
type Handler func(msg Message)

// Router dispatches decoded messages to the handler registered for their type.
// It is not safe for concurrent use; register handlers before routing.
type Router struct {
	handlers map[Type]Handler
	logger   *log.Logger
}

func NewRouter() *Router {
	return &Router{
		handlers: make(map[Type]Handler),
		logger:   log.With("router"),
	}
}

// Handle registers h for messages of type t, replacing any previous handler.
func (r *Router) Handle(t Type, h Handler) {
	r.handlers[t] = h
}

// On registers a handler typed by its message. M must be a pointer message type.
func On[M Message](r *Router, fn func(M)) {
	var zero M
	r.Handle(zero.MessageType(), func(msg Message) {
		typed, ok := msg.(M)
		if !ok {
			r.logger.Error("Handler for %s received %T", zero.MessageType(), msg)
			return
		}
		fn(typed)
	})
}

// Dispatch invokes the handler for msg. It returns false when no handler is registered.
func (r *Router) Dispatch(msg Message) bool {
	if msg == nil {
		return false
	}
	h, ok := r.handlers[msg.MessageType()]
	if !ok {
		r.logger.Debug("No handler registered for message type %s", msg.MessageType())
		return false
	}
	h(msg)
	return true
}

// Route decodes a raw frame and dispatches it.
// Malformed frames are logged and dropped; it returns whether a handler ran.
func (r *Router) Route(raw []byte) bool {
	msg, err := Decode(raw)
	if err != nil {
		if errors.Is(err, ErrUnknownType) {
			r.logger.Warn("Dropping message: %v", err)
		} else {
			r.logger.Warn("Dropping malformed message: %v", err)
		}
		return false
	}
	r.logger.Trace("Routing message of type %s", msg.MessageType())
	return r.Dispatch(msg)
}
