package network

import (
	"errors"
	"fmt"
)

// ErrNotConnected is returned when sending without an open connection.
var ErrNotConnected = errors.New("not connected")

// ErrConnectionClosedByServer is returned when the server closes the connection
type ErrConnectionClosedByServer struct {
	Code   int
	Reason string
}

func (e *ErrConnectionClosedByServer) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("connection closed by server (%d)", e.Code)
	}
	return fmt.Sprintf("connection closed by server (%d): %s", e.Code, e.Reason)
}

// ErrConnectionClosedByClient is returned when the connection is closed locally
type ErrConnectionClosedByClient struct{}

func (e *ErrConnectionClosedByClient) Error() string {
	return "connection closed by client"
}
