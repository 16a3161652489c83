package network

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/cbodonnell/skirmish/pkg/log"
	"github.com/cbodonnell/skirmish/pkg/messages"
)

// DefaultPublishRate is how many input snapshots are sent per second.
const DefaultPublishRate = 30

// Sender writes frames to the server.
type Sender interface {
	IsOpen() bool
	Send(ctx context.Context, b []byte) error
}

// InputSource provides the input to publish and the session it belongs to.
type InputSource interface {
	ClientID() string
	Input() messages.InputSnapshot
}

// Publisher sends the current input snapshot to the server at a fixed rate.
type Publisher struct {
	sender   Sender
	source   InputSource
	interval time.Duration

	sent    atomic.Int64
	skipped atomic.Int64

	logger *log.Logger
}

type NewPublisherOptions struct {
	Sender Sender
	Source InputSource
	// Rate is in snapshots per second.
	Rate int
}

func NewPublisher(opts NewPublisherOptions) *Publisher {
	if opts.Rate <= 0 {
		opts.Rate = DefaultPublishRate
	}
	return &Publisher{
		sender:   opts.Sender,
		source:   opts.Source,
		interval: time.Second / time.Duration(opts.Rate),
		logger:   log.With("publisher"),
	}
}

// Run publishes on every tick until ctx is done.
func (p *Publisher) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := p.Publish(ctx); err != nil {
				p.logger.Warn("Failed to publish input: %v", err)
			}
		}
	}
}

// Publish sends the current input once. Nothing is sent while the
// connection is closed or before the server assigned a client id.
func (p *Publisher) Publish(ctx context.Context) (bool, error) {
	if !p.sender.IsOpen() || p.source.ClientID() == "" {
		p.skipped.Add(1)
		return false, nil
	}
	b, err := messages.EncodeInputSnapshot(p.source.Input())
	if err != nil {
		return false, fmt.Errorf("failed to encode input snapshot: %v", err)
	}
	if err := p.sender.Send(ctx, b); err != nil {
		return false, err
	}
	p.sent.Add(1)
	return true, nil
}

// Sent returns the number of snapshots sent.
func (p *Publisher) Sent() int64 {
	return p.sent.Load()
}

// Skipped returns the number of ticks that sent nothing.
func (p *Publisher) Skipped() int64 {
	return p.skipped.Load()
}
