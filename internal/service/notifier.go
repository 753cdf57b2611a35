package service

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"coursemarket/internal/mail"
)

const (
	outboxSize  = 100
	sendTimeout = 30 * time.Second
)

// Notifier delivers mail from a background worker so request paths never
// wait on SMTP. Delivery is best-effort: failures and overflow are logged.
// A nil *Notifier drops everything.
type Notifier struct {
	sender mail.Sender
	log    logrus.FieldLogger
	queue  chan mail.Message
	done   chan struct{}

	mu     sync.RWMutex
	closed bool
}

// NewNotifier starts the delivery worker.
func NewNotifier(sender mail.Sender, log logrus.FieldLogger) *Notifier {
	n := &Notifier{
		sender: sender,
		log:    log,
		queue:  make(chan mail.Message, outboxSize),
		done:   make(chan struct{}),
	}
	go n.worker()
	return n
}

// Enqueue schedules msg without blocking.
func (n *Notifier) Enqueue(msg mail.Message) {
	if n == nil {
		return
	}
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.closed {
		return
	}
	select {
	case n.queue <- msg:
	default:
		n.log.WithField("to", msg.To).Warn("mail outbox full, dropping message")
	}
}

// Close stops accepting mail and waits for queued messages until ctx ends.
func (n *Notifier) Close(ctx context.Context) error {
	if n == nil {
		return nil
	}
	n.mu.Lock()
	if !n.closed {
		n.closed = true
		close(n.queue)
	}
	n.mu.Unlock()

	select {
	case <-n.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (n *Notifier) worker() {
	defer close(n.done)
	for msg := range n.queue {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		err := n.sender.Send(ctx, msg)
		cancel()
		if err != nil {
			n.log.WithError(err).WithField("to", msg.To).Warn("mail delivery failed")
			continue
		}
		n.log.WithFields(logrus.Fields{"to": msg.To, "subject": msg.Subject}).Debug("mail sent")
	}
}
