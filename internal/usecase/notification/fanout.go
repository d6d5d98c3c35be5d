package notification

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/johnquangdev/doorbell/internal/domain/entities"
	usecaseErrors "github.com/johnquangdev/doorbell/internal/usecase/errors"
)

// Deliverer reaches live connections
type Deliverer interface {
	Deliver(aud entities.Audience, ev entities.Event) int
}

// PushGateway delivers to devices without a live connection
type PushGateway interface {
	Send(ctx context.Context, msg entities.PushMessage) error
}

// RoomCloser ends the signaling room of a request that will never connect
type RoomCloser interface {
	CloseRoom(callID, reason string) error
}

// Recorder keeps the per-request notification history
type Recorder interface {
	AppendNotification(ctx context.Context, callID string, rec entities.NotificationRecord) error
}

// target is one recipient group of a transition. Push is attempted for
// pushIdentity when no live connection of the group accepted the event.
type target struct {
	audience     entities.Audience
	pushIdentity string
}

// Fanout turns contact transitions into real-time events and push fallbacks.
// Real-time delivery is synchronous; push runs in its own goroutine and is
// never retried here.
type Fanout struct {
	deliverer   Deliverer
	push        PushGateway
	recorder    Recorder
	logger      *zap.Logger
	pushTimeout time.Duration
	now         func() time.Time
	wg          sync.WaitGroup
}

// NewFanout creates a fan-out. push and recorder may be nil.
func NewFanout(deliverer Deliverer, push PushGateway, recorder Recorder, logger *zap.Logger, pushTimeout time.Duration) *Fanout {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pushTimeout <= 0 {
		pushTimeout = 10 * time.Second
	}
	return &Fanout{
		deliverer:   deliverer,
		push:        push,
		recorder:    recorder,
		logger:      logger.Named("fanout"),
		pushTimeout: pushTimeout,
		now:         time.Now,
	}
}

// Notify delivers one transition to everyone interested in it
func (f *Fanout) Notify(ctx context.Context, n entities.Notification) {
	if n.Request == nil {
		return
	}
	ev := entities.Event{Type: eventTypeFor(n.Type), Data: payloadFor(n)}

	for _, t := range recipients(n) {
		delivered := f.deliverer.Deliver(t.audience, ev)
		if delivered > 0 {
			f.record(ctx, n, entities.ChannelRealtime, "sent")
			continue
		}
		if t.pushIdentity == "" || f.push == nil {
			f.logger.Debug("notification.undeliverable",
				zap.String("call_id", n.Request.CallID),
				zap.String("type", string(n.Type)),
				zap.Error(usecaseErrors.ErrHostUnreachable),
			)
			continue
		}
		f.pushAsync(n, t.pushIdentity)
	}

	if reason := closeReason(n); reason != "" {
		if closer, ok := f.deliverer.(RoomCloser); ok {
			if err := closer.CloseRoom(n.Request.CallID, reason); err != nil {
				f.logger.Warn("room.close.failed", zap.String("call_id", n.Request.CallID), zap.Error(err))
			}
		}
	}
}

// closeReason is non-empty for outcomes after which the room is useless
func closeReason(n entities.Notification) string {
	switch n.Type {
	case entities.NotifyCancelled:
		return "cancelled"
	case entities.NotifyExpired:
		return "expired"
	case entities.NotifyAnswered:
		if n.Request.Response != nil && *n.Request.Response == entities.ResponseReject {
			return "rejected"
		}
	}
	return ""
}

// recipients resolves who hears about a transition
func recipients(n entities.Notification) []target {
	req := n.Request
	host := target{
		audience:     entities.Audience{Identities: []string{req.HostID}},
		pushIdentity: req.HostID,
	}
	guest := target{
		audience: entities.Audience{
			Identities: []string{req.GuestIdentity()},
			CallID:     req.CallID,
			CallRole:   entities.PartyGuest,
		},
		pushIdentity: req.GuestIdentity(),
	}
	// keeps the host's other devices in sync, no push
	hostDevices := target{audience: entities.Audience{Identities: []string{req.HostID}}}

	switch n.Type {
	case entities.NotifyIncoming, entities.NotifyDetails:
		return []target{host}
	case entities.NotifyAnswered, entities.NotifyExpired, entities.NotifyCancelled:
		return []target{guest, hostDevices}
	case entities.NotifyMessage:
		if n.Message != nil && n.Message.Sender == entities.PartyHost {
			return []target{guest}
		}
		return []target{host}
	}
	return nil
}

func (f *Fanout) pushAsync(n entities.Notification, identity string) {
	msg := pushFor(n, identity)
	callID := n.Request.CallID

	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), f.pushTimeout)
		defer cancel()

		status := "sent"
		if err := f.push.Send(ctx, msg); err != nil {
			status = "failed"
			f.logger.Warn("push.failed",
				zap.String("call_id", callID),
				zap.String("identity", identity),
				zap.Error(err),
			)
		}
		f.record(ctx, n, entities.ChannelPush, status)
	}()
}

func (f *Fanout) record(ctx context.Context, n entities.Notification, channel entities.NotificationChannel, status string) {
	if f.recorder == nil {
		return
	}
	rec := entities.NotificationRecord{
		Type:    n.Type,
		Channel: channel,
		Status:  status,
		At:      f.now(),
	}
	if err := f.recorder.AppendNotification(ctx, n.Request.CallID, rec); err != nil {
		f.logger.Warn("notification.record.failed",
			zap.String("call_id", n.Request.CallID),
			zap.Error(err),
		)
	}
}

// Wait blocks until in-flight pushes finish
func (f *Fanout) Wait() {
	f.wg.Wait()
}
