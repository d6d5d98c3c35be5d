package handler

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/doorbell/internal/adapter/dto/realtime"
	"github.com/johnquangdev/doorbell/internal/domain/entities"
	wsinfra "github.com/johnquangdev/doorbell/internal/infrastructure/websocket"
	contactUsecase "github.com/johnquangdev/doorbell/internal/usecase/contact"
	usecaseErrors "github.com/johnquangdev/doorbell/internal/usecase/errors"
	"github.com/johnquangdev/doorbell/internal/usecase/signaling"
)

// RealtimeHub is the part of the signaling hub the websocket surface drives
type RealtimeHub interface {
	Register(conn signaling.Connection, identity string) error
	Announce(connID, identity string) error
	Disconnect(connID string) error
	JoinRoom(connID, callID string, role entities.Party) (signaling.JoinResult, error)
	Toggle(connID, callID string, role entities.Party, channel signaling.MediaChannel, enabled bool) error
	LeaveRoom(connID, callID string) error
	EndRoom(connID, callID string) error
	RelaySignal(connID string, sig signaling.Signal)
}

// Peer is one live connection as seen by the dispatcher
type Peer interface {
	ID() string
	Identity() string
	Send(ev entities.Event) bool
}

// identityBinder is implemented by peers whose identity can change after an
// anonymous announce
type identityBinder interface {
	BindIdentity(identity string)
}

// Dispatcher routes inbound websocket events to the hub and the contact
// use case. Event errors are answered with an error event; the connection
// stays open.
type Dispatcher struct {
	hub                    RealtimeHub
	contacts               contactUsecase.Service
	validator              echo.Validator
	allowAnonymousAnnounce bool
	logger                 *zap.Logger
}

// NewDispatcher creates a dispatcher
func NewDispatcher(hub RealtimeHub, contacts contactUsecase.Service, validator echo.Validator, allowAnonymousAnnounce bool, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		hub:                    hub,
		contacts:               contacts,
		validator:              validator,
		allowAnonymousAnnounce: allowAnonymousAnnounce,
		logger:                 logger.Named("dispatcher"),
	}
}

// HandleMessage implements websocket.Handler
func (d *Dispatcher) HandleMessage(ctx context.Context, c *wsinfra.Client, raw []byte) {
	d.Dispatch(ctx, c, raw)
}

// HandleClose implements websocket.Handler
func (d *Dispatcher) HandleClose(c *wsinfra.Client) {
	if err := d.hub.Disconnect(c.ID()); err != nil {
		d.logger.Warn("ws.disconnect.failed", zap.String("conn_id", c.ID()), zap.Error(err))
	}
}

// Dispatch handles one inbound frame
func (d *Dispatcher) Dispatch(ctx context.Context, p Peer, raw []byte) {
	var env realtime.Envelope
	if err := json.Unmarshal(raw, &env); err != nil || env.Type == "" {
		d.fail(p, env.Type, fmt.Errorf("bad envelope: %w", usecaseErrors.ErrInvalidInput), "")
		return
	}

	var (
		err error
		ref string
	)
	switch env.Type {
	case entities.EventPing:
		p.Send(entities.Event{Type: entities.EventPong})
	case entities.EventHostAnnounce:
		err = d.hostAnnounce(p, env.Data)
	case entities.EventContactCreate:
		ref, err = d.contactCreate(ctx, p, env.Data)
	case entities.EventContactRespond:
		ref, err = d.contactRespond(ctx, p, env.Data)
	case entities.EventContactMessage:
		ref, err = d.contactMessage(ctx, p, env.Data)
	case entities.EventContactCancel:
		ref, err = d.contactCancel(ctx, p, env.Data)
	case entities.EventRoomJoin:
		ref, err = d.roomJoin(ctx, p, env.Data)
	case entities.EventRoomToggle:
		ref, err = d.roomToggle(p, env.Data)
	case entities.EventRoomLeave:
		ref, err = d.roomLeave(p, env.Data)
	case entities.EventRoomEnd:
		ref, err = d.roomEnd(p, env.Data)
	case entities.EventSignalRelay:
		d.signalRelay(p, env.Data)
	default:
		err = fmt.Errorf("unknown event type %q: %w", env.Type, usecaseErrors.ErrInvalidInput)
	}

	if err != nil {
		d.fail(p, env.Type, err, ref)
	}
}

func (d *Dispatcher) fail(p Peer, typ entities.EventType, err error, ref string) {
	appErr := toAppError(err, ref)
	d.logger.Debug("ws.event.failed",
		zap.String("conn_id", p.ID()),
		zap.String("type", string(typ)),
		zap.Error(err),
	)
	p.Send(entities.Event{
		Type: entities.EventError,
		Data: realtime.Error{
			RequestType: typ,
			Code:        appErr.Code.String(),
			Message:     appErr.Message,
		},
	})
}

func (d *Dispatcher) decode(data json.RawMessage, v interface{}) error {
	if len(data) == 0 {
		data = json.RawMessage("{}")
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode: %v: %w", err, usecaseErrors.ErrInvalidInput)
	}
	if d.validator != nil {
		if err := d.validator.Validate(v); err != nil {
			return fmt.Errorf("validate: %v: %w", err, usecaseErrors.ErrInvalidInput)
		}
	}
	return nil
}

func (d *Dispatcher) hostAnnounce(p Peer, data json.RawMessage) error {
	var in realtime.HostAnnounce
	if err := d.decode(data, &in); err != nil {
		return err
	}

	identity := p.Identity()
	switch {
	case identity == "" && !d.allowAnonymousAnnounce:
		return fmt.Errorf("announce needs a token: %w", usecaseErrors.ErrUnauthorized)
	case identity == "":
		identity = in.Identity
	case in.Identity != "" && in.Identity != identity && !d.allowAnonymousAnnounce:
		return fmt.Errorf("announce as %s: %w", in.Identity, usecaseErrors.ErrForbidden)
	case in.Identity != "" && d.allowAnonymousAnnounce:
		identity = in.Identity
	}
	if err := d.hub.Announce(p.ID(), identity); err != nil {
		return err
	}
	// later respond and room-join checks read the peer identity
	if b, ok := p.(identityBinder); ok && identity != p.Identity() {
		b.BindIdentity(identity)
	}
	return nil
}

func (d *Dispatcher) contactCreate(ctx context.Context, p Peer, data json.RawMessage) (string, error) {
	var in realtime.ContactCreate
	if err := d.decode(data, &in); err != nil {
		return "", err
	}
	out, err := d.contacts.Create(ctx, contactUsecase.CreateInput{
		HostRef:   in.Host,
		GuestID:   p.Identity(),
		GuestName: in.GuestName,
		Anonymous: in.Anonymous || p.Identity() == "",
		Kind:      entities.ContactKind(in.Kind),
		Content:   in.Content,
	})
	if err != nil {
		return in.Host, err
	}
	req := out.Request
	p.Send(entities.Event{
		Type: entities.EventContactCreated,
		Data: realtime.ContactCreated{
			CallID:     req.CallID,
			Kind:       req.Kind,
			Status:     req.Status,
			DeadlineAt: req.DeadlineAt,
			GuestKey:   out.GuestKey,
		},
	})
	return req.CallID, nil
}

func (d *Dispatcher) contactRespond(ctx context.Context, p Peer, data json.RawMessage) (string, error) {
	var in realtime.ContactRespond
	if err := d.decode(data, &in); err != nil {
		return "", err
	}
	_, err := d.contacts.Respond(ctx, contactUsecase.RespondInput{
		CallID:   in.CallID,
		HostID:   p.Identity(),
		Response: entities.ContactResponse(in.Response),
	})
	return in.CallID, err
}

func (d *Dispatcher) contactMessage(ctx context.Context, p Peer, data json.RawMessage) (string, error) {
	var in realtime.ContactMessage
	if err := d.decode(data, &in); err != nil {
		return "", err
	}
	_, err := d.contacts.AppendMessage(ctx, contactUsecase.AppendMessageInput{
		CallID: in.CallID,
		Actor:  contactUsecase.Actor{Identity: p.Identity(), GuestKey: in.GuestKey},
		Text:   in.Text,
	})
	return in.CallID, err
}

func (d *Dispatcher) contactCancel(ctx context.Context, p Peer, data json.RawMessage) (string, error) {
	var in realtime.ContactCancel
	if err := d.decode(data, &in); err != nil {
		return "", err
	}
	_, err := d.contacts.Cancel(ctx, in.CallID, contactUsecase.Actor{Identity: p.Identity(), GuestKey: in.GuestKey})
	return in.CallID, err
}

func (d *Dispatcher) roomJoin(ctx context.Context, p Peer, data json.RawMessage) (string, error) {
	var in realtime.RoomJoin
	if err := d.decode(data, &in); err != nil {
		return "", err
	}
	role := entities.Party(in.Role)
	actor := contactUsecase.Actor{Identity: p.Identity(), GuestKey: in.GuestKey}
	if err := d.contacts.VerifyParty(ctx, in.CallID, actor, role); err != nil {
		return in.CallID, err
	}
	_, err := d.hub.JoinRoom(p.ID(), in.CallID, role)
	return in.CallID, err
}

func (d *Dispatcher) roomToggle(p Peer, data json.RawMessage) (string, error) {
	var in realtime.RoomToggle
	if err := d.decode(data, &in); err != nil {
		return "", err
	}
	err := d.hub.Toggle(p.ID(), in.CallID, entities.Party(in.Role), signaling.MediaChannel(in.Channel), in.Enabled)
	return in.CallID, err
}

func (d *Dispatcher) roomLeave(p Peer, data json.RawMessage) (string, error) {
	var in realtime.RoomRef
	if err := d.decode(data, &in); err != nil {
		return "", err
	}
	return in.CallID, d.hub.LeaveRoom(p.ID(), in.CallID)
}

func (d *Dispatcher) roomEnd(p Peer, data json.RawMessage) (string, error) {
	var in realtime.RoomRef
	if err := d.decode(data, &in); err != nil {
		return "", err
	}
	return in.CallID, d.hub.EndRoom(p.ID(), in.CallID)
}

// signalRelay never answers the sender; the hub logs what it drops
func (d *Dispatcher) signalRelay(p Peer, data json.RawMessage) {
	var in realtime.SignalRelay
	if err := json.Unmarshal(data, &in); err != nil {
		d.logger.Debug("signaling.relay.undecodable", zap.String("conn_id", p.ID()), zap.Error(err))
		return
	}
	d.hub.RelaySignal(p.ID(), signaling.Signal{
		Kind:           signaling.SignalKind(in.Kind),
		CallID:         in.CallID,
		TargetIdentity: in.Target,
		Payload:        in.Payload,
	})
}
