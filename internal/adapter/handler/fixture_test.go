package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/johnquangdev/doorbell/internal/adapter/repository"
	"github.com/johnquangdev/doorbell/internal/domain/entities"
	contactUsecase "github.com/johnquangdev/doorbell/internal/usecase/contact"
	"github.com/johnquangdev/doorbell/internal/usecase/identity"
	"github.com/johnquangdev/doorbell/internal/usecase/notification"
	"github.com/johnquangdev/doorbell/internal/usecase/signaling"
	"github.com/johnquangdev/doorbell/pkg/config"
	"github.com/johnquangdev/doorbell/pkg/jwt"
	"github.com/johnquangdev/doorbell/pkg/validator"
)

const (
	hostID   = "6f1c2a52-3e0f-4a57-9d0e-2d6a3f1b9c11"
	guestID  = "0b7e3c9d-8f61-4f0a-a2d4-5c1e9b7f2a30"
	hostCode = "QR-FRONT-DOOR"
)

type fakePeer struct {
	id       string
	identity string
	mu       sync.Mutex
	events   []entities.Event
}

func (p *fakePeer) ID() string { return p.id }

func (p *fakePeer) Identity() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.identity
}

func (p *fakePeer) BindIdentity(identity string) {
	p.mu.Lock()
	p.identity = identity
	p.mu.Unlock()
}

func (p *fakePeer) Send(ev entities.Event) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return true
}

func (p *fakePeer) ofType(t entities.EventType) []entities.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []entities.Event
	for _, ev := range p.events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

type fixture struct {
	e          *echo.Echo
	hub        *signaling.Hub
	dispatcher *Dispatcher
	service    contactUsecase.Service
	tokens     *jwt.Manager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	hub := signaling.NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-hub.Done()
	})

	users, err := repository.NewMemoryUserRepository(map[string]string{hostCode: hostID})
	if err != nil {
		t.Fatalf("seed users: %v", err)
	}
	contacts := repository.NewMemoryContactRequestRepository()
	fanout := notification.NewFanout(hub, nil, contacts, nil, time.Second)
	service := contactUsecase.NewContactService(
		contacts,
		identity.NewResolver(users, nil, 0, nil),
		fanout,
		contactUsecase.DefaultPolicy(),
		nil,
	)

	cfg := &config.Config{
		Server: config.ServerConfig{Environment: "test"},
		JWT:    config.JWTConfig{AccessSecret: "test-secret", AccessExpiry: time.Hour, Issuer: "doorbell"},
	}
	tokens := jwt.NewManager(cfg.JWT)
	v := validator.New()

	e := echo.New()
	e.Validator = v
	NewRouter(cfg, tokens, NewContactHandler(service, nil), nil, hub).Setup(e)

	return &fixture{
		e:          e,
		hub:        hub,
		dispatcher: NewDispatcher(hub, service, v, false, nil),
		service:    service,
		tokens:     tokens,
	}
}

func (f *fixture) token(t *testing.T, identity string) string {
	t.Helper()
	tok, err := f.tokens.GenerateAccessToken(identity, "")
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	return tok
}

// envelope is the decoded body of every REST response
type envelope struct {
	Code    interface{}       `json:"code"`
	Message string            `json:"message"`
	Info    string            `json:"info"`
	Details map[string]string `json:"details"`
	Data    json.RawMessage   `json:"data"`
}

func (f *fixture) do(t *testing.T, method, path string, body interface{}, headers map[string]string) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)

	var env envelope
	json.Unmarshal(rec.Body.Bytes(), &env)
	return rec.Code, env
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func (f *fixture) connect(t *testing.T, id, identity string) *fakePeer {
	t.Helper()
	p := &fakePeer{id: id, identity: identity}
	if err := f.hub.Register(p, identity); err != nil {
		t.Fatalf("register: %v", err)
	}
	return p
}

func frame(typ entities.EventType, data interface{}) []byte {
	raw, _ := json.Marshal(data)
	out, _ := json.Marshal(map[string]interface{}{"type": typ, "data": json.RawMessage(raw)})
	return out
}

func (f *fixture) send(p *fakePeer, typ entities.EventType, data interface{}) {
	f.dispatcher.Dispatch(context.Background(), p, frame(typ, data))
}
