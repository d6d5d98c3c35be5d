package handler

import (
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/johnquangdev/doorbell/errors"
	dto "github.com/johnquangdev/doorbell/internal/adapter/dto/contact"
	usecaseErrors "github.com/johnquangdev/doorbell/internal/usecase/errors"
)

func createRing(t *testing.T, f *fixture) dto.CreateContactResponse {
	t.Helper()
	code, env := f.do(t, http.MethodPost, "/v1/contacts", dto.CreateContactRequest{
		Host: hostCode,
		Kind: "ring",
	}, nil)
	if code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d (%s)", code, env.Info)
	}
	var out dto.CreateContactResponse
	if err := json.Unmarshal(env.Data, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return out
}

func TestCreateAndRespond(t *testing.T) {
	f := newFixture(t)
	created := createRing(t, f)

	if created.GuestKey == "" || created.Contact.HostID != hostID {
		t.Fatalf("unexpected create response %+v", created)
	}
	if !created.Contact.GuestAnonymous || created.Contact.GuestName != "Visitante" {
		t.Fatalf("guest without token must be anonymous: %+v", created.Contact)
	}

	path := fmt.Sprintf("/v1/contacts/%s/respond", created.Contact.CallID)
	code, env := f.do(t, http.MethodPost, path, dto.RespondContactRequest{Response: "accept"}, bearer(f.token(t, hostID)))
	if code != http.StatusOK {
		t.Fatalf("respond: expected 200, got %d (%s)", code, env.Info)
	}
	var answered dto.RespondContactResponse
	json.Unmarshal(env.Data, &answered)
	if answered.Contact.Status != "answered" || answered.PreviousStatus != "pending" {
		t.Fatalf("unexpected respond response %+v", answered)
	}

	code, env = f.do(t, http.MethodPost, path, dto.RespondContactRequest{Response: "reject"}, bearer(f.token(t, hostID)))
	if code != http.StatusConflict {
		t.Fatalf("second respond: expected 409, got %d", code)
	}
	if env.Code != "CONTACT_ALREADY_ANSWERED" {
		t.Fatalf("expected CONTACT_ALREADY_ANSWERED, got %v", env.Code)
	}
}

func TestRespondAuthorization(t *testing.T) {
	f := newFixture(t)
	created := createRing(t, f)
	path := fmt.Sprintf("/v1/contacts/%s/respond", created.Contact.CallID)

	if code, _ := f.do(t, http.MethodPost, path, dto.RespondContactRequest{Response: "accept"}, nil); code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", code)
	}
	code, _ := f.do(t, http.MethodPost, path, dto.RespondContactRequest{Response: "accept"}, bearer(f.token(t, guestID)))
	if code != http.StatusForbidden {
		t.Fatalf("expected 403 for a non-host, got %d", code)
	}
	code, _ = f.do(t, http.MethodPost, path, dto.RespondContactRequest{Response: "maybe"}, bearer(f.token(t, hostID)))
	if code != http.StatusBadRequest {
		t.Fatalf("expected 400 for an invalid response, got %d", code)
	}
}

func TestGuestKeyGrantsAccess(t *testing.T) {
	f := newFixture(t)
	created := createRing(t, f)
	path := "/v1/contacts/" + created.Contact.CallID

	if code, _ := f.do(t, http.MethodGet, path, nil, map[string]string{GuestKeyHeader: created.GuestKey}); code != http.StatusOK {
		t.Fatalf("guest key: expected 200, got %d", code)
	}
	if code, _ := f.do(t, http.MethodGet, path, nil, nil); code != http.StatusForbidden {
		t.Fatalf("no credentials: expected 403, got %d", code)
	}
	if code, _ := f.do(t, http.MethodGet, "/v1/contacts/ring-missing", nil, bearer(f.token(t, hostID))); code != http.StatusNotFound {
		t.Fatalf("unknown call: expected 404, got %d", code)
	}

	cancel := path + "/cancel"
	if code, _ := f.do(t, http.MethodPost, cancel, nil, bearer(f.token(t, hostID))); code != http.StatusForbidden {
		t.Fatalf("host cancel: expected 403, got %d", code)
	}
	if code, _ := f.do(t, http.MethodPost, cancel, nil, map[string]string{GuestKeyHeader: created.GuestKey}); code != http.StatusOK {
		t.Fatalf("guest cancel: expected 200, got %d", code)
	}
}

func TestMessagesAndPending(t *testing.T) {
	f := newFixture(t)
	code, env := f.do(t, http.MethodPost, "/v1/contacts", dto.CreateContactRequest{
		Host:    hostID,
		Kind:    "message",
		Content: "Hola, traigo un paquete",
	}, bearer(f.token(t, guestID)))
	if code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d (%s)", code, env.Info)
	}
	var created dto.CreateContactResponse
	json.Unmarshal(env.Data, &created)

	host := bearer(f.token(t, hostID))
	code, env = f.do(t, http.MethodGet, "/v1/hosts/me/contacts/pending", nil, host)
	if code != http.StatusOK {
		t.Fatalf("pending: expected 200, got %d", code)
	}
	var pending dto.ListContactsResponse
	json.Unmarshal(env.Data, &pending)
	if pending.Total != 1 || pending.Contacts[0].CallID != created.Contact.CallID {
		t.Fatalf("unexpected pending list %+v", pending)
	}

	msgs := "/v1/contacts/" + created.Contact.CallID + "/messages"
	if code, _ := f.do(t, http.MethodPost, msgs, dto.SendMessageRequest{Text: "Ya bajo"}, host); code != http.StatusCreated {
		t.Fatalf("host message: expected 201, got %d", code)
	}
	code, env = f.do(t, http.MethodGet, msgs, nil, bearer(f.token(t, guestID)))
	if code != http.StatusOK {
		t.Fatalf("list messages: expected 200, got %d", code)
	}
	var conv dto.ListMessagesResponse
	json.Unmarshal(env.Data, &conv)
	if len(conv.Messages) != 2 || conv.Messages[0].Sender != "guest" || conv.Messages[1].Sender != "host" {
		t.Fatalf("unexpected conversation %+v", conv.Messages)
	}

	if code, _ := f.do(t, http.MethodPost, "/v1/contacts/"+created.Contact.CallID+"/continue", nil, host); code != http.StatusOK {
		t.Fatalf("continue: expected 200, got %d", code)
	}
	if code, _ := f.do(t, http.MethodDelete, "/v1/contacts/"+created.Contact.CallID, nil, host); code != http.StatusBadRequest {
		t.Fatalf("archive of a fresh request: expected 400, got %d", code)
	}
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		body dto.CreateContactRequest
		code int
		app  string
	}{
		{"message without content", dto.CreateContactRequest{Host: hostCode, Kind: "message"}, http.StatusBadRequest, "INVALID_ARGUMENT"},
		{"unknown kind", dto.CreateContactRequest{Host: hostCode, Kind: "knock"}, http.StatusBadRequest, "INVALID_ARGUMENT"},
		{"unknown host", dto.CreateContactRequest{Host: "QR-NOWHERE", Kind: "ring"}, http.StatusNotFound, "HOST_NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, env := f.do(t, http.MethodPost, "/v1/contacts", tt.body, nil)
			if code != tt.code || env.Code != tt.app {
				t.Fatalf("expected %d/%s, got %d/%v", tt.code, tt.app, code, env.Code)
			}
		})
	}
}

func TestToAppError(t *testing.T) {
	tests := []struct {
		err  error
		http int
		code errors.ErrorCode
	}{
		{fmt.Errorf("x: %w", usecaseErrors.ErrNotFound), http.StatusNotFound, errors.ErrorCode_CONTACT_NOT_FOUND},
		{fmt.Errorf("x: %w", usecaseErrors.ErrForbidden), http.StatusForbidden, errors.ErrorCode_FORBIDDEN},
		{fmt.Errorf("x: %w", usecaseErrors.ErrAlreadyAnswered), http.StatusConflict, errors.ErrorCode_CONTACT_ALREADY_ANSWERED},
		{fmt.Errorf("x: %w", usecaseErrors.ErrHostNotFound), http.StatusNotFound, errors.ErrorCode_HOST_NOT_FOUND},
		{fmt.Errorf("x: %w", usecaseErrors.ErrArchiveTooRecent), http.StatusBadRequest, errors.ErrorCode_CONTACT_ARCHIVE_TOO_RECENT},
		{fmt.Errorf("x: %w", usecaseErrors.ErrMalformedSignal), http.StatusBadRequest, errors.ErrorCode_SIGNAL_MALFORMED},
		{usecaseErrors.ErrHubClosed, http.StatusServiceUnavailable, errors.ErrorCode_REALTIME_UNAVAILABLE},
		{stdErrors.New("boom"), http.StatusInternalServerError, errors.ErrorCode_INTERNAL},
	}

	for _, tt := range tests {
		got := toAppError(tt.err, "ring-1")
		if got.HTTPCode != tt.http || got.Code != tt.code {
			t.Errorf("%v: expected %d/%s, got %d/%s", tt.err, tt.http, tt.code, got.HTTPCode, got.Code)
		}
		if !stdErrors.Is(got, tt.err) {
			t.Errorf("%v: cause lost", tt.err)
		}
	}
}
