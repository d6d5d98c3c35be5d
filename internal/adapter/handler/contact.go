package handler

import (
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/doorbell/errors"
	dto "github.com/johnquangdev/doorbell/internal/adapter/dto/contact"
	"github.com/johnquangdev/doorbell/internal/adapter/presenter"
	"github.com/johnquangdev/doorbell/internal/domain/entities"
	"github.com/johnquangdev/doorbell/internal/infrastructure/http/middleware"
	contactUsecase "github.com/johnquangdev/doorbell/internal/usecase/contact"
)

// Contact handles contact request HTTP requests
type Contact struct {
	service contactUsecase.Service
	logger  *zap.Logger
	now     func() time.Time
}

// NewContactHandler creates a new contact handler
func NewContactHandler(service contactUsecase.Service, logger *zap.Logger) *Contact {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Contact{
		service: service,
		logger:  logger.Named("contact_handler"),
		now:     time.Now,
	}
}

func actorFrom(c echo.Context) contactUsecase.Actor {
	return contactUsecase.Actor{
		Identity: middleware.IdentityFrom(c),
		GuestKey: c.Request().Header.Get(GuestKeyHeader),
	}
}

// Create handles POST /contacts
// @Summary      Ring, write to or call a host
// @Description  Opens a pending contact request. Anonymous guests keep the returned guest_key to act on it later.
// @Tags         Contacts
// @Accept       json
// @Produce      json
// @Param        request  body      contact.CreateContactRequest  true  "Contact request"
// @Success      201      {object}  contact.CreateContactResponse
// @Failure      400      {object}  map[string]interface{}  "Validation failed"
// @Failure      404      {object}  map[string]interface{}  "Host not found"
// @Router       /contacts [post]
func (h *Contact) Create(c echo.Context) error {
	var req dto.CreateContactRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, validationError(err))
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, validationError(err))
	}

	identity := middleware.IdentityFrom(c)
	out, err := h.service.Create(c.Request().Context(), contactUsecase.CreateInput{
		HostRef:   req.Host,
		GuestID:   identity,
		GuestName: req.GuestName,
		Anonymous: req.Anonymous || identity == "",
		Kind:      entities.ContactKind(req.Kind),
		Content:   req.Content,
	})
	if err != nil {
		return HandleError(h.logger, c, toAppError(err, req.Host))
	}

	return HandleCreated(h.logger, c, dto.CreateContactResponse{
		Contact:  presenter.ToContactResponse(out.Request, h.now()),
		GuestKey: out.GuestKey,
	})
}

// Get handles GET /contacts/:id
// @Summary      Get a contact request
// @Description  Returns the request to one of its parties, timing it out first if its deadline passed
// @Tags         Contacts
// @Produce      json
// @Param        id           path    string  true   "Call ID"
// @Param        X-Guest-Key  header  string  false  "Guest key"
// @Success      200  {object}  contact.ContactResponse
// @Failure      403  {object}  map[string]interface{}  "Not a party"
// @Failure      404  {object}  map[string]interface{}  "Not found"
// @Router       /contacts/{id} [get]
func (h *Contact) Get(c echo.Context) error {
	callID := c.Param("id")
	req, err := h.service.Get(c.Request().Context(), callID, actorFrom(c))
	if err != nil {
		return HandleError(h.logger, c, toAppError(err, callID))
	}
	return HandleSuccess(h.logger, c, presenter.ToContactResponse(req, h.now()))
}

// Respond handles POST /contacts/:id/respond
// @Summary      Answer a contact request
// @Description  Accept or reject a pending request. The first answer wins; later ones get 409.
// @Tags         Contacts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                         true  "Call ID"
// @Param        request  body      contact.RespondContactRequest  true  "Response"
// @Success      200      {object}  contact.RespondContactResponse
// @Failure      403      {object}  map[string]interface{}  "Not the host"
// @Failure      409      {object}  map[string]interface{}  "Already answered or expired"
// @Router       /contacts/{id}/respond [post]
func (h *Contact) Respond(c echo.Context) error {
	callID := c.Param("id")
	var req dto.RespondContactRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, validationError(err))
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, validationError(err))
	}

	res, err := h.service.Respond(c.Request().Context(), contactUsecase.RespondInput{
		CallID:   callID,
		HostID:   middleware.IdentityFrom(c),
		Response: entities.ContactResponse(req.Response),
	})
	if err != nil {
		return HandleError(h.logger, c, toAppError(err, callID))
	}

	return HandleSuccess(h.logger, c, dto.RespondContactResponse{
		Contact:        presenter.ToContactResponse(res.Current, h.now()),
		PreviousStatus: string(res.Prior.Status),
	})
}

// SendMessage handles POST /contacts/:id/messages
// @Summary      Send a message
// @Description  Appends a message from the host or the guest
// @Tags         Contacts
// @Accept       json
// @Produce      json
// @Param        id           path      string                      true   "Call ID"
// @Param        X-Guest-Key  header    string                      false  "Guest key"
// @Param        request      body      contact.SendMessageRequest  true   "Message"
// @Success      201          {object}  contact.MessageResponse
// @Failure      403          {object}  map[string]interface{}  "Not a party"
// @Router       /contacts/{id}/messages [post]
func (h *Contact) SendMessage(c echo.Context) error {
	callID := c.Param("id")
	var req dto.SendMessageRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, validationError(err))
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, validationError(err))
	}

	msg, err := h.service.AppendMessage(c.Request().Context(), contactUsecase.AppendMessageInput{
		CallID: callID,
		Actor:  actorFrom(c),
		Text:   req.Text,
	})
	if err != nil {
		return HandleError(h.logger, c, toAppError(err, callID))
	}

	return HandleCreated(h.logger, c, presenter.ToMessageResponses([]entities.Message{*msg})[0])
}

// ListMessages handles GET /contacts/:id/messages
// @Summary      List messages
// @Tags         Contacts
// @Produce      json
// @Param        id           path    string  true   "Call ID"
// @Param        X-Guest-Key  header  string  false  "Guest key"
// @Success      200  {object}  contact.ListMessagesResponse
// @Router       /contacts/{id}/messages [get]
func (h *Contact) ListMessages(c echo.Context) error {
	callID := c.Param("id")
	msgs, err := h.service.ListMessages(c.Request().Context(), callID, actorFrom(c))
	if err != nil {
		return HandleError(h.logger, c, toAppError(err, callID))
	}
	return HandleSuccess(h.logger, c, dto.ListMessagesResponse{
		CallID:   callID,
		Messages: presenter.ToMessageResponses(msgs),
	})
}

// Cancel handles POST /contacts/:id/cancel
// @Summary      Cancel a contact request
// @Description  The guest withdraws a pending request
// @Tags         Contacts
// @Produce      json
// @Param        id           path    string  true   "Call ID"
// @Param        X-Guest-Key  header  string  false  "Guest key"
// @Success      200  {object}  contact.ContactResponse
// @Failure      409  {object}  map[string]interface{}  "No longer pending"
// @Router       /contacts/{id}/cancel [post]
func (h *Contact) Cancel(c echo.Context) error {
	callID := c.Param("id")
	req, err := h.service.Cancel(c.Request().Context(), callID, actorFrom(c))
	if err != nil {
		return HandleError(h.logger, c, toAppError(err, callID))
	}
	return HandleSuccess(h.logger, c, presenter.ToContactResponse(req, h.now()))
}

// Continue handles POST /contacts/:id/continue
// @Summary      Show the full request
// @Description  Sends the host the full message, or the join hint of a video call
// @Tags         Contacts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Call ID"
// @Success      200  {object}  contact.ContactResponse
// @Router       /contacts/{id}/continue [post]
func (h *Contact) Continue(c echo.Context) error {
	callID := c.Param("id")
	req, err := h.service.ContinueFlow(c.Request().Context(), callID, middleware.IdentityFrom(c))
	if err != nil {
		return HandleError(h.logger, c, toAppError(err, callID))
	}
	return HandleSuccess(h.logger, c, presenter.ToContactResponse(req, h.now()))
}

// Archive handles DELETE /contacts/:id
// @Summary      Archive an old contact request
// @Tags         Contacts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Call ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]interface{}  "Too recent"
// @Router       /contacts/{id} [delete]
func (h *Contact) Archive(c echo.Context) error {
	callID := c.Param("id")
	if err := h.service.Archive(c.Request().Context(), callID, middleware.IdentityFrom(c)); err != nil {
		return HandleError(h.logger, c, toAppError(err, callID))
	}
	return HandleSuccess(h.logger, c, map[string]string{"call_id": callID})
}

// ListPending handles GET /hosts/me/contacts/pending
// @Summary      Pending requests of the host
// @Tags         Contacts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  contact.ListContactsResponse
// @Router       /hosts/me/contacts/pending [get]
func (h *Contact) ListPending(c echo.Context) error {
	identity := middleware.IdentityFrom(c)
	if identity == "" {
		return HandleError(h.logger, c, errors.ErrUnauthenticated())
	}
	reqs, err := h.service.ListPending(c.Request().Context(), identity)
	if err != nil {
		return HandleError(h.logger, c, toAppError(err, identity))
	}
	return HandleSuccess(h.logger, c, presenter.ToContactListResponse(reqs, h.now()))
}
