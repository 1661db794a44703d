package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/incident-portal/internal/api/dto"
	"github.com/spec-kit/incident-portal/internal/service"
	"github.com/spec-kit/incident-portal/internal/validation"
)

// ChatHandler serves incident conversations and the employee assistant.
type ChatHandler struct {
	service   *service.ChatService
	assistant service.Assistant
	validator *validation.Validator
}

// NewChatHandler constructs handler.
func NewChatHandler(chatService *service.ChatService, validator *validation.Validator) *ChatHandler {
	return &ChatHandler{service: chatService, validator: validator}
}

// ListMessages GET /incidents/:id/messages.
func (h *ChatHandler) ListMessages(c *fiber.Ctx) error {
	principal, err := principalOf(c)
	if err != nil {
		return err
	}
	thread, err := h.service.Retrieve(c.UserContext(), principal.Identity, c.Params("id"))
	if err != nil {
		return err
	}
	messages := make([]dto.ChatMessageResponse, 0, len(thread.Messages))
	for _, msg := range thread.Messages {
		messages = append(messages, chatMessageResponse(msg))
	}
	return c.JSON(fiber.Map{"data": dto.ChatThreadResponse{
		IncidentID: thread.IncidentID,
		Messages:   messages,
		Unread:     thread.Unread,
	}})
}

// PostMessage POST /incidents/:id/messages.
func (h *ChatHandler) PostMessage(c *fiber.Ctx) error {
	principal, err := principalOf(c)
	if err != nil {
		return err
	}
	var req dto.PostMessageRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}
	msg, err := h.service.Post(c.UserContext(), principal.Identity, c.Params("id"), req.Message)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": chatMessageResponse(*msg)})
}

// Assistant POST /chat/assistant.
func (h *ChatHandler) Assistant(c *fiber.Ctx) error {
	var req dto.AssistantRequest
	if err := bind(c, h.validator, &req); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.AssistantResponse{Reply: h.assistant.Reply(req.Message)}})
}
