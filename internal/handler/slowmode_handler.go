package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/kursadbilgin/slowmode-engine/internal/domain"
	"github.com/kursadbilgin/slowmode-engine/internal/relay"
	"github.com/kursadbilgin/slowmode-engine/internal/service"
)

type MessageGuard interface {
	Check(ctx context.Context, msg domain.Message) (domain.Decision, error)
}

type NoticeDeliverer interface {
	Deliver(ctx context.Context, notice domain.PendingNotice) error
}

type AdminService interface {
	Execute(ctx context.Context, req service.CommandRequest) (*service.CommandReply, error)
	ListRooms(ctx context.Context) ([]domain.ThrottledRoom, error)
	Uninstall(ctx context.Context) error
}

type SettingsService interface {
	Cooldown() int
	UpdateCooldown(ctx context.Context, seconds int) error
}

// SlowModeServices groups the services behind the slow mode routes.
type SlowModeServices struct {
	Guard     MessageGuard
	Deliverer NoticeDeliverer
	Admin     AdminService
	Settings  SettingsService
}

type SlowModeHandler struct {
	guard     MessageGuard
	deliverer NoticeDeliverer
	admin     AdminService
	settings  SettingsService
}

func NewSlowModeHandler(services SlowModeServices) (*SlowModeHandler, error) {
	if services.Guard == nil {
		return nil, fmt.Errorf("message guard is required")
	}
	if services.Deliverer == nil {
		return nil, fmt.Errorf("notice deliverer is required")
	}
	if services.Admin == nil {
		return nil, fmt.Errorf("admin service is required")
	}
	if services.Settings == nil {
		return nil, fmt.Errorf("settings service is required")
	}

	return &SlowModeHandler{
		guard:     services.Guard,
		deliverer: services.Deliverer,
		admin:     services.Admin,
		settings:  services.Settings,
	}, nil
}

func RegisterSlowModeRoutes(router fiber.Router, services SlowModeServices) error {
	h, err := NewSlowModeHandler(services)
	if err != nil {
		return err
	}

	router.Post(relay.NotifyPath, h.Notify)

	v1 := router.Group("/v1")
	v1.Post("/messages/check", h.CheckMessage)
	v1.Post("/slowmode/command", h.Command)
	v1.Get("/slowmode/rooms", h.ListRooms)
	v1.Delete("/slowmode", h.Uninstall)
	v1.Get("/settings/cooldown", h.GetCooldown)
	v1.Put("/settings/cooldown", h.UpdateCooldown)

	return nil
}

type checkMessageRequest struct {
	MessageID string     `json:"messageId"`
	RoomID    string     `json:"roomId"`
	UserID    string     `json:"userId"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

type checkMessageResponse struct {
	Allowed          bool `json:"allowed"`
	SecondsRemaining int  `json:"secondsRemaining,omitempty"`
}

type commandRequest struct {
	RoomID string   `json:"roomId"`
	UserID string   `json:"userId"`
	Args   []string `json:"args"`
}

type commandResponse struct {
	Text    string `json:"text"`
	Outcome string `json:"outcome"`
}

type throttledRoomResponse struct {
	RoomID      string    `json:"roomId"`
	DisplayName string    `json:"displayName"`
	CreatedAt   time.Time `json:"createdAt"`
}

type listRoomsResponse struct {
	Data []throttledRoomResponse `json:"data"`
}

type cooldownPayload struct {
	Seconds int `json:"seconds"`
}

func (h *SlowModeHandler) CheckMessage(c *fiber.Ctx) error {
	var req checkMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	msg := domain.Message{
		ID:     req.MessageID,
		UserID: strings.TrimSpace(req.UserID),
		RoomID: strings.TrimSpace(req.RoomID),
	}
	if req.CreatedAt != nil {
		msg.CreatedAt = *req.CreatedAt
	}

	decision, err := h.guard.Check(c.UserContext(), msg)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(checkMessageResponse{
		Allowed:          decision.Allowed,
		SecondsRemaining: decision.SecondsRemaining,
	})
}

// Notify is the relay callback. The body is not trusted until the secret
// matches.
func (h *SlowModeHandler) Notify(c *fiber.Ctx) error {
	var payload relay.NotifyPayload
	if err := c.BodyParser(&payload); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	err := h.deliverer.Deliver(c.UserContext(), payload.ToNotice())
	switch {
	case err == nil:
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "delivered"})
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.NewError(fiber.StatusForbidden, "invalid relay secret")
	default:
		return toHTTPError(err)
	}
}

func (h *SlowModeHandler) Command(c *fiber.Ctx) error {
	var req commandRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	reply, err := h.admin.Execute(c.UserContext(), service.CommandRequest{
		RoomID: strings.TrimSpace(req.RoomID),
		UserID: strings.TrimSpace(req.UserID),
		Args:   req.Args,
	})
	if err != nil {
		return toHTTPError(err)
	}

	status := fiber.StatusOK
	if reply.Outcome == service.OutcomeForbidden {
		status = fiber.StatusForbidden
	}
	return c.Status(status).JSON(commandResponse{
		Text:    reply.Text,
		Outcome: string(reply.Outcome),
	})
}

func (h *SlowModeHandler) ListRooms(c *fiber.Ctx) error {
	rooms, err := h.admin.ListRooms(c.UserContext())
	if err != nil {
		return toHTTPError(err)
	}

	data := make([]throttledRoomResponse, 0, len(rooms))
	for _, room := range rooms {
		data = append(data, throttledRoomResponse{
			RoomID:      room.RoomID,
			DisplayName: room.DisplayName,
			CreatedAt:   room.CreatedAt,
		})
	}
	return c.Status(fiber.StatusOK).JSON(listRoomsResponse{Data: data})
}

func (h *SlowModeHandler) Uninstall(c *fiber.Ctx) error {
	if err := h.admin.Uninstall(c.UserContext()); err != nil {
		return toHTTPError(err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *SlowModeHandler) GetCooldown(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(cooldownPayload{Seconds: h.settings.Cooldown()})
}

func (h *SlowModeHandler) UpdateCooldown(c *fiber.Ctx) error {
	var req cooldownPayload
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.settings.UpdateCooldown(c.UserContext(), req.Seconds); err != nil {
		return toHTTPError(err)
	}
	return c.Status(fiber.StatusOK).JSON(cooldownPayload{Seconds: h.settings.Cooldown()})
}

func toHTTPError(err error) error {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.NewError(fiber.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		return fiber.NewError(fiber.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrAlreadyEnabled), errors.Is(err, domain.ErrNotEnabled):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	default:
		return err
	}
}
