package message

import (
	"log/slog"
	"net/http"
	"strconv"

	messagesvc "campuscrate/service/message"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type SendMessageReq struct {
	RecipientID int64  `json:"recipient_id" validate:"required,gt=0"`
	ItemID      *int64 `json:"item_id" validate:"omitempty,gt=0"`
	Content     string `json:"content" validate:"required,max=2000"`
}

type Controller struct {
	Svc messagesvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// POST /v1/messages
func (h *Controller) Send(c echo.Context) error {
	var req SendMessageReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}
	uid, _ := c.Get("user_id").(int64)

	m, err := h.Svc.Send(c.Request().Context(), uid, req.RecipientID, req.ItemID, req.Content)
	if err != nil {
		switch messagesvc.Code(err) {
		case messagesvc.ErrRecipientNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "recipient not found"})
		case messagesvc.ErrSelfMessage:
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"message": "cannot message yourself"})
		default:
			h.Log.Error("message send", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusCreated, echo.Map{"data": m})
}

// GET /v1/messages/conversations
func (h *Controller) Conversations(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)
	rows, err := h.Svc.Conversations(c.Request().Context(), uid)
	if err != nil {
		h.Log.Error("message conversations", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/messages/with/:id
func (h *Controller) Thread(c echo.Context) error {
	peerID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || peerID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, _ := c.Get("user_id").(int64)

	rows, err := h.Svc.Thread(c.Request().Context(), uid, peerID)
	if err != nil {
		h.Log.Error("message thread", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}
