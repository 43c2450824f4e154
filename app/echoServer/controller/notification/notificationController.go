package notification

import (
	"log/slog"
	"net/http"
	"strconv"

	notificationsvc "campuscrate/service/notification"

	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc notificationsvc.Service
	Log *slog.Logger
}

// GET /v1/notifications
func (h *Controller) List(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)
	rows, err := h.Svc.List(c.Request().Context(), uid)
	if err != nil {
		h.Log.Error("notification list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// PUT /v1/notifications/:id/read
func (h *Controller) MarkRead(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, _ := c.Get("user_id").(int64)

	if err := h.Svc.MarkRead(c.Request().Context(), uid, id); err != nil {
		if notificationsvc.Code(err) == notificationsvc.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "notification not found"})
		}
		h.Log.Error("notification read", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "read"})
}

// PUT /v1/notifications/read-all
func (h *Controller) MarkAllRead(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)
	n, err := h.Svc.MarkAllRead(c.Request().Context(), uid)
	if err != nil {
		h.Log.Error("notification read-all", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"updated": n})
}
