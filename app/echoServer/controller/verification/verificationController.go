package verification

import (
	"log/slog"
	"net/http"
	"strconv"

	"campuscrate/model"
	verificationsvc "campuscrate/service/verification"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type SubmitReq struct {
	Message string `json:"message" validate:"required,max=1000"`
}

type ReviewReq struct {
	Status    string `json:"status" validate:"required,oneof=pending approved rejected"`
	AdminNote string `json:"admin_note" validate:"max=1000"`
}

type PostMessageReq struct {
	Content string `json:"content" validate:"required,max=2000"`
}

type Controller struct {
	Svc verificationsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

func isAdmin(c echo.Context) bool {
	role, _ := c.Get("role").(string)
	return role == "admin"
}

// POST /v1/verification-requests
func (h *Controller) Submit(c echo.Context) error {
	var req SubmitReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}
	uid, _ := c.Get("user_id").(int64)

	vr, err := h.Svc.Submit(c.Request().Context(), uid, req.Message)
	if err != nil {
		switch verificationsvc.Code(err) {
		case verificationsvc.ErrAlreadyVerified:
			return c.JSON(http.StatusConflict, echo.Map{"message": "already verified"})
		case verificationsvc.ErrUserNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "user not found"})
		default:
			h.Log.Error("verification submit", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusCreated, echo.Map{"data": vr})
}

// GET /v1/verification-requests/me
func (h *Controller) Mine(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)
	vr, err := h.Svc.Mine(c.Request().Context(), uid)
	if err != nil {
		if verificationsvc.Code(err) == verificationsvc.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "no verification request"})
		}
		h.Log.Error("verification mine", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": vr})
}

// GET /v1/verification-requests  (admin)
func (h *Controller) List(c echo.Context) error {
	if !isAdmin(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	}
	rows, err := h.Svc.List(c.Request().Context())
	if err != nil {
		h.Log.Error("verification list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// PUT /v1/verification-requests/:id/status  (admin)
func (h *Controller) Review(c echo.Context) error {
	if !isAdmin(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req ReviewReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}
	uid, _ := c.Get("user_id").(int64)

	vr, err := h.Svc.Review(c.Request().Context(), uid, id, model.VerificationStatus(req.Status), req.AdminNote)
	if err != nil {
		switch verificationsvc.Code(err) {
		case verificationsvc.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "verification request not found"})
		case verificationsvc.ErrBadStatus:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid status"})
		default:
			h.Log.Error("verification review", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"data": vr})
}

// POST /v1/verification-requests/:id/message  (admin)
func (h *Controller) PostMessage(c echo.Context) error {
	if !isAdmin(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req PostMessageReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}
	uid, _ := c.Get("user_id").(int64)

	msg, err := h.Svc.PostMessage(c.Request().Context(), uid, id, req.Content)
	if err != nil {
		if verificationsvc.Code(err) == verificationsvc.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "verification request not found"})
		}
		h.Log.Error("verification message", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"data": msg})
}

// GET /v1/verification-requests/:id/messages
func (h *Controller) Messages(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	// Admins see any thread; a user only their own.
	if !isAdmin(c) {
		uid, _ := c.Get("user_id").(int64)
		vr, err := h.Svc.Mine(c.Request().Context(), uid)
		if err != nil || vr.ID != id {
			return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
		}
	}
	rows, err := h.Svc.Messages(c.Request().Context(), id)
	if err != nil {
		h.Log.Error("verification messages", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}
