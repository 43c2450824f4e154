package admin

import (
	"log/slog"
	"net/http"
	"strconv"

	"campuscrate/model"
	adminsvc "campuscrate/service/admin"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type ChangeRoleReq struct {
	Role string `json:"role" validate:"required,oneof=user admin"`
}

type ModerateItemReq struct {
	Availability string `json:"availability" validate:"required,oneof=AVAILABLE MAINTENANCE UNAVAILABLE"`
	Active       *bool  `json:"active" validate:"required"`
}

type Controller struct {
	Svc adminsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// GET /v1/admin/users
func (h *Controller) ListUsers(c echo.Context) error {
	rows, err := h.Svc.ListUsers(c.Request().Context())
	if err != nil {
		h.Log.Error("admin list users", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// Change a user's role
// @Summary      Change role
// @Description  Promote or demote a user; self-demotion and removing the last admin are rejected
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id       path  int            true  "target user id"
// @Param        payload  body  ChangeRoleReq  true  "new role"
// @Success      200  {object}  map[string]any
// @Failure      400  {object}  map[string]any
// @Failure      404  {object}  map[string]any
// @Failure      422  {object}  map[string]any "self-demotion / last admin"
// @Router       /v1/admin/users/{id}/role [put]
func (h *Controller) ChangeRole(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req ChangeRoleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}
	uid, _ := c.Get("user_id").(int64)

	u, err := h.Svc.ChangeRole(c.Request().Context(), uid, id, model.Role(req.Role))
	if err != nil {
		switch adminsvc.Code(err) {
		case adminsvc.ErrUserNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "user not found"})
		case adminsvc.ErrBadRole:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid role"})
		case adminsvc.ErrSelfDemotion:
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"message": "admins cannot demote themselves"})
		case adminsvc.ErrLastAdmin:
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"message": "cannot remove the last admin"})
		default:
			h.Log.Error("admin change role", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"data": u})
}

// PUT /v1/admin/items/:id/moderate
func (h *Controller) ModerateItem(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req ModerateItemReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}

	err = h.Svc.ModerateItem(c.Request().Context(), id, model.ItemAvailability(req.Availability), *req.Active)
	if err != nil {
		switch adminsvc.Code(err) {
		case adminsvc.ErrItemNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "item not found"})
		case adminsvc.ErrBadState:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid availability"})
		default:
			h.Log.Error("admin moderate item", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "moderated"})
}
