package lending

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	lendingsvc "campuscrate/service/lending"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc lendingsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// Create lending request
// @Summary      Request to borrow an item
// @Tags         lending
// @Accept       json
// @Produce      json
// @Param        payload  body  CreateLendingReq  true  "Request payload"
// @Success      201  {object}  map[string]any
// @Failure      400  {object}  map[string]any "bad dates / validation"
// @Failure      404  {object}  map[string]any "item not found"
// @Failure      409  {object}  map[string]any "item not available"
// @Failure      422  {object}  map[string]any "self-borrow"
// @Router       /v1/lending/request [post]
func (h *Controller) Create(c echo.Context) error {
	var req CreateLendingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}
	start, err := time.Parse(time.RFC3339, req.StartDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid start_date"})
	}
	end, err := time.Parse(time.RFC3339, req.EndDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid end_date"})
	}
	uid, _ := c.Get("user_id").(int64)

	lr, err := h.Svc.Create(c.Request().Context(), uid, req.ItemID, start, end, req.Message)
	if err != nil {
		switch lendingsvc.Code(err) {
		case lendingsvc.ErrBadDates:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "end date must be after start date"})
		case lendingsvc.ErrItemNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "item not found"})
		case lendingsvc.ErrItemUnavailable:
			return c.JSON(http.StatusConflict, echo.Map{"message": "item not available"})
		case lendingsvc.ErrSelfBorrow:
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"message": "cannot borrow your own item"})
		default:
			h.Log.Error("lending create", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusCreated, echo.Map{"data": lr})
}

func (h *Controller) requestID(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func (h *Controller) mapLifecycleErr(c echo.Context, op string, err error) error {
	switch lendingsvc.Code(err) {
	case lendingsvc.ErrNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "request not found"})
	case lendingsvc.ErrNotLender, lendingsvc.ErrNotBorrower, lendingsvc.ErrNotParty:
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	case lendingsvc.ErrBadTransition:
		return c.JSON(http.StatusConflict, echo.Map{"message": "operation not valid for current status"})
	case lendingsvc.ErrItemUnavailable:
		return c.JSON(http.StatusConflict, echo.Map{"message": "item not available"})
	default:
		h.Log.Error("lending "+op, "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
}

// POST /v1/lending/:id/accept
func (h *Controller) Accept(c echo.Context) error {
	id, ok := h.requestID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, _ := c.Get("user_id").(int64)

	lr, err := h.Svc.Accept(c.Request().Context(), uid, id)
	if err != nil {
		return h.mapLifecycleErr(c, "accept", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": lr})
}

// POST /v1/lending/:id/reject
func (h *Controller) Reject(c echo.Context) error {
	id, ok := h.requestID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req RejectReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	uid, _ := c.Get("user_id").(int64)

	lr, err := h.Svc.Reject(c.Request().Context(), uid, id, req.Reason)
	if err != nil {
		return h.mapLifecycleErr(c, "reject", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": lr})
}

// POST /v1/lending/:id/cancel
func (h *Controller) Cancel(c echo.Context) error {
	id, ok := h.requestID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req CancelReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	uid, _ := c.Get("user_id").(int64)

	lr, err := h.Svc.Cancel(c.Request().Context(), uid, id, req.Reason)
	if err != nil {
		return h.mapLifecycleErr(c, "cancel", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": lr})
}

// POST /v1/lending/:id/complete
func (h *Controller) Complete(c echo.Context) error {
	id, ok := h.requestID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, _ := c.Get("user_id").(int64)

	lr, err := h.Svc.Complete(c.Request().Context(), uid, id)
	if err != nil {
		return h.mapLifecycleErr(c, "complete", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": lr})
}

// GET /v1/lending/:id
func (h *Controller) Detail(c echo.Context) error {
	id, ok := h.requestID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, _ := c.Get("user_id").(int64)

	lr, err := h.Svc.ByID(c.Request().Context(), id)
	if err != nil {
		return h.mapLifecycleErr(c, "detail", err)
	}
	if lr.BorrowerID != uid && lr.LenderID != uid {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": lr})
}

// GET /v1/lending/my
func (h *Controller) My(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)
	rows, err := h.Svc.MyRequests(c.Request().Context(), uid)
	if err != nil {
		h.Log.Error("lending my", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/lending/incoming
func (h *Controller) Incoming(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)
	rows, err := h.Svc.Incoming(c.Request().Context(), uid)
	if err != nil {
		h.Log.Error("lending incoming", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}
