package review

import (
	"log/slog"
	"net/http"
	"strconv"

	reviewsvc "campuscrate/service/review"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type CreateReviewReq struct {
	LendingRequestID int64  `json:"lending_request_id" validate:"required,gt=0"`
	Rating           int    `json:"rating" validate:"required,min=1,max=5"`
	Comment          string `json:"comment" validate:"max=2000"`
}

type Controller struct {
	Svc reviewsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// POST /v1/reviews
func (h *Controller) Create(c echo.Context) error {
	var req CreateReviewReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}
	uid, _ := c.Get("user_id").(int64)

	rv, err := h.Svc.Create(c.Request().Context(), uid, req.LendingRequestID, req.Rating, req.Comment)
	if err != nil {
		switch reviewsvc.Code(err) {
		case reviewsvc.ErrRequestNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "lending request not found"})
		case reviewsvc.ErrNotParty:
			return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
		case reviewsvc.ErrNotCompleted:
			return c.JSON(http.StatusConflict, echo.Map{"message": "rental not completed"})
		case reviewsvc.ErrDuplicate:
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"message": "already reviewed"})
		case reviewsvc.ErrBadRating:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "rating must be 1-5"})
		default:
			h.Log.Error("review create", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusCreated, echo.Map{"data": rv})
}

// GET /v1/users/:id/reviews
func (h *Controller) ForUser(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	rows, err := h.Svc.ForUser(c.Request().Context(), id)
	if err != nil {
		h.Log.Error("review list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}
