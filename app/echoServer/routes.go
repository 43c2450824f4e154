package echoServer

import (
	"net/http"

	adminctrl "campuscrate/app/echoServer/controller/admin"
	authctrl "campuscrate/app/echoServer/controller/auth"
	itemctrl "campuscrate/app/echoServer/controller/item"
	lendingctrl "campuscrate/app/echoServer/controller/lending"
	messagectrl "campuscrate/app/echoServer/controller/message"
	notificationctrl "campuscrate/app/echoServer/controller/notification"
	reviewctrl "campuscrate/app/echoServer/controller/review"
	verificationctrl "campuscrate/app/echoServer/controller/verification"
	"campuscrate/app/echoServer/jwtx"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

type C struct {
	Auth         *authctrl.Controller
	Item         *itemctrl.Controller
	Lending      *lendingctrl.Controller
	Review       *reviewctrl.Controller
	Verification *verificationctrl.Controller
	Notification *notificationctrl.Controller
	Message      *messagectrl.Controller
	Admin        *adminctrl.Controller
	JWTSecret    string
}

func Register(e *echo.Echo, c C) {
	// Public
	pub := e.Group("/v1")
	pub.POST("/auth/register", c.Auth.Register)
	pub.POST("/auth/login", c.Auth.Login)
	pub.GET("/items", c.Item.List)
	pub.GET("/items/:id", c.Item.Detail)
	pub.GET("/users/:id/reviews", c.Review.ForUser)

	// Auth
	auth := e.Group("/v1")
	auth.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey:    []byte(c.JWTSecret),
		NewClaimsFunc: func(c echo.Context) jwt.Claims { return jwt.MapClaims{} },
		TokenLookup:   "header:Authorization",
	}))
	auth.Use(extractClaims)

	// Items
	auth.POST("/items", c.Item.Create)
	auth.GET("/my/items", c.Item.Mine)
	auth.PUT("/items/:id", c.Item.Update)
	auth.DELETE("/items/:id", c.Item.Delete)

	// Lending lifecycle
	auth.POST("/lending/request", c.Lending.Create)
	auth.POST("/lending/:id/accept", c.Lending.Accept)
	auth.POST("/lending/:id/reject", c.Lending.Reject)
	auth.POST("/lending/:id/cancel", c.Lending.Cancel)
	auth.POST("/lending/:id/complete", c.Lending.Complete)
	auth.GET("/lending/my", c.Lending.My)
	auth.GET("/lending/incoming", c.Lending.Incoming)
	auth.GET("/lending/:id", c.Lending.Detail)

	// Reviews
	auth.POST("/reviews", c.Review.Create)

	// Verification
	auth.POST("/verification-requests", c.Verification.Submit)
	auth.GET("/verification-requests/me", c.Verification.Mine)
	auth.GET("/verification-requests", c.Verification.List)
	auth.PUT("/verification-requests/:id/status", c.Verification.Review)
	auth.POST("/verification-requests/:id/message", c.Verification.PostMessage)
	auth.GET("/verification-requests/:id/messages", c.Verification.Messages)

	// Notifications
	auth.GET("/notifications", c.Notification.List)
	auth.PUT("/notifications/:id/read", c.Notification.MarkRead)
	auth.PUT("/notifications/read-all", c.Notification.MarkAllRead)

	// Messages
	auth.POST("/messages", c.Message.Send)
	auth.GET("/messages/conversations", c.Message.Conversations)
	auth.GET("/messages/with/:id", c.Message.Thread)

	// Admin
	admin := auth.Group("/admin", requireAdmin)
	admin.GET("/users", c.Admin.ListUsers)
	admin.PUT("/users/:id/role", c.Admin.ChangeRole)
	admin.PUT("/items/:id/moderate", c.Admin.ModerateItem)
}

// extractClaims pulls the subject and role out of the verified token so
// handlers read plain context keys instead of jwt types.
func extractClaims(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		uid, err := jwtx.UserIDFromContext(ctx)
		if err != nil {
			return ctx.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
		}
		ctx.Set("user_id", uid)
		if role, err := jwtx.RoleFromContext(ctx); err == nil {
			ctx.Set("role", role)
		}
		return next(ctx)
	}
}

func requireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		role, _ := ctx.Get("role").(string)
		if role != "admin" {
			return ctx.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
		}
		return next(ctx)
	}
}
