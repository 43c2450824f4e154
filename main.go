// Package main CampusCrate API.
//
// @title           CampusCrate API
// @version         1.0
// @description     Campus item-lending marketplace (items, lending requests, reviews, verification, admin).
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description  Use:  Bearer <JWT>
package main

import (
	"context"
	"log/slog"
	"os"

	"campuscrate/app/echoServer"
	adminctrl "campuscrate/app/echoServer/controller/admin"
	authctrl "campuscrate/app/echoServer/controller/auth"
	itemctrl "campuscrate/app/echoServer/controller/item"
	lendingctrl "campuscrate/app/echoServer/controller/lending"
	messagectrl "campuscrate/app/echoServer/controller/message"
	notificationctrl "campuscrate/app/echoServer/controller/notification"
	reviewctrl "campuscrate/app/echoServer/controller/review"
	verificationctrl "campuscrate/app/echoServer/controller/verification"
	"campuscrate/app/echoServer/validation"
	"campuscrate/config"
	itemrepo "campuscrate/repository/item"
	lendingrepo "campuscrate/repository/lending"
	messagerepo "campuscrate/repository/message"
	notificationrepo "campuscrate/repository/notification"
	reviewrepo "campuscrate/repository/review"
	userrepo "campuscrate/repository/user"
	verificationrepo "campuscrate/repository/verification"
	adminsvc "campuscrate/service/admin"
	authsvc "campuscrate/service/auth"
	itemsvc "campuscrate/service/item"
	lendingsvc "campuscrate/service/lending"
	messagesvc "campuscrate/service/message"
	notificationsvc "campuscrate/service/notification"
	reviewsvc "campuscrate/service/review"
	verificationsvc "campuscrate/service/verification"
	"campuscrate/util/database"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
)

func main() {

	cfg := config.Load()
	ctx := context.Background()

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	// repos
	ur := userrepo.New(db)
	ir := itemrepo.New(db)
	lr := lendingrepo.New(db)
	rr := reviewrepo.New(db)
	vr := verificationrepo.New(db)
	nr := notificationrepo.New(db)
	mr := messagerepo.New(db)

	// services
	ns := notificationsvc.New(nr, log)
	as := authsvc.New(ur, cfg.JWTSecret, cfg.JWTTTLHours)
	is := itemsvc.New(ir)
	ls := lendingsvc.New(db, lr, ns)
	rs := reviewsvc.New(db, rr, ns)
	vs := verificationsvc.New(db, vr, ns)
	ads := adminsvc.New(ur, ir)
	ms := messagesvc.New(mr, ns)

	// controllers
	v := validator.New()
	authC := &authctrl.Controller{Svc: as, V: v, Log: log}
	itemC := &itemctrl.Controller{Svc: is, V: v, Log: log}
	lendingC := &lendingctrl.Controller{Svc: ls, V: v, Log: log}
	reviewC := &reviewctrl.Controller{Svc: rs, V: v, Log: log}
	verificationC := &verificationctrl.Controller{Svc: vs, V: v, Log: log}
	notificationC := &notificationctrl.Controller{Svc: ns, Log: log}
	messageC := &messagectrl.Controller{Svc: ms, V: v, Log: log}
	adminC := &adminctrl.Controller{Svc: ads, V: v, Log: log}

	// echo
	e := echo.New()
	echoServer.RegisterMiddlewares(e)
	e.Validator = validation.New()

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]any{
			"status":  "ok",
			"message": "Service is healthy and connected",
		})
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	echoServer.Register(e, echoServer.C{
		Auth:         authC,
		Item:         itemC,
		Lending:      lendingC,
		Review:       reviewC,
		Verification: verificationC,
		Notification: notificationC,
		Message:      messageC,
		Admin:        adminC,
		JWTSecret:    cfg.JWTSecret,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}
	if port == "" {
		port = "8080"
	}

	slog.Info("starting server", "port", port, "env", cfg.Env)

	e.Logger.Fatal(e.Start(":" + port))
}
