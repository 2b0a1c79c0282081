// Package router wires handlers, middleware and route groups onto the
// Echo instance.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/study-room-reservation/internal/config"
	"github.com/iliyamo/study-room-reservation/internal/handler"
	"github.com/iliyamo/study-room-reservation/internal/middleware"
)

// Handlers collects every handler the router mounts.
type Handlers struct {
	Auth         *handler.AuthHandler
	Slots        *handler.SlotHandler
	Reservations *handler.ReservationHandler
	Records      *handler.RecordHandler
	Students     *handler.AdminStudentHandler
	AdminRes     *handler.AdminReservationHandler
}

// Register mounts all routes.  Layout:
//
//	/healthz, /metrics          – unauthenticated operations endpoints
//	/v1/auth/*                  – login, refresh, logout
//	/v1/slots                   – public occupancy listing (cached)
//	/v1/*                       – student endpoints (JWT, role STUDENT)
//	/v1/admin/*                 – admin endpoints (JWT, role ADMIN)
//
// The rate limiter wraps everything under /v1; with Redis down both the
// limiter and the occupancy cache are pass-throughs.
func Register(e *echo.Echo, h Handlers, cfg config.Config, rdb *redis.Client) {
	e.GET("/healthz", handler.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	v1 := e.Group("/v1", limiter)

	auth := v1.Group("/auth")
	auth.POST("/login", h.Auth.Login)
	auth.POST("/admin-login", h.Auth.AdminLogin)
	auth.POST("/refresh", h.Auth.Refresh)
	// Logout takes a refresh token in the body or a bearer token; it
	// parses the bearer itself so it stays outside the JWT group.
	auth.POST("/logout", h.Auth.Logout)

	// Occupancy is public so students can browse free slots before
	// logging in; the short-TTL cache absorbs the calendar fan-out.
	v1.GET("/slots", h.Slots.List, cache)

	student := v1.Group("", middleware.JWTAuth(cfg.JWTSecret), middleware.RequireRole(middleware.RoleStudent, middleware.RoleAdmin))
	student.GET("/me", h.Auth.Me)
	student.POST("/reservations", h.Reservations.Create)
	student.DELETE("/reservations/:id", h.Reservations.Cancel)
	student.GET("/my-reservations", h.Reservations.MyReservations)
	student.GET("/usage", h.Reservations.Usage)
	student.GET("/records/:id", h.Records.Get)
	student.PUT("/records/:id", h.Records.Update)

	admin := v1.Group("/admin", middleware.JWTAuth(cfg.JWTSecret), middleware.RequireRole(middleware.RoleAdmin))
	admin.PUT("/students/:id", h.Students.Upsert)
	admin.GET("/students", h.Students.List)
	admin.GET("/reservations", h.AdminRes.ListByDate)
	admin.GET("/reservations/export", h.AdminRes.ExportMonth)
	admin.POST("/records/:id/confirm", h.Records.Confirm)
}
