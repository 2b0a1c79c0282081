package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/study-room-reservation/internal/config"
	"github.com/iliyamo/study-room-reservation/internal/model"
	"github.com/iliyamo/study-room-reservation/internal/repository"
	"github.com/iliyamo/study-room-reservation/internal/utils"
)

// AdminStudentHandler manages student accounts.  Only admins reach
// these endpoints; students never edit their own account.
type AdminStudentHandler struct {
	Cfg      config.Config
	Students *repository.StudentRepo
	Tokens   *repository.TokenRepo
}

func NewAdminStudentHandler(cfg config.Config, s *repository.StudentRepo, t *repository.TokenRepo) *AdminStudentHandler {
	return &AdminStudentHandler{Cfg: cfg, Students: s, Tokens: t}
}

type upsertStudentReq struct {
	DisplayName string `json:"display_name"`
	Pin         string `json:"pin"`
	Active      *bool  `json:"active"`
}

type studentDTO struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Upsert creates or updates the student at /v1/admin/students/:id.
// Empty display_name or pin keep the stored values; deactivating a
// student also revokes their refresh tokens so open sessions die.
func (h *AdminStudentHandler) Upsert(c echo.Context) error {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" || id == AdminSubject || strings.Contains(id, "_") {
		// Underscores would collide with the booking natural-key format.
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid student id"})
	}
	var req upsertStudentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	s := model.Student{ID: id, DisplayName: strings.TrimSpace(req.DisplayName), Active: true}
	if req.Active != nil {
		s.Active = *req.Active
	} else if existing, err := h.Students.GetByID(ctx, id); err == nil {
		s.Active = existing.Active
	}
	if req.Pin != "" {
		hash, err := utils.HashPin(req.Pin, h.Cfg.BcryptCost)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "hash pin failed"})
		}
		s.PinHash = hash
	}

	if err := h.Students.Upsert(ctx, &s); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save failed"})
	}
	if !s.Active {
		_ = h.Tokens.RevokeAllForSubject(ctx, id)
	}

	stored, err := h.Students.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, studentDTO{
		ID: stored.ID, DisplayName: stored.DisplayName, Active: stored.Active,
		CreatedAt: stored.CreatedAt, UpdatedAt: stored.UpdatedAt,
	})
}

// List returns every student account, without credential hashes.
func (h *AdminStudentHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	students, err := h.Students.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]studentDTO, 0, len(students))
	for _, s := range students {
		out = append(out, studentDTO{
			ID: s.ID, DisplayName: s.DisplayName, Active: s.Active,
			CreatedAt: s.CreatedAt, UpdatedAt: s.UpdatedAt,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"students": out})
}
