package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/sapan_backend/internal/service/catalog"
)

type CatalogHandler struct {
	svc catalog.Service
}

func NewCatalogHandler(svc catalog.Service) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

// GET /api/v1/industries
func (h *CatalogHandler) Industries(c fiber.Ctx) error {
	cats, err := h.svc.ListIndustries(c.Context())
	if err != nil {
		return internalError(c)
	}
	return ok(c, cats)
}

// GET /api/v1/objectives
func (h *CatalogHandler) Objectives(c fiber.Ctx) error {
	objs, err := h.svc.ListObjectives(c.Context())
	if err != nil {
		return internalError(c)
	}
	return ok(c, objs)
}

// GET /api/v1/stages
func (h *CatalogHandler) Stages(c fiber.Ctx) error {
	return ok(c, h.svc.ListStages())
}
