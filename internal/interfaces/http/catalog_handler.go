package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/vinoteca-hk/cellar-sync/internal/application/dto"
	"github.com/vinoteca-hk/cellar-sync/internal/application/usecase"
	"github.com/vinoteca-hk/cellar-sync/internal/domain/repository"
)

// CatalogHandler consultas de lectura sobre el catálogo sincronizado.
type CatalogHandler struct {
	uc *usecase.CatalogUseCase
}

// NewCatalogHandler construye el handler.
func NewCatalogHandler(uc *usecase.CatalogUseCase) *CatalogHandler {
	return &CatalogHandler{uc: uc}
}

// List godoc
// @Summary      Listar artículos del catálogo
// @Tags         catalog
// @Produce      json
// @Param        producer  query  string  false  "Filtrar por productor"
// @Param        region    query  string  false  "Filtrar por región"
// @Param        search    query  string  false  "Búsqueda parcial por SKU o nombre"
// @Param        order_by  query  string  false  "name | vintage | total_quantity | last_synced"
// @Param        limit     query  int     false  "Límite"   default(20)
// @Param        offset    query  int     false  "Offset"   default(0)
// @Success      200       {object}  dto.ItemListResponse
// @Router       /api/items [get]
func (h *CatalogHandler) List(c *fiber.Ctx) error {
	f := repository.ItemFilter{
		Producer: c.Query("producer"),
		Region:   c.Query("region"),
		Search:   c.Query("search"),
		OrderBy:  c.Query("order_by"),
		Limit:    c.QueryInt("limit", 20),
		Offset:   c.QueryInt("offset", 0),
	}
	out, err := h.uc.List(c.Context(), f)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener artículo por id externo
// @Tags         catalog
// @Produce      json
// @Param        id   path  int  true  "Id externo del artículo"
// @Success      200  {object}  dto.ItemResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/items/{id} [get]
func (h *CatalogHandler) GetByID(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_ID", Message: "id debe ser un entero positivo"})
	}
	out, err := h.uc.GetByExternalID(c.Context(), id)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	if out == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "artículo no encontrado"})
	}
	return c.JSON(out)
}
