package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/vinoteca-hk/cellar-sync/internal/application/dto"
	"github.com/vinoteca-hk/cellar-sync/internal/application/usecase"
)

// StatsHandler reportería agregada del catálogo y las órdenes.
type StatsHandler struct {
	uc *usecase.StatsUseCase
}

// NewStatsHandler construye el handler.
func NewStatsHandler(uc *usecase.StatsUseCase) *StatsHandler {
	return &StatsHandler{uc: uc}
}

// Inventory godoc
// @Summary      Resumen agregado del catálogo
// @Tags         stats
// @Produce      json
// @Success      200  {object}  dto.InventoryStatsResponse
// @Router       /api/stats/inventory [get]
func (h *StatsHandler) Inventory(c *fiber.Ctx) error {
	out, err := h.uc.Inventory(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}

// Regions godoc
// @Summary      Existencias por región
// @Tags         stats
// @Produce      json
// @Param        limit  query  int  false  "Máximo de regiones"  default(20)
// @Success      200    {array}  dto.RegionStockResponse
// @Router       /api/stats/regions [get]
func (h *StatsHandler) Regions(c *fiber.Ctx) error {
	out, err := h.uc.Regions(c.Context(), c.QueryInt("limit", 20))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}

// Orders godoc
// @Summary      Resumen financiero de órdenes en un período
// @Tags         stats
// @Produce      json
// @Param        from  query  string  false  "Desde (YYYY-MM-DD)"
// @Param        to    query  string  false  "Hasta (YYYY-MM-DD)"
// @Success      200   {object}  dto.OrderStatsResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/stats/orders [get]
func (h *StatsHandler) Orders(c *fiber.Ctx) error {
	from, err := parseDateQuery(c.Query("from"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_DATE", Message: "from debe ser YYYY-MM-DD"})
	}
	to, err := parseDateQuery(c.Query("to"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_DATE", Message: "to debe ser YYYY-MM-DD"})
	}
	out, err := h.uc.Orders(c.Context(), from, to)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}

func parseDateQuery(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", s)
}
