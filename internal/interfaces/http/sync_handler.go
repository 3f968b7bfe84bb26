package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/vinoteca-hk/cellar-sync/internal/application/dto"
	appsync "github.com/vinoteca-hk/cellar-sync/internal/application/sync"
	"github.com/vinoteca-hk/cellar-sync/internal/domain"
)

// SyncHandler dispara corridas de sincronización contra el ERP remoto (protegido).
// Las corridas son síncronas: la respuesta llega con el reporte completo.
type SyncHandler struct {
	orch *appsync.Orchestrator
}

// NewSyncHandler construye el handler.
func NewSyncHandler(orch *appsync.Orchestrator) *SyncHandler {
	return &SyncHandler{orch: orch}
}

// Probe godoc
// @Summary      Verificar credenciales contra el ERP remoto
// @Tags         sync
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ProbeResponse
// @Failure      502  {object}  dto.ErrorResponse
// @Router       /api/sync/probe [get]
func (h *SyncHandler) Probe(c *fiber.Ctx) error {
	ok, err := h.orch.Probe(c.Context())
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Code: "UPSTREAM", Message: err.Error()})
	}
	return c.JSON(dto.ProbeResponse{Ok: ok})
}

// Items godoc
// @Summary      Sincronización incremental de artículos
// @Tags         sync
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SyncItemsRequest  false  "Límite y fecha de corte"
// @Success      200   {object}  sync.Report
// @Failure      401   {object}  dto.ErrorResponse
// @Router       /api/sync/items [post]
func (h *SyncHandler) Items(c *fiber.Ctx) error {
	var in dto.SyncItemsRequest
	if err := c.BodyParser(&in); err != nil && len(c.Body()) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	rep, err := h.orch.SyncItems(c.Context(), in.Limit, in.Since)
	return h.respond(c, rep, err)
}

// Sweep godoc
// @Summary      Barrido completo del catálogo
// @Tags         sync
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SweepRequest  false  "Parámetros del barrido"
// @Success      200   {object}  sync.Report
// @Failure      401   {object}  dto.ErrorResponse
// @Router       /api/sync/items/sweep [post]
func (h *SyncHandler) Sweep(c *fiber.Ctx) error {
	var in dto.SweepRequest
	if err := c.BodyParser(&in); err != nil && len(c.Body()) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	rep, err := h.orch.SweepItems(c.Context(), appsync.SweepOptions{
		BatchSize:  in.BatchSize,
		MaxItems:   in.MaxItems,
		BatchDelay: millis(in.BatchDelayMs),
	})
	return h.respond(c, rep, err)
}

// Orders godoc
// @Summary      Sincronización incremental de órdenes de venta
// @Tags         sync
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SyncItemsRequest  false  "Límite y fecha de corte"
// @Success      200   {object}  sync.Report
// @Failure      401   {object}  dto.ErrorResponse
// @Router       /api/sync/orders [post]
func (h *SyncHandler) Orders(c *fiber.Ctx) error {
	var in dto.SyncItemsRequest
	if err := c.BodyParser(&in); err != nil && len(c.Body()) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	rep, err := h.orch.SyncOrders(c.Context(), in.Limit, in.Since)
	return h.respond(c, rep, err)
}

// ItemsFromOrders godoc
// @Summary      Sincronizar artículos referenciados por órdenes almacenadas
// @Tags         sync
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  sync.Report
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/sync/items/from-orders [post]
func (h *SyncHandler) ItemsFromOrders(c *fiber.Ctx) error {
	rep, err := h.orch.SyncItemsFromOrders(c.Context())
	return h.respond(c, rep, err)
}

// Movement godoc
// @Summary      Enriquecer movimiento de los últimos 12 meses
// @Tags         sync
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.MovementRequest  false  "Parámetros de la pasada"
// @Success      200   {object}  sync.Report
// @Failure      401   {object}  dto.ErrorResponse
// @Router       /api/sync/movement [post]
func (h *SyncHandler) Movement(c *fiber.Ctx) error {
	var in dto.MovementRequest
	if err := c.BodyParser(&in); err != nil && len(c.Body()) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	rep, err := h.orch.EnrichMovement(c.Context(), appsync.MovementOptions{
		BatchSize: in.BatchSize,
		MaxItems:  in.MaxItems,
	})
	return h.respond(c, rep, err)
}

func millis(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// respond entrega el reporte. El único error que llega hasta aquí es el fallo
// de pre-vuelo: credenciales inválidas (401) o remoto caído (502); el reporte
// acompaña al error para que el cliente vea el campo fatal.
func (h *SyncHandler) respond(c *fiber.Ctx, rep *appsync.Report, err error) error {
	if err != nil {
		status := fiber.StatusBadGateway
		if errors.Is(err, domain.ErrAuthFailed) {
			status = fiber.StatusUnauthorized
		}
		return c.Status(status).JSON(rep)
	}
	return c.JSON(rep)
}
