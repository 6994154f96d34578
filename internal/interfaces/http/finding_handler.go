package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/lxhallazgos/internal/application/dto"
	"github.com/jhoicas/lxhallazgos/internal/application/usecase"
)

// FindingHandler maneja el ciclo de vida de los hallazgos.
type FindingHandler struct {
	uc *usecase.FindingUseCase
}

// NewFindingHandler construye el handler.
func NewFindingHandler(uc *usecase.FindingUseCase) *FindingHandler {
	return &FindingHandler{uc: uc}
}

// Get godoc
// @Summary      Obtener hallazgo
// @Tags         hallazgos
// @Produce      json
// @Param        id  path  string  true  "ID del hallazgo"
// @Success      200  {object}  dto.FindingPayload
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/hallazgos/{id} [get]
func (h *FindingHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), GetUserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Crear hallazgo
// @Tags         hallazgos
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateFindingRequest  true  "proyecto y evaluador obligatorios"
// @Success      201   {object}  dto.FindingPayload
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/hallazgos [post]
func (h *FindingHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateFindingRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Create(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Update godoc
// @Summary      Actualizar hallazgo
// @Tags         hallazgos
// @Accept       json
// @Produce      json
// @Param        id    path  string                    true  "ID del hallazgo"
// @Param        body  body  dto.UpdateFindingRequest  true  "campos a cambiar"
// @Success      200   {object}  dto.FindingPayload
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/hallazgos/{id} [put]
func (h *FindingHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateFindingRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Update(c.UserContext(), GetUserID(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Close godoc
// @Summary      Cerrar hallazgo
// @Tags         hallazgos
// @Accept       json
// @Produce      json
// @Param        id    path  string                   true  "ID del hallazgo"
// @Param        body  body  dto.CloseFindingRequest  true  "comentario de cierre (mín. 10 caracteres)"
// @Success      200   {object}  dto.FindingPayload
// @Router       /api/hallazgos/{id}/close [put]
func (h *FindingHandler) Close(c *fiber.Ctx) error {
	var in dto.CloseFindingRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Close(c.UserContext(), GetUserID(c), c.Params("id"), in.Comment)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// CloseAll godoc
// @Summary      Cerrar hallazgos en bloque
// @Tags         hallazgos
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CloseAllFindingsRequest  true  "IDs y comentario de cierre (mín. 10 caracteres)"
// @Success      200   {object}  dto.CloseAllFindingsResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/hallazgos/close-all [put]
func (h *FindingHandler) CloseAll(c *fiber.Ctx) error {
	var in dto.CloseAllFindingsRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.CloseAll(c.UserContext(), GetUserID(c), in.IDs, in.Comment)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Reopen godoc
// @Summary      Reabrir hallazgo
// @Tags         hallazgos
// @Accept       json
// @Produce      json
// @Param        id    path  string                    true  "ID del hallazgo"
// @Param        body  body  dto.ReopenFindingRequest  true  "motivo de reapertura (mín. 10 caracteres)"
// @Success      200   {object}  dto.FindingPayload
// @Router       /api/hallazgos/{id}/reopen [put]
func (h *FindingHandler) Reopen(c *fiber.Ctx) error {
	var in dto.ReopenFindingRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Reopen(c.UserContext(), GetUserID(c), c.Params("id"), in.Reason)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar hallazgo
// @Tags         hallazgos
// @Produce      json
// @Param        id  path  string  true  "ID del hallazgo"
// @Success      200  {object}  dto.MessageResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/hallazgos/{id} [delete]
func (h *FindingHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), GetUserID(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MessageResponse{Success: true, Message: "Hallazgo eliminado"})
}
