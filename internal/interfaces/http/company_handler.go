package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/lxhallazgos/internal/application/usecase"
)

// CompanyHandler maneja las peticiones HTTP para el directorio de empresas.
type CompanyHandler struct {
	uc *usecase.CompanyUseCase
}

// NewCompanyHandler construye el handler inyectando el caso de uso.
func NewCompanyHandler(uc *usecase.CompanyUseCase) *CompanyHandler {
	return &CompanyHandler{uc: uc}
}

// ListPublic godoc
// @Summary      Directorio público de empresas
// @Tags         empresas
// @Produce      json
// @Success      200  {array}   dto.CompanyPayload
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/empresas/public [get]
func (h *CompanyHandler) ListPublic(c *fiber.Ctx) error {
	out, err := h.uc.ListPublic(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
