package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ateliepro/atelier-api/internal/application/dto"
)

const (
	companyIDHeader = "X-Company-ID"
	actorHeader     = "X-Actor"

	companyIDKey = "company_id"
	actorKey     = "actor"
)

// CompanyMiddleware exige el header X-Company-ID y lo deja en locals. La
// autenticación vive aguas arriba; acá solo se resuelve la empresa del request.
func CompanyMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		companyID := c.Get(companyIDHeader)
		if companyID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Code: "MISSING_COMPANY", Message: "falta el header " + companyIDHeader,
			})
		}
		c.Locals(companyIDKey, companyID)
		c.Locals(actorKey, c.Get(actorHeader))
		return c.Next()
	}
}

// GetCompanyID devuelve la empresa del request; vacío si el middleware no corrió.
func GetCompanyID(c *fiber.Ctx) string {
	if v, ok := c.Locals(companyIDKey).(string); ok {
		return v
	}
	return ""
}

// GetActor devuelve el actor declarado por el cliente (opcional).
func GetActor(c *fiber.Ctx) string {
	if v, ok := c.Locals(actorKey).(string); ok {
		return v
	}
	return ""
}
