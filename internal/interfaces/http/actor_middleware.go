package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/almacen-api/internal/application/dto"
)

// Locals key para el actor en Fiber.
const LocalActorID = "actor_id"

// HeaderActorID identifica quién inicia la operación. Lo fija el gateway que
// autentica (fuera de este servicio); aquí solo se confía y se propaga al libro.
const HeaderActorID = "X-Actor-Id"

// ActorMiddleware extrae el actor del header a c.Locals. Las rutas de escritura
// lo exigen; las de lectura lo aceptan opcionalmente.
func ActorMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor := strings.TrimSpace(c.Get(HeaderActorID))
		if actor != "" {
			c.Locals(LocalActorID, actor)
		}
		return c.Next()
	}
}

// RequireActor corta con 401 si no llegó actor (rutas que mutan stock).
func RequireActor() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if GetActor(c) == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Code: "MISSING_ACTOR", Message: "header " + HeaderActorID + " requerido",
			})
		}
		return c.Next()
	}
}

// GetActor devuelve el actor del contexto (después del middleware).
func GetActor(c *fiber.Ctx) string {
	v := c.Locals(LocalActorID)
	if v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}
