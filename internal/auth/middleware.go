package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/krakatau-dev/helpdesk/internal/domain"
	"github.com/krakatau-dev/helpdesk/internal/repository"
	apperrors "github.com/krakatau-dev/helpdesk/pkg/util"
)

const actorKey = "auth_actor"

// ActorMiddleware validates bearer tokens and resolves the acting
// identity once per request.
type ActorMiddleware struct {
	tokens      *TokenManager
	technicians repository.TechnicianRepository
}

// NewActorMiddleware constructs middleware.
func NewActorMiddleware(tokens *TokenManager, technicians repository.TechnicianRepository) *ActorMiddleware {
	return &ActorMiddleware{tokens: tokens, technicians: technicians}
}

// Handle enforces authentication for protected routes.
func (m *ActorMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}
	if claims.ActorID == "" {
		return apperrors.NewUnauthorized("token missing subject")
	}

	actor := domain.Actor{Type: claims.ActorType, ID: claims.ActorID}

	switch claims.ActorType {
	case domain.ActorTypeUser, domain.ActorTypeAdminHelpdesk, domain.ActorTypeAdminAplikasi:
		// Identity service vouches for these; no local record exists.
	case domain.ActorTypeTechnician:
		if _, err := m.technicians.GetByNIP(c.Context(), claims.ActorID); err != nil {
			if err == pgx.ErrNoRows {
				return apperrors.NewUnauthorized("technician not found")
			}
			return apperrors.MapError(err)
		}
	default:
		return apperrors.NewUnauthorized("unknown actor type")
	}

	c.Locals(actorKey, actor)
	return c.Next()
}

// ActorFromContext retrieves the authenticated actor.
func ActorFromContext(c *fiber.Ctx) (domain.Actor, bool) {
	val := c.Locals(actorKey)
	if val == nil {
		return domain.Actor{}, false
	}
	actor, ok := val.(domain.Actor)
	return actor, ok
}
