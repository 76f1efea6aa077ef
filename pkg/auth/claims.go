package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/stockroomhq/stockroom-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	TenantID uuid.UUID
	Actor    string
	Source   enums.ReservationSource
	JTI      string
}

// AccessTokenClaims represents the typed JWT issued to API callers. Every
// token is scoped to exactly one tenant.
type AccessTokenClaims struct {
	TenantID uuid.UUID               `json:"tenant_id"`
	Actor    string                  `json:"actor"`
	Source   enums.ReservationSource `json:"source"`
	jwt.RegisteredClaims
}
