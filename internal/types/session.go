package types

import (
	"github.com/google/uuid"
)

// TokenInfo represents validated session token information
type TokenInfo struct {
	UserID uuid.UUID
	Email  string
	Role   string
	Valid  bool
}
