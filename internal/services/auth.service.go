package services

import (
	"context"
	"errors"
	"time"
	"topup/config"
	"topup/internal/constants"
	"topup/internal/database"
	"topup/internal/models"
	"topup/internal/types"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	TOKEN_COOKIE_NAME   = "token"
	MSG_INVALID_TOKEN   = "Invalid or expired token"
	MSG_INVALID_CREDS   = "Invalid credentials"
	MSG_INVALID_SEC_KEY = "Invalid security key"
)

// SessionClaims are the claims carried by a session token.
type SessionClaims struct {
	UserID uuid.UUID   `json:"userId"`
	Email  string      `json:"email"`
	Role   models.Role `json:"role"`
	jwt.RegisteredClaims
}

func (c *SessionClaims) TokenInfo() types.TokenInfo {
	return types.TokenInfo{
		UserID: c.UserID,
		Email:  c.Email,
		Role:   string(c.Role),
		Valid:  true,
	}
}

// RevocationStore remembers tokens that were logged out before expiry.
type RevocationStore interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type cacheRevocations struct {
	client database.CacheClient
}

func NewCacheRevocations(client database.CacheClient) RevocationStore {
	return &cacheRevocations{client: client}
}

func (r *cacheRevocations) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	return database.NewCacheBuilder(r.client, tokenID).
		WithHash(constants.RevokedTokenPrefix).
		WithValue("1").
		WithTTL(ttl).
		WithContext(ctx).
		Set()
}

func (r *cacheRevocations) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	return database.NewCacheBuilder(r.client, tokenID).
		WithHash(constants.RevokedTokenPrefix).
		WithContext(ctx).
		Exists()
}

type AuthService struct {
	secret       []byte
	expiry       time.Duration
	securityKeys map[models.Role]string
	revocations  RevocationStore
	now          func() time.Time
	log          logger.Logger
}

func NewAuthService(cfg config.Config, revocations RevocationStore) *AuthService {
	return &AuthService{
		secret: []byte(cfg.JWTSecret),
		expiry: cfg.JWTExpiry(),
		securityKeys: map[models.Role]string{
			models.RoleAdmin:    cfg.SecurityKeyAdmin,
			models.RoleOwner:    cfg.SecurityKeyOwner,
			models.RoleOperator: cfg.SecurityKeyOperator,
		},
		revocations: revocations,
		now:         time.Now,
		log:         logger.New("AuthService"),
	}
}

// CheckSecurityKey enforces the shared secret that admin, owner and operator
// registrations must present. Viewers register without one.
func (s *AuthService) CheckSecurityKey(role models.Role, key string) error {
	expected, required := s.securityKeys[role]
	if !required {
		return nil
	}
	if expected == "" || key != expected {
		return types.Forbidden(MSG_INVALID_SEC_KEY)
	}
	return nil
}

func (s *AuthService) HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", s.log.Function("HashPassword").Err("failed to hash password", err)
	}
	return string(hashed), nil
}

func (s *AuthService) CheckPassword(user *models.User, password string) error {
	if user == nil ||
		bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return types.Unauthorized(MSG_INVALID_CREDS)
	}
	return nil
}

// Issue signs a session token for user.
func (s *AuthService) Issue(user *models.User) (string, *SessionClaims, error) {
	now := s.now()
	claims := &SessionClaims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, s.log.Function("Issue").Err("failed to sign token", err, "userID", user.ID)
	}
	return token, claims, nil
}

// Validate parses token and rejects it when it is malformed, expired, or
// was revoked by a logout.
func (s *AuthService) Validate(ctx context.Context, token string) (*SessionClaims, error) {
	log := s.log.TraceFromContext(ctx).Function("Validate")

	if token == "" {
		return nil, types.Unauthorized("")
	}

	claims := &SessionClaims{}
	parsed, err := jwt.ParseWithClaims(
		token,
		claims,
		func(t *jwt.Token) (any, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid || claims.UserID == uuid.Nil {
		return nil, types.Unauthorized(MSG_INVALID_TOKEN)
	}

	if s.revocations != nil && claims.ID != "" {
		revoked, err := s.revocations.IsRevoked(ctx, claims.ID)
		if err != nil {
			log.Warn("failed to check token revocation", "tokenID", claims.ID, "error", err)
		}
		if revoked {
			return nil, types.Unauthorized(MSG_INVALID_TOKEN)
		}
	}

	return claims, nil
}

// Revoke blocks claims until they would have expired anyway.
func (s *AuthService) Revoke(ctx context.Context, claims *SessionClaims) error {
	if s.revocations == nil || claims == nil || claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}

	ttl := claims.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}

	if err := s.revocations.Revoke(ctx, claims.ID, ttl); err != nil {
		return s.log.TraceFromContext(ctx).Function("Revoke").
			Err("failed to revoke token", err, "tokenID", claims.ID)
	}
	return nil
}

// IsInvalidToken reports whether err came from Validate rejecting a token.
func IsInvalidToken(err error) bool {
	var appErr *types.AppError
	return errors.As(err, &appErr) && appErr.Kind == types.KindUnauthorized
}
