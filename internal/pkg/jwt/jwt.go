package jwt

import (
	"context"
	"time"

	"github.com/cmlabs-hris/creator-payroll-go/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const tokenTypeAccess = "access"

type Service interface {
	GenerateAccessToken(userID string, agencyID string, role user.Role) (token string, expiresAt int64, err error)
	ParseClaims(ctx context.Context, token jwt.Token) (user.Claims, error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	accessTokenExpiration time.Duration
	tokenAuth             *jwtauth.JWTAuth
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

// NewJWTService verifies HS256 tokens signed with secretKey. Tokens are
// normally issued by the identity provider; GenerateAccessToken exists for
// tooling and tests.
func NewJWTService(secretKey string, accessTokenExpiration time.Duration) Service {
	return &JWTService{
		accessTokenExpiration: accessTokenExpiration,
		tokenAuth:             jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

func (j *JWTService) GenerateAccessToken(userID string, agencyID string, role user.Role) (token string, expiresAt int64, err error) {
	expiresAt = time.Now().Add(j.accessTokenExpiration).Unix()

	claims := map[string]any{
		"user_id":   userID,
		"agency_id": agencyID,
		"role":      string(role),
		"type":      tokenTypeAccess,
		"exp":       expiresAt,
	}

	_, tokenString, err := j.tokenAuth.Encode(claims)
	return tokenString, expiresAt, err
}

// ParseClaims extracts the agency identity from a verified access token.
func (j *JWTService) ParseClaims(ctx context.Context, token jwt.Token) (user.Claims, error) {
	if token == nil {
		return user.Claims{}, user.ErrInvalidToken
	}

	claims, err := token.AsMap(ctx)
	if err != nil {
		return user.Claims{}, user.ErrInvalidToken
	}

	tokenType, ok := claims["type"].(string)
	if !ok || tokenType != tokenTypeAccess {
		return user.Claims{}, user.ErrInvalidToken
	}

	userID, _ := claims["user_id"].(string)
	agencyID, _ := claims["agency_id"].(string)
	roleStr, _ := claims["role"].(string)

	if userID == "" {
		return user.Claims{}, user.ErrInvalidToken
	}
	if agencyID == "" {
		return user.Claims{}, user.ErrAgencyIDRequired
	}
	role, err := user.ParseRole(roleStr)
	if err != nil {
		return user.Claims{}, user.ErrInsufficientPermissions
	}

	return user.Claims{UserID: userID, AgencyID: agencyID, Role: role}, nil
}
