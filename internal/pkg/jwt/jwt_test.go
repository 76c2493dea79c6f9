package jwt

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/creator-payroll-go/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-jwt"

func TestJWTService_GenerateAndParse(t *testing.T) {
	svc := NewJWTService(testSecret, time.Hour)

	token, expiresAt, err := svc.GenerateAccessToken("user-1", "agency-1", user.RoleAdmin)
	require.NoError(t, err)
	assert.Greater(t, expiresAt, time.Now().Unix())

	decoded, err := svc.JWTAuth().Decode(token)
	require.NoError(t, err)

	claims, err := svc.ParseClaims(context.Background(), decoded)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "agency-1", claims.AgencyID)
	assert.Equal(t, user.RoleAdmin, claims.Role)
}

func TestJWTService_ParseClaims_Rejects(t *testing.T) {
	svc := NewJWTService(testSecret, time.Hour)
	ja := svc.JWTAuth()

	tests := []struct {
		name    string
		claims  map[string]interface{}
		wantErr error
	}{
		{"refresh token", map[string]interface{}{"user_id": "u", "agency_id": "a", "role": "ADMIN", "type": "refresh"}, user.ErrInvalidToken},
		{"missing user", map[string]interface{}{"agency_id": "a", "role": "ADMIN", "type": "access"}, user.ErrInvalidToken},
		{"missing agency", map[string]interface{}{"user_id": "u", "role": "ADMIN", "type": "access"}, user.ErrAgencyIDRequired},
		{"unknown role", map[string]interface{}{"user_id": "u", "agency_id": "a", "role": "owner", "type": "access"}, user.ErrInsufficientPermissions},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, _, err := ja.Encode(tt.claims)
			require.NoError(t, err)

			_, err = svc.ParseClaims(context.Background(), token)

			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestJWTService_WrongSecret(t *testing.T) {
	token, _, err := NewJWTService("other-secret", time.Hour).GenerateAccessToken("u", "a", user.RoleAdmin)
	require.NoError(t, err)

	_, err = NewJWTService(testSecret, time.Hour).JWTAuth().Decode(token)

	assert.Error(t, err)
}
