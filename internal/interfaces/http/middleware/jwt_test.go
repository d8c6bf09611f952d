package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/recyclemart/backend/internal/domain/identity"
	"github.com/recyclemart/backend/internal/infrastructure/auth"
	"github.com/recyclemart/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestJWTService() *auth.JWTService {
	// RefreshSecret left empty so it falls back to Secret; the type check
	// on token_type is what separates the two token kinds here.
	cfg := config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "test-issuer",
		MaxRefreshCount:        10,
	}
	return auth.NewJWTService(cfg)
}

func newManagerTokenPair(t *testing.T, jwtService *auth.JWTService) (*auth.TokenPair, auth.GenerateTokenInput) {
	t.Helper()
	input := auth.GenerateTokenInput{
		UserID:           uuid.New(),
		Email:            "manager@example.com",
		Role:             "buyer",
		ManagedClientIDs: []uuid.UUID{uuid.New(), uuid.New()},
	}
	pair, err := jwtService.GenerateTokenPair(input)
	require.NoError(t, err)
	return pair, input
}

func newAuthRouter(cfg JWTMiddlewareConfig, onRequest gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(JWTAuth(cfg))
	router.GET("/test", onRequest)
	return router
}

func TestJWTAuth_ValidToken(t *testing.T) {
	jwtService := newTestJWTService()
	pair, input := newManagerTokenPair(t, jwtService)

	router := newAuthRouter(JWTMiddlewareConfig{JWTService: jwtService}, func(c *gin.Context) {
		claims := GetJWTClaims(c)
		require.NotNil(t, claims)
		assert.Equal(t, input.UserID.String(), claims.UserID)
		assert.Equal(t, "buyer", claims.Role)

		actor, ok := GetActor(c)
		require.True(t, ok)
		assert.Equal(t, input.UserID, actor.ID)
		assert.True(t, actor.IsAccountManager())
		assert.Equal(t, identity.SideBuyer, actor.Role)
		for _, clientID := range input.ManagedClientIDs {
			assert.True(t, actor.ManagesClient(clientID))
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestJWTAuth_ClientToken(t *testing.T) {
	jwtService := newTestJWTService()
	input := auth.GenerateTokenInput{
		UserID:     uuid.New(),
		Email:      "client@example.com",
		ClientType: "supplier",
	}
	pair, err := jwtService.GenerateTokenPair(input)
	require.NoError(t, err)

	router := newAuthRouter(JWTMiddlewareConfig{JWTService: jwtService}, func(c *gin.Context) {
		actor, ok := GetActor(c)
		require.True(t, ok)
		assert.True(t, actor.IsClient())
		assert.False(t, actor.IsAccountManager())
		assert.Equal(t, identity.SideSupplier, actor.ClientType)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestJWTAuth_RejectsBadHeaders(t *testing.T) {
	jwtService := newTestJWTService()
	pair, _ := newManagerTokenPair(t, jwtService)

	tests := []struct {
		name   string
		header string
	}{
		{name: "missing header", header: ""},
		{name: "missing bearer prefix", header: pair.AccessToken},
		{name: "empty token", header: "Bearer "},
		{name: "garbage token", header: "Bearer not-a-jwt"},
	}

	router := newAuthRouter(JWTMiddlewareConfig{JWTService: jwtService}, func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestJWTAuth_RejectsRefreshToken(t *testing.T) {
	jwtService := newTestJWTService()
	pair, _ := newManagerTokenPair(t, jwtService)

	router := newAuthRouter(JWTMiddlewareConfig{JWTService: jwtService}, func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer "+pair.RefreshToken)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_TOKEN_TYPE")
}

func TestJWTAuth_BlacklistedToken(t *testing.T) {
	jwtService := newTestJWTService()
	pair, _ := newManagerTokenPair(t, jwtService)

	claims, err := jwtService.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)

	blacklist := auth.NewInMemoryTokenBlacklist()
	require.NoError(t, blacklist.AddToBlacklist(context.Background(), claims.ID, time.Minute))

	router := newAuthRouter(JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: blacklist,
	}, func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "TOKEN_REVOKED")
}

func TestJWTAuth_UserInvalidation(t *testing.T) {
	jwtService := newTestJWTService()
	pair, input := newManagerTokenPair(t, jwtService)

	blacklist := auth.NewInMemoryTokenBlacklist()
	require.NoError(t, blacklist.AddUserTokensToBlacklist(context.Background(),
		input.UserID.String(), time.Minute))

	router := newAuthRouter(JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: blacklist,
	}, func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuth_SkipPaths(t *testing.T) {
	jwtService := newTestJWTService()

	router := gin.New()
	router.Use(JWTAuth(JWTMiddlewareConfig{
		JWTService:       jwtService,
		SkipPaths:        []string{"/public"},
		SkipPathPrefixes: []string{"/auth/register"},
	}))
	router.GET("/public", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/auth/register/client", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/private", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/public", "/auth/register/client"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}

	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetActor_Unset(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	_, ok := GetActor(c)
	assert.False(t, ok)
	assert.Nil(t, GetJWTClaims(c))
}
