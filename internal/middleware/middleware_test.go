package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/stayhub/service-booking/internal/auth"
	"github.com/stayhub/service-booking/pkg/domain"
	"github.com/stayhub/service-booking/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setIdentity(userID uuid.UUID, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ctxUserIDKey, userID)
		c.Set(ctxUserRoleKey, role)
		c.Next()
	}
}

func okHandler(c *gin.Context) {
	response.Success(c, gin.H{"ok": true})
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) response.Envelope {
	t.Helper()
	var env response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestRequireRole_ForbiddenEnvelope(t *testing.T) {
	router := gin.New()
	router.GET("/x", setIdentity(uuid.New(), auth.RoleGuest), RequireRole(auth.RoleHost), okHandler)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusForbidden, w.Code)
	env := decodeEnvelope(t, w)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, domain.CodeForbidden, env.Error.Code)
}

func TestRequireRole_AdminBypasses(t *testing.T) {
	router := gin.New()
	router.GET("/x", setIdentity(uuid.New(), auth.RoleAdmin), RequireRole(auth.RoleHost), okHandler)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRole_MissingIdentity(t *testing.T) {
	router := gin.New()
	router.GET("/x", RequireRole(auth.RoleHost), okHandler)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	env := decodeEnvelope(t, w)
	require.NotNil(t, env.Error)
	assert.Equal(t, domain.CodeUnauthorized, env.Error.Code)
}

func TestRecoveryMiddleware_Envelope(t *testing.T) {
	router := gin.New()
	router.Use(RecoveryMiddleware(zap.NewNop()))
	router.GET("/boom", func(c *gin.Context) { panic("kaboom") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	env := decodeEnvelope(t, w)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, domain.CodeInternal, env.Error.Code)
}

func TestAuthMiddleware(t *testing.T) {
	jwtManager := auth.NewJWTManager("test-secret", 15*time.Minute)
	userID := uuid.New()

	router := gin.New()
	router.GET("/x", AuthMiddleware(jwtManager), func(c *gin.Context) {
		id, ok := GetUserID(c)
		require.True(t, ok)
		role, _ := GetUserRole(c)
		response.Success(c, gin.H{"user_id": id, "role": role})
	})

	t.Run("valid token", func(t *testing.T) {
		token, err := jwtManager.Generate(userID, auth.RoleHost)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing header", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		env := decodeEnvelope(t, w)
		require.NotNil(t, env.Error)
		assert.Equal(t, domain.CodeUnauthorized, env.Error.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
