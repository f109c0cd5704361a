package auth_test

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/GharOffice/docu-flow-realty-hub/internal/auth"
	"github.com/GharOffice/docu-flow-realty-hub/internal/config"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// identityRouter 返回当前用户 ID 的测试路由
func identityRouter(middleware gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware)
	router.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id":     c.GetString("user_id"),
			"ctx_user_id": auth.UserIDFromContext(c.Request.Context()),
			"username":    c.GetString("username"),
		})
	})
	return router
}

func getJSON(t *testing.T, router http.Handler, req *http.Request) (int, map[string]interface{}) {
	t.Helper()
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

// TestHeaderAuthMiddleware 测试请求头身份
func TestHeaderAuthMiddleware(t *testing.T) {
	router := identityRouter(auth.HeaderAuthMiddleware())

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(auth.UserIDHeader, "alice")
	code, body := getJSON(t, router, req)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "alice", body["user_id"])
	assert.Equal(t, "alice", body["ctx_user_id"])

	code, _ = getJSON(t, router, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, code)

	// 非 WebSocket 请求不接受查询参数
	code, _ = getJSON(t, router, httptest.NewRequest(http.MethodGet, "/me?user_id=alice", nil))
	assert.Equal(t, http.StatusUnauthorized, code)
}

// keycloakFixture 模拟 Keycloak 的签名密钥和 JWKS 端点
type keycloakFixture struct {
	key       *rsa.PrivateKey
	server    *httptest.Server
	validator *auth.KeycloakTokenValidator
	issuer    string
}

func newKeycloakFixture(t *testing.T) *keycloakFixture {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	jwks := map[string]interface{}{
		"keys": []map[string]string{{
			"kid": "test-key",
			"kty": "RSA",
			"use": "sig",
			"n":   base64.RawURLEncoding.EncodeToString(key.PublicKey.N.Bytes()),
			"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.PublicKey.E)).Bytes()),
		}},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/realms/docu/protocol/openid-connect/certs", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(jwks)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	issuer := server.URL + "/realms/docu"
	return &keycloakFixture{
		key:       key,
		server:    server,
		issuer:    issuer,
		validator: auth.NewKeycloakTokenValidator(config.KeycloakConfig{Issuer: issuer}),
	}
}

func (f *keycloakFixture) sign(t *testing.T, issuer, sub string, expiresIn time.Duration) string {
	t.Helper()
	claims := auth.KeycloakClaims{
		Sub:               sub,
		PreferredUsername: "alice.agent",
		Email:             "alice@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = "test-key"
	signed, err := token.SignedString(f.key)
	require.NoError(t, err)
	return signed
}

// TestKeycloakTokenValidator 测试 JWT 校验
func TestKeycloakTokenValidator(t *testing.T) {
	f := newKeycloakFixture(t)
	assert.Equal(t, f.issuer, f.validator.Issuer())

	claims, err := f.validator.ValidateToken(f.sign(t, f.issuer, "user-1", time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Sub)
	assert.Equal(t, "alice.agent", claims.PreferredUsername)

	_, err = f.validator.ValidateToken(f.sign(t, f.issuer, "user-1", -time.Hour))
	assert.Error(t, err, "expired")

	_, err = f.validator.ValidateToken(f.sign(t, "https://other.example.com", "user-1", time.Hour))
	assert.Error(t, err, "wrong issuer")

	_, err = f.validator.ValidateToken("not-a-token")
	assert.Error(t, err)
}

// TestKeycloakAuthMiddleware 测试 Bearer Token 认证
func TestKeycloakAuthMiddleware(t *testing.T) {
	f := newKeycloakFixture(t)
	router := identityRouter(auth.KeycloakAuthMiddleware(f.validator))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+f.sign(t, f.issuer, "user-1", time.Hour))
	code, body := getJSON(t, router, req)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "user-1", body["user_id"])
	assert.Equal(t, "user-1", body["ctx_user_id"])
	assert.Equal(t, "alice.agent", body["username"])

	code, _ = getJSON(t, router, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, code)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	code, body = getJSON(t, router, req)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "invalid token", body["message"])
}
