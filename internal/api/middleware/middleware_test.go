package middleware_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis_rate/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safient/safient-escrow/internal/api/middleware"
	apierrors "github.com/safient/safient-escrow/internal/api/shared/errors"
	"github.com/safient/safient-escrow/internal/logger"
	"github.com/safient/safient-escrow/internal/mocks"
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{Debug: false}); err != nil {
		panic(err)
	}
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	handlers = append(handlers, func(c *gin.Context) {
		authType, _ := c.Get(middleware.AUTH_TYPE_KEY)
		c.JSON(http.StatusOK, gin.H{"auth_type": authType})
	})
	router.GET("/test", handlers...)
	return router
}

func doRequest(router *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) apierrors.ErrorResponse {
	var resp apierrors.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func generateKeyPair(t *testing.T) (*rsa.PrivateKey, string) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	return key, string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))
}

func TestAuthenticate(t *testing.T) {
	privateKey, publicKeyPEM := generateKeyPair(t)
	cfg := middleware.AuthConfig{JWTPublicKey: publicKeyPEM, APIKeys: []string{"key-1"}}

	sign := func(claims jwt.RegisteredClaims) string {
		token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(privateKey)
		require.NoError(t, err)
		return token
	}

	t.Run("valid jwt", func(t *testing.T) {
		token := sign(jwt.RegisteredClaims{
			Subject:   "ops",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		})
		result := middleware.Authenticate("Bearer "+token, cfg)
		require.True(t, result.Success, "%v", result.Error)
		assert.Equal(t, middleware.AUTH_TYPE_JWT, result.AuthType)
		assert.Equal(t, "ops", result.AuthSubject)
	})

	t.Run("expired jwt", func(t *testing.T) {
		token := sign(jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour))})
		result := middleware.Authenticate("Bearer "+token, cfg)
		assert.False(t, result.Success)
	})

	t.Run("valid api key", func(t *testing.T) {
		result := middleware.Authenticate("ApiKey key-1", cfg)
		assert.True(t, result.Success)
		assert.Equal(t, middleware.AUTH_TYPE_APIKEY, result.AuthType)
	})

	t.Run("invalid api key", func(t *testing.T) {
		assert.False(t, middleware.Authenticate("ApiKey nope", cfg).Success)
	})

	t.Run("missing header", func(t *testing.T) {
		assert.False(t, middleware.Authenticate("", cfg).Success)
	})

	t.Run("unsupported scheme", func(t *testing.T) {
		assert.False(t, middleware.Authenticate("Basic dXNlcg==", cfg).Success)
	})
}

func TestAuthMiddleware(t *testing.T) {
	router := newRouter(middleware.Auth(middleware.AuthConfig{APIKeys: []string{"key-1"}}))

	w := doRequest(router, "ApiKey key-1")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"auth_type":"apikey"}`, w.Body.String())

	w = doRequest(router, "ApiKey wrong")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	resp := decodeError(t, w)
	assert.False(t, resp.Success)
	assert.Equal(t, apierrors.ErrCodeUnauthorized, resp.Error.Code)
}

func TestCronAuth(t *testing.T) {
	t.Run("no secret configured", func(t *testing.T) {
		router := newRouter(middleware.CronAuth("", middleware.AuthConfig{}))
		assert.Equal(t, http.StatusOK, doRequest(router, "").Code)
	})

	t.Run("matching secret", func(t *testing.T) {
		router := newRouter(middleware.CronAuth("cron-secret", middleware.AuthConfig{}))
		w := doRequest(router, "Bearer cron-secret")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"auth_type":"cron"}`, w.Body.String())
	})

	t.Run("wrong secret", func(t *testing.T) {
		router := newRouter(middleware.CronAuth("cron-secret", middleware.AuthConfig{}))
		w := doRequest(router, "Bearer guess")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, apierrors.ErrCodeUnauthorized, decodeError(t, w).Error.Code)
	})

	t.Run("api key accepted", func(t *testing.T) {
		router := newRouter(middleware.CronAuth("cron-secret", middleware.AuthConfig{APIKeys: []string{"key-1"}}))
		w := doRequest(router, "ApiKey key-1")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("no secret but api keys configured", func(t *testing.T) {
		router := newRouter(middleware.CronAuth("", middleware.AuthConfig{APIKeys: []string{"key-1"}}))
		assert.Equal(t, http.StatusUnauthorized, doRequest(router, "").Code)
		assert.Equal(t, http.StatusUnauthorized, doRequest(router, "Bearer ").Code)
		assert.Equal(t, http.StatusOK, doRequest(router, "ApiKey key-1").Code)
	})
}

func TestRecovery(t *testing.T) {
	router := gin.New()
	router.Use(middleware.Recovery())
	router.GET("/test", func(c *gin.Context) {
		panic("boom")
	})

	w := doRequest(router, "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, apierrors.ErrCodeInternalError, decodeError(t, w).Error.Code)
}

func TestRateLimiter_Local(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	clock := mocks.NewMockClock(ctrl)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	clock.EXPECT().Now().DoAndReturn(func() time.Time { return now }).AnyTimes()

	limiter := middleware.NewRateLimiter(middleware.RateLimitConfig{RequestsPerMinute: 60, Burst: 2}, nil, clock)
	router := newRouter(limiter.Middleware())

	assert.Equal(t, http.StatusOK, doRequest(router, "").Code)
	assert.Equal(t, http.StatusOK, doRequest(router, "").Code)

	w := doRequest(router, "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
	assert.Equal(t, apierrors.ErrCodeRateLimited, decodeError(t, w).Error.Code)

	// one token refills per second
	now = now.Add(time.Second)
	assert.Equal(t, http.StatusOK, doRequest(router, "").Code)

	// other clients have their own budget
	allowed, _ := limiter.Allow(context.Background(), "10.0.0.2")
	assert.True(t, allowed)
}

func TestRateLimiter_Distributed(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	distributed := mocks.NewMockRedisRateLimiter(ctrl)
	clock := mocks.NewMockClock(ctrl)
	limit := redis_rate.Limit{Rate: 30, Burst: 5, Period: time.Minute}

	gomock.InOrder(
		distributed.EXPECT().
			Allow(gomock.Any(), "safient:ratelimit:10.0.0.1", limit).
			Return(&redis_rate.Result{Limit: limit, Allowed: 1, Remaining: 4}, nil),
		distributed.EXPECT().
			Allow(gomock.Any(), "safient:ratelimit:10.0.0.1", limit).
			Return(&redis_rate.Result{Limit: limit, Allowed: 0, RetryAfter: 2 * time.Second}, nil),
	)

	limiter := middleware.NewRateLimiter(middleware.RateLimitConfig{RequestsPerMinute: 30, Burst: 5, KeyPrefix: "safient:"}, distributed, clock)

	allowed, _ := limiter.Allow(context.Background(), "10.0.0.1")
	assert.True(t, allowed)

	allowed, retryAfter := limiter.Allow(context.Background(), "10.0.0.1")
	assert.False(t, allowed)
	assert.Equal(t, 2*time.Second, retryAfter)
}

func TestRateLimiter_FallsBackWhenRedisFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	distributed := mocks.NewMockRedisRateLimiter(ctrl)
	clock := mocks.NewMockClock(ctrl)
	clock.EXPECT().Now().Return(time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)).AnyTimes()
	distributed.EXPECT().Allow(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("connection refused")).Times(2)

	limiter := middleware.NewRateLimiter(middleware.RateLimitConfig{RequestsPerMinute: 60, Burst: 1}, distributed, clock)

	allowed, _ := limiter.Allow(context.Background(), "10.0.0.1")
	assert.True(t, allowed)
	allowed, _ = limiter.Allow(context.Background(), "10.0.0.1")
	assert.False(t, allowed)
}
