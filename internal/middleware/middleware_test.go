package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/danceclub-booking/internal/config"
	"github.com/iliyamo/danceclub-booking/internal/model"
)

const secret = "test-secret"

func sign(t *testing.T, method jwt.SigningMethod, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func serve(h echo.HandlerFunc, token string, mw ...echo.MiddlewareFunc) *httptest.ResponseRecorder {
	e := echo.New()
	e.GET("/x", h, mw...)
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuthPopulatesActor(t *testing.T) {
	tok := sign(t, jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "42", "role": "Leader", "dance_type": "breaking",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	var got model.Actor
	rec := serve(func(c echo.Context) error {
		var err error
		got, err = ActorFrom(c)
		require.NoError(t, err)
		return c.NoContent(http.StatusNoContent)
	}, tok, JWTAuth(secret))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, model.Actor{ID: 42, Role: model.RoleLeader, DanceType: "breaking"}, got)
}

func TestJWTAuthRejects(t *testing.T) {
	ok := func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }
	exp := time.Now().Add(time.Hour).Unix()

	assert.Equal(t, http.StatusUnauthorized, serve(ok, "", JWTAuth(secret)).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(ok, "garbage", JWTAuth(secret)).Code)

	expired := sign(t, jwt.SigningMethodHS256, jwt.MapClaims{"sub": "1", "role": "member", "exp": time.Now().Add(-time.Hour).Unix()})
	assert.Equal(t, http.StatusUnauthorized, serve(ok, expired, JWTAuth(secret)).Code)

	noExp := sign(t, jwt.SigningMethodHS256, jwt.MapClaims{"sub": "1", "role": "member"})
	assert.Equal(t, http.StatusUnauthorized, serve(ok, noExp, JWTAuth(secret)).Code)

	wrongAlg := sign(t, jwt.SigningMethodHS512, jwt.MapClaims{"sub": "1", "role": "member", "exp": exp})
	assert.Equal(t, http.StatusUnauthorized, serve(ok, wrongAlg, JWTAuth(secret)).Code)

	badSub := sign(t, jwt.SigningMethodHS256, jwt.MapClaims{"sub": "abc", "role": "member", "exp": exp})
	assert.Equal(t, http.StatusUnauthorized, serve(ok, badSub, JWTAuth(secret)).Code)
}

func TestRequireRole(t *testing.T) {
	ok := func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }
	exp := time.Now().Add(time.Hour).Unix()
	gate := []echo.MiddlewareFunc{JWTAuth(secret), RequireRole(model.RoleAdmin, model.RoleLeader)}

	admin := sign(t, jwt.SigningMethodHS256, jwt.MapClaims{"sub": "1", "role": "ADMIN", "exp": exp})
	member := sign(t, jwt.SigningMethodHS256, jwt.MapClaims{"sub": "2", "role": "member", "exp": exp})

	assert.Equal(t, http.StatusNoContent, serve(ok, admin, gate...).Code)
	assert.Equal(t, http.StatusForbidden, serve(ok, member, gate...).Code)
}

func TestUserIDFromClaimTypes(t *testing.T) {
	for _, v := range []any{uint64(7), 7, int64(7), float64(7), "7"} {
		id, err := userIDFrom(v)
		require.NoError(t, err)
		assert.Equal(t, uint64(7), id)
	}
	for _, v := range []any{nil, "", "-1", 0, float64(-3)} {
		_, err := userIDFrom(v)
		assert.ErrorIs(t, err, ErrNoIdentity)
	}
}

func TestDisabledCacheAndLimiterPassThrough(t *testing.T) {
	rc := NewResponseCache(config.CacheConfig{Enabled: true}, nil)
	calls := 0
	h := func(c echo.Context) error { calls++; return c.String(http.StatusOK, "ok") }

	rec := serve(h, "", rc.Middleware(), rc.InvalidateOnWrite(), RateLimit(config.RateLimitConfig{Enabled: true}, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Cache"))
	assert.Equal(t, 1, calls)
	assert.NoError(t, rc.Purge(context.Background()))
}

func TestPayloadRoundTrip(t *testing.T) {
	hdr := http.Header{"Content-Type": []string{"application/json"}}
	bs, err := encodePayload(http.StatusOK, hdr, []byte(`{"items":[]}`))
	require.NoError(t, err)
	status, gotHdr, body, ok := decodePayload(bs)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "application/json", gotHdr.Get("Content-Type"))
	assert.JSONEq(t, `{"items":[]}`, string(body))

	_, _, _, ok = decodePayload([]byte{0, 1})
	assert.False(t, ok)
}
