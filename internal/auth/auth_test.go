package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

var testConfig = Config{Secret: "test-secret", Issuer: "wellnessmate.identity"}

func sign(t *testing.T, claims jwt.MapClaims, secret string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func validClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"sub":    "user-1",
		"iss":    testConfig.Issuer,
		"exp":    time.Now().Add(time.Hour).Unix(),
		"scopes": []string{ScopeRecordsRead, ScopeProfileWrite},
	}
}

func TestParseValidToken(t *testing.T) {
	claims, err := Parse(sign(t, validClaims(), testConfig.Secret), testConfig)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.Subject)
	require.True(t, claims.HasScope(ScopeRecordsRead))
	require.False(t, claims.HasScope(ScopeRecordsWrite))
	require.True(t, claims.HasAnyScope(ScopeRecordsWrite, ScopeProfileWrite))
}

func TestParseSpaceSeparatedScopes(t *testing.T) {
	raw := validClaims()
	raw["scopes"] = "records:read  records:write"
	claims, err := Parse(sign(t, raw, testConfig.Secret), testConfig)
	require.NoError(t, err)
	require.True(t, claims.HasScope(ScopeRecordsWrite))
	require.Len(t, claims.Scopes, 2)
}

func TestParseOAuthScopeClaimDropsForeignGrants(t *testing.T) {
	raw := validClaims()
	delete(raw, "scopes")
	raw["scope"] = "profile:read openid billing:admin"
	claims, err := Parse(sign(t, raw, testConfig.Secret), testConfig)
	require.NoError(t, err)
	require.Equal(t, map[string]struct{}{ScopeProfileRead: {}}, claims.Scopes)
	require.False(t, claims.HasScope("billing:admin"))
}

func TestNilClaimsGrantNothing(t *testing.T) {
	var claims *Claims
	require.False(t, claims.HasScope(ScopeRecordsRead))
	require.False(t, claims.HasAnyScope(ScopeRecordsRead, ScopeProfileRead))
}

func TestParseRejectsNoneAlgorithm(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, validClaims()).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = Parse(token, testConfig)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejects(t *testing.T) {
	expired := validClaims()
	expired["exp"] = time.Now().Add(-time.Minute).Unix()

	wrongIssuer := validClaims()
	wrongIssuer["iss"] = "someone-else"

	noSubject := validClaims()
	delete(noSubject, "sub")

	noExpiry := validClaims()
	delete(noExpiry, "exp")

	cases := map[string]string{
		"expired":      sign(t, expired, testConfig.Secret),
		"wrong issuer": sign(t, wrongIssuer, testConfig.Secret),
		"no subject":   sign(t, noSubject, testConfig.Secret),
		"no expiry":    sign(t, noExpiry, testConfig.Secret),
		"wrong secret": sign(t, validClaims(), "other-secret"),
		"garbage":      "not.a.jwt",
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(token, testConfig)
			require.ErrorIs(t, err, ErrInvalidToken)
		})
	}

	_, err := Parse("  ", testConfig)
	require.ErrorIs(t, err, ErrMissingToken)
}

func TestMiddleware(t *testing.T) {
	var seen *Claims
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := NewMiddleware(testConfig).Wrap(next)
	token := sign(t, validClaims(), testConfig.Secret)

	t.Run("health skipped", func(t *testing.T) {
		seen = nil
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		require.Equal(t, http.StatusOK, rr.Code)
		require.Nil(t, seen)
	})

	t.Run("missing token", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/dashboard", nil))
		require.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("bearer token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/dashboard", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		require.Equal(t, http.StatusOK, rr.Code)
		require.NotNil(t, seen)
		require.Equal(t, "user-1", seen.Subject)
	})

	t.Run("non bearer scheme", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/dashboard", nil)
		req.Header.Set("Authorization", "Basic abc")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		require.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("query token only on upgrade", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/stream?access_token="+token, nil))
		require.Equal(t, http.StatusUnauthorized, rr.Code)

		seen = nil
		req := httptest.NewRequest(http.MethodGet, "/v1/stream?access_token="+token, nil)
		req.Header.Set("Upgrade", "websocket")
		rr = httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		require.Equal(t, http.StatusOK, rr.Code)
		require.NotNil(t, seen)
	})
}
