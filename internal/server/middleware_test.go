package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"auction-engine/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

const middlewareTestSecret = "middleware-test-secret"

func newProtectedRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	verifier := auth.NewJWTVerifier(middlewareTestSecret)
	router := gin.New()
	router.POST("/protected", RequireRole(verifier, auth.RoleDealer, auth.RoleAdmin), func(c *gin.Context) {
		identity, ok := CallerIdentity(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"user_id": identity.UserID})
	})
	return router
}

func TestRequireRole(t *testing.T) {
	router := newProtectedRouter(t)

	dealerToken, err := auth.IssueToken(middlewareTestSecret, 42, auth.RoleDealer)
	require.NoError(t, err)
	sellerToken, err := auth.IssueToken(middlewareTestSecret, 7, auth.RoleSeller)
	require.NoError(t, err)

	tests := []struct {
		name           string
		header         string
		query          string
		expectedStatus int
	}{
		{
			name:           "dealer_via_bearer_header",
			header:         "Bearer " + dealerToken,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "dealer_via_query_token",
			query:          dealerToken,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "missing_credentials",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "garbage_token",
			header:         "Bearer not.a.jwt",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "wrong_role",
			header:         "Bearer " + sellerToken,
			expectedStatus: http.StatusForbidden,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := "/protected"
			if tc.query != "" {
				path += "?token=" + tc.query
			}
			req := httptest.NewRequest(http.MethodPost, path, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			require.Equal(t, tc.expectedStatus, w.Code)
		})
	}
}

func TestCallerIdentity_ExposesVerifiedUser(t *testing.T) {
	router := newProtectedRouter(t)

	token, err := auth.IssueToken(middlewareTestSecret, 42, auth.RoleAdmin)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"user_id": 42}`, w.Body.String())
}
