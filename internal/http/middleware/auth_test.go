package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/yungbote/appregistry-backend/internal/platform/ctxutil"
	"github.com/yungbote/appregistry-backend/internal/platform/logger"
)

const testSecret = "unit-test-secret"

func signToken(t *testing.T, secret, subject string, exp time.Time) string {
	t.Helper()
	claims := Claims{
		Groups: []string{"ops"},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func authRouter(secret string, seen *string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(NewAuthMiddleware(logger.NewNop(), secret).RequireAuth())
	r.POST("/x", func(c *gin.Context) {
		*seen = ctxutil.SubjectOr(c.Request.Context(), "anonymous")
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestRequireAuth(t *testing.T) {
	cases := []struct {
		name    string
		secret  string
		token   string
		status  int
		subject string
	}{
		{name: "disabled", secret: "", status: http.StatusNoContent, subject: "anonymous"},
		{name: "missing token", secret: testSecret, status: http.StatusUnauthorized},
		{name: "valid token", secret: testSecret, token: signToken(t, testSecret, "alice", time.Now().Add(time.Hour)), status: http.StatusNoContent, subject: "alice"},
		{name: "wrong secret", secret: testSecret, token: signToken(t, "other", "alice", time.Now().Add(time.Hour)), status: http.StatusUnauthorized},
		{name: "expired", secret: testSecret, token: signToken(t, testSecret, "alice", time.Now().Add(-time.Hour)), status: http.StatusUnauthorized},
		{name: "no subject", secret: testSecret, token: signToken(t, testSecret, "", time.Now().Add(time.Hour)), status: http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var seen string
			r := authRouter(tc.secret, &seen)
			req := httptest.NewRequest(http.MethodPost, "/x", nil)
			if tc.token != "" {
				req.Header.Set("Authorization", "Bearer "+tc.token)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			if rec.Code != tc.status {
				t.Fatalf("status: want=%d got=%d body=%s", tc.status, rec.Code, rec.Body.String())
			}
			if tc.subject != "" && seen != tc.subject {
				t.Fatalf("subject: want=%q got=%q", tc.subject, seen)
			}
		})
	}
}

func TestRequireAuthRejectsOtherAlgorithms(t *testing.T) {
	var seen string
	r := authRouter(testSecret, &seen)
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "alice"},
	}).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/x", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("HS512 token must be rejected, got %d", rec.Code)
	}
}
