package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"sms-auth/pkg/utils"

	"github.com/google/uuid"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"
)

var testJWT = utils.JWTConfig{Secret: "test-secret", Issuer: "sms-auth-test"}

func protected(t *testing.T, roles ...string) http.Handler {
	t.Helper()
	var h http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	if len(roles) > 0 {
		h = RequireRoles(zap.NewNop(), roles...)(h)
	}
	return Auth(testJWT, zap.NewNop())(h)
}

func TestAuth_AcceptsValidToken(t *testing.T) {
	g := NewWithT(t)

	token, err := utils.SignToken(testJWT, uuid.New(), "13800000000", nil, time.Hour)
	g.Expect(err).NotTo(HaveOccurred())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	protected(t).ServeHTTP(rec, req)

	g.Expect(rec.Code).To(Equal(http.StatusOK))
}

func TestAuth_RejectsMissingOrBadToken(t *testing.T) {
	g := NewWithT(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	protected(t).ServeHTTP(rec, req)
	g.Expect(rec.Code).To(Equal(http.StatusUnauthorized))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec = httptest.NewRecorder()
	protected(t).ServeHTTP(rec, req)
	g.Expect(rec.Code).To(Equal(http.StatusUnauthorized))
}

func TestRequireRoles_Guards(t *testing.T) {
	g := NewWithT(t)

	adminToken, err := utils.SignToken(testJWT, uuid.New(), "admin", []string{"admin"}, time.Hour)
	g.Expect(err).NotTo(HaveOccurred())
	userToken, err := utils.SignToken(testJWT, uuid.New(), "user", []string{"customer"}, time.Hour)
	g.Expect(err).NotTo(HaveOccurred())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	rec := httptest.NewRecorder()
	protected(t, "admin").ServeHTTP(rec, req)
	g.Expect(rec.Code).To(Equal(http.StatusOK))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+userToken)
	rec = httptest.NewRecorder()
	protected(t, "admin").ServeHTTP(rec, req)
	g.Expect(rec.Code).To(Equal(http.StatusForbidden))
}
