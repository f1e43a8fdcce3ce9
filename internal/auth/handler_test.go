package auth

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"golang.org/x/crypto/bcrypt"
)

var _ = ginkgo.Describe("Handler AuthMiddleware", func() {
	var (
		handler   *Handler
		mockDir   *mockDirectory
		tokenGen  *JWTTokenGenerator
		principal *SessionUser
		gated     http.Handler
	)

	newRequest := func() *http.Request {
		return httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	}

	tokenFor := func(id int64) string {
		token, _, err := tokenGen.GenerateSessionToken(mockDir.byID[id], "")
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		return token
	}

	ginkgo.BeforeEach(func() {
		mockDir = newMockDirectory()
		tokenGen = NewJWTTokenGenerator("test-session-secret", 30*24*time.Hour)
		service := NewService(mockDir, tokenGen, bcrypt.DefaultCost, slog.New(slog.NewTextHandler(io.Discard, nil)))
		handler = NewHandler(service, nil)

		principal = nil
		gated = handler.AuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, _ = UserFromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		}))
	})

	ginkgo.Context("with a valid bearer token", func() {
		ginkgo.It("should pass and load the fresh principal into the context", func() {
			req := newRequest()
			req.Header.Set("Authorization", "Bearer "+tokenFor(2))
			rec := httptest.NewRecorder()

			gated.ServeHTTP(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
			gomega.Expect(principal).ToNot(gomega.BeNil())
			gomega.Expect(principal.ID).To(gomega.Equal(int64(2)))
			gomega.Expect(principal.Role).To(gomega.Equal(RoleWriter))
			gomega.Expect(principal.Permissions).To(gomega.ConsistOf(PermissionsForRole(RoleWriter)))
		})
	})

	ginkgo.Context("with a valid session cookie", func() {
		ginkgo.It("should pass without a bearer header", func() {
			req := newRequest()
			req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: tokenFor(1)})
			rec := httptest.NewRecorder()

			gated.ServeHTTP(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
			gomega.Expect(principal).ToNot(gomega.BeNil())
			gomega.Expect(principal.Role).To(gomega.Equal(RoleOwner))
		})
	})

	ginkgo.Context("with a Member session", func() {
		ginkgo.It("should reach session-only routes despite an empty permission set", func() {
			req := newRequest()
			req.Header.Set("Authorization", "Bearer "+tokenFor(4))
			rec := httptest.NewRecorder()

			gated.ServeHTTP(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
			gomega.Expect(principal).ToNot(gomega.BeNil())
			gomega.Expect(principal.Role).To(gomega.Equal(RoleMember))
			gomega.Expect(principal.Permissions).To(gomega.BeEmpty())
		})
	})

	ginkgo.Context("without a session", func() {
		ginkgo.It("should respond 401", func() {
			rec := httptest.NewRecorder()

			gated.ServeHTTP(rec, newRequest())

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
			gomega.Expect(principal).To(gomega.BeNil())
		})
	})

	ginkgo.Context("with an expired token", func() {
		ginkgo.It("should respond 401", func() {
			expiredGen := NewJWTTokenGenerator("test-session-secret", -time.Hour)
			token, _, err := expiredGen.GenerateSessionToken(mockDir.byID[2], "")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			req := newRequest()
			req.Header.Set("Authorization", "Bearer "+token)
			rec := httptest.NewRecorder()

			gated.ServeHTTP(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
			gomega.Expect(principal).To(gomega.BeNil())
		})
	})

	ginkgo.Context("with a garbage token", func() {
		ginkgo.It("should respond 401", func() {
			req := newRequest()
			req.Header.Set("Authorization", "Bearer not-a-token")
			rec := httptest.NewRecorder()

			gated.ServeHTTP(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
		})
	})

	ginkgo.Context("when the directory lookup fails mid-session", func() {
		ginkgo.It("should fail closed with 401", func() {
			token := tokenFor(2)
			mockDir.setError(errors.New("connection refused"))

			req := newRequest()
			req.Header.Set("Authorization", "Bearer "+token)
			rec := httptest.NewRecorder()

			gated.ServeHTTP(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
			gomega.Expect(principal).To(gomega.BeNil())
		})
	})

	ginkgo.Context("when the account was deactivated after sign-in", func() {
		ginkgo.It("should respond 401", func() {
			req := newRequest()
			req.Header.Set("Authorization", "Bearer "+tokenFor(3))
			rec := httptest.NewRecorder()

			gated.ServeHTTP(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
		})
	})
})

var _ = ginkgo.Describe("ClientIP", func() {
	ginkgo.It("should prefer the first forwarded address", func() {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.RemoteAddr = "10.0.0.1:44212"
		req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")

		gomega.Expect(ClientIP(req)).To(gomega.Equal("203.0.113.9"))
	})

	ginkgo.It("should fall back to the remote address", func() {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.RemoteAddr = "198.51.100.7:39810"

		gomega.Expect(ClientIP(req)).To(gomega.Equal("198.51.100.7"))
	})
})
