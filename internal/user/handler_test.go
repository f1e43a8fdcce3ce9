package user

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/user/blog-platform/internal/auth"
)

var _ = ginkgo.Describe("UserHandler", func() {
	var (
		handler  *Handler
		mockRepo *mockUserRepo
	)

	ginkgo.BeforeEach(func() {
		mockRepo = newMockUserRepo()
		service := NewService(mockRepo, bcrypt.DefaultCost, slog.New(slog.NewTextHandler(io.Discard, nil)))
		handler = NewHandler(service, auth.NewMemoryRateLimiter(), 3, time.Minute)
	})

	createRequest := func(email string) *http.Request {
		body, _ := json.Marshal(CreateUserDTO{
			Name:     "New Account",
			Email:    email,
			Password: "Str0ngPass",
			Role:     string(auth.RoleMember),
		})
		r := httptest.NewRequest(http.MethodPost, "/admin/users", bytes.NewReader(body))
		r.RemoteAddr = "203.0.113.9:51234"
		return r
	}

	ginkgo.Describe("CreateUser rate limiting", func() {
		ginkgo.It("should allow up to the limit and then return 429 with Retry-After", func() {
			for i := 0; i < 3; i++ {
				rec := httptest.NewRecorder()
				handler.CreateUser(rec, createRequest(fmt.Sprintf("n%d@example.com", i)))
				gomega.Expect(rec.Code).To(gomega.Equal(http.StatusCreated))
			}

			rec := httptest.NewRecorder()
			handler.CreateUser(rec, createRequest("n4@example.com"))
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusTooManyRequests))
			gomega.Expect(rec.Header().Get("Retry-After")).ToNot(gomega.BeEmpty())
			gomega.Expect(rec.Body.String()).To(gomega.ContainSubstring("too many requests"))
		})

		ginkgo.It("should track clients independently by forwarded address", func() {
			for i := 0; i < 3; i++ {
				rec := httptest.NewRecorder()
				handler.CreateUser(rec, createRequest(fmt.Sprintf("a%d@example.com", i)))
				gomega.Expect(rec.Code).To(gomega.Equal(http.StatusCreated))
			}

			other := createRequest("other-client@example.com")
			other.Header.Set("X-Forwarded-For", "198.51.100.7, 10.0.0.1")
			rec := httptest.NewRecorder()
			handler.CreateUser(rec, other)
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusCreated))
		})

		ginkgo.It("should count denied attempts against the window without extending it", func() {
			for i := 0; i < 4; i++ {
				rec := httptest.NewRecorder()
				handler.CreateUser(rec, createRequest(fmt.Sprintf("b%d@example.com", i)))
			}

			rec := httptest.NewRecorder()
			handler.CreateUser(rec, createRequest("b5@example.com"))
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusTooManyRequests))
		})
	})

	ginkgo.Describe("CreateUser validation mapping", func() {
		ginkgo.It("should map a duplicate email to 409", func() {
			rec := httptest.NewRecorder()
			handler.CreateUser(rec, createRequest("writer@example.com"))
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusConflict))
		})

		ginkgo.It("should map an owner-provisioning attempt to 403", func() {
			body, _ := json.Marshal(CreateUserDTO{
				Name:     "Pretender",
				Email:    "pretender@example.com",
				Password: "Str0ngPass",
				Role:     string(auth.RoleOwner),
			})
			r := httptest.NewRequest(http.MethodPost, "/admin/users", bytes.NewReader(body))
			r.RemoteAddr = "203.0.113.9:51234"

			rec := httptest.NewRecorder()
			handler.CreateUser(rec, r)
			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusForbidden))
		})
	})
})
