package auth

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

var _ = ginkgo.Describe("RBACAuthorization", func() {
	var (
		rbac    *RBACAuthorization
		mockDir *mockDirectory
		next    http.Handler
		called  bool
	)

	ginkgo.BeforeEach(func() {
		mockDir = newMockDirectory()
		lg := slog.New(slog.NewTextHandler(io.Discard, nil))
		tokenGen := NewJWTTokenGenerator("test-session-secret", 30*24*time.Hour)
		service := NewService(mockDir, tokenGen, bcrypt.DefaultCost, lg)
		rbac = NewRBACAuthorization(service, lg)

		called = false
		next = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
			w.WriteHeader(http.StatusOK)
		})
	})

	requestAs := func(user *SessionUser) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/admin/blogs", nil)
		if user != nil {
			r = r.WithContext(ContextWithUser(r.Context(), user))
		}
		return r
	}

	ginkgo.Describe("RequirePermission", func() {
		ginkgo.It("should pass a user holding the permission", func() {
			rec := httptest.NewRecorder()
			user := &SessionUser{ID: 2, Role: RoleWriter, Permissions: PermissionsForRole(RoleWriter)}

			rbac.RequirePermission(PermBlogCreate)(next).ServeHTTP(rec, requestAs(user))

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
			gomega.Expect(called).To(gomega.BeTrue())
		})

		ginkgo.It("should return 401 without a principal in context", func() {
			rec := httptest.NewRecorder()

			rbac.RequirePermission(PermBlogCreate)(next).ServeHTTP(rec, requestAs(nil))

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
			gomega.Expect(called).To(gomega.BeFalse())
		})

		ginkgo.It("should return 403 when the permission is missing", func() {
			rec := httptest.NewRecorder()
			user := &SessionUser{ID: 2, Role: RoleWriter, Permissions: PermissionsForRole(RoleWriter)}

			rbac.RequirePermission(PermUserManage)(next).ServeHTTP(rec, requestAs(user))

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusForbidden))
			gomega.Expect(called).To(gomega.BeFalse())
		})
	})

	ginkgo.Describe("RequireFreshPermission", func() {
		ginkgo.It("should authorize from the directory, not the stale session claim", func() {
			rec := httptest.NewRecorder()
			// Session claims a permission the directory no longer grants.
			user := &SessionUser{ID: 2, Role: RoleOwner, Permissions: PermissionsForRole(RoleOwner)}

			rbac.RequireFreshPermission(PermUserManage)(next).ServeHTTP(rec, requestAs(user))

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusForbidden))
			gomega.Expect(called).To(gomega.BeFalse())
		})

		ginkgo.It("should pass when the directory still grants the permission", func() {
			rec := httptest.NewRecorder()
			user := &SessionUser{ID: 1, Role: RoleOwner, Permissions: PermissionsForRole(RoleOwner)}

			rbac.RequireFreshPermission(PermUserManage)(next).ServeHTTP(rec, requestAs(user))

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
			gomega.Expect(called).To(gomega.BeTrue())
		})

		ginkgo.It("should fail closed when the directory is unreachable", func() {
			mockDir.setError(context.DeadlineExceeded)
			rec := httptest.NewRecorder()
			user := &SessionUser{ID: 1, Role: RoleOwner, Permissions: PermissionsForRole(RoleOwner)}

			rbac.RequireFreshPermission(PermUserManage)(next).ServeHTTP(rec, requestAs(user))

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusForbidden))
			gomega.Expect(called).To(gomega.BeFalse())
		})

		ginkgo.It("should refuse a deactivated account", func() {
			rec := httptest.NewRecorder()
			user := &SessionUser{ID: 3, Role: RoleOwner, Permissions: PermissionsForRole(RoleOwner)}

			rbac.RequireFreshPermission(PermUserManage)(next).ServeHTTP(rec, requestAs(user))

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusForbidden))
			gomega.Expect(called).To(gomega.BeFalse())
		})
	})
})
