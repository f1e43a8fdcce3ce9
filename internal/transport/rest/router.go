package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/user/blog-platform/internal/auth"
	"github.com/user/blog-platform/internal/blog"
	"github.com/user/blog-platform/internal/category"
	"github.com/user/blog-platform/internal/transport/middleware"
	"github.com/user/blog-platform/internal/transport/swagger"
	"github.com/user/blog-platform/internal/user"
)

// RegisterAllRoutes mounts the public content surface and the
// permission-gated admin surface under /api/v1.
func RegisterAllRoutes(router *chi.Mux, db *sql.DB, redisClient *redis.Client, authHandler *auth.Handler, rbac *auth.RBACAuthorization, userHandler *user.Handler, categoryHandler *category.Handler, blogHandler *blog.Handler, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db, redisClient)

	router.Use(middleware.CORS)
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		// Auth routes
		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", authHandler.Login)
			sr.Post("/logout", authHandler.Logout)
			sr.Get("/oauth/github", authHandler.OAuthBegin)
			sr.Get("/oauth/github/callback", authHandler.OAuthCallback)

			sr.Group(func(pr chi.Router) {
				pr.Use(authHandler.AuthMiddleware)
				pr.Get("/session", authHandler.CurrentSession)
			})
		})

		// Public content surface, no auth required
		r.Get("/categories", categoryHandler.GetCategories)
		r.Route("/blogs", func(br chi.Router) {
			br.Get("/", blogHandler.ListBlogs)
			br.Get("/{slug}", blogHandler.GetBlog)
			br.Get("/{slug}/related", blogHandler.GetRelatedBlogs)
		})

		// Everything below requires a valid session
		r.Group(func(pr chi.Router) {
			pr.Use(authHandler.AuthMiddleware)

			pr.Get("/users/me", userHandler.GetCurrentUser)

			// Admin surface: every route needs admin:access, then its
			// own operation permission.
			pr.Route("/admin", func(ar chi.Router) {
				ar.Use(rbac.RequirePermission(auth.PermAdminAccess))

				ar.Route("/blogs", func(abr chi.Router) {
					abr.Get("/", blogHandler.ListAllBlogs)

					abr.Group(func(g chi.Router) {
						g.Use(rbac.RequirePermission(auth.PermBlogCreate))
						g.Post("/", blogHandler.CreateBlog)
					})
					abr.Group(func(g chi.Router) {
						g.Use(rbac.RequirePermission(auth.PermBlogEdit))
						g.Put("/{id}", blogHandler.UpdateBlog)
					})
					abr.Group(func(g chi.Router) {
						g.Use(rbac.RequirePermission(auth.PermBlogPublish))
						g.Patch("/{id}/publish", blogHandler.PublishBlog)
					})
					abr.Group(func(g chi.Router) {
						g.Use(rbac.RequirePermission(auth.PermBlogDelete))
						g.Delete("/{id}", blogHandler.DeleteBlog)
					})
				})

				ar.Route("/categories", func(acr chi.Router) {
					acr.Group(func(g chi.Router) {
						g.Use(rbac.RequirePermission(auth.PermCategoryCreate))
						g.Post("/", categoryHandler.CreateCategory)
					})
					acr.Group(func(g chi.Router) {
						g.Use(rbac.RequirePermission(auth.PermCategoryEdit))
						g.Put("/{id}", categoryHandler.UpdateCategory)
					})
					acr.Group(func(g chi.Router) {
						g.Use(rbac.RequirePermission(auth.PermCategoryDelete))
						g.Delete("/{id}", categoryHandler.DeleteCategory)
					})
				})

				// User management re-reads the directory on every call so
				// a revoked user:manage takes effect immediately.
				ar.Route("/users", func(aur chi.Router) {
					aur.Use(rbac.RequireFreshPermission(auth.PermUserManage))
					aur.Get("/", userHandler.ListUsers)
					aur.Post("/", userHandler.CreateUser)
					aur.Put("/", userHandler.UpdateUser)
					aur.Delete("/", userHandler.DeleteUser)
				})
			})
		})
	})
}
