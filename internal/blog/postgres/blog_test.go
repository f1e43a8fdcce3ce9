package postgres_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/user/blog-platform/internal/blog"
	blogPostgres "github.com/user/blog-platform/internal/blog/postgres"
	blogDatamodel "github.com/user/blog-platform/internal/core/datamodel/blog"
)

func TestBlogPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Blog Postgres Suite")
}

var _ = Describe("Blog Repository", func() {
	var (
		db   *gorm.DB
		repo blog.RepositoryAPI
		ctx  context.Context
	)

	seedBlog := func(slug string, categoryID int64, published bool, createdAt time.Time) *blogDatamodel.Blog {
		b := &blogDatamodel.Blog{
			Title:       slug,
			Slug:        slug,
			Summary:     "summary",
			Content:     "content",
			CategoryID:  categoryID,
			AuthorID:    1,
			IsPublished: published,
			CreatedAt:   createdAt,
		}
		Expect(db.Create(b).Error).To(Succeed())
		return b
	}

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&blogDatamodel.Blog{})
		Expect(err).NotTo(HaveOccurred())

		repo = blogPostgres.NewBlogRepository(db)
		ctx = context.Background()
	})

	Describe("GetAll", func() {
		It("should filter drafts when asked for published only", func() {
			now := time.Now()
			seedBlog("published-post", 1, true, now)
			seedBlog("draft-post", 1, false, now)

			blogs, err := repo.GetAll(ctx, true, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(blogs).To(HaveLen(1))
			Expect(blogs[0].Slug).To(Equal("published-post"))
		})

		It("should filter by category", func() {
			now := time.Now()
			seedBlog("in-category", 1, true, now)
			seedBlog("other-category", 2, true, now)

			blogs, err := repo.GetAll(ctx, true, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(blogs).To(HaveLen(1))
			Expect(blogs[0].Slug).To(Equal("in-category"))
		})

		It("should return newest first", func() {
			base := time.Now().Add(-time.Hour)
			seedBlog("older", 1, true, base)
			seedBlog("newer", 1, true, base.Add(30*time.Minute))

			blogs, err := repo.GetAll(ctx, false, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(blogs[0].Slug).To(Equal("newer"))
		})
	})

	Describe("GetBySlug", func() {
		It("should return nil for an unknown slug", func() {
			found, err := repo.GetBySlug(ctx, "missing")
			Expect(err).NotTo(HaveOccurred())
			Expect(found).To(BeNil())
		})
	})

	Describe("GetRelated", func() {
		It("should exclude the post itself, drafts and other categories, capped at the limit", func() {
			now := time.Now()
			self := seedBlog("self", 1, true, now)
			seedBlog("same-cat-draft", 1, false, now)
			seedBlog("other-cat", 2, true, now)
			for i := 0; i < 5; i++ {
				seedBlog(fmt.Sprintf("same-cat-%d", i), 1, true, now.Add(time.Duration(i)*time.Minute))
			}

			related, err := repo.GetRelated(ctx, 1, self.ID, 3)
			Expect(err).NotTo(HaveOccurred())
			Expect(related).To(HaveLen(3))
			for _, b := range related {
				Expect(b.ID).NotTo(Equal(self.ID))
				Expect(b.CategoryID).To(Equal(int64(1)))
				Expect(b.IsPublished).To(BeTrue())
			}
		})
	})

	Describe("Update and Delete", func() {
		It("should persist publication changes", func() {
			b := seedBlog("toggle-me", 1, false, time.Now())
			b.IsPublished = true
			Expect(repo.Update(ctx, b)).To(Succeed())

			found, err := repo.GetByID(ctx, b.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(found.IsPublished).To(BeTrue())
		})

		It("should remove the row on delete", func() {
			b := seedBlog("delete-me", 1, true, time.Now())
			Expect(repo.Delete(ctx, b.ID)).To(Succeed())

			found, err := repo.GetByID(ctx, b.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(found).To(BeNil())
		})
	})
})
