package postgres_test

import (
	"context"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/user/blog-platform/internal/category"
	categoryPostgres "github.com/user/blog-platform/internal/category/postgres"
	categoryDatamodel "github.com/user/blog-platform/internal/core/datamodel/category"
)

func TestCategoryPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Category Postgres Suite")
}

var _ = Describe("Category Repository", func() {
	var (
		db   *gorm.DB
		repo category.RepositoryAPI
		ctx  context.Context
	)

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&categoryDatamodel.Category{})
		Expect(err).NotTo(HaveOccurred())

		repo = categoryPostgres.NewCategoryRepository(db)
		ctx = context.Background()
	})

	Describe("Create and GetBySlug", func() {
		It("should store and retrieve a category", func() {
			cat := &categoryDatamodel.Category{Name: "Travel", Slug: "travel", IsActive: true}
			Expect(repo.Create(ctx, cat)).To(Succeed())
			Expect(cat.ID).NotTo(BeZero())

			found, err := repo.GetBySlug(ctx, "travel")
			Expect(err).NotTo(HaveOccurred())
			Expect(found.Name).To(Equal("Travel"))
		})

		It("should return nil for an unknown slug", func() {
			found, err := repo.GetBySlug(ctx, "missing")
			Expect(err).NotTo(HaveOccurred())
			Expect(found).To(BeNil())
		})

		It("should enforce slug uniqueness", func() {
			Expect(repo.Create(ctx, &categoryDatamodel.Category{Name: "Travel", Slug: "travel", IsActive: true})).To(Succeed())
			err := repo.Create(ctx, &categoryDatamodel.Category{Name: "Travelling", Slug: "travel", IsActive: true})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("GetAll", func() {
		It("should order by name", func() {
			Expect(repo.Create(ctx, &categoryDatamodel.Category{Name: "Zoology", Slug: "zoology", IsActive: true})).To(Succeed())
			Expect(repo.Create(ctx, &categoryDatamodel.Category{Name: "Art", Slug: "art", IsActive: true})).To(Succeed())

			categories, err := repo.GetAll(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(categories).To(HaveLen(2))
			Expect(categories[0].Name).To(Equal("Art"))
			Expect(categories[1].Name).To(Equal("Zoology"))
		})
	})

	Describe("Delete", func() {
		It("should deactivate instead of removing the row", func() {
			cat := &categoryDatamodel.Category{Name: "Travel", Slug: "travel", IsActive: true}
			Expect(repo.Create(ctx, cat)).To(Succeed())

			Expect(repo.Delete(ctx, cat.ID)).To(Succeed())

			found, err := repo.GetByID(ctx, cat.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(found).NotTo(BeNil())
			Expect(found.IsActive).To(BeFalse())
		})
	})
})
