package auth

import (
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var _ = ginkgo.Describe("PermissionsForRole", func() {
	ginkgo.It("should grant Owner the full permission set", func() {
		perms := PermissionsForRole(RoleOwner)
		gomega.Expect(perms).To(gomega.ConsistOf(
			PermBlogCreate, PermBlogEdit, PermBlogDelete, PermBlogPublish,
			PermCategoryCreate, PermCategoryEdit, PermCategoryDelete,
			PermUserManage, PermAdminAccess,
		))
	})

	ginkgo.It("should grant Writer content permissions without delete or management", func() {
		perms := PermissionsForRole(RoleWriter)
		gomega.Expect(perms).To(gomega.ConsistOf(
			PermBlogCreate, PermBlogEdit, PermBlogPublish, PermAdminAccess,
		))
		gomega.Expect(perms).ToNot(gomega.ContainElement(PermBlogDelete))
		gomega.Expect(perms).ToNot(gomega.ContainElement(PermUserManage))
	})

	ginkgo.It("should grant Member nothing", func() {
		gomega.Expect(PermissionsForRole(RoleMember)).To(gomega.BeEmpty())
	})

	ginkgo.It("should grant an unknown role nothing", func() {
		gomega.Expect(PermissionsForRole(Role("Superuser"))).To(gomega.BeEmpty())
	})

	ginkgo.It("should return a fresh slice on every call", func() {
		first := PermissionsForRole(RoleWriter)
		first[0] = "tampered"
		second := PermissionsForRole(RoleWriter)
		gomega.Expect(second).ToNot(gomega.ContainElement("tampered"))
	})
})

var _ = ginkgo.Describe("Role", func() {
	ginkgo.It("should validate the three known roles", func() {
		gomega.Expect(RoleOwner.Valid()).To(gomega.BeTrue())
		gomega.Expect(RoleWriter.Valid()).To(gomega.BeTrue())
		gomega.Expect(RoleMember.Valid()).To(gomega.BeTrue())
		gomega.Expect(Role("Admin").Valid()).To(gomega.BeFalse())
		gomega.Expect(Role("").Valid()).To(gomega.BeFalse())
	})
})
