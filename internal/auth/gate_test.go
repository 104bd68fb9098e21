package auth_test

import (
	"testing"

	"github.com/frahmantamala/agency-portal/internal/auth"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestAuth(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Auth Suite")
}

var _ = Describe("Authorize", func() {
	session := func(role auth.Role) *auth.Session {
		return &auth.Session{UserID: 1, Email: "u@agency.test", Role: role}
	}

	It("denies missing sessions as not authenticated", func() {
		decision := auth.Authorize(nil, auth.StaffRoles)
		Expect(decision.Authorized).To(BeFalse())
		Expect(decision.Denial).To(Equal(auth.DenialNotAuthenticated))
	})

	It("denies roles outside the allow-list as forbidden", func() {
		decision := auth.Authorize(session(auth.RoleClient), auth.StaffRoles)
		Expect(decision.Authorized).To(BeFalse())
		Expect(decision.Denial).To(Equal(auth.DenialForbidden))
	})

	DescribeTable("role policy",
		func(role auth.Role, allowed []auth.Role, want bool) {
			decision := auth.Authorize(session(role), allowed)
			Expect(decision.Authorized).To(Equal(want))
		},
		Entry("admin is staff", auth.RoleAdmin, auth.StaffRoles, true),
		Entry("editor is staff", auth.RoleEditor, auth.StaffRoles, true),
		Entry("viewer is staff", auth.RoleViewer, auth.StaffRoles, true),
		Entry("client is not staff", auth.RoleClient, auth.StaffRoles, false),
		Entry("admin is a manager", auth.RoleAdmin, auth.ManagerRoles, true),
		Entry("editor is a manager", auth.RoleEditor, auth.ManagerRoles, true),
		Entry("viewer is not a manager", auth.RoleViewer, auth.ManagerRoles, false),
		Entry("client is not a manager", auth.RoleClient, auth.ManagerRoles, false),
		Entry("everyone passes the all-roles gate", auth.RoleClient, auth.AllRoles, true),
		Entry("only admin passes an admin-only gate", auth.RoleEditor, []auth.Role{auth.RoleAdmin}, false),
	)

	It("attaches the session on success", func() {
		s := session(auth.RoleAdmin)
		decision := auth.Authorize(s, auth.ManagerRoles)
		Expect(decision.Authorized).To(BeTrue())
		Expect(decision.Session).To(Equal(s))
	})
})

var _ = Describe("OwnerOrManager", func() {
	It("authorizes the resource owner regardless of role", func() {
		s := &auth.Session{UserID: 42, Role: auth.RoleClient}
		Expect(auth.OwnerOrManager(s, 42).Authorized).To(BeTrue())
	})

	It("authorizes managers for resources they do not own", func() {
		s := &auth.Session{UserID: 1, Role: auth.RoleEditor}
		Expect(auth.OwnerOrManager(s, 42).Authorized).To(BeTrue())
	})

	It("denies viewers for resources they do not own", func() {
		s := &auth.Session{UserID: 1, Role: auth.RoleViewer}
		decision := auth.OwnerOrManager(s, 42)
		Expect(decision.Authorized).To(BeFalse())
		Expect(decision.Denial).To(Equal(auth.DenialForbidden))
	})

	It("denies missing sessions", func() {
		decision := auth.OwnerOrManager(nil, 42)
		Expect(decision.Authorized).To(BeFalse())
		Expect(decision.Denial).To(Equal(auth.DenialNotAuthenticated))
	})
})

var _ = Describe("ParseRole", func() {
	It("accepts only the closed role set", func() {
		for _, valid := range []string{"ADMIN", "EDITOR", "VIEWER", "CLIENT"} {
			_, err := auth.ParseRole(valid)
			Expect(err).NotTo(HaveOccurred())
		}
		for _, invalid := range []string{"", "admin", "ROOT", "SUPERUSER"} {
			_, err := auth.ParseRole(invalid)
			Expect(err).To(MatchError(auth.ErrUnknownRole))
		}
	})
})
