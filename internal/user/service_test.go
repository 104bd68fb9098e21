package user_test

import (
	"log/slog"
	"os"

	"github.com/frahmantamala/agency-portal/internal/auth"
	"github.com/frahmantamala/agency-portal/internal/user"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type mockUserRepo struct {
	users  map[int64]*user.User
	nextID int64
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: map[int64]*user.User{}, nextID: 1}
}

func (m *mockUserRepo) Create(u *user.User) error {
	u.ID = m.nextID
	m.nextID++
	copied := *u
	m.users[u.ID] = &copied
	return nil
}

func (m *mockUserRepo) GetByID(id int64) (*user.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (m *mockUserRepo) GetByEmail(email string) (*user.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (m *mockUserRepo) List(filter user.ListFilter) ([]user.User, error) {
	var out []user.User
	for _, u := range m.users {
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		if !filter.IncludeInactive && !u.IsActive {
			continue
		}
		out = append(out, *u)
	}
	return out, nil
}

func (m *mockUserRepo) Update(u *user.User) error {
	if _, ok := m.users[u.ID]; !ok {
		return user.ErrUserNotFound
	}
	copied := *u
	m.users[u.ID] = &copied
	return nil
}

func (m *mockUserRepo) SetActive(id int64, active bool) error {
	u, ok := m.users[id]
	if !ok {
		return user.ErrUserNotFound
	}
	u.IsActive = active
	return nil
}

func (m *mockUserRepo) Delete(id int64) error {
	if _, ok := m.users[id]; !ok {
		return user.ErrUserNotFound
	}
	delete(m.users, id)
	return nil
}

var _ = Describe("User Service", func() {
	var (
		repo    *mockUserRepo
		svc     *user.Service
		adminSession  *auth.Session
		editorSession *auth.Session
	)

	BeforeEach(func() {
		repo = newMockUserRepo()
		testLogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
		svc = user.NewService(repo, 4, testLogger)

		adminSession = &auth.Session{UserID: 100, Email: "admin@agency.test", Role: auth.RoleAdmin}
		editorSession = &auth.Session{UserID: 101, Email: "editor@agency.test", Role: auth.RoleEditor}
	})

	Describe("CreateStaff", func() {
		It("creates an active staff account with a password hash", func() {
			u, err := svc.CreateStaff(adminSession, user.CreateStaffDTO{
				Email:    "new@agency.test",
				Name:     "New Editor",
				Password: "supersecret",
				Role:     "EDITOR",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(u.ID).NotTo(BeZero())
			Expect(u.Role).To(Equal(auth.RoleEditor))
			Expect(u.IsActive).To(BeTrue())
			Expect(u.PasswordHash).NotTo(BeNil())
			Expect(auth.VerifyPassword(*u.PasswordHash, "supersecret")).To(Succeed())
			Expect(u.AccessCode).To(BeNil())
		})

		It("rejects non-admin actors", func() {
			_, err := svc.CreateStaff(editorSession, user.CreateStaffDTO{
				Email:    "new@agency.test",
				Name:     "New Editor",
				Password: "supersecret",
				Role:     "EDITOR",
			})
			Expect(err).To(MatchError(user.ErrForbidden))
		})

		It("rejects the CLIENT role", func() {
			_, err := svc.CreateStaff(adminSession, user.CreateStaffDTO{
				Email:    "client@company.test",
				Name:     "Sneaky Client",
				Password: "supersecret",
				Role:     "CLIENT",
			})
			Expect(err).To(HaveOccurred())
		})

		It("rejects duplicate emails", func() {
			dto := user.CreateStaffDTO{
				Email:    "dup@agency.test",
				Name:     "First",
				Password: "supersecret",
				Role:     "VIEWER",
			}
			_, err := svc.CreateStaff(adminSession, dto)
			Expect(err).NotTo(HaveOccurred())

			_, err = svc.CreateStaff(adminSession, dto)
			Expect(err).To(MatchError(user.ErrEmailTaken))
		})
	})

	Describe("CreateClient", func() {
		It("issues an eight character access code and no password", func() {
			u, err := svc.CreateClient(adminSession, user.CreateClientDTO{
				Email: "client@company.test",
				Name:  "Client One",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(u.Role).To(Equal(auth.RoleClient))
			Expect(u.PasswordHash).To(BeNil())
			Expect(u.AccessCode).NotTo(BeNil())
			Expect(*u.AccessCode).To(HaveLen(auth.AccessCodeLength))
		})
	})

	Describe("RegenerateAccessCode", func() {
		It("replaces the previous code", func() {
			u, err := svc.CreateClient(adminSession, user.CreateClientDTO{
				Email: "client@company.test",
				Name:  "Client One",
			})
			Expect(err).NotTo(HaveOccurred())
			oldCode := *u.AccessCode

			updated, err := svc.RegenerateAccessCode(adminSession, u.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(*updated.AccessCode).To(HaveLen(auth.AccessCodeLength))
			Expect(*updated.AccessCode).NotTo(Equal(oldCode))

			stored, err := repo.GetByID(u.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(*stored.AccessCode).To(Equal(*updated.AccessCode))
		})

		It("refuses staff accounts", func() {
			u, err := svc.CreateStaff(adminSession, user.CreateStaffDTO{
				Email:    "viewer@agency.test",
				Name:     "Viewer",
				Password: "supersecret",
				Role:     "VIEWER",
			})
			Expect(err).NotTo(HaveOccurred())

			_, err = svc.RegenerateAccessCode(adminSession, u.ID)
			Expect(err).To(MatchError(user.ErrNotClient))
		})
	})

	Describe("Deactivate", func() {
		It("flips the active flag", func() {
			u, err := svc.CreateClient(adminSession, user.CreateClientDTO{
				Email: "client@company.test",
				Name:  "Client One",
			})
			Expect(err).NotTo(HaveOccurred())

			Expect(svc.Deactivate(adminSession, u.ID)).To(Succeed())

			stored, err := repo.GetByID(u.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.IsActive).To(BeFalse())
		})

		It("refuses to deactivate the acting admin", func() {
			repo.users[adminSession.UserID] = &user.User{
				ID:       adminSession.UserID,
				Email:    adminSession.Email,
				Role:     auth.RoleAdmin,
				IsActive: true,
			}
			err := svc.Deactivate(adminSession, adminSession.UserID)
			Expect(err).To(MatchError(user.ErrSelfDeactivate))
		})
	})

	Describe("Delete", func() {
		It("removes the row", func() {
			u, err := svc.CreateClient(adminSession, user.CreateClientDTO{
				Email: "client@company.test",
				Name:  "Client One",
			})
			Expect(err).NotTo(HaveOccurred())

			Expect(svc.Delete(adminSession, u.ID)).To(Succeed())

			_, err = repo.GetByID(u.ID)
			Expect(err).To(MatchError(user.ErrUserNotFound))
		})

		It("returns not found for unknown ids", func() {
			err := svc.Delete(adminSession, 9999)
			Expect(err).To(MatchError(user.ErrUserNotFound))
		})
	})
})
