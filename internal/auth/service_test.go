package auth_test

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/frahmantamala/agency-portal/internal/auth"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type mockCredentialRepo struct {
	byEmail map[string]*auth.Credential
	byCode  map[string]*auth.Credential
	byID    map[int64]*auth.Credential

	lastLoginUpdates []int64
}

func newMockCredentialRepo() *mockCredentialRepo {
	return &mockCredentialRepo{
		byEmail: map[string]*auth.Credential{},
		byCode:  map[string]*auth.Credential{},
		byID:    map[int64]*auth.Credential{},
	}
}

func (m *mockCredentialRepo) add(c *auth.Credential) {
	m.byEmail[c.Email] = c
	m.byID[c.UserID] = c
	if c.AccessCode != nil {
		m.byCode[*c.AccessCode] = c
	}
}

func (m *mockCredentialRepo) GetByEmail(email string) (*auth.Credential, error) {
	c, ok := m.byEmail[email]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	return c, nil
}

func (m *mockCredentialRepo) GetByAccessCode(code string) (*auth.Credential, error) {
	c, ok := m.byCode[code]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	return c, nil
}

func (m *mockCredentialRepo) GetByID(userID int64) (*auth.Credential, error) {
	c, ok := m.byID[userID]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	return c, nil
}

func (m *mockCredentialRepo) UpdateLastLogin(userID int64, _ time.Time) error {
	m.lastLoginUpdates = append(m.lastLoginUpdates, userID)
	return nil
}

var _ = Describe("Auth Service", func() {
	var (
		repo *mockCredentialRepo
		svc  *auth.Service
	)

	BeforeEach(func() {
		repo = newMockCredentialRepo()
		testLogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
		tokenGen := auth.NewJWTTokenGenerator("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
		svc = auth.NewService(repo, tokenGen, 4, testLogger)

		hash, err := auth.HashPassword("correct-horse", 4)
		Expect(err).NotTo(HaveOccurred())
		code := "ABCD2345"

		repo.add(&auth.Credential{
			UserID:       1,
			Email:        "admin@agency.test",
			Name:         "Admin",
			Role:         auth.RoleAdmin,
			PasswordHash: &hash,
			IsActive:     true,
		})
		repo.add(&auth.Credential{
			UserID:     10,
			Email:      "client@company.test",
			Name:       "Client",
			Role:       auth.RoleClient,
			AccessCode: &code,
			IsActive:   true,
		})
	})

	Describe("Authenticate", func() {
		It("issues tokens for valid staff credentials", func() {
			tokens, err := svc.Authenticate(auth.LoginDTO{Email: "admin@agency.test", Password: "correct-horse"})
			Expect(err).NotTo(HaveOccurred())
			Expect(tokens.AccessToken).NotTo(BeEmpty())
			Expect(tokens.RefreshToken).NotTo(BeEmpty())
			Expect(repo.lastLoginUpdates).To(ContainElement(int64(1)))

			claims, err := svc.ValidateAccessToken(tokens.AccessToken)
			Expect(err).NotTo(HaveOccurred())
			Expect(claims.UserID).To(Equal(int64(1)))
			Expect(claims.Role).To(Equal("ADMIN"))
		})

		It("rejects a wrong password", func() {
			_, err := svc.Authenticate(auth.LoginDTO{Email: "admin@agency.test", Password: "wrong"})
			Expect(err).To(MatchError(auth.ErrInvalidCredentials))
		})

		It("rejects unknown emails with the same error", func() {
			_, err := svc.Authenticate(auth.LoginDTO{Email: "ghost@agency.test", Password: "whatever"})
			Expect(err).To(MatchError(auth.ErrInvalidCredentials))
		})

		It("rejects inactive users even with the right password", func() {
			repo.byEmail["admin@agency.test"].IsActive = false
			_, err := svc.Authenticate(auth.LoginDTO{Email: "admin@agency.test", Password: "correct-horse"})
			Expect(err).To(MatchError(auth.ErrUserInactive))
		})

		It("rejects client accounts on the password path", func() {
			_, err := svc.Authenticate(auth.LoginDTO{Email: "client@company.test", Password: "anything"})
			Expect(err).To(MatchError(auth.ErrInvalidCredentials))
		})
	})

	Describe("AuthenticateAccessCode", func() {
		It("issues tokens for a valid code", func() {
			tokens, err := svc.AuthenticateAccessCode(auth.AccessCodeLoginDTO{AccessCode: "ABCD2345"})
			Expect(err).NotTo(HaveOccurred())

			claims, err := svc.ValidateAccessToken(tokens.AccessToken)
			Expect(err).NotTo(HaveOccurred())
			Expect(claims.UserID).To(Equal(int64(10)))
			Expect(claims.Role).To(Equal("CLIENT"))
		})

		It("normalizes case and whitespace before lookup", func() {
			_, err := svc.AuthenticateAccessCode(auth.AccessCodeLoginDTO{AccessCode: "  abcd2345  "})
			Expect(err).NotTo(HaveOccurred())
		})

		It("rejects unknown codes", func() {
			_, err := svc.AuthenticateAccessCode(auth.AccessCodeLoginDTO{AccessCode: "ZZZZ9999"})
			Expect(err).To(MatchError(auth.ErrInvalidAccessCode))
		})

		It("rejects codes of the wrong length before any lookup", func() {
			_, err := svc.AuthenticateAccessCode(auth.AccessCodeLoginDTO{AccessCode: "SHORT"})
			var verr auth.ValidationError
			Expect(err).To(BeAssignableToTypeOf(verr))
		})

		It("rejects inactive clients", func() {
			repo.byCode["ABCD2345"].IsActive = false
			_, err := svc.AuthenticateAccessCode(auth.AccessCodeLoginDTO{AccessCode: "ABCD2345"})
			Expect(err).To(MatchError(auth.ErrUserInactive))
		})

		It("rejects staff accounts that somehow carry a code", func() {
			code := "WXYZ7890"
			repo.add(&auth.Credential{
				UserID:     2,
				Email:      "editor@agency.test",
				Role:       auth.RoleEditor,
				AccessCode: &code,
				IsActive:   true,
			})
			_, err := svc.AuthenticateAccessCode(auth.AccessCodeLoginDTO{AccessCode: "WXYZ7890"})
			Expect(err).To(MatchError(auth.ErrInvalidAccessCode))
		})
	})

	Describe("RefreshTokens", func() {
		It("invalidates refresh for deactivated users", func() {
			tokens, err := svc.Authenticate(auth.LoginDTO{Email: "admin@agency.test", Password: "correct-horse"})
			Expect(err).NotTo(HaveOccurred())

			repo.byID[1].IsActive = false

			_, err = svc.RefreshTokens(tokens.RefreshToken)
			Expect(err).To(MatchError(auth.ErrUserInactive))
		})

		It("does not accept an access token as a refresh token", func() {
			tokens, err := svc.Authenticate(auth.LoginDTO{Email: "admin@agency.test", Password: "correct-horse"})
			Expect(err).NotTo(HaveOccurred())

			_, err = svc.RefreshTokens(tokens.AccessToken)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("SessionForUser", func() {
		It("returns the live role", func() {
			session, err := svc.SessionForUser(10)
			Expect(err).NotTo(HaveOccurred())
			Expect(session.Role).To(Equal(auth.RoleClient))
		})

		It("fails for deactivated users", func() {
			repo.byID[10].IsActive = false
			_, err := svc.SessionForUser(10)
			Expect(err).To(MatchError(auth.ErrUserInactive))
		})
	})

	Describe("GenerateAccessCode", func() {
		It("produces 8 characters from the unambiguous alphabet", func() {
			seen := map[string]bool{}
			for i := 0; i < 50; i++ {
				code, err := auth.GenerateAccessCode()
				Expect(err).NotTo(HaveOccurred())
				Expect(code).To(HaveLen(auth.AccessCodeLength))
				Expect(strings.ContainsAny(code, "01OIoi")).To(BeFalse())
				Expect(code).To(Equal(strings.ToUpper(code)))
				seen[code] = true
			}
			Expect(len(seen)).To(BeNumerically(">", 45))
		})
	})
})
