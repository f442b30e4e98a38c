package auth

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	internal "github.com/frahmantamala/company-management/internal"
	"github.com/frahmantamala/company-management/internal/identity"
)

func TestAuth(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Auth Module Suite")
}

type mockUserRepository struct {
	credentials map[string]struct {
		hash   string
		userID int64
	}
	identities map[int64]*identity.Identity
}

func newMockUserRepository() *mockUserRepository {
	hashed, _ := bcrypt.GenerateFromPassword([]byte("correct_password"), bcrypt.MinCost)
	branchID := int64(3)

	return &mockUserRepository{
		credentials: map[string]struct {
			hash   string
			userID int64
		}{
			"admin@example.com":     {hash: string(hashed), userID: 1},
			"employee@example.com":  {hash: string(hashed), userID: 2},
			"suspended@example.com": {hash: string(hashed), userID: 3},
		},
		identities: map[int64]*identity.Identity{
			1: {
				UserID:       1,
				Email:        "admin@example.com",
				Role:         identity.RoleAdmin,
				AccountState: identity.AccountActive,
			},
			2: {
				UserID:           2,
				Email:            "employee@example.com",
				Role:             identity.RoleEmployee,
				AccountState:     identity.AccountActive,
				AssignedBranchID: &branchID,
				Permissions: identity.PermissionMatrix{
					identity.ModuleProducts: {CanView: true},
				},
			},
			3: {
				UserID:       3,
				Email:        "suspended@example.com",
				Role:         identity.RoleAdmin,
				AccountState: identity.AccountSuspended,
			},
		},
	}
}

func (m *mockUserRepository) GetCredentialsByEmail(email string) (string, int64, error) {
	cred, ok := m.credentials[email]
	if !ok {
		return "", 0, internal.ErrUserNotFound
	}
	return cred.hash, cred.userID, nil
}

func (m *mockUserRepository) GetIdentityByID(userID int64) (*identity.Identity, error) {
	principal, ok := m.identities[userID]
	if !ok {
		return nil, internal.ErrUserNotFound
	}
	return principal, nil
}

var _ = Describe("AuthService", func() {
	var (
		service  *Service
		mockRepo *mockUserRepository
		tokenGen *JWTTokenGenerator
	)

	BeforeEach(func() {
		mockRepo = newMockUserRepository()
		tokenGen = NewJWTTokenGenerator("test-access-secret-32-chars-long!!", "test-refresh-secret-32-chars-long!")
		service = NewService(mockRepo, tokenGen)
	})

	Describe("Authenticate", func() {
		It("returns a token pair for valid credentials", func() {
			tokens, err := service.Authenticate(LoginDTO{
				Email:    "admin@example.com",
				Password: "correct_password",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(tokens.AccessToken).NotTo(BeEmpty())
			Expect(tokens.RefreshToken).NotTo(BeEmpty())
			Expect(tokens.AccessToken).NotTo(Equal(tokens.RefreshToken))
		})

		It("rejects a wrong password", func() {
			_, err := service.Authenticate(LoginDTO{
				Email:    "admin@example.com",
				Password: "wrong",
			})
			Expect(err).To(MatchError(internal.ErrInvalidCredentials))
		})

		It("reports unknown emails the same as wrong passwords", func() {
			_, err := service.Authenticate(LoginDTO{
				Email:    "nobody@example.com",
				Password: "correct_password",
			})
			Expect(err).To(MatchError(internal.ErrInvalidCredentials))
		})

		It("rejects a suspended account even with the right password", func() {
			_, err := service.Authenticate(LoginDTO{
				Email:    "suspended@example.com",
				Password: "correct_password",
			})
			Expect(err).To(MatchError(internal.ErrAccountSuspended))
		})

		It("rejects missing fields", func() {
			_, err := service.Authenticate(LoginDTO{Email: "admin@example.com"})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("RefreshTokens", func() {
		It("exchanges a valid refresh token for a new pair", func() {
			tokens, err := service.Authenticate(LoginDTO{
				Email:    "employee@example.com",
				Password: "correct_password",
			})
			Expect(err).NotTo(HaveOccurred())

			refreshed, err := service.RefreshTokens(tokens.RefreshToken)
			Expect(err).NotTo(HaveOccurred())
			Expect(refreshed.AccessToken).NotTo(BeEmpty())
		})

		It("rejects garbage tokens", func() {
			_, err := service.RefreshTokens("not-a-token")
			Expect(err).To(MatchError(internal.ErrInvalidToken))
		})

		It("rejects a refresh for an account suspended since login", func() {
			tokens, err := service.Authenticate(LoginDTO{
				Email:    "admin@example.com",
				Password: "correct_password",
			})
			Expect(err).NotTo(HaveOccurred())

			mockRepo.identities[1].AccountState = identity.AccountSuspended
			_, err = service.RefreshTokens(tokens.RefreshToken)
			Expect(err).To(MatchError(internal.ErrAccountSuspended))
		})
	})

	Describe("ValidateAccessToken", func() {
		It("returns the claims embedded at login", func() {
			tokens, err := service.Authenticate(LoginDTO{
				Email:    "employee@example.com",
				Password: "correct_password",
			})
			Expect(err).NotTo(HaveOccurred())

			claims, err := service.ValidateAccessToken(tokens.AccessToken)
			Expect(err).NotTo(HaveOccurred())
			Expect(claims.UserID).To(Equal(int64(2)))
			Expect(claims.Email).To(Equal("employee@example.com"))
		})

		It("rejects a token signed with another secret", func() {
			other := NewJWTTokenGenerator("another-access-secret-32-chars!!!!", "another-refresh-secret-32-chars!!!")
			token, err := other.GenerateAccessToken(1, "admin@example.com")
			Expect(err).NotTo(HaveOccurred())

			_, err = service.ValidateAccessToken(token)
			Expect(err).To(MatchError(internal.ErrInvalidToken))
		})
	})
})
