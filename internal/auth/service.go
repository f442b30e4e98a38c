package auth

import (
	"golang.org/x/crypto/bcrypt"

	internal "github.com/frahmantamala/company-management/internal"
	"github.com/frahmantamala/company-management/internal/identity"
)

type Service struct {
	userRepo       UserRepository
	tokenGenerator TokenGenerator
	bcryptCost     int
}

func NewService(userRepo UserRepository, tokenGen TokenGenerator) *Service {
	return &Service{
		userRepo:       userRepo,
		tokenGenerator: tokenGen,
		bcryptCost:     bcrypt.DefaultCost,
	}
}

// Authenticate validates credentials and returns a token pair. Suspended
// accounts fail here; credential errors never reveal whether the email
// exists.
func (s *Service) Authenticate(dto LoginDTO) (AuthTokens, error) {
	if err := dto.Validate(); err != nil {
		return AuthTokens{}, err
	}

	storedHash, userID, err := s.userRepo.GetCredentialsByEmail(dto.Email)
	if err != nil {
		return AuthTokens{}, internal.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(dto.Password)); err != nil {
		return AuthTokens{}, internal.ErrInvalidCredentials
	}

	principal, err := s.userRepo.GetIdentityByID(userID)
	if err != nil {
		return AuthTokens{}, internal.ErrInvalidCredentials
	}
	if principal.IsSuspended() {
		return AuthTokens{}, internal.ErrAccountSuspended
	}

	return s.issueTokens(principal.UserID, principal.Email)
}

// RefreshTokens exchanges a valid refresh token for a new pair. The account
// state is re-checked so a suspension takes effect at the next refresh.
func (s *Service) RefreshTokens(refreshToken string) (AuthTokens, error) {
	claims, err := s.tokenGenerator.ValidateToken(refreshToken)
	if err != nil {
		return AuthTokens{}, err
	}

	principal, err := s.userRepo.GetIdentityByID(claims.UserID)
	if err != nil {
		return AuthTokens{}, internal.ErrInvalidToken
	}
	if principal.IsSuspended() {
		return AuthTokens{}, internal.ErrAccountSuspended
	}

	return s.issueTokens(principal.UserID, principal.Email)
}

func (s *Service) issueTokens(userID int64, email string) (AuthTokens, error) {
	accessToken, err := s.tokenGenerator.GenerateAccessToken(userID, email)
	if err != nil {
		return AuthTokens{}, internal.NewInternalError("failed to sign access token", err)
	}

	refreshToken, err := s.tokenGenerator.GenerateRefreshToken(userID, email)
	if err != nil {
		return AuthTokens{}, internal.NewInternalError("failed to sign refresh token", err)
	}

	return AuthTokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokenGenerator.ValidateToken(tokenString)
}

// GetIdentity loads the full principal for the middleware after token
// validation, permission matrix included.
func (s *Service) GetIdentity(userID int64) (*identity.Identity, error) {
	return s.userRepo.GetIdentityByID(userID)
}

func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
