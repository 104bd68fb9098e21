package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// AccessCodeLength is the fixed length of client access codes.
const AccessCodeLength = 8

// accessCodeAlphabet excludes 0/O/1/I to keep codes readable over the phone.
const accessCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Service is the main auth service with dependencies
type Service struct {
	repo       RepositoryAPI
	tokenGen   TokenGeneratorAPI
	bcryptCost int
	logger     *slog.Logger
}

// NewService creates a new auth service
func NewService(repo RepositoryAPI, tokenGen TokenGeneratorAPI, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost <= 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		repo:       repo,
		tokenGen:   tokenGen,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// NewJWTTokenGenerator creates a new JWT token generator
func NewJWTTokenGenerator(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *JWTTokenGenerator {
	return &JWTTokenGenerator{
		AccessTokenSecret:  []byte(accessSecret),
		RefreshTokenSecret: []byte(refreshSecret),
		AccessTokenTTL:     accessTTL,
		RefreshTokenTTL:    refreshTTL,
	}
}

// Authenticate validates staff email/password credentials and returns tokens.
// Inactive users are rejected before any credential comparison.
func (s *Service) Authenticate(dto LoginDTO) (AuthTokens, error) {
	if err := dto.Validate(); err != nil {
		return AuthTokens{}, err
	}

	cred, err := s.repo.GetByEmail(dto.Email)
	if err != nil {
		return AuthTokens{}, ErrInvalidCredentials
	}

	if !cred.IsActive {
		s.logger.Warn("login rejected: inactive account", "user_id", cred.UserID)
		return AuthTokens{}, ErrUserInactive
	}

	// CLIENT rows carry no password hash; they authenticate by access code only.
	if cred.PasswordHash == nil || cred.Role == RoleClient {
		return AuthTokens{}, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*cred.PasswordHash), []byte(dto.Password)); err != nil {
		return AuthTokens{}, ErrInvalidCredentials
	}

	return s.issueTokens(cred)
}

// AuthenticateAccessCode validates an 8-character client access code.
func (s *Service) AuthenticateAccessCode(dto AccessCodeLoginDTO) (AuthTokens, error) {
	if err := dto.Validate(); err != nil {
		return AuthTokens{}, err
	}

	cred, err := s.repo.GetByAccessCode(dto.NormalizedCode())
	if err != nil {
		return AuthTokens{}, ErrInvalidAccessCode
	}

	if !cred.IsActive {
		s.logger.Warn("access code login rejected: inactive account", "user_id", cred.UserID)
		return AuthTokens{}, ErrUserInactive
	}

	if cred.Role != RoleClient {
		return AuthTokens{}, ErrInvalidAccessCode
	}

	return s.issueTokens(cred)
}

func (s *Service) issueTokens(cred *Credential) (AuthTokens, error) {
	session := Session{
		UserID: cred.UserID,
		Email:  cred.Email,
		Name:   cred.Name,
		Role:   cred.Role,
	}

	accessToken, err := s.tokenGen.GenerateAccessToken(session)
	if err != nil {
		return AuthTokens{}, err
	}

	refreshToken, err := s.tokenGen.GenerateRefreshToken(session)
	if err != nil {
		return AuthTokens{}, err
	}

	if err := s.repo.UpdateLastLogin(cred.UserID, time.Now()); err != nil {
		// Last-login is bookkeeping; a failed update must not block the login.
		s.logger.Warn("failed to update last login", "user_id", cred.UserID, "error", err)
	}

	return AuthTokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// RefreshTokens validates a refresh token and issues a fresh pair. The user
// row is re-read so a deactivation or role change invalidates the session.
func (s *Service) RefreshTokens(refreshToken string) (AuthTokens, error) {
	claims, err := s.tokenGen.ValidateRefreshToken(refreshToken)
	if err != nil {
		return AuthTokens{}, err
	}

	cred, err := s.repo.GetByID(claims.UserID)
	if err != nil {
		return AuthTokens{}, ErrInvalidToken
	}
	if !cred.IsActive {
		return AuthTokens{}, ErrUserInactive
	}

	return s.issueTokens(cred)
}

// ValidateAccessToken validates an access token and returns claims
func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokenGen.ValidateAccessToken(tokenString)
}

// SessionForUser loads the current user row and builds a session from it,
// so middleware always sees the live role and active flag.
func (s *Service) SessionForUser(userID int64) (*Session, error) {
	cred, err := s.repo.GetByID(userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	if !cred.IsActive {
		return nil, ErrUserInactive
	}
	return &Session{
		UserID: cred.UserID,
		Email:  cred.Email,
		Name:   cred.Name,
		Role:   cred.Role,
	}, nil
}

// HashPassword creates a bcrypt hash of the password
func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// GenerateAccessCode creates a cryptographically random 8-character code.
func GenerateAccessCode() (string, error) {
	buf := make([]byte, AccessCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = accessCodeAlphabet[int(b)%len(accessCodeAlphabet)]
	}
	return string(buf), nil
}

// GenerateAccessToken creates a new access token
func (j *JWTTokenGenerator) GenerateAccessToken(session Session) (string, error) {
	return j.sign(session, j.AccessTokenSecret, j.AccessTokenTTL)
}

// GenerateRefreshToken creates a new refresh token
func (j *JWTTokenGenerator) GenerateRefreshToken(session Session) (string, error) {
	return j.sign(session, j.RefreshTokenSecret, j.RefreshTokenTTL)
}

func (j *JWTTokenGenerator) sign(session Session, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: session.UserID,
		Email:  session.Email,
		Role:   string(session.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   strconv.FormatInt(session.UserID, 10),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(secret)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ValidateAccessToken validates a JWT access token and returns claims
func (j *JWTTokenGenerator) ValidateAccessToken(tokenString string) (*Claims, error) {
	return j.validate(tokenString, j.AccessTokenSecret)
}

// ValidateRefreshToken validates a JWT refresh token and returns claims
func (j *JWTTokenGenerator) ValidateRefreshToken(tokenString string) (*Claims, error) {
	return j.validate(tokenString, j.RefreshTokenSecret)
}

func (j *JWTTokenGenerator) validate(tokenString string, secret []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		if _, perr := ParseRole(claims.Role); perr != nil {
			return nil, ErrInvalidToken
		}
		return claims, nil
	}

	return nil, ErrInvalidToken
}
