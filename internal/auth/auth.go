package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Role is the closed set of portal roles. Authorization decisions match on
// these constants only; a value outside the set never passes a gate.
type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleEditor Role = "EDITOR"
	RoleViewer Role = "VIEWER"
	RoleClient Role = "CLIENT"
)

var (
	// ManagerRoles have manager-level visibility over every project and
	// conversation. VIEWER is deliberately excluded from management.
	ManagerRoles = []Role{RoleAdmin, RoleEditor}

	// StaffRoles covers everyone on the agency side, including read-only
	// VIEWER accounts.
	StaffRoles = []Role{RoleAdmin, RoleEditor, RoleViewer}

	AllRoles = []Role{RoleAdmin, RoleEditor, RoleViewer, RoleClient}
)

var ErrUnknownRole = errors.New("unknown role")

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleEditor, RoleViewer, RoleClient:
		return Role(s), nil
	}
	return "", ErrUnknownRole
}

func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

func (r Role) IsStaff() bool {
	return RoleIn(r, StaffRoles)
}

func (r Role) IsManager() bool {
	return RoleIn(r, ManagerRoles)
}

func RoleIn(r Role, set []Role) bool {
	for _, candidate := range set {
		if r == candidate {
			return true
		}
	}
	return false
}

// Session is the identity attached to a request after the token check.
type Session struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Role   Role   `json:"role"`
}

// Credential is the row shape the auth repository returns for login checks.
// PasswordHash is nil for CLIENT accounts, AccessCode is nil for staff.
type Credential struct {
	UserID       int64
	Email        string
	Name         string
	Role         Role
	PasswordHash *string
	AccessCode   *string
	IsActive     bool
}

type ServiceAPI interface {
	Authenticate(dto LoginDTO) (AuthTokens, error)
	AuthenticateAccessCode(dto AccessCodeLoginDTO) (AuthTokens, error)
	RefreshTokens(refreshToken string) (AuthTokens, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	SessionForUser(userID int64) (*Session, error)
	HashPassword(password string) (string, error)
}

type RepositoryAPI interface {
	GetByEmail(email string) (*Credential, error)
	GetByAccessCode(code string) (*Credential, error)
	GetByID(userID int64) (*Credential, error)
	UpdateLastLogin(userID int64, at time.Time) error
}

type TokenGeneratorAPI interface {
	GenerateAccessToken(session Session) (string, error)
	GenerateRefreshToken(session Session) (string, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	ValidateRefreshToken(tokenString string) (*Claims, error)
}

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Claims represents JWT token claims
type Claims struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type JWTTokenGenerator struct {
	AccessTokenSecret  []byte
	RefreshTokenSecret []byte
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
}

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidAccessCode  = errors.New("invalid access code")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrUserInactive       = errors.New("user is inactive")
	ErrUserNotFound       = errors.New("user not found")
)

type ctxKey string

const ContextSessionKey ctxKey = "session"

func SessionFromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(ContextSessionKey).(*Session)
	return s, ok
}

func ContextWithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ContextSessionKey, s)
}

func VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
