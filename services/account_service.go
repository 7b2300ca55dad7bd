package services

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/openmart/mini-commerce/apperrors"
	"github.com/openmart/mini-commerce/models"
)

// ErrInvalidCredentials is returned for every login failure. Callers get
// one unified message regardless of which check failed.
var ErrInvalidCredentials = errors.New("invalid credentials")

// DefaultRole is granted to every self-registered account.
const DefaultRole = "customer"

const minPasswordLen = 8

// UserSummary is the account shape exposed over the API.
type UserSummary struct {
	ID       uint     `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
}

// LoginResult carries the issued token plus the authenticated account.
type LoginResult struct {
	Token string      `json:"token"`
	User  UserSummary `json:"user"`
}

// userStore is the slice of the users repository the service needs.
type userStore interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, u *models.User, roleNames ...string) error
}

// tokenIssuer builds a signed session token for a user and its roles.
type tokenIssuer interface {
	Issue(user *models.User, roles []string) (string, error)
}

// AccountService handles registration and login on top of the identity
// store and the token issuer.
type AccountService struct {
	users  userStore
	tokens tokenIssuer
	log    zerolog.Logger
}

func NewAccountService(users userStore, tokens tokenIssuer, log zerolog.Logger) *AccountService {
	return &AccountService{users: users, tokens: tokens, log: log}
}

// Register creates a new account with the default role. The password must
// pass the policy; duplicates fail with apperrors.ErrConflict.
func (s *AccountService) Register(ctx context.Context, username, email, password string) (*UserSummary, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	if username == "" {
		return nil, apperrors.Validation("username", "is required")
	}
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperrors.Validation("email", "must be a valid email address")
	}
	if err := checkPasswordPolicy(password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.users.Create(ctx, user, DefaultRole); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			s.log.Warn().Str("username", username).Msg("registration rejected: duplicate account")
		} else {
			s.log.Error().Err(err).Str("username", username).Msg("registration failed")
		}
		return nil, err
	}

	s.log.Info().Uint("id", user.ID).Str("username", username).Msg("user registered")
	return &UserSummary{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Roles:    user.RoleNames(),
	}, nil
}

// Login authenticates by username first, then email, verifies the
// password and issues a token embedding the user's roles.
func (s *AccountService) Login(ctx context.Context, usernameOrEmail, password string) (*LoginResult, error) {
	user, err := s.users.GetByUsername(ctx, usernameOrEmail)
	if err != nil {
		s.log.Error().Err(err).Msg("user lookup failed")
		return nil, err
	}
	if user == nil {
		user, err = s.users.GetByEmail(ctx, usernameOrEmail)
		if err != nil {
			s.log.Error().Err(err).Msg("user lookup failed")
			return nil, err
		}
	}
	if user == nil {
		s.log.Warn().Str("login", usernameOrEmail).Msg("login rejected: unknown account")
		return nil, ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		s.log.Warn().Str("login", usernameOrEmail).Msg("login rejected: wrong password")
		return nil, ErrInvalidCredentials
	}

	roles := user.RoleNames()
	token, err := s.tokens.Issue(user, roles)
	if err != nil {
		s.log.Error().Err(err).Uint("id", user.ID).Msg("token issuance failed")
		return nil, err
	}

	s.log.Info().Uint("id", user.ID).Msg("user logged in")
	return &LoginResult{
		Token: token,
		User: UserSummary{
			ID:       user.ID,
			Username: user.Username,
			Email:    user.Email,
			Roles:    roles,
		},
	}, nil
}

// checkPasswordPolicy enforces the minimum length and a letter+digit mix.
func checkPasswordPolicy(password string) error {
	if len(password) < minPasswordLen {
		return apperrors.Validation("password", "must be at least 8 characters")
	}
	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return apperrors.Validation("password", "must contain both letters and digits")
	}
	return nil
}
