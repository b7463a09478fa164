package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/sitetrack/sitetrack/internal/authz"
	"github.com/sitetrack/sitetrack/internal/notify"
	"github.com/sitetrack/sitetrack/internal/shared"
)

const minPasswordLength = 8

// UserStore abstracts user persistence for Service.
type UserStore interface {
	Create(ctx context.Context, email, name, role, passwordHash, googleID string) (User, error)
	GetByID(ctx context.Context, id int64) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByGoogleID(ctx context.Context, googleID string) (User, error)
	LinkGoogleID(ctx context.Context, userID int64, googleID string) error
}

// CodeStore abstracts the one-time login codes.
type CodeStore interface {
	Issue(ctx context.Context, email string) (string, time.Time, error)
	Verify(ctx context.Context, email, code string) error
}

// Service implements registration and the three sign-in paths:
// password, one-time code and Google.
type Service struct {
	users    UserStore
	codes    CodeStore
	google   GoogleIdentity
	notifier notify.Dispatcher
	logger   *slog.Logger
}

// NewService constructs Service. google may be nil when the OAuth
// integration is not configured.
func NewService(users UserStore, codes CodeStore, google GoogleIdentity, notifier notify.Dispatcher, logger *slog.Logger) *Service {
	return &Service{
		users:    users,
		codes:    codes,
		google:   google,
		notifier: notifier,
		logger:   logger,
	}
}

// Register creates an account and sends a welcome notification.
func (s *Service) Register(ctx context.Context, input RegisterInput) (User, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.Name = strings.TrimSpace(input.Name)
	if input.Role == "" {
		input.Role = authz.RoleClient
	}
	if !knownRole(input.Role) {
		return User{}, fmt.Errorf("%w: %q", ErrUnknownRole, input.Role)
	}
	if len(input.Password) < minPasswordLength {
		return User{}, fmt.Errorf("%w: need at least %d characters", ErrWeakPassword, minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}
	user, err := s.users.Create(ctx, input.Email, input.Name, input.Role, string(hash), "")
	if err != nil {
		return User{}, err
	}

	s.notifier.Dispatch(ctx, notify.Welcome{Email: user.Email, Name: user.Name})
	return user, nil
}

// Authenticate checks email and password. It returns
// shared.ErrInvalidCredentials for both unknown accounts and wrong
// passwords so callers cannot probe for registered addresses.
func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return User{}, shared.ErrInvalidCredentials
		}
		return User{}, err
	}
	if user.PasswordHash == "" {
		return User{}, shared.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return User{}, shared.ErrInvalidCredentials
	}
	return user, nil
}

// RequestOTP issues a login code for a registered address. Unknown
// addresses report success without sending anything.
func (s *Service) RequestOTP(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Info("otp requested for unknown email")
			return nil
		}
		return err
	}
	code, expiresAt, err := s.codes.Issue(ctx, user.Email)
	if err != nil {
		return err
	}
	s.notifier.Dispatch(ctx, notify.OTPIssued{Email: user.Email, Code: code, ExpiresAt: expiresAt})
	return nil
}

// VerifyOTP consumes a login code and returns the account it belongs to.
func (s *Service) VerifyOTP(ctx context.Context, email, code string) (User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return User{}, shared.ErrOTPMismatch
		}
		return User{}, err
	}
	if err := s.codes.Verify(ctx, user.Email, code); err != nil {
		return User{}, err
	}
	return user, nil
}

// GoogleSignIn exchanges the OAuth code and resolves it to an account:
// by Google id first, then by email (linking the id), otherwise a new
// client account is created.
func (s *Service) GoogleSignIn(ctx context.Context, code string) (User, error) {
	if s.google == nil {
		return User{}, errors.New("auth: google sign-in not configured")
	}
	profile, err := s.google.Exchange(ctx, code)
	if err != nil {
		return User{}, fmt.Errorf("google exchange: %w", err)
	}

	user, err := s.users.GetByGoogleID(ctx, profile.Subject)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return User{}, err
	}

	user, err = s.users.GetByEmail(ctx, profile.Email)
	if err == nil {
		if linkErr := s.users.LinkGoogleID(ctx, user.ID, profile.Subject); linkErr != nil {
			return User{}, linkErr
		}
		user.GoogleID = profile.Subject
		return user, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return User{}, err
	}

	user, err = s.users.Create(ctx, strings.ToLower(profile.Email), profile.Name, authz.RoleClient, "", profile.Subject)
	if err != nil {
		return User{}, err
	}
	s.notifier.Dispatch(ctx, notify.Welcome{Email: user.Email, Name: user.Name})
	return user, nil
}

// SubjectOf implements authz.SubjectSource.
func (s *Service) SubjectOf(ctx context.Context, userID int64) (authz.Subject, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return authz.Subject{}, err
	}
	return authz.Subject{UserID: user.ID, Name: user.Name, Role: user.Role}, nil
}

func knownRole(role string) bool {
	switch role {
	case authz.RoleAdmin, authz.RoleManager, authz.RoleStaff, authz.RoleClient:
		return true
	}
	return false
}
