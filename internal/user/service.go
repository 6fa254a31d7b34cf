package user

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/MikeMC777/inventory-api/internal/apperr"
	"github.com/MikeMC777/inventory-api/internal/auth"
	"github.com/MikeMC777/inventory-api/internal/mail"
)

const resetTokenTTL = time.Hour

// Service implements registration, login and the email-driven account
// flows. Collaborators are injected; there is no package-level state.
type Service struct {
	repo       Repository
	mailer     mail.Mailer
	tokens     *auth.Manager
	bcryptCost int
	now        func() time.Time
}

func NewService(repo Repository, mailer mail.Mailer, tokens *auth.Manager) *Service {
	return &Service{
		repo:       repo,
		mailer:     mailer,
		tokens:     tokens,
		bcryptCost: bcrypt.DefaultCost,
		now:        time.Now,
	}
}

// WithBcryptCost lowers the hashing cost in tests.
func (s *Service) WithBcryptCost(cost int) *Service {
	s.bcryptCost = cost
	return s
}

func randomToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", apperr.New(apperr.KindInternal, "generate token: %v", err)
	}
	return hex.EncodeToString(b), nil
}

func (s *Service) Register(ctx context.Context, email, password string, role Role) (*User, error) {
	if email == "" || password == "" {
		return nil, apperr.New(apperr.KindInvalidInput, "email and password are required")
	}
	if len(password) < 8 {
		return nil, apperr.New(apperr.KindInvalidInput, "password must be at least 8 characters long")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, apperr.New(apperr.KindInternal, "hash password: %v", err)
	}
	verifyToken, err := randomToken()
	if err != nil {
		return nil, err
	}

	u := &User{
		Email:             email,
		PasswordHash:      string(hash),
		Role:              ParseRole(string(role)),
		IsVerified:        false,
		VerificationToken: verifyToken,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	// Delivery is best-effort: the account exists either way.
	if err := s.mailer.SendVerification(ctx, u.Email, verifyToken); err != nil {
		log.Printf("[mail] verification email to %s failed: %v", u.Email, err)
	}
	return u, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (string, *User, error) {
	if email == "" || password == "" {
		return "", nil, apperr.New(apperr.KindInvalidInput, "email and password are required")
	}
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		// Do not reveal whether the account exists.
		return "", nil, apperr.New(apperr.KindUnauthenticated, "invalid credentials")
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return "", nil, apperr.New(apperr.KindUnauthenticated, "invalid credentials")
	}
	token, err := s.tokens.Issue(u.ID, u.Email, string(u.Role))
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}

func (s *Service) VerifyEmail(ctx context.Context, token string) error {
	if token == "" {
		return apperr.New(apperr.KindInvalidInput, "token is required")
	}
	return s.repo.VerifyByToken(ctx, token)
}

// ForgotPassword always reports success to the caller; whether an email was
// actually sent must not leak account existence.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	if email == "" {
		return apperr.New(apperr.KindInvalidInput, "email is required")
	}
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return nil
		}
		return err
	}

	token, err := randomToken()
	if err != nil {
		return err
	}
	tokenHash, err := bcrypt.GenerateFromPassword([]byte(token), s.bcryptCost)
	if err != nil {
		return apperr.New(apperr.KindInternal, "hash reset token: %v", err)
	}
	if err := s.repo.SetResetToken(ctx, u.ID, string(tokenHash), s.now().Add(resetTokenTTL)); err != nil {
		return err
	}
	if err := s.mailer.SendPasswordReset(ctx, u.Email, token); err != nil {
		log.Printf("[mail] password reset email to %s failed: %v", u.Email, err)
	}
	return nil
}

func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" {
		return apperr.New(apperr.KindInvalidInput, "token is required")
	}
	if len(newPassword) < 8 {
		return apperr.New(apperr.KindInvalidInput, "new password must be at least 8 characters long")
	}

	candidates, err := s.repo.ActiveResetCandidates(ctx, s.now())
	if err != nil {
		return err
	}
	for i := range candidates {
		u := &candidates[i]
		if bcrypt.CompareHashAndPassword([]byte(u.ResetTokenHash), []byte(token)) == nil {
			hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
			if err != nil {
				return apperr.New(apperr.KindInternal, "hash password: %v", err)
			}
			return s.repo.UpdatePassword(ctx, u.ID, string(hash))
		}
	}
	return apperr.New(apperr.KindUnauthenticated, "reset token has expired or is not valid")
}
