package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sefazor/fanvault-backend/internal/models"
	"github.com/sefazor/fanvault-backend/pkg/bcrypt"
	"github.com/sefazor/fanvault-backend/pkg/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	// Token süreleri
	TokenExpiryEmailVerify = 24 * time.Hour // 24 saat
	TokenExpiryReset       = time.Hour      // 1 saat

	tokenBytes = 32
)

type AuthService struct {
	users  UserStore
	tokens TokenStore
	mailer Mailer
	issuer TokenIssuer
	log    *zap.Logger
	now    func() time.Time
}

func NewAuthService(users UserStore, tokens TokenStore, mailer Mailer, issuer TokenIssuer, log *zap.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, mailer: mailer, issuer: issuer, log: log, now: time.Now}
}

func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	email := normalizeEmail(req.Email)

	exists, err := s.users.EmailExists(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUserExists
	}

	hashedPassword, err := bcrypt.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		FullName: strings.TrimSpace(req.FullName),
		Email:    email,
		Password: hashedPassword,
		Role:     models.RoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	token, err := utils.GenerateToken(tokenBytes)
	if err != nil {
		return nil, err
	}
	err = s.tokens.CreateVerification(ctx, &models.VerificationToken{
		UserID:    user.ID,
		Token:     token,
		ExpiresAt: s.now().Add(TokenExpiryEmailVerify),
	})
	if err != nil {
		return nil, fmt.Errorf("create verification token: %w", err)
	}

	if err := s.mailer.SendVerification(ctx, user.Email, user.FullName, token); err != nil {
		s.log.Warn("queue verification email failed", zap.Uint("user_id", user.ID), zap.Error(err))
	}

	jwtToken, err := s.issuer.GenerateToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("token generation failed: %w", err)
	}

	return &models.AuthResponse{Token: jwtToken, User: *user}, nil
}

func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidLogin
		}
		return nil, err
	}

	if err := bcrypt.ComparePassword(user.Password, req.Password); err != nil {
		return nil, ErrInvalidLogin
	}

	token, err := s.issuer.GenerateToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("token generation failed: %w", err)
	}

	return &models.AuthResponse{Token: token, User: *user}, nil
}

// VerifyEmail marks the token's user verified. An expired token is deleted
// and rejected.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	vt, err := s.tokens.FindVerification(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTokenInvalid
		}
		return err
	}

	if !s.now().Before(vt.ExpiresAt) {
		if err := s.tokens.DeleteVerification(ctx, vt.ID); err != nil {
			s.log.Warn("delete expired verification token failed", zap.Uint("token_id", vt.ID), zap.Error(err))
		}
		return ErrTokenExpired
	}

	if err := s.tokens.ConsumeVerification(ctx, vt.UserID); err != nil {
		return fmt.Errorf("verify user: %w", err)
	}

	if user, err := s.users.GetByID(ctx, vt.UserID); err == nil {
		if err := s.mailer.SendWelcome(ctx, user.Email, user.FullName); err != nil {
			s.log.Warn("queue welcome email failed", zap.Uint("user_id", user.ID), zap.Error(err))
		}
	}
	return nil
}

// ForgotPassword never reveals whether the address is registered.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.Error("forgot password lookup failed", zap.Error(err))
		}
		return nil
	}

	token, err := utils.GenerateToken(tokenBytes)
	if err != nil {
		s.log.Error("generate reset token failed", zap.Error(err))
		return nil
	}

	err = s.tokens.CreateReset(ctx, &models.PasswordResetToken{
		UserID:    user.ID,
		Token:     token,
		ExpiresAt: s.now().Add(TokenExpiryReset),
	})
	if err != nil {
		s.log.Error("create reset token failed", zap.Uint("user_id", user.ID), zap.Error(err))
		return nil
	}

	if err := s.mailer.SendPasswordReset(ctx, user.Email, token); err != nil {
		s.log.Warn("queue password reset email failed", zap.Uint("user_id", user.ID), zap.Error(err))
	}
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, req models.ResetPasswordRequest) error {
	rt, err := s.tokens.FindReset(ctx, req.Token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTokenInvalid
		}
		return err
	}

	if !s.now().Before(rt.ExpiresAt) {
		if err := s.tokens.DeleteReset(ctx, rt.ID); err != nil {
			s.log.Warn("delete expired reset token failed", zap.Uint("token_id", rt.ID), zap.Error(err))
		}
		return ErrTokenExpired
	}

	hashedPassword, err := bcrypt.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	return s.tokens.ResetPassword(ctx, rt.UserID, hashedPassword)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
