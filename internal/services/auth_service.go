package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"net/mail"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/wellness-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/wellness-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/wellness-backend/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrInvalidOTP   = &UnauthorizedError{Message: "invalid or expired code"}
	ErrInvalidToken = &UnauthorizedError{Message: "invalid or expired refresh token"}
)

type AuthService struct {
	db      *gorm.DB
	cfg     *config.Config
	otps    OTPStore
	mailer  Mailer
	gateway PaymentGateway
}

// NewAuthService takes a nil gateway when customer records are not wanted.
func NewAuthService(db *gorm.DB, cfg *config.Config, otps OTPStore, mailer Mailer, gateway PaymentGateway) *AuthService {
	return &AuthService{db: db, cfg: cfg, otps: otps, mailer: mailer, gateway: gateway}
}

func (s *AuthService) RequestOTP(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return validationf("a valid email is required")
	}

	code, err := generateOTP(s.cfg.OTPLength)
	if err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}
	if err := s.otps.Put(email, code, s.cfg.OTPExpiry); err != nil {
		return fmt.Errorf("store otp: %w", err)
	}
	if err := s.mailer.SendOTP(ctx, email, code, s.cfg.OTPExpiry); err != nil {
		return fmt.Errorf("send otp: %w", err)
	}
	return nil
}

// VerifyOTP signs the user in, creating the account on first use. Every
// refresh token issued earlier for the user is revoked.
func (s *AuthService) VerifyOTP(ctx context.Context, email, code, name string) (*dto.AuthResponse, error) {
	email = normalizeEmail(email)
	if email == "" || code == "" {
		return nil, validationf("email and otp are required")
	}
	if !s.otps.Consume(email, code) {
		return nil, ErrInvalidOTP
	}

	var user models.User
	created := false
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		name = strings.TrimSpace(name)
		if name == "" {
			name = strings.Split(email, "@")[0]
		}
		user = models.User{Email: email, Name: name, Role: s.roleFor(email)}
		if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
			if !errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, dbError("create user", err)
			}
			if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
				return nil, dbError("load user", err)
			}
		} else {
			created = true
		}
	case err != nil:
		return nil, dbError("load user", err)
	}

	if created {
		s.createCustomer(ctx, &user)
	}

	if err := s.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("user_id = ? AND is_revoked = ?", user.ID, false).
		Update("is_revoked", true).Error; err != nil {
		return nil, dbError("revoke refresh tokens", err)
	}

	return s.generateTokenPair(ctx, &user)
}

func (s *AuthService) createCustomer(ctx context.Context, user *models.User) {
	if s.gateway == nil {
		return
	}
	cust, err := s.gateway.CreateCustomer(ctx, user.Name, user.Phone, map[string]string{
		"email":   user.Email,
		"user_id": user.ID.String(),
	})
	if err != nil {
		slog.Warn("gateway customer not created", "user_id", user.ID.String(), "error", err)
		return
	}
	if err := s.db.WithContext(ctx).Model(user).Update("gateway_customer_id", cust.ID).Error; err != nil {
		slog.Warn("gateway customer id not stored", "user_id", user.ID.String(), "error", err)
	}
}

func (s *AuthService) Refresh(ctx context.Context, rawToken string) (*dto.AuthResponse, error) {
	if rawToken == "" {
		return nil, ErrInvalidToken
	}
	tokenHash := hashToken(rawToken)

	var stored models.RefreshToken
	if err := s.db.WithContext(ctx).Where("token_hash = ? AND is_revoked = ?", tokenHash, false).First(&stored).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, dbError("load refresh token", err)
	}

	// Conditional revoke so two concurrent refreshes cannot both succeed.
	res := s.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("id = ? AND is_revoked = ?", stored.ID, false).
		Update("is_revoked", true)
	if res.Error != nil {
		return nil, dbError("revoke refresh token", res.Error)
	}
	if res.RowsAffected == 0 || time.Now().After(stored.ExpiresAt) {
		return nil, ErrInvalidToken
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", stored.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("user")
		}
		return nil, dbError("load user", err)
	}
	return s.generateTokenPair(ctx, &user)
}

func (s *AuthService) Logout(ctx context.Context, rawToken string) error {
	if rawToken == "" {
		return validationf("refresh token is required")
	}
	err := s.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("token_hash = ?", hashToken(rawToken)).
		Update("is_revoked", true).Error
	if err != nil {
		return dbError("revoke refresh token", err)
	}
	return nil
}

// ParseAccessToken validates an access JWT and returns its subject.
func (s *AuthService) ParseAccessToken(raw string) (uuid.UUID, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return uuid.Nil, unauthorized("invalid access token")
	}
	sub, err := token.Claims.GetSubject()
	if err != nil {
		return uuid.Nil, unauthorized("invalid access token")
	}
	id, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, unauthorized("invalid access token")
	}
	return id, nil
}

func (s *AuthService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("user")
	}
	if err != nil {
		return nil, dbError("load user", err)
	}
	return &user, nil
}

// PurgeRefreshTokens deletes expired and revoked tokens older than cutoff.
func (s *AuthService) PurgeRefreshTokens(ctx context.Context, cutoff time.Time) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("expires_at < ? OR (is_revoked = ? AND created_at < ?)", cutoff, true, cutoff).
		Delete(&models.RefreshToken{})
	if res.Error != nil {
		return 0, dbError("purge refresh tokens", res.Error)
	}
	return res.RowsAffected, nil
}

func (s *AuthService) roleFor(email string) string {
	for _, admin := range strings.Split(s.cfg.AdminEmails, ",") {
		if normalizeEmail(admin) == email && email != "" {
			return "admin"
		}
	}
	return "user"
}

func (s *AuthService) generateTokenPair(ctx context.Context, user *models.User) (*dto.AuthResponse, error) {
	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.generateRefreshToken(ctx, user)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User: dto.UserResponse{
			ID:    user.ID,
			Email: user.Email,
			Name:  user.Name,
			Role:  user.Role,
		},
	}, nil
}

func (s *AuthService) generateAccessToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":   user.ID.String(),
		"email": user.Email,
		"role":  user.Role,
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(s.cfg.JWTAccessExpiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *AuthService) generateRefreshToken(ctx context.Context, user *models.User) (string, error) {
	rawBytes := make([]byte, 32)
	if _, err := rand.Read(rawBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	rawToken := base64.URLEncoding.EncodeToString(rawBytes)
	record := models.RefreshToken{
		UserID:    user.ID,
		TokenHash: hashToken(rawToken),
		ExpiresAt: time.Now().Add(s.cfg.JWTRefreshExpiry),
	}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return "", dbError("store refresh token", err)
	}
	return rawToken, nil
}

func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return fmt.Sprintf("%x", h)
}

func generateOTP(length int) (string, error) {
	if length < 4 || length > 10 {
		length = 6
	}
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		b.WriteByte(byte('0' + n.Int64()))
	}
	return b.String(), nil
}
