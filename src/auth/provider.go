package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"crmBackend/src/apperr"
	"crmBackend/src/config"
	"crmBackend/src/db"
	"crmBackend/src/db/gorm_models"
	"crmBackend/src/mail"
)

const minPasswordLength = 8

// Provider - the provider that works with users and credentials in database
type Provider struct {
	db          *gorm.DB
	tokens      *TokenManager
	mailer      mail.Mailer
	frontendURL string
	resetTTL    time.Duration
	now         func() time.Time
}

func NewProvider(db *gorm.DB, tokens *TokenManager, mailer mail.Mailer, cfg *config.Config) *Provider {
	return &Provider{
		db:          db,
		tokens:      tokens,
		mailer:      mailer,
		frontendURL: cfg.Mail.FrontendURL,
		resetTTL:    cfg.JWT.ResetTTL,
		now:         time.Now,
	}
}

// WithNow подменяет источник времени, используется в тестах
func (p *Provider) WithNow(now func() time.Time) *Provider {
	p.now = now
	return p
}

// LoginResult ответ на успешный вход
type LoginResult struct {
	TokenPair
	User *gorm_models.User
}

// Signup регистрирует нового пользователя
func (p *Provider) Signup(ctx context.Context, username, email, password string) error {
	if username == "" || email == "" {
		return fmt.Errorf("%w: username and email are required", apperr.ErrValidation)
	}
	if len(password) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", apperr.ErrValidation, minPasswordLength)
	}

	var taken int64
	err := p.db.WithContext(ctx).
		Model(&gorm_models.User{}).
		Where("user_name = ? OR email = ?", username, email).
		Count(&taken).Error
	if err != nil {
		return err
	}
	if taken > 0 {
		return fmt.Errorf("%w: username or email already registered", apperr.ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user := gorm_models.User{
		UserName:     username,
		Email:        email,
		PasswordHash: string(hash),
	}
	// Проверка выше не закрывает гонку двух одновременных регистраций,
	// проигравший упирается в уникальный индекс
	if err := p.db.WithContext(ctx).Create(&user).Error; err != nil {
		if db.IsDuplicate(err) {
			return fmt.Errorf("%w: username or email already registered", apperr.ErrValidation)
		}
		return err
	}
	return nil
}

// Login проверяет учётные данные и выпускает пару токенов
func (p *Provider) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var user gorm_models.User
	err := p.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, apperr.ErrUnauthorized
	}

	pair, err := p.tokens.IssuePair(user.IDUser)
	if err != nil {
		return nil, err
	}
	return &LoginResult{TokenPair: pair, User: &user}, nil
}

// ForgotPassword создаёт одноразовый токен сброса и шлёт ссылку на почту
func (p *Provider) ForgotPassword(ctx context.Context, email string) error {
	var user gorm_models.User
	err := p.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: user", apperr.ErrNotFound)
	}
	if err != nil {
		return err
	}

	token := strings.ReplaceAll(uuid.NewString(), "-", "")
	resetToken := gorm_models.PasswordResetToken{
		IDUser:    user.IDUser,
		Token:     token,
		ExpiresAt: p.now().Add(p.resetTTL),
	}
	if err := p.db.WithContext(ctx).Create(&resetToken).Error; err != nil {
		return err
	}

	resetLink := p.frontendURL + "/reset-password?token=" + token
	return p.mailer.Send(
		user.Email,
		"Reset Your Password",
		"Click the link to reset your password:\n"+resetLink,
	)
}

// ResetPassword меняет пароль по одноразовому токену.
// Истёкший токен удаляется как побочный эффект отказа.
func (p *Provider) ResetPassword(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", apperr.ErrValidation, minPasswordLength)
	}

	var resetToken gorm_models.PasswordResetToken
	err := p.db.WithContext(ctx).Where("token = ?", token).First(&resetToken).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: token", apperr.ErrNotFound)
	}
	if err != nil {
		return err
	}

	if resetToken.IsExpired(p.now()) {
		if err := p.deleteToken(ctx, resetToken.IDToken); err != nil {
			return err
		}
		return apperr.ErrExpiredToken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&gorm_models.User{}).
			Where("id_user = ?", resetToken.IDUser).
			Update("password_hash", string(hash)).Error
		if err != nil {
			return err
		}
		return tx.Delete(&gorm_models.PasswordResetToken{}, "id_token = ?", resetToken.IDToken).Error
	})
}

// GetUser возвращает пользователя по идентификатору из токена
func (p *Provider) GetUser(ctx context.Context, id int64) (*gorm_models.User, error) {
	var user gorm_models.User
	err := p.db.WithContext(ctx).First(&user, "id_user = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (p *Provider) deleteToken(ctx context.Context, id int64) error {
	return p.db.WithContext(ctx).Delete(&gorm_models.PasswordResetToken{}, "id_token = ?", id).Error
}
