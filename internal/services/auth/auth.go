// Package auth реализует регистрацию по коду подтверждения и выдачу JWT.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/yamdb/internal/lib/confirmation"
	"github.com/magabrotheeeer/yamdb/internal/lib/jwt"
	"github.com/magabrotheeeer/yamdb/internal/lib/sl"
	"github.com/magabrotheeeer/yamdb/internal/models"
	"github.com/magabrotheeeer/yamdb/internal/services/svcerr"
	"github.com/magabrotheeeer/yamdb/internal/storage/repository"
)

const (
	msgUsernameTaken = "A user with that username already exists."
	msgEmailTaken    = "A user with that email already exists."
	msgInvalidCode   = "Invalid confirmation code."
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// CreateUser сохраняет нового пользователя и возвращает его ID.
	CreateUser(ctx context.Context, user models.User) (int64, error)
	// GetUserByUsername возвращает пользователя по имени или repository.ErrNotFound.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	// GetUserByEmail возвращает пользователя по email или repository.ErrNotFound.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	SetConfirmationCode(ctx context.Context, userID int64, codeHash string, expiry time.Time) error
	// ClearConfirmationCode гасит код с хешем codeHash; repository.ErrNotFound, если его уже погасили.
	ClearConfirmationCode(ctx context.Context, userID int64, codeHash string) error
}

// Dispatcher доставляет письмо с кодом подтверждения.
type Dispatcher interface {
	SendConfirmation(ctx context.Context, mail models.ConfirmationMail) error
}

// AuthService отвечает за регистрацию и выдачу токенов.
type AuthService struct {
	users    UserRepository
	jwtMaker jwt.Maker
	mail     Dispatcher
	codeTTL  time.Duration
	log      *slog.Logger

	now     func() time.Time
	newCode func() string
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, jwtMaker jwt.Maker, mail Dispatcher,
	codeTTL time.Duration, log *slog.Logger) *AuthService {
	return &AuthService{
		users:    users,
		jwtMaker: jwtMaker,
		mail:     mail,
		codeTTL:  codeTTL,
		log:      log,
		now:      time.Now,
		newCode:  confirmation.NewCode,
	}
}

// Signup создаёт пользователя (или находит существующего с той же парой
// username и email), выпускает новый код подтверждения и отправляет его.
func (s *AuthService) Signup(ctx context.Context, username, email string) (*models.User, error) {
	const op = "services.auth.Signup"

	byName, err := s.lookup(ctx, s.users.GetUserByUsername, username)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	byEmail, err := s.lookup(ctx, s.users.GetUserByEmail, email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	switch {
	case byName != nil && byName.Email == email:
	case byName != nil:
		return nil, svcerr.NewValidationError("username", msgUsernameTaken)
	case byEmail != nil:
		return nil, svcerr.NewValidationError("email", msgEmailTaken)
	}

	code := s.newCode()
	hash, err := confirmation.GetHash(code)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	expiry := s.now().Add(s.codeTTL)

	user := byName
	if user == nil {
		user = &models.User{
			Username:               username,
			Email:                  email,
			Role:                   models.RoleUser,
			ConfirmationCodeHash:   &hash,
			ConfirmationCodeExpiry: &expiry,
		}
		id, err := s.users.CreateUser(ctx, *user)
		if err != nil {
			if verr := uniqueViolation(err); verr != nil {
				return nil, verr
			}
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		user.ID = id
		s.log.Info("user signed up", slog.String("username", username))
	} else if err = s.users.SetConfirmationCode(ctx, user.ID, hash, expiry); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	mail := models.ConfirmationMail{Username: user.Username, Email: user.Email, Code: code}
	if err = s.mail.SendConfirmation(ctx, mail); err != nil {
		s.log.Error("failed to dispatch confirmation code", slog.String("username", username), sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

// ObtainToken обменивает действующий код подтверждения на токен доступа.
// Код одноразовый: после выдачи токена он гасится.
func (s *AuthService) ObtainToken(ctx context.Context, username, code string) (string, error) {
	const op = "services.auth.ObtainToken"

	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", fmt.Errorf("%s: %w", op, svcerr.ErrNotFound)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if err = confirmation.Verify(user.ConfirmationCodeHash, user.ConfirmationCodeExpiry, code, s.now()); err != nil {
		s.log.Info("confirmation code rejected", slog.String("username", username), sl.Err(err))
		return "", invalidCode()
	}

	token, err := s.jwtMaker.GenerateToken(user.ID, user.Username, string(user.EffectiveRole()))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	// Из параллельных запросов с одним кодом токен получает только тот, кто погасил код.
	if err = s.users.ClearConfirmationCode(ctx, user.ID, *user.ConfirmationCodeHash); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.log.Info("confirmation code already used", slog.String("username", username))
			return "", invalidCode()
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return token, nil
}

func invalidCode() error {
	return &svcerr.ValidationError{
		Fields: map[string][]string{"confirmation_code": {msgInvalidCode}},
		Err:    svcerr.ErrInvalidCode,
	}
}

// ParseToken проверяет токен и восстанавливает из него пользователя запроса.
func (s *AuthService) ParseToken(token string) (*models.Actor, error) {
	const op = "services.auth.ParseToken"
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	role := models.Role(claims.Role)
	if !role.Valid() {
		return nil, fmt.Errorf("%s: unknown role %q", op, claims.Role)
	}
	return &models.Actor{UserID: userID, Username: claims.Username, Role: role}, nil
}

func (s *AuthService) lookup(ctx context.Context,
	get func(context.Context, string) (*models.User, error), key string) (*models.User, error) {
	user, err := get(ctx, key)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	return user, err
}

func uniqueViolation(err error) error {
	if !errors.Is(err, repository.ErrAlreadyExists) {
		return nil
	}
	switch repository.ConstraintName(err) {
	case repository.ConstraintUsername:
		return svcerr.NewValidationError("username", msgUsernameTaken)
	case repository.ConstraintEmail:
		return svcerr.NewValidationError("email", msgEmailTaken)
	}
	return nil
}
