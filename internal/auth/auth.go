package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"message_service/internal/lib/jwt"
	sl "message_service/internal/lib/logger"
	"message_service/internal/models"
	"message_service/internal/storage"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrUserExists         = errors.New("user already exists")
)

const (
	EventUserRegistered = "user_registered"
	EventUserLogin      = "user_login"
	EventUserLogout     = "user_logout"
)

type Auth struct {
	log         *slog.Logger
	usrSaver    UserSaver
	usrProvider UserProvider
	revoked     TokenBlacklist
	publisher   EventPublisher
	secret      []byte
	tokenTTL    time.Duration
}

type UserSaver interface {
	SaveUser(ctx context.Context, username string, passHash []byte) (uid int64, err error)
}

type UserProvider interface {
	UserByUsername(ctx context.Context, username string) (models.User, error)
}

// TokenBlacklist is the revocation set. The in-memory implementation ignores
// ttl; the redis one uses it to let entries expire with the token.
type TokenBlacklist interface {
	Add(ctx context.Context, token string, ttl time.Duration) error
	Contains(ctx context.Context, token string) (bool, error)
}

type EventPublisher interface {
	SendEvent(ctx context.Context, event models.AuthEvent) error
}

func New(
	log *slog.Logger,
	userSaver UserSaver,
	userProvider UserProvider,
	revoked TokenBlacklist,
	publisher EventPublisher,
	secret string,
	tokenTTL time.Duration,
) *Auth {
	return &Auth{
		log:         log,
		usrSaver:    userSaver,
		usrProvider: userProvider,
		revoked:     revoked,
		publisher:   publisher,
		secret:      []byte(secret),
		tokenTTL:    tokenTTL,
	}
}

func (a *Auth) RegisterNewUser(
	ctx context.Context,
	username string,
	pass string,
) (models.User, error) {
	const op = "auth.RegisterNewUser"

	log := a.log.With(
		slog.String("op", op),
		slog.String("username", username),
	)

	log.Info("registering new user")

	passHash, err := bcrypt.GenerateFromPassword([]byte(pass), bcrypt.DefaultCost)
	if err != nil {
		log.Error("failed to generate password hash", sl.Err(err))
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	id, err := a.usrSaver.SaveUser(ctx, username, passHash)
	if err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			log.Warn("user already exists")

			return models.User{}, fmt.Errorf("%s: %w", op, ErrUserExists)
		}

		log.Error("failed to save user", sl.Err(err))

		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	a.publish(ctx, EventUserRegistered, username)

	log.Info("user registered", slog.Int64("uid", id))

	return models.User{ID: id, Username: username, PassHash: passHash}, nil
}

// Login checks credentials and issues a signed access token.
func (a *Auth) Login(
	ctx context.Context,
	username, password string,
) (string, models.User, error) {
	const op = "auth.Login"

	log := a.log.With(slog.String("op", op))

	user, err := a.usrProvider.UserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Warn("user not found")
			return "", models.User{}, ErrInvalidCredentials
		}

		log.Error("failed to get user", sl.Err(err))
		return "", models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := bcrypt.CompareHashAndPassword(user.PassHash, []byte(password)); err != nil {
		log.Info("invalid credentials")
		return "", models.User{}, ErrInvalidCredentials
	}

	accessToken, err := jwt.NewToken(user.Username, a.secret, a.tokenTTL)
	if err != nil {
		log.Error("failed to generate access token", sl.Err(err))
		return "", models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	a.publish(ctx, EventUserLogin, user.Username)

	log.Info("user logged in successfully", slog.Int64("uid", user.ID))

	return accessToken, user, nil
}

// Logout adds the presented token to the revocation set. The token is not
// validated first: revoking twice, or revoking garbage, is not an error.
func (a *Auth) Logout(ctx context.Context, token string) error {
	const op = "auth.Logout"

	log := a.log.With(slog.String("op", op))

	if err := a.revoked.Add(ctx, token, a.tokenTTL); err != nil {
		log.Error("failed to revoke token", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	if username, err := jwt.ParseToken(token, a.secret); err == nil {
		a.publish(ctx, EventUserLogout, username)
	}

	log.Info("token revoked")

	return nil
}

// Authenticate resolves a bearer token to a user. Every failure branch
// surfaces the same ErrInvalidToken so callers cannot tell a revoked token
// from an expired one or an unknown user; the cause is only logged.
func (a *Auth) Authenticate(ctx context.Context, token string) (models.User, error) {
	const op = "auth.Authenticate"

	log := a.log.With(slog.String("op", op))

	revoked, err := a.revoked.Contains(ctx, token)
	if err != nil {
		log.Error("failed to check revocation set", sl.Err(err))
		return models.User{}, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}
	if revoked {
		log.Debug("token is revoked")
		return models.User{}, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	username, err := jwt.ParseToken(token, a.secret)
	if err != nil {
		log.Debug("token verification failed", sl.Err(err))
		return models.User{}, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	user, err := a.usrProvider.UserByUsername(ctx, username)
	if err != nil {
		log.Debug("token subject not found", sl.Err(err))
		return models.User{}, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	return user, nil
}

// publish sends an audit event; failures are logged and never surface to the
// request that triggered them.
func (a *Auth) publish(ctx context.Context, eventType, username string) {
	if a.publisher == nil {
		return
	}

	event := models.AuthEvent{
		Type:       eventType,
		Username:   username,
		OccurredAt: time.Now(),
	}

	if err := a.publisher.SendEvent(ctx, event); err != nil {
		a.log.Error("failed to publish audit event", sl.Err(err))
	}
}
