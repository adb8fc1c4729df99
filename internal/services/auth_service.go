package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"relay-chat/config"
	"relay-chat/internal/domain/user"
	"relay-chat/internal/repository"
	apperrors "relay-chat/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrMissingFields      = apperrors.InvalidInput("Please fill in all fields")
	ErrPasswordMismatch   = apperrors.InvalidInput("Passwords do not match")
	ErrInvalidGender      = apperrors.InvalidInput("Gender must be male or female")
	ErrUserExists         = apperrors.New(apperrors.ErrAlreadyExists, "User already exists")
	ErrInvalidCredentials = apperrors.InvalidInput("Invalid username or password")
	ErrNoToken            = apperrors.Unauthorized("Unauthorized - No Token Provided")
	ErrInvalidToken       = apperrors.Unauthorized("Unauthorized - Invalid Token")
	ErrUserNotFound       = apperrors.NotFound("User not found")
)

// dummyHash is compared against when the username is unknown so both login
// failures cost one bcrypt comparison.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("relay-chat-dummy-password"), bcrypt.DefaultCost)

type AuthService struct {
	userRepo      repository.UserRepository
	jwtSecret     []byte
	sessionTTL    time.Duration
	avatarBaseURL string
}

func NewAuthService(userRepo repository.UserRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo:      userRepo,
		jwtSecret:     []byte(cfg.JWTSecret),
		sessionTTL:    cfg.SessionTTL(),
		avatarBaseURL: strings.TrimRight(cfg.AvatarBaseURL, "/"),
	}
}

type RegisterInput struct {
	FullName        string
	Username        string
	Password        string
	ConfirmPassword string
	Gender          string
}

type LoginInput struct {
	Username string
	Password string
}

// Session is a freshly issued credential for a user.
type Session struct {
	User      user.User
	Token     string
	ExpiresAt time.Time
}

type SessionClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (Session, error) {
	if in.FullName == "" || in.Username == "" || in.Password == "" || in.ConfirmPassword == "" || in.Gender == "" {
		return Session{}, ErrMissingFields
	}
	if in.Password != in.ConfirmPassword {
		return Session{}, ErrPasswordMismatch
	}
	if !user.ValidGender(in.Gender) {
		return Session{}, ErrInvalidGender
	}

	if _, err := s.userRepo.GetUserByUsername(ctx, in.Username); err == nil {
		return Session{}, ErrUserExists
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return Session{}, err
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return Session{}, err
	}

	newUser := &user.User{
		ID:           uuid.New(),
		FullName:     in.FullName,
		Username:     in.Username,
		PasswordHash: hash,
		Gender:       in.Gender,
		ProfilePic:   s.AvatarURL(in.Gender, in.Username),
	}
	if err := s.userRepo.Create(ctx, newUser); err != nil {
		if errors.Is(err, apperrors.ErrAlreadyExists) {
			return Session{}, ErrUserExists
		}
		return Session{}, err
	}

	return s.issueSession(*newUser)
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (Session, error) {
	if in.Username == "" || in.Password == "" {
		return Session{}, ErrMissingFields
	}

	u, err := s.userRepo.GetUserByUsername(ctx, in.Username)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(in.Password))
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, err
	}
	if !comparePassword(u.PasswordHash, in.Password) {
		return Session{}, ErrInvalidCredentials
	}

	return s.issueSession(u)
}

// AvatarURL derives the deterministic profile picture for a new user.
func (s *AuthService) AvatarURL(gender, username string) string {
	kind := "girl"
	if gender == user.GenderMale {
		kind = "boy"
	}
	return fmt.Sprintf("%s/%s?username=%s", s.avatarBaseURL, kind, url.QueryEscape(username))
}

// ParseToken verifies a session token and returns the user id it carries.
func (s *AuthService) ParseToken(tokenString string) (uuid.UUID, error) {
	if tokenString == "" {
		return uuid.Nil, ErrNoToken
	}
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, ErrInvalidToken
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	return userID, nil
}

func (s *AuthService) SessionTTL() time.Duration {
	return s.sessionTTL
}

func (s *AuthService) issueSession(u user.User) (Session, error) {
	now := time.Now()
	expiresAt := now.Add(s.sessionTTL)
	claims := SessionClaims{
		UserID: u.ID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return Session{}, err
	}
	u.PasswordHash = ""
	return Session{User: u, Token: token, ExpiresAt: expiresAt}, nil
}

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func comparePassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrInvalidInput), errors.Is(err, apperrors.ErrAlreadyExists):
		return 400
	case errors.Is(err, apperrors.ErrUnauthorized):
		return 401
	case errors.Is(err, apperrors.ErrForbidden):
		return 403
	case errors.Is(err, apperrors.ErrNotFound):
		return 404
	case errors.Is(err, apperrors.ErrRateLimited):
		return 429
	default:
		return 500
	}
}

type ctxKey string

var userKey ctxKey = "user"

// WithUser stores the authenticated public profile in ctx.
func WithUser(ctx context.Context, u user.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

func UserFromContext(ctx context.Context) (user.User, bool) {
	u, ok := ctx.Value(userKey).(user.User)
	return u, ok
}
