package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"quizdeck/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	tokenLifetime     = 7 * 24 * time.Hour
	bcryptCost        = 12
	blacklistKeyspace = "auth:blacklist:"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

type AuthService struct {
	db        *gorm.DB
	redis     *redis.Client
	jwtSecret string
	now       func() time.Time
}

func NewAuthService(db *gorm.DB, redisClient *redis.Client, jwtSecret string) *AuthService {
	return &AuthService{db: db, redis: redisClient, jwtSecret: jwtSecret, now: time.Now}
}

type CredentialsRequest struct {
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ValidateCredentials applies the signup rules: trimmed 3-50 char names made
// of letters, digits, hyphens, and underscores; 6-100 char passwords.
func ValidateCredentials(name, password string) error {
	trimmed := strings.TrimSpace(name)
	switch {
	case len(trimmed) < 3:
		return fmt.Errorf("%w: username must be at least 3 characters long", ErrValidation)
	case len(trimmed) > 50:
		return fmt.Errorf("%w: username must be less than 50 characters", ErrValidation)
	case !usernamePattern.MatchString(trimmed):
		return fmt.Errorf("%w: username can only contain letters, numbers, hyphens, and underscores", ErrValidation)
	}
	switch {
	case len(password) < 6:
		return fmt.Errorf("%w: password must be at least 6 characters long", ErrValidation)
	case len(password) > 100:
		return fmt.Errorf("%w: password must be less than 100 characters", ErrValidation)
	}
	return nil
}

func (s *AuthService) Signup(name, password string) (*models.User, string, error) {
	if err := ValidateCredentials(name, password); err != nil {
		return nil, "", err
	}
	trimmed := strings.TrimSpace(name)

	var existing models.User
	if err := s.db.Where("name = ?", trimmed).First(&existing).Error; err == nil {
		return nil, "", ErrUserExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, "", err
	}

	user := models.User{Name: trimmed, PasswordHash: string(hash)}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, "", err
	}

	token, err := s.GenerateToken(&user)
	if err != nil {
		return nil, "", err
	}
	return &user, token, nil
}

func (s *AuthService) Login(name, password string) (*models.User, string, error) {
	var user models.User
	if err := s.db.Where("name = ?", strings.TrimSpace(name)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrUserNotFound
		}
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.GenerateToken(&user)
	if err != nil {
		return nil, "", err
	}
	return &user, token, nil
}

// Logout blacklists the token in Redis for the remainder of its lifetime so
// it cannot be replayed.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	ttl := tokenLifetime
	if claims, err := s.parseClaims(token); err == nil {
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			if remaining := exp.Time.Sub(s.now()); remaining > 0 {
				ttl = remaining
			}
		}
	}
	return s.redis.Set(ctx, blacklistKeyspace+token, "1", ttl).Err()
}

// IsBlacklisted reports whether a token was logged out. Redis trouble fails
// open; the token signature check still stands.
func (s *AuthService) IsBlacklisted(ctx context.Context, token string) bool {
	n, err := s.redis.Exists(ctx, blacklistKeyspace+token).Result()
	return err == nil && n > 0
}

func (s *AuthService) GetProfile(userID string) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *AuthService) GenerateToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"id":   user.ID,
		"name": user.Name,
		"exp":  s.now().Add(tokenLifetime).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// ParseToken validates a bearer token and returns the user id and name.
func (s *AuthService) ParseToken(token string) (string, string, error) {
	claims, err := s.parseClaims(token)
	if err != nil {
		return "", "", err
	}
	id, _ := claims["id"].(string)
	name, _ := claims["name"].(string)
	if id == "" {
		return "", "", errors.New("token has no user id")
	}
	return id, name, nil
}

func (s *AuthService) parseClaims(token string) (jwt.MapClaims, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	}, jwt.WithTimeFunc(func() time.Time { return s.now() }))
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
