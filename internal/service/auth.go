package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/d60-Lab/delivery-admin/config"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// AuthService 管理员登录，签发 HS256 token；secret 为空时整体关闭
type AuthService struct {
	secret []byte
	user   string
	hash   []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewAuthService(cfg config.AuthConfig) *AuthService {
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &AuthService{
		secret: []byte(cfg.JWTSecret),
		user:   cfg.AdminUser,
		hash:   []byte(cfg.AdminPasswordHash),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (s *AuthService) Enabled() bool { return len(s.secret) > 0 }

func (s *AuthService) TTL() time.Duration { return s.ttl }

// Login 校验用户名和 bcrypt 密码，返回 token 与过期时间
func (s *AuthService) Login(username, password string) (string, time.Time, error) {
	if !s.Enabled() || len(s.hash) == 0 {
		return "", time.Time{}, ErrInvalidCredentials
	}
	pwErr := bcrypt.CompareHashAndPassword(s.hash, []byte(password))
	if username != s.user || pwErr != nil {
		return "", time.Time{}, ErrInvalidCredentials
	}

	now := s.now()
	exp := now.Add(s.ttl)
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, exp, nil
}

// Verify 返回 token 对应的用户名
func (s *AuthService) Verify(token string) (string, error) {
	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
