package services

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"shopfront/internal/domain"
	"shopfront/internal/repos"
)

var (
	ErrBadCreds         = errors.New("invalid email or password")
	ErrNotAuthenticated = errors.New("not authenticated")
)

// AuthService owns credential verification and the signed tokens carried in
// the jwt cookie. Hashing and token crypto are delegated to bcrypt and the
// jwt library.
type AuthService struct {
	Users  *repos.UserRepo
	Secret []byte
	TTL    time.Duration
}

func NewAuthService(users *repos.UserRepo, secret string, ttl time.Duration) *AuthService {
	return &AuthService{Users: users, Secret: []byte(secret), TTL: ttl}
}

func (s *AuthService) Register(email, name, password string) (*domain.User, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return nil, err
	}
	u := domain.User{ID: uuid.NewString(), Email: email, Name: name, Hash: string(h)}
	if err := s.Users.Create(u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Login verifies credentials and returns a fresh signed token. Unknown email
// and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(email, password string) (string, *domain.User, error) {
	u, err := s.Users.ByEmail(email)
	if err != nil {
		return "", nil, ErrBadCreds
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return "", nil, ErrBadCreds
	}
	tok, err := s.issue(u.ID)
	if err != nil {
		return "", nil, err
	}
	return tok, u, nil
}

func (s *AuthService) issue(userID string) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub": userID,
		"iat": now.Unix(),
		"exp": now.Add(s.TTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
}

// ResolveUserID validates a token and extracts the user id. Resolution
// happens once per request at the boundary; everything below takes the id
// explicitly.
func (s *AuthService) ResolveUserID(token string) (string, error) {
	if token == "" {
		return "", ErrNotAuthenticated
	}
	t, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		return s.Secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !t.Valid {
		return "", ErrNotAuthenticated
	}
	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrNotAuthenticated
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", ErrNotAuthenticated
	}
	return sub, nil
}

func (s *AuthService) CurrentUser(token string) (*domain.User, error) {
	uid, err := s.ResolveUserID(token)
	if err != nil {
		return nil, err
	}
	return s.Users.ByID(uid)
}
