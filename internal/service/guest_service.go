package service

import (
	"errors"
	"time"

	"github.com/cmpeavlerjr72/fantasy-golf/internal/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid token")

// GuestService issues signed guest identities. A guest token is the stable
// identity used for seat claiming: the same token presented from a new tab or
// after a reconnect maps to the same seat. There are no passwords or roles.
type GuestService struct {
	cfg *config.Config
}

func NewGuestService(cfg *config.Config) *GuestService {
	return &GuestService{cfg: cfg}
}

type Guest struct {
	ID          uuid.UUID
	DisplayName string
	Token       string
}

func (s *GuestService) Issue(displayName string) (*Guest, error) {
	if displayName == "" {
		return nil, errors.New("display name is required")
	}

	id := uuid.New()
	claims := jwt.MapClaims{
		"sub":  id.String(),
		"name": displayName,
		"exp":  time.Now().Add(time.Duration(s.cfg.JWTExpirationHours) * time.Hour).Unix(),
		"iat":  time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, err
	}

	return &Guest{ID: id, DisplayName: displayName, Token: signed}, nil
}

// Validate parses a guest token and returns the identity it carries.
func (s *GuestService) Validate(tokenString string) (id uuid.UUID, displayName string, err error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return uuid.Nil, "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return uuid.Nil, "", ErrInvalidToken
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return uuid.Nil, "", ErrInvalidToken
	}
	id, err = uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, "", ErrInvalidToken
	}
	displayName, _ = claims["name"].(string)

	return id, displayName, nil
}
