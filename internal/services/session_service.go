package services

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ErrInvalidToken is returned for tokens that fail signature or expiry checks.
var ErrInvalidToken = errors.New("invalid session token")

// SessionToken is a freshly issued cart session.
type SessionToken struct {
	Token     string    `json:"token"`
	SessionID string    `json:"session_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionService issues and validates signed cart session tokens.
type SessionService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSessionService creates a new SessionService.
func NewSessionService(secret string, ttl time.Duration) *SessionService {
	return &SessionService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue starts a new anonymous session.
func (s *SessionService) Issue() (*SessionToken, error) {
	now := s.now()
	id := uuid.New().String()
	expires := now.Add(s.ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.StandardClaims{
		Id:        id,
		IssuedAt:  now.Unix(),
		ExpiresAt: expires.Unix(),
		Subject:   "cart-session",
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return nil, errors.Wrap(err, "sign session token")
	}
	return &SessionToken{Token: signed, SessionID: id, ExpiresAt: expires}, nil
}

// Validate checks the token and returns its session id.
func (s *SessionService) Validate(tokenString string) (string, error) {
	claims := &jwt.StandardClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		log.Debug().Err(err).Msg("session token rejected")
		return "", errors.Wrap(ErrInvalidToken, err.Error())
	}
	if !token.Valid || claims.Id == "" {
		return "", ErrInvalidToken
	}
	return claims.Id, nil
}
