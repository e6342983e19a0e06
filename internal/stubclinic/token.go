package stubclinic

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"clinicdesk/internal/api"
)

type claims struct {
	Role   api.Role `json:"role"`
	UserID int64    `json:"uid"`
	jwt.RegisteredClaims
}

// mintToken issues a signed HS256 bearer token for an account.
func (s *Server) mintToken(a *Account) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Role:   a.Role,
		UserID: a.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   a.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	})
	return token.SignedString(s.jwtSecret)
}

// parseToken verifies a bearer token and resolves it to the live account,
// so role or profile edits apply on the next request.
func (s *Server) parseToken(raw string) (*Account, error) {
	var c claims
	_, err := jwt.ParseWithClaims(raw, &c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, err
	}
	account, ok := s.store.AccountByEmail(c.Subject)
	if !ok {
		return nil, fmt.Errorf("account %s no longer exists", c.Subject)
	}
	return account, nil
}
