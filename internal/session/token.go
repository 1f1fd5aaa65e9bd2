package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/officeledger/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the user id in the subject plus the role at login time.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

const issuer = "officeledger"

func GenerateToken(userID, role string, secret []byte, now time.Time, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role: role,
	})
	return token.SignedString(secret)
}

// ParseToken verifies the signature and expiry and returns the claims.
// All failures match common.ErrInvalidToken.
func ParseToken(tokenString string, secret []byte, now time.Time) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: expired", common.ErrInvalidToken)
		}
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, common.ErrInvalidToken
	}
	return claims, nil
}
