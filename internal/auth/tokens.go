package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/nfrund/kaashub/internal/domain"
)

const (
	confirmTokenTTL    = 24 * time.Hour
	confirmTokenIssuer = "kaashub"
	confirmAudience    = "email-confirmation"
)

type confirmClaims struct {
	RedirectTo string `json:"redirect_to,omitempty"`
	jwt.RegisteredClaims
}

// confirmationTokens signs and verifies the links mailed after sign-up.
type confirmationTokens struct {
	secret []byte
	ttl    time.Duration
}

func newConfirmationTokens(secret string) *confirmationTokens {
	return &confirmationTokens{secret: []byte(secret), ttl: confirmTokenTTL}
}

func (t *confirmationTokens) issue(userID, redirectTo string, now time.Time) (string, error) {
	claims := confirmClaims{
		RedirectTo: redirectTo,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    confirmTokenIssuer,
			Audience:  jwt.ClaimStrings{confirmAudience},
			Subject:   userID,
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign confirmation token: %w", err)
	}
	return token, nil
}

// parse returns the user id and redirect target of a valid token, or
// domain.ErrInvalidToken.
func (t *confirmationTokens) parse(tokenString string, now time.Time) (string, string, error) {
	claims := &confirmClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	},
		jwt.WithIssuer(confirmTokenIssuer),
		jwt.WithAudience(confirmAudience),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil || claims.Subject == "" {
		return "", "", domain.ErrInvalidToken
	}
	return claims.Subject, claims.RedirectTo, nil
}
