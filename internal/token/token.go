package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrTokenExpired is returned for structurally valid but expired tokens
	ErrTokenExpired = errors.New("token has expired")
	// ErrTokenInvalid is returned for malformed, tampered or mis-signed tokens
	ErrTokenInvalid = errors.New("invalid token")
)

// Claims represents the claims carried by an access token
type Claims struct {
	MobileNumber string `json:"mobile_number"`
	Role         string `json:"role"`
	jwt.RegisteredClaims
}

// Issuer creates and validates HS256 access tokens. Expiry is checked
// with zero leeway.
type Issuer struct {
	signingKey []byte
	issuer     string
	audience   string
	expiry     time.Duration
}

// NewIssuer creates a token issuer
func NewIssuer(signingKey, issuer, audience string, expiry time.Duration) *Issuer {
	return &Issuer{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		audience:   audience,
		expiry:     expiry,
	}
}

// Issue signs a new access token for the given account. The subject is
// the account id and each token gets a fresh jti.
func (i *Issuer) Issue(accountID, mobileNumber, role string) (string, error) {
	now := time.Now()
	claims := Claims{
		MobileNumber: mobileNumber,
		Role:         role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID,
			ExpiresAt: jwt.NewNumericDate(now.Add(i.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    i.issuer,
			Audience:  []string{i.audience},
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.signingKey)
	if err != nil {
		return "", err
	}
	return signed, nil
}

// Validate parses and verifies a token, returning its claims
func (i *Issuer) Validate(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return i.signingKey, nil
	},
		jwt.WithIssuer(i.issuer),
		jwt.WithAudience(i.audience),
		jwt.WithLeeway(0),
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	if !parsed.Valid {
		return nil, ErrTokenInvalid
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
