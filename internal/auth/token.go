package auth // package auth provides token issuing, verification and password hashing

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/abetworks/crm-backend/internal/model"
)

// ErrInvalidToken is returned for any token that fails verification:
// bad signature, wrong signing algorithm, malformed payload or elapsed
// expiry. Callers branch on this single value; the distinction between
// failure modes is deliberately not leaked to clients.
var ErrInvalidToken = errors.New("invalid token")

// Identity is the claim set embedded in every token: the user's id and
// email, bound at issuance. Access tokens additionally carry the role so
// route gating does not need a database lookup.
type Identity struct {
	UserID string
	Email  string
	Role   model.Role
}

// Token is a signed JWT string together with its expiry.
type Token struct {
	Value string    `json:"token"`
	Exp   time.Time `json:"expires"`
}

// NewAccessToken builds and signs an HS256 JWT for a user. The JWT includes
// the user's id, email and role plus standard exp/iat claims. Access and
// refresh tokens use distinct secrets so one class can never stand in for
// the other.
func NewAccessToken(secret string, id Identity, ttl time.Duration) (Token, error) {
	now := time.Now().UTC()
	exp := now.Add(ttl)
	claims := jwt.MapClaims{
		"id":    id.UserID,
		"email": id.Email,
		"role":  string(id.Role),
		"exp":   exp.Unix(),
		"iat":   now.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return Token{}, err
	}
	return Token{Value: signed, Exp: exp}, nil
}

// NewRefreshToken signs a longer-lived JWT carrying only the id and email.
// Refresh tokens are stateless: nothing is persisted server-side, so they
// remain valid until expiry or secret rotation.
func NewRefreshToken(secret string, id Identity, ttl time.Duration) (Token, error) {
	now := time.Now().UTC()
	exp := now.Add(ttl)
	claims := jwt.MapClaims{
		"id":    id.UserID,
		"email": id.Email,
		"exp":   exp.Unix(),
		"iat":   now.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return Token{}, err
	}
	return Token{Value: signed, Exp: exp}, nil
}

// Verify checks a token's signature and expiry against the given secret and
// recovers the embedded identity. Any failure maps to ErrInvalidToken; this
// function never panics and never returns a partially populated identity.
func Verify(secret, raw string) (Identity, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		// Reject tokens signed with anything other than HMAC, including
		// the classic alg=none downgrade.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return Identity{}, ErrInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, ErrInvalidToken
	}
	id, _ := claims["id"].(string)
	email, _ := claims["email"].(string)
	if id == "" || email == "" {
		return Identity{}, ErrInvalidToken
	}
	ident := Identity{UserID: id, Email: email}
	if r, _ := claims["role"].(string); r != "" {
		role, err := model.ParseRole(r)
		if err != nil {
			return Identity{}, ErrInvalidToken
		}
		ident.Role = role
	}
	return ident, nil
}
