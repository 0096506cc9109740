package auth

import (
	"crypto/rsa"
	"errors"
	"os"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/calvinhuynh14/bridge-pen-pal-sub000/internal/config"
	"github.com/calvinhuynh14/bridge-pen-pal-sub000/internal/domain"
)

var ErrInvalidToken = errors.New("invalid token")

// Verifier validates bearer tokens issued by the identity service and
// extracts the acting user. RS256 against the identity service's public key
// in production; HS256 with a shared secret for local setups.
type Verifier struct {
	alg    string
	pub    *rsa.PublicKey
	secret []byte
}

func NewVerifier(cfg config.JWT) (*Verifier, error) {
	switch strings.ToUpper(cfg.Alg) {
	case "RS256":
		b, err := os.ReadFile(cfg.PublicKeyPath)
		if err != nil {
			return nil, err
		}
		pub, err := jwt.ParseRSAPublicKeyFromPEM(b)
		if err != nil {
			return nil, err
		}
		return &Verifier{alg: "RS256", pub: pub}, nil
	case "HS256":
		return &Verifier{alg: "HS256", secret: []byte(cfg.HSSecret)}, nil
	}
	return nil, errors.New("unsupported jwt alg")
}

func (v *Verifier) Verify(tokenStr string) (domain.Actor, error) {
	tok, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if v.alg == "RS256" {
			return v.pub, nil
		}
		return v.secret, nil
	}, jwt.WithValidMethods([]string{v.alg}))
	if err != nil {
		return domain.Actor{}, err
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok || !tok.Valid {
		return domain.Actor{}, ErrInvalidToken
	}

	a := domain.Actor{
		ID:             stringClaim(claims, "sub"),
		Name:           stringClaim(claims, "name"),
		Type:           domain.UserType(stringClaim(claims, "user_type")),
		OrganizationID: stringClaim(claims, "organization_id"),
	}
	if a.ID == "" {
		a.ID = stringClaim(claims, "user_id")
	}
	if a.ID == "" {
		return domain.Actor{}, ErrInvalidToken
	}
	switch a.Type {
	case domain.UserTypeResident, domain.UserTypeVolunteer, domain.UserTypeAdmin:
	default:
		return domain.Actor{}, ErrInvalidToken
	}
	return a, nil
}

func stringClaim(claims jwt.MapClaims, key string) string {
	if v, ok := claims[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
