// Package download signs the short-lived links handed out by the version
// endpoint.
package download

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"

	"github.com/fatflowers/licensing/pkg/config"
)

var ErrInvalidToken = errors.New("invalid download token")

// Claims bind a link to one activation and one release.
type Claims struct {
	ActivationID string `json:"act"`
	ReleaseID    string `json:"rel"`
	jwt.StandardClaims
}

type Signer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSigner(cfg *config.Config) (*Signer, error) {
	if cfg.API.DownloadSecret == "" {
		return nil, errors.New("api.download_secret is required")
	}
	ttl := cfg.API.DownloadTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Signer{secret: []byte(cfg.API.DownloadSecret), ttl: ttl, now: time.Now}, nil
}

// Sign returns an HS256 token for the pair and when it stops being accepted.
func (s *Signer) Sign(activationID, releaseID string) (string, time.Time, error) {
	now := s.now().UTC()
	expires := now.Add(s.ttl)
	claims := &Claims{
		ActivationID: activationID,
		ReleaseID:    releaseID,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  now.Unix(),
			ExpiresAt: expires.Unix(),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign download token: %w", err)
	}
	return token, expires, nil
}

// Verify checks the signature and expiry of token.
func (s *Signer) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	parser := &jwt.Parser{ValidMethods: []string{jwt.SigningMethodHS256.Alg()}, SkipClaimsValidation: true}
	_, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !claims.VerifyExpiresAt(s.now().Unix(), true) {
		return nil, fmt.Errorf("%w: expired", ErrInvalidToken)
	}
	if claims.ActivationID == "" || claims.ReleaseID == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return claims, nil
}
