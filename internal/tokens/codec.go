package tokens

import (
	"crypto/rsa"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Skotchmaster/scope_auth/internal/domain"
)

const (
	AlgHS256 = "HS256"
	AlgRS256 = "RS256"
)

type Config struct {
	Algorithm     string
	Secret        []byte
	PrivateKeyPEM []byte
	PublicKeyPEM  []byte
}

// Codec signs and verifies subject-bearing JWTs. It holds no mutable state
// and is safe for concurrent use.
type Codec struct {
	method    jwt.SigningMethod
	signKey   any
	verifyKey any
	now       func() time.Time
}

func NewCodec(cfg Config) (*Codec, error) {
	c := &Codec{now: time.Now}

	switch strings.ToUpper(strings.TrimSpace(cfg.Algorithm)) {
	case "", AlgHS256:
		if len(cfg.Secret) == 0 {
			return nil, errors.New("tokens: HS256 requires a secret")
		}
		c.method = jwt.SigningMethodHS256
		c.signKey = cfg.Secret
		c.verifyKey = cfg.Secret
	case AlgRS256:
		priv, pub, err := rsaKeys(cfg.PrivateKeyPEM, cfg.PublicKeyPEM)
		if err != nil {
			return nil, err
		}
		c.method = jwt.SigningMethodRS256
		c.signKey = priv
		c.verifyKey = pub
	default:
		return nil, fmt.Errorf("tokens: unsupported algorithm %q", cfg.Algorithm)
	}

	return c, nil
}

func rsaKeys(privPEM, pubPEM []byte) (*rsa.PrivateKey, *rsa.PublicKey, error) {
	if len(privPEM) == 0 {
		return nil, nil, errors.New("tokens: RS256 requires a private key")
	}
	priv, err := jwt.ParseRSAPrivateKeyFromPEM(unwrapPEM(privPEM))
	if err != nil {
		return nil, nil, fmt.Errorf("tokens: parse private key: %w", err)
	}
	if len(pubPEM) == 0 {
		return priv, &priv.PublicKey, nil
	}
	pub, err := jwt.ParseRSAPublicKeyFromPEM(unwrapPEM(pubPEM))
	if err != nil {
		return nil, nil, fmt.Errorf("tokens: parse public key: %w", err)
	}
	if !priv.PublicKey.Equal(pub) {
		return nil, nil, errors.New("tokens: public key does not match private key")
	}
	return priv, pub, nil
}

// unwrapPEM accepts raw PEM or PEM that was base64 encoded to fit in a
// single env var.
func unwrapPEM(b []byte) []byte {
	s := strings.TrimSpace(string(b))
	if strings.HasPrefix(s, "-----BEGIN") {
		return []byte(s)
	}
	if dec, err := base64.StdEncoding.DecodeString(s); err == nil {
		return dec
	}
	return []byte(s)
}

// Encode returns a token for subject that expires ttl from now. A negative
// ttl yields an already expired token.
func (c *Codec) Encode(subject string, ttl time.Duration) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(c.now().UTC().Add(ttl)),
	}

	token := jwt.NewWithClaims(c.method, claims)
	signed, err := token.SignedString(c.signKey)
	if err != nil {
		return "", fmt.Errorf("tokens: sign: %w", err)
	}
	return signed, nil
}

// EncodeUser is Encode with the user id as subject.
func (c *Codec) EncodeUser(userID uint, ttl time.Duration) (string, error) {
	return c.Encode(strconv.FormatUint(uint64(userID), 10), ttl)
}

// Decode verifies token and returns its subject as a user id. Every failure
// is reported as the same Unauthorized error.
func (c *Codec) Decode(token string) (uint, error) {
	var claims jwt.RegisteredClaims
	tkn, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return c.verifyKey, nil
	},
		jwt.WithValidMethods([]string{c.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil || !tkn.Valid {
		return 0, credentialsError(err)
	}

	if claims.Subject == "" {
		return 0, credentialsError(errors.New("missing sub claim"))
	}
	id, err := strconv.ParseUint(claims.Subject, 10, 0)
	if err != nil {
		return 0, credentialsError(err)
	}
	return uint(id), nil
}

func credentialsError(cause error) error {
	return domain.Unauthorized(cause, "Could not validate credentials")
}
