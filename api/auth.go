package api

import (
	"errors"
	"time"

	"github.com/MicahParks/keyfunc"
	"github.com/golang-jwt/jwt/v4"
	log "github.com/sirupsen/logrus"
)

const jwksRefreshInterval = time.Hour

// Auth validates bearer tokens, either HS256 tokens signed with a shared
// secret or RS256 tokens signed by a key published in a JWKS.
type Auth struct {
	keyFunc  jwt.Keyfunc
	parser   *jwt.Parser
	audience string
	issuer   string
	now      func() time.Time
}

// NewAuth returns an Authenticator for secret. An empty secret disables
// authentication.
func NewAuth(secret string) Authenticator {
	if secret == "" {
		return allowAll{}
	}
	key := []byte(secret)
	return &Auth{
		keyFunc: func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("invalid signing method")
			}
			return key, nil
		},
		parser: jwt.NewParser(jwt.WithValidMethods([]string{"HS256"})),
		now:    time.Now,
	}
}

// NewJWKSAuth returns an Authenticator accepting RS256 tokens signed by a
// key in jwks. Empty audience or issuer skip that check.
func NewJWKSAuth(jwks *keyfunc.JWKS, audience, issuer string) Authenticator {
	return &Auth{
		keyFunc:  jwks.Keyfunc,
		parser:   jwt.NewParser(jwt.WithValidMethods([]string{"RS256"})),
		audience: audience,
		issuer:   issuer,
		now:      time.Now,
	}
}

// FetchJWKS downloads the key set at url and keeps it refreshed in the
// background until EndBackground is called.
func FetchJWKS(url string, logger *log.Logger) (*keyfunc.JWKS, error) {
	return keyfunc.Get(url, keyfunc.Options{
		RefreshInterval:   jwksRefreshInterval,
		RefreshUnknownKID: true,
		RefreshErrorHandler: func(err error) {
			logger.WithError(err).WithField("url", url).Warn("jwks refresh failed")
		},
	})
}

// Authorize checks the bearer token carried by header.
func (a *Auth) Authorize(header string) error {
	token, err := bearerTokenFromString(header)
	if err != nil {
		return err
	}
	parsed, err := a.parser.Parse(token, a.keyFunc)
	if err != nil {
		return err
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return errors.New("invalid claims")
	}
	// one minute of leeway for clock skew
	now := a.now().Add(time.Minute).Unix()
	if !claims.VerifyExpiresAt(a.now().Unix(), true) {
		return errors.New("token expired")
	}
	if !claims.VerifyNotBefore(now, false) {
		return errors.New("token not valid yet")
	}
	if a.audience != "" && !claims.VerifyAudience(a.audience, true) {
		return errors.New("invalid audience")
	}
	if a.issuer != "" && !claims.VerifyIssuer(a.issuer, true) {
		return errors.New("invalid issuer")
	}
	return nil
}

// IssueToken signs a token accepted by NewAuth(secret) for ttl.
func IssueToken(secret, subject string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("auth secret is not configured")
	}
	if ttl <= 0 {
		return "", errors.New("token ttl must be positive")
	}
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": subject,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	})
	return token.SignedString([]byte(secret))
}
