package rpc

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"paycore/crypto"
)

var errNoToken = errors.New("rpc: missing bearer token")

// Authenticator validates HMAC-signed bearer tokens whose "addr" claim names
// the calling ledger account. Authorization decisions stay inside the
// engines; the authenticator only establishes who is calling.
type Authenticator struct {
	secret []byte
}

// NewAuthenticator builds an authenticator around a shared HMAC secret. An
// empty secret disables authenticated methods entirely.
func NewAuthenticator(secret string) *Authenticator {
	trimmed := strings.TrimSpace(secret)
	if trimmed == "" {
		return &Authenticator{}
	}
	return &Authenticator{secret: []byte(trimmed)}
}

// Enabled reports whether a secret is configured.
func (a *Authenticator) Enabled() bool {
	return a != nil && len(a.secret) > 0
}

// Caller extracts the authenticated ledger address from the request.
func (a *Authenticator) Caller(r *http.Request) ([20]byte, error) {
	if !a.Enabled() {
		return [20]byte{}, errNoToken
	}
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return [20]byte{}, errNoToken
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return [20]byte{}, errNoToken
	}
	claims, err := a.parseToken(strings.TrimSpace(parts[1]))
	if err != nil {
		return [20]byte{}, err
	}
	addrClaim, _ := claims["addr"].(string)
	if addrClaim == "" {
		return [20]byte{}, fmt.Errorf("rpc: token missing addr claim")
	}
	addr, err := crypto.DecodeAddress(addrClaim)
	if err != nil {
		return [20]byte{}, fmt.Errorf("rpc: invalid addr claim: %w", err)
	}
	return addr.Raw(), nil
}

func (a *Authenticator) parseToken(tokenString string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return a.secret, nil
	}, jwt.WithLeeway(30*time.Second))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("rpc: invalid token")
	}
	return claims, nil
}

// IssueToken mints a bearer token for the given address. Used by operator
// tooling and tests.
func (a *Authenticator) IssueToken(addr crypto.Address, ttl time.Duration) (string, error) {
	if !a.Enabled() {
		return "", errors.New("rpc: authenticator has no secret")
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"addr": addr.String(),
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}
