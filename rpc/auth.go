package rpc

import (
	"errors"
	"net/http"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"watch2give/crypto"
)

const defaultClockSkew = 2 * time.Minute

// Authenticator verifies HS256 bearer tokens and maps the subject claim onto
// the calling account.
type Authenticator struct {
	secret []byte
	issuer string
	skew   time.Duration
	now    func() time.Time
}

func NewAuthenticator(secret []byte, issuer string) *Authenticator {
	return &Authenticator{
		secret: append([]byte(nil), secret...),
		issuer: strings.TrimSpace(issuer),
		skew:   defaultClockSkew,
		now:    time.Now,
	}
}

// Enabled reports whether a signing secret is configured.
func (a *Authenticator) Enabled() bool {
	return a != nil && len(a.secret) > 0
}

// Caller authenticates the request and returns the account named by the
// token's sub claim.
func (a *Authenticator) Caller(r *http.Request) (crypto.AccountID, *RPCError) {
	if !a.Enabled() {
		return crypto.AccountID{}, &RPCError{Code: codeUnauthorized, Message: "RPC authentication not configured"}
	}
	header := r.Header.Get("Authorization")
	if header == "" {
		return crypto.AccountID{}, &RPCError{Code: codeUnauthorized, Message: "missing Authorization header"}
	}
	token := extractBearer(header)
	if token == "" {
		return crypto.AccountID{}, &RPCError{Code: codeUnauthorized, Message: "Authorization header must use Bearer scheme"}
	}
	claims, err := a.parse(token)
	if err != nil {
		return crypto.AccountID{}, &RPCError{Code: codeUnauthorized, Message: "invalid RPC credentials", Data: err.Error()}
	}
	caller, err := crypto.ParseAccountID(claims.Subject)
	if err != nil {
		return crypto.AccountID{}, &RPCError{Code: codeUnauthorized, Message: "token subject is not an account", Data: err.Error()}
	}
	return caller, nil
}

func (a *Authenticator) parse(token string) (*jwt.RegisteredClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(a.skew),
		jwt.WithTimeFunc(a.now),
	}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, errors.New("token invalid")
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return nil, errors.New("token has no subject")
	}
	return claims, nil
}

// SignCallerToken issues an HS256 token naming account as the caller.
func SignCallerToken(secret []byte, issuer string, account crypto.AccountID, ttl time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", errors.New("signing secret required")
	}
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:  account.String(),
		IssuedAt: jwt.NewNumericDate(now),
	}
	if issuer != "" {
		claims.Issuer = issuer
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func extractBearer(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
