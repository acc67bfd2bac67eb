package jwt

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
)

func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleEmployee
}

const tokenTypeAccess = "access"

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrInvalidRole  = errors.New("invalid role")
)

// Claims is the identity carried by an access token.
type Claims struct {
	UserID     string
	Name       string
	EmployeeID string
	Role       Role
}

func (c Claims) IsAdmin() bool {
	return c.Role == RoleAdmin
}

type Service interface {
	GenerateAccessToken(claims Claims) (token string, expiresAt int64, err error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	tokenAuth                 *jwtauth.JWTAuth
	accessTokenExpirationTime time.Duration
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string, accessTokenExpirationTime time.Duration) Service {
	return &JWTService{
		tokenAuth:                 jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
		accessTokenExpirationTime: accessTokenExpirationTime,
	}
}

func (j *JWTService) GenerateAccessToken(claims Claims) (token string, expiresAt int64, err error) {
	if !claims.Role.IsValid() {
		return "", 0, ErrInvalidRole
	}
	expiresAt = time.Now().Add(j.accessTokenExpirationTime).Unix()

	payload := map[string]interface{}{
		"user_id":     claims.UserID,
		"employee_id": claims.EmployeeID,
		"role":        string(claims.Role),
		"type":        tokenTypeAccess,
		"exp":         expiresAt,
	}
	if claims.Name != "" {
		payload["name"] = claims.Name
	}

	_, tokenString, err := j.tokenAuth.Encode(payload)
	return tokenString, expiresAt, err
}

// ClaimsFromMap reads an access token's claims. Tokens of any other type
// or with an unknown role are rejected.
func ClaimsFromMap(m map[string]interface{}) (Claims, error) {
	tokenType, _ := m["type"].(string)
	if tokenType != tokenTypeAccess {
		return Claims{}, ErrInvalidToken
	}
	role, _ := m["role"].(string)
	c := Claims{Role: Role(role)}
	if !c.Role.IsValid() {
		return Claims{}, ErrInvalidToken
	}
	c.UserID, _ = m["user_id"].(string)
	c.EmployeeID, _ = m["employee_id"].(string)
	c.Name, _ = m["name"].(string)
	return c, nil
}

// FromContext returns the verified claims stored by jwtauth.Verifier.
func FromContext(ctx context.Context) (Claims, error) {
	token, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return Claims{}, err
	}
	if token == nil {
		return Claims{}, ErrInvalidToken
	}
	return ClaimsFromMap(claims)
}

// FromRequest is FromContext for handlers.
func FromRequest(r *http.Request) (Claims, error) {
	return FromContext(r.Context())
}
