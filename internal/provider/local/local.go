// Package local implements the identity provider contract on top of the
// service's own MySQL database. It exists for deployments that run without
// the managed platform: accounts live in a users table, passwords are
// bcrypt-hashed and access tokens are HS256 JWTs issued and verified here.
package local

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/eduverse/eduverse-backend/internal/model"
	"github.com/eduverse/eduverse-backend/internal/provider"
)

// Backend holds the database handle and token settings for the self-hosted
// identity mode.
type Backend struct {
	DB           *sql.DB
	Secret       string
	AccessTTLMin int
	BcryptCost   int
}

func New(db *sql.DB, secret string, accessTTLMin, bcryptCost int) *Backend {
	return &Backend{DB: db, Secret: secret, AccessTTLMin: accessTTLMin, BcryptCost: bcryptCost}
}

// SignUp creates an account and immediately issues a session; the local
// backend has no email confirmation step. A duplicate email reports the
// same message the managed platform uses so clients see one contract.
func (b *Backend) SignUp(ctx context.Context, email, password string, meta model.Metadata) (model.Identity, *model.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := bcrypt.GenerateFromPassword([]byte(password), b.BcryptCost)
	if err != nil {
		return model.Identity{}, nil, err
	}

	id := uuid.NewString()
	_, err = b.DB.ExecContext(ctx,
		"INSERT INTO users (id, email, password_hash, name, role) VALUES (?,?,?,?,?)",
		id, email, string(hash), meta.Name, string(meta.Role))
	if err != nil {
		// MySQL error 1062 = duplicate key on the unique email index.
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return model.Identity{}, nil, &provider.Error{Message: "User already registered"}
		}
		return model.Identity{}, nil, err
	}

	ident := model.Identity{ID: id, Email: email, Metadata: meta}
	sess, err := b.issueSession(ident)
	if err != nil {
		return model.Identity{}, nil, err
	}
	return ident, &sess, nil
}

// SignInWithPassword verifies credentials against the users table. Unknown
// emails and wrong passwords produce the same message, so callers cannot
// probe which accounts exist.
func (b *Backend) SignInWithPassword(ctx context.Context, email, password string) (model.Identity, model.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var (
		id, hash, name, role string
	)
	err := b.DB.QueryRowContext(ctx,
		"SELECT id, password_hash, name, role FROM users WHERE email=? LIMIT 1",
		email).Scan(&id, &hash, &name, &role)
	if err == sql.ErrNoRows {
		return model.Identity{}, model.Session{}, &provider.Error{Message: "Invalid login credentials"}
	}
	if err != nil {
		return model.Identity{}, model.Session{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return model.Identity{}, model.Session{}, &provider.Error{Message: "Invalid login credentials"}
	}

	ident := model.Identity{
		ID:       id,
		Email:    email,
		Metadata: model.Metadata{Name: name, Role: model.Role(role)},
	}
	sess, err := b.issueSession(ident)
	if err != nil {
		return model.Identity{}, model.Session{}, err
	}
	return ident, sess, nil
}

// GetUser parses and verifies an access token previously issued by this
// backend and rebuilds the identity from its claims. No database round trip
// is needed; the claims carry everything the gates read.
func (b *Backend) GetUser(_ context.Context, accessToken string) (model.Identity, error) {
	tok, err := jwt.Parse(accessToken, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, provider.ErrInvalidToken
		}
		return []byte(b.Secret), nil
	})
	if err != nil || !tok.Valid {
		return model.Identity{}, provider.ErrInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return model.Identity{}, provider.ErrInvalidToken
	}

	ident := model.Identity{}
	if v, ok := claims["sub"].(string); ok {
		ident.ID = v
	}
	if v, ok := claims["email"].(string); ok {
		ident.Email = v
	}
	if v, ok := claims["name"].(string); ok {
		ident.Metadata.Name = v
	}
	if v, ok := claims["role"].(string); ok {
		ident.Metadata.Role = model.Role(v)
	}
	if ident.ID == "" {
		return model.Identity{}, provider.ErrInvalidToken
	}
	return ident, nil
}

// issueSession signs an HS256 access token carrying the identity's claims.
func (b *Backend) issueSession(ident model.Identity) (model.Session, error) {
	ttl := time.Duration(b.AccessTTLMin) * time.Minute
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub":   ident.ID,
		"email": ident.Email,
		"name":  ident.Metadata.Name,
		"role":  string(ident.Metadata.Role),
		"exp":   now.Add(ttl).Unix(),
		"iat":   now.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(b.Secret))
	if err != nil {
		return model.Session{}, err
	}
	return model.Session{
		AccessToken: signed,
		TokenType:   "bearer",
		ExpiresIn:   int(ttl / time.Second),
	}, nil
}
