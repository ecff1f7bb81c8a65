package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"

	"github.com/Thalia-the-nerd/smartgoggles/internal/db"
)

const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 7 * 24 * time.Hour

	kindAccess  = "access"
	kindRefresh = "refresh"

	skierColumns    = `id, email, username, password_hash, created_at, updated_at`
	uniqueViolation = "23505"
)

// Service registers skiers and issues their tokens. Refresh tokens are
// stored so they can be rotated and revoked.
type Service struct {
	secret []byte
	db     db.Querier
}

// Claims identify a skier. Kind keeps refresh tokens out of the access path.
type Claims struct {
	SkierID string `json:"skier_id"`
	Kind    string `json:"kind"`
	jwt.RegisteredClaims
}

func NewService(secret string, db db.Querier) *Service {
	return &Service{secret: []byte(secret), db: db}
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (Skier, TokenResponse, error) {
	email, username := normalizeEmail(req.Email), strings.TrimSpace(req.Username)
	if email == "" || username == "" || req.Password == "" {
		return Skier{}, TokenResponse{}, ErrMissingFields
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return Skier{}, TokenResponse{}, err
	}

	skier := Skier{
		ID:           uuid.NewString(),
		Email:        email,
		Username:     username,
		PasswordHash: string(hash),
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO skiers (id, email, username, password_hash)
		VALUES ($1,$2,$3,$4)
		RETURNING created_at, updated_at
	`, skier.ID, skier.Email, skier.Username, skier.PasswordHash)
	if err := row.Scan(&skier.CreatedAt, &skier.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return Skier{}, TokenResponse{}, ErrSkierExists
		}
		return Skier{}, TokenResponse{}, err
	}

	tokens, err := s.GenerateTokens(ctx, skier.ID)
	if err != nil {
		return Skier{}, TokenResponse{}, err
	}
	return skier, tokens, nil
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (Skier, TokenResponse, error) {
	skier, err := scanSkier(s.db.QueryRow(ctx, `SELECT `+skierColumns+` FROM skiers WHERE email = $1`, normalizeEmail(req.Email)))
	if errors.Is(err, pgx.ErrNoRows) {
		return Skier{}, TokenResponse{}, ErrInvalidCredentials
	}
	if err != nil {
		return Skier{}, TokenResponse{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(skier.PasswordHash), []byte(req.Password)); err != nil {
		return Skier{}, TokenResponse{}, ErrInvalidCredentials
	}

	tokens, err := s.GenerateTokens(ctx, skier.ID)
	if err != nil {
		return Skier{}, TokenResponse{}, err
	}
	return skier, tokens, nil
}

func (s *Service) GetSkier(ctx context.Context, id string) (Skier, error) {
	skier, err := scanSkier(s.db.QueryRow(ctx, `SELECT `+skierColumns+` FROM skiers WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Skier{}, fmt.Errorf("%w: %s", ErrSkierNotFound, id)
	}
	return skier, err
}

func scanSkier(row pgx.Row) (Skier, error) {
	var sk Skier
	err := row.Scan(&sk.ID, &sk.Email, &sk.Username, &sk.PasswordHash, &sk.CreatedAt, &sk.UpdatedAt)
	return sk, err
}

func (s *Service) GenerateTokens(ctx context.Context, skierID string) (TokenResponse, error) {
	access, err := s.signToken(skierID, kindAccess, accessTokenTTL)
	if err != nil {
		return TokenResponse{}, err
	}
	refresh, err := s.signToken(skierID, kindRefresh, refreshTokenTTL)
	if err != nil {
		return TokenResponse{}, err
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO refresh_tokens (id, skier_id, token, expires_at)
		VALUES ($1,$2,$3,$4)
	`, uuid.NewString(), skierID, refresh, time.Now().Add(refreshTokenTTL))
	if err != nil {
		return TokenResponse{}, err
	}

	return TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(accessTokenTTL.Seconds()),
	}, nil
}

// Refresh exchanges a refresh token for a new pair. The presented token is
// revoked, so each refresh token works once.
func (s *Service) Refresh(ctx context.Context, token string) (TokenResponse, error) {
	skierID, err := s.ValidateRefreshToken(ctx, token)
	if err != nil {
		return TokenResponse{}, err
	}
	tag, err := s.db.Exec(ctx, `
		UPDATE refresh_tokens SET revoked_at = now()
		WHERE token = $1 AND revoked_at IS NULL
	`, token)
	if err != nil {
		return TokenResponse{}, err
	}
	if tag.RowsAffected() == 0 {
		return TokenResponse{}, ErrRefreshInvalid
	}
	return s.GenerateTokens(ctx, skierID)
}

func (s *Service) ValidateRefreshToken(ctx context.Context, token string) (string, error) {
	claims, err := s.parseToken(token, kindRefresh)
	if err != nil {
		return "", ErrRefreshInvalid
	}

	var (
		skierID   string
		expiresAt time.Time
	)
	err = s.db.QueryRow(ctx, `
		SELECT skier_id, expires_at
		FROM refresh_tokens
		WHERE token = $1 AND revoked_at IS NULL
	`, token).Scan(&skierID, &expiresAt)
	if err != nil || skierID != claims.SkierID || time.Now().After(expiresAt) {
		return "", ErrRefreshInvalid
	}
	return skierID, nil
}

// ValidateAccessToken returns the skier an access token was issued to.
func (s *Service) ValidateAccessToken(token string) (string, error) {
	claims, err := s.parseToken(token, kindAccess)
	if err != nil {
		return "", err
	}
	return claims.SkierID, nil
}

func (s *Service) signToken(skierID, kind string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		SkierID: skierID,
		Kind:    kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   skierID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *Service) parseToken(token, kind string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(_ *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.SkierID == "" || claims.Kind != kind {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
