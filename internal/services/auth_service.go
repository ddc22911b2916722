package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"tourdesk/internal/domain"
	"tourdesk/internal/domain/models"
	"tourdesk/internal/repositories"
	"tourdesk/internal/utils"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	RoleAdmin    = "admin"
	RoleOperator = "operator"
)

var errBadCredentials = domain.AuthError{Msg: "Email atau password salah"}

// SessionClaims is the signed session. Expiry is checked on every request.
type SessionClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// AuthService logs operators in and verifies their session tokens.
type AuthService struct {
	Operators repositories.OperatorRepository
	Secret    []byte
	TTL       time.Duration
	RequestID string
	Now       func() time.Time
}

// Session is the login response.
type Session struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	Operator  models.Operator `json:"operator"`
}

func (s AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s AuthService) Login(ctx context.Context, email, password string) (Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		fields := map[string]string{}
		if email == "" {
			fields["email"] = "is required"
		}
		if password == "" {
			fields["password"] = "is required"
		}
		return Session{}, domain.ValidationError{Fields: fields}
	}

	op, err := s.Operators.GetByEmail(ctx, email)
	if err != nil {
		if domain.IsNotFound(err) {
			return Session{}, errBadCredentials
		}
		return Session{}, domain.StoreError("gagal memuat operator", err)
	}
	if op.Status != "active" {
		return Session{}, domain.AuthError{Msg: "akun tidak aktif"}
	}
	if err := bcrypt.CompareHashAndPassword([]byte(op.PasswordHash), []byte(password)); err != nil {
		return Session{}, errBadCredentials
	}

	token, exp, err := s.Issue(op.ID, op.Role)
	if err != nil {
		return Session{}, domain.InternalError{Msg: "gagal membuat token", Err: err}
	}
	utils.LogEvent(s.RequestID, "auth", "login", fmt.Sprintf("operator_id=%d role=%s", op.ID, op.Role))
	return Session{Token: token, ExpiresAt: exp, Operator: op}, nil
}

// Issue signs a session for the operator.
func (s AuthService) Issue(operatorID int64, role string) (string, time.Time, error) {
	if len(s.Secret) == 0 {
		return "", time.Time{}, errors.New("jwt secret is empty")
	}
	ttl := s.TTL
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	now := s.now()
	exp := now.Add(ttl)
	claims := SessionClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(operatorID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
	return token, exp, err
}

// Verify checks signature, algorithm and expiry, and returns the caller.
func (s AuthService) Verify(token string) (domain.RequestContext, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.RequestContext{}, domain.AuthError{Msg: "token wajib diisi"}
	}
	var claims SessionClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired(), jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.RequestContext{}, domain.AuthError{Msg: "sesi sudah berakhir", Err: err}
		}
		return domain.RequestContext{}, domain.AuthError{Msg: "token tidak valid", Err: err}
	}
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return domain.RequestContext{}, domain.AuthError{Msg: "token tidak valid", Err: err}
	}
	return domain.RequestContext{OperatorID: id, Role: claims.Role}, nil
}

// BootstrapAdmin creates the first admin when the operators table is empty.
func (s AuthService) BootstrapAdmin(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil
	}
	n, err := s.Operators.Count(ctx)
	if err != nil {
		return fmt.Errorf("count operators: %w", err)
	}
	if n > 0 {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	id, err := s.Operators.Create(ctx, models.Operator{
		Name:         "Administrator",
		Email:        email,
		PasswordHash: string(hash),
		Role:         RoleAdmin,
		Status:       "active",
	})
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	utils.LogEvent(s.RequestID, "auth", "bootstrap_admin", fmt.Sprintf("operator_id=%d", id))
	return nil
}
