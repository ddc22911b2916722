package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	intconfig "tourdesk/internal/config"
	"tourdesk/internal/domain"
	"tourdesk/internal/domain/models"
)

type OperatorRepository struct {
	DB *sql.DB
}

func (r OperatorRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func (r OperatorRepository) GetByEmail(ctx context.Context, email string) (models.Operator, error) {
	var op models.Operator
	err := r.db().QueryRowContext(ctx, `
		SELECT id, name, email, password_hash, role, status
		FROM operators
		WHERE LOWER(email) = ?
		LIMIT 1
	`, strings.ToLower(strings.TrimSpace(email))).Scan(&op.ID, &op.Name, &op.Email, &op.PasswordHash, &op.Role, &op.Status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return op, domain.NotFoundError{Resource: "operator", ID: email, Err: err}
		}
		return op, err
	}
	return op, nil
}

func (r OperatorRepository) Create(ctx context.Context, op models.Operator) (int64, error) {
	res, err := r.db().ExecContext(ctx, `
		INSERT INTO operators (name, email, password_hash, role, status)
		VALUES (?, ?, ?, ?, ?)
	`, op.Name, strings.ToLower(strings.TrimSpace(op.Email)), op.PasswordHash, op.Role, op.Status)
	if err != nil {
		if isMySQLError(err, mysqlErrDuplicate) {
			return 0, domain.ConflictError{Resource: "operator", Msg: "email already registered", Err: err}
		}
		return 0, err
	}
	return res.LastInsertId()
}

func (r OperatorRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db().QueryRowContext(ctx, `SELECT COUNT(*) FROM operators`).Scan(&n)
	return n, err
}
