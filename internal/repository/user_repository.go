package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/danceclub-booking/internal/model"
	"github.com/iliyamo/danceclub-booking/internal/utils"
)

// UserRepo writes club accounts. The API trusts identity tokens and never
// reads this table except to show booker names.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const (
	qInsertUser = `INSERT INTO users (username, name, email, password_hash, role, dance_type) VALUES (?,?,?,?,?,?)`
	qUserByName = `SELECT id, username, name, email, password_hash, role, dance_type, created_at, updated_at
FROM users WHERE username = ? LIMIT 1`
)

// Create hashes password and inserts u, returning its ID.
func (r *UserRepo) Create(ctx context.Context, u *model.User, password string, cost int) (uint64, error) {
	u.Username = strings.ToLower(strings.TrimSpace(u.Username))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	u.PasswordHash = hash
	res, err := r.DB.ExecContext(ctx, qInsertUser,
		u.Username, u.Name, u.Email, u.PasswordHash, string(u.Role), nullString(u.DanceType))
	if err != nil {
		if isDuplicate(err) {
			return 0, ErrUsernameExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	u.ID = uint64(id)
	return u.ID, nil
}

// GetByUsername fetches a user by normalized username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (model.User, error) {
	var (
		u         model.User
		role      string
		danceType sql.NullString
	)
	err := r.DB.QueryRowContext(ctx, qUserByName, strings.ToLower(strings.TrimSpace(username))).
		Scan(&u.ID, &u.Username, &u.Name, &u.Email, &u.PasswordHash, &role, &danceType, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, err
	}
	u.Role = model.Role(role)
	if danceType.Valid {
		v := danceType.String
		u.DanceType = &v
	}
	return u, nil
}
