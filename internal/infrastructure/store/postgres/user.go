package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"parts-assistant/internal/application/port/output"
	"parts-assistant/internal/domain/entity"
)

var _ output.UserStore = (*DB)(nil)

const userColumns = "id, email, username, password_hash, role, created_at, updated_at"

func (d *DB) CreateUser(ctx context.Context, user *entity.User) (*entity.User, error) {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.Role == "" {
		user.Role = entity.UserRoleUser
	}
	row := d.db.QueryRowContext(ctx,
		`INSERT INTO users (id, email, username, password_hash, role)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+userColumns,
		user.ID, user.Email, user.Username, user.PasswordHash, user.Role)
	return scanUser(row)
}

func (d *DB) GetUser(ctx context.Context, id string) (*entity.User, error) {
	row := d.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	user, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return user, err
}

func (d *DB) GetUserByEmail(ctx context.Context, email string) (*entity.User, error) {
	row := d.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	user, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return user, err
}

func (d *DB) ListUsers(ctx context.Context) ([]*entity.User, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*entity.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, user)
	}
	return list, rows.Err()
}

func (d *DB) UpdateUser(ctx context.Context, id string, update output.UpdateUser) (*entity.User, error) {
	set, args := []string{}, []interface{}{}
	add := func(column string, value interface{}) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if update.Email != nil {
		add("email", *update.Email)
	}
	if update.Username != nil {
		add("username", *update.Username)
	}
	if update.PasswordHash != nil {
		add("password_hash", *update.PasswordHash)
	}
	if update.Role != nil {
		add("role", string(*update.Role))
	}
	if len(set) == 0 {
		return d.GetUser(ctx, id)
	}
	set = append(set, "updated_at = now()")
	args = append(args, id)

	row := d.db.QueryRowContext(ctx,
		fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d RETURNING `+userColumns,
			strings.Join(set, ", "), len(args)),
		args...)
	user, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return user, err
}

func (d *DB) DeleteUser(ctx context.Context, id string) error {
	_, err := d.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	return err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (*entity.User, error) {
	u := &entity.User{}
	var role string
	if err := row.Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &role, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.Role = entity.UserRole(role)
	return u, nil
}
