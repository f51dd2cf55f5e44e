package users

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

const dateLayout = "2006-01-02"

const userColumns = `id, first_name, last_name, dob, phone, telegram_id, created_at`

type infra struct {
	db *sql.DB
}

func NewInfra(db *sql.DB) Infra {
	return &infra{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*User, error) {
	var u User
	err := row.Scan(
		&u.ID,
		&u.FirstName,
		&u.LastName,
		&u.DOB,
		&u.Phone,
		&u.TelegramID,
		&u.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (i *infra) Get(ctx context.Context, id int64) (*User, error) {
	return scanUser(i.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1
	`, id))
}

func (i *infra) GetByTelegramID(ctx context.Context, telegramID int64) (*User, error) {
	return scanUser(i.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE telegram_id = $1
	`, telegramID))
}

func (i *infra) FindByNameDOB(ctx context.Context, name string, dob time.Time) (*User, error) {
	return scanUser(i.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE first_name = $1 AND dob = $2
		ORDER BY id
		LIMIT 1
	`, name, dob.Format(dateLayout)))
}

func (i *infra) Create(ctx context.Context, u *User) (*User, error) {
	return insertUser(ctx, i.db, u)
}

func (i *infra) PhoneExistsTx(ctx context.Context, tx *sql.Tx, phone string) (bool, error) {
	var exists bool
	err := tx.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM users WHERE phone = $1
		)
	`, phone).Scan(&exists)
	return exists, err
}

func (i *infra) CreateTx(ctx context.Context, tx *sql.Tx, u *User) (*User, error) {
	return insertUser(ctx, tx, u)
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func insertUser(ctx context.Context, q queryRower, u *User) (*User, error) {
	out := *u
	out.CreatedAt = time.Now().UTC()

	err := q.QueryRowContext(ctx, `
		INSERT INTO users (first_name, last_name, dob, phone, telegram_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`,
		out.FirstName,
		out.LastName,
		out.DOB.Format(dateLayout),
		out.Phone,
		out.TelegramID,
		out.CreatedAt,
	).Scan(&out.ID)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
