package dreams

import (
	"context"
	"database/sql"
	"time"
)

type repo struct {
	db *sql.DB
}

func NewRepo(db *sql.DB) Repo {
	return &repo{db: db}
}

func (r *repo) Create(ctx context.Context, userID int64, requestText, responseText string) (*Dream, error) {
	d := Dream{
		UserID:       userID,
		RequestText:  requestText,
		ResponseText: &responseText,
		CreatedAt:    time.Now().UTC(),
	}

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO dreams (user_id, request_text, response_text, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, userID, requestText, responseText, d.CreatedAt).Scan(&d.ID)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *repo) LastN(ctx context.Context, userID int64, n int) ([]Dream, error) {
	if n <= 0 {
		return nil, nil
	}
	return r.query(ctx, `
		SELECT id, user_id, request_text, response_text, created_at
		FROM dreams
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, userID, n)
}

func (r *repo) ListByUser(ctx context.Context, userID int64) ([]Dream, error) {
	return r.query(ctx, `
		SELECT id, user_id, request_text, response_text, created_at
		FROM dreams
		WHERE user_id = $1
		ORDER BY created_at ASC, id ASC
	`, userID)
}

func (r *repo) query(ctx context.Context, q string, args ...any) ([]Dream, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Dream
	for rows.Next() {
		var d Dream
		if err := rows.Scan(
			&d.ID,
			&d.UserID,
			&d.RequestText,
			&d.ResponseText,
			&d.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
