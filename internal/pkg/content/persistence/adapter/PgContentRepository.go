package adapter

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pouyadh/chat-app-server/internal/pkg/content"
)

// PgContentRepository stores message bodies in the chat.content table.
type PgContentRepository struct {
	pool *pgxpool.Pool
}

func NewPgContentRepository(pool *pgxpool.Pool) *PgContentRepository {
	return &PgContentRepository{pool: pool}
}

var _ content.Repository = (*PgContentRepository)(nil)

func (r *PgContentRepository) GetByID(ctx context.Context, id string) (*content.Content, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgContentRepository: nil pool")
	}
	var c content.Content
	err := r.pool.QueryRow(ctx,
		"SELECT id, text, edited FROM chat.content WHERE id = $1", id,
	).Scan(&c.ID, &c.Text, &c.Edited)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, content.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *PgContentRepository) GetByIDs(ctx context.Context, ids []string) ([]content.Content, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgContentRepository: nil pool")
	}
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx,
		"SELECT id, text, edited FROM chat.content WHERE id = ANY($1)", ids,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []content.Content
	for rows.Next() {
		var c content.Content
		if err := rows.Scan(&c.ID, &c.Text, &c.Edited); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PgContentRepository) Save(ctx context.Context, c *content.Content) error {
	if r == nil || r.pool == nil {
		return errors.New("PgContentRepository: nil pool")
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO chat.content (id, text, edited)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET text = EXCLUDED.text, edited = EXCLUDED.edited
	`, c.ID, c.Text, c.Edited)
	return err
}

func (r *PgContentRepository) Delete(ctx context.Context, id string) error {
	if r == nil || r.pool == nil {
		return errors.New("PgContentRepository: nil pool")
	}
	_, err := r.pool.Exec(ctx, "DELETE FROM chat.content WHERE id = $1", id)
	return err
}
