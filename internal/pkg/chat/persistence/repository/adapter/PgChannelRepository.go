package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pouyadh/chat-app-server/internal/pkg/chat/domain"
	"github.com/pouyadh/chat-app-server/internal/pkg/chat/persistence/repository/port"
)

// PgChannelRepository stores channel aggregates as JSONB documents in the
// chat.channel table.
type PgChannelRepository struct {
	pool *pgxpool.Pool
}

func NewPgChannelRepository(pool *pgxpool.Pool) *PgChannelRepository {
	return &PgChannelRepository{pool: pool}
}

var _ port.ChannelRepository = (*PgChannelRepository)(nil)

func (r *PgChannelRepository) GetByID(ctx context.Context, id string) (*domain.Channel, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgChannelRepository: nil pool")
	}
	var doc []byte
	err := r.pool.QueryRow(ctx,
		"SELECT doc FROM chat.channel WHERE id = $1", id,
	).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, port.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var ch domain.Channel
	if err := json.Unmarshal(doc, &ch); err != nil {
		return nil, fmt.Errorf("channel %s: decode: %w", id, err)
	}
	return &ch, nil
}

func (r *PgChannelRepository) Save(ctx context.Context, ch *domain.Channel) error {
	if r == nil || r.pool == nil {
		return errors.New("PgChannelRepository: nil pool")
	}
	doc, err := json.Marshal(ch)
	if err != nil {
		return fmt.Errorf("channel %s: encode: %w", ch.ID, err)
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO chat.channel (id, doc, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (id) DO UPDATE SET doc = EXCLUDED.doc, updated_at = now()
	`, ch.ID, doc)
	return err
}

func (r *PgChannelRepository) Delete(ctx context.Context, id string) error {
	if r == nil || r.pool == nil {
		return errors.New("PgChannelRepository: nil pool")
	}
	ct, err := r.pool.Exec(ctx, "DELETE FROM chat.channel WHERE id = $1", id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return port.ErrNotFound
	}
	return nil
}
