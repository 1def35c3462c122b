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

// PgGroupChatRepository stores group chat aggregates as JSONB documents in
// the chat.group_chat table.
type PgGroupChatRepository struct {
	pool *pgxpool.Pool
}

func NewPgGroupChatRepository(pool *pgxpool.Pool) *PgGroupChatRepository {
	return &PgGroupChatRepository{pool: pool}
}

var _ port.GroupChatRepository = (*PgGroupChatRepository)(nil)

func (r *PgGroupChatRepository) GetByID(ctx context.Context, id string) (*domain.GroupChat, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgGroupChatRepository: nil pool")
	}
	var doc []byte
	err := r.pool.QueryRow(ctx,
		"SELECT doc FROM chat.group_chat WHERE id = $1", id,
	).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, port.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var gc domain.GroupChat
	if err := json.Unmarshal(doc, &gc); err != nil {
		return nil, fmt.Errorf("group chat %s: decode: %w", id, err)
	}
	return &gc, nil
}

func (r *PgGroupChatRepository) Save(ctx context.Context, gc *domain.GroupChat) error {
	if r == nil || r.pool == nil {
		return errors.New("PgGroupChatRepository: nil pool")
	}
	doc, err := json.Marshal(gc)
	if err != nil {
		return fmt.Errorf("group chat %s: encode: %w", gc.ID, err)
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO chat.group_chat (id, doc, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (id) DO UPDATE SET doc = EXCLUDED.doc, updated_at = now()
	`, gc.ID, doc)
	return err
}

func (r *PgGroupChatRepository) Delete(ctx context.Context, id string) error {
	if r == nil || r.pool == nil {
		return errors.New("PgGroupChatRepository: nil pool")
	}
	ct, err := r.pool.Exec(ctx, "DELETE FROM chat.group_chat WHERE id = $1", id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return port.ErrNotFound
	}
	return nil
}
