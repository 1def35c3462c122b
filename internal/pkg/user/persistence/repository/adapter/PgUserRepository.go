package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pouyadh/chat-app-server/internal/pkg/user/domain"
	"github.com/pouyadh/chat-app-server/internal/pkg/user/persistence/repository/port"
)

// PgUserRepository stores user aggregates as JSONB documents in the
// app.user_account table. Username and email live in their own unique
// columns so signin lookups stay indexed.
type PgUserRepository struct {
	pool *pgxpool.Pool
}

func NewPgUserRepository(pool *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{pool: pool}
}

var _ port.UserRepository = (*PgUserRepository)(nil)

func (r *PgUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getBy(ctx, "id", id)
}

func (r *PgUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.getBy(ctx, "username", username)
}

func (r *PgUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getBy(ctx, "email", email)
}

func (r *PgUserRepository) getBy(ctx context.Context, column, value string) (*domain.User, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgUserRepository: nil pool")
	}
	var doc []byte
	err := r.pool.QueryRow(ctx,
		fmt.Sprintf("SELECT doc FROM app.user_account WHERE %s = $1", column), value,
	).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, port.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeUser(doc)
}

func (r *PgUserRepository) GetByIDs(ctx context.Context, ids []string) ([]*domain.User, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgUserRepository: nil pool")
	}
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx,
		"SELECT doc FROM app.user_account WHERE id = ANY($1)", ids,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		u, err := decodeUser(doc)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *PgUserRepository) Save(ctx context.Context, u *domain.User) error {
	if r == nil || r.pool == nil {
		return errors.New("PgUserRepository: nil pool")
	}
	doc, err := encodeUser(u)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO app.user_account (id, username, email, doc, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (id) DO UPDATE SET
			username = EXCLUDED.username,
			email = EXCLUDED.email,
			doc = EXCLUDED.doc,
			updated_at = now()
	`, u.ID, u.Username, u.Email, doc)
	return err
}

func (r *PgUserRepository) Delete(ctx context.Context, id string) error {
	if r == nil || r.pool == nil {
		return errors.New("PgUserRepository: nil pool")
	}
	ct, err := r.pool.Exec(ctx, "DELETE FROM app.user_account WHERE id = $1", id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return port.ErrNotFound
	}
	return nil
}

// encodeUser serializes the full aggregate, including the password hash the
// public JSON tags hide.
func encodeUser(u *domain.User) ([]byte, error) {
	type persisted struct {
		*domain.User
		HashedPassword string `json:"hashedPassword"`
	}
	doc, err := json.Marshal(persisted{User: u, HashedPassword: u.HashedPassword})
	if err != nil {
		return nil, fmt.Errorf("user %s: encode: %w", u.ID, err)
	}
	return doc, nil
}

func decodeUser(doc []byte) (*domain.User, error) {
	var u domain.User
	if err := json.Unmarshal(doc, &u); err != nil {
		return nil, fmt.Errorf("user: decode: %w", err)
	}
	var secret struct {
		HashedPassword string `json:"hashedPassword"`
	}
	if err := json.Unmarshal(doc, &secret); err != nil {
		return nil, fmt.Errorf("user: decode: %w", err)
	}
	u.HashedPassword = secret.HashedPassword
	return &u, nil
}
