package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bnema/tabsession/internal/domain/entity"
	"github.com/bnema/tabsession/internal/domain/repository"
	"github.com/bnema/tabsession/internal/logging"
)

type tabStateRepo struct {
	db *sql.DB
}

// NewTabStateRepository creates a blob repository backed by the tab_states table.
func NewTabStateRepository(db *sql.DB) repository.TabStateRepository {
	return &tabStateRepo{db: db}
}

func (r *tabStateRepo) Load(ctx context.Context, key entity.BlobKey) ([]byte, error) {
	var data []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT data FROM tab_states WHERE tab_id = ? AND incognito = ?`,
		int64(key.ID), key.Incognito,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load tab state %d: %w", key.ID, err)
	}
	return data, nil
}

func (r *tabStateRepo) Save(ctx context.Context, key entity.BlobKey, data []byte) error {
	logging.FromContext(ctx).Debug().
		Int("tab_id", int(key.ID)).
		Bool("incognito", key.Incognito).
		Int("bytes", len(data)).
		Msg("saving tab state")

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tab_states (tab_id, incognito, data, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (tab_id, incognito) DO UPDATE SET
			data = excluded.data,
			updated_at = excluded.updated_at`,
		int64(key.ID), key.Incognito, data,
	)
	if err != nil {
		return fmt.Errorf("save tab state %d: %w", key.ID, err)
	}
	return nil
}

func (r *tabStateRepo) Delete(ctx context.Context, key entity.BlobKey) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM tab_states WHERE tab_id = ? AND incognito = ?`,
		int64(key.ID), key.Incognito,
	)
	if err != nil {
		return fmt.Errorf("delete tab state %d: %w", key.ID, err)
	}
	return nil
}

func (r *tabStateRepo) List(ctx context.Context) ([]entity.BlobKey, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT tab_id, incognito FROM tab_states ORDER BY tab_id`)
	if err != nil {
		return nil, fmt.Errorf("list tab states: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var keys []entity.BlobKey
	for rows.Next() {
		var id int64
		var incognito bool
		if err := rows.Scan(&id, &incognito); err != nil {
			return nil, fmt.Errorf("scan tab state key: %w", err)
		}
		keys = append(keys, entity.BlobKey{ID: entity.TabID(id), Incognito: incognito})
	}
	return keys, rows.Err()
}
