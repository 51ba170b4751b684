// Saved view configurations, kept in sqlite so a named view survives server
// restarts. The stored payload is the model JSON itself.

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/yumyai/ggview/pkg/model"
)

// Defining possible error
var ViewNotExists = errors.New("saved view does not exist")

type SavedView struct {
	Name      string
	Config    *model.Config
	CreatedAt time.Time
}

type ViewStore struct {
	db *sql.DB
}

func NewViewStore(db *sql.DB) *ViewStore {
	return &ViewStore{db: db}
}

// Init creates the schema if it is not there yet.
func (s *ViewStore) Init(ctx context.Context) error {

	qstring := `CREATE TABLE IF NOT EXISTS saved_view (
		name       TEXT PRIMARY KEY,
		config     TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`

	if _, err := s.db.ExecContext(ctx, qstring); err != nil {
		return fmt.Errorf("init saved_view schema: %w", err)
	}
	return nil
}

// Save upserts a named view configuration.
func (s *ViewStore) Save(ctx context.Context, name string, cfg *model.Config) error {

	if name == "" {
		return fmt.Errorf("saved view needs a name")
	}

	payload, err := cfg.ToJSON()
	if err != nil {
		return err
	}

	qstring := `INSERT INTO saved_view (name, config, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET config = excluded.config, created_at = excluded.created_at;`

	if _, err := s.db.ExecContext(ctx, qstring, name, string(payload), time.Now().UTC()); err != nil {
		return fmt.Errorf("save view %q: %w", name, err)
	}
	return nil
}

func (s *ViewStore) Get(ctx context.Context, name string) (*model.Config, error) {

	qstring := `SELECT config FROM saved_view WHERE name = ?;`

	var payload string
	err := s.db.QueryRowContext(ctx, qstring, name).Scan(&payload)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ViewNotExists, name)
	}
	if err != nil {
		return nil, fmt.Errorf("get view %q: %w", name, err)
	}

	return model.ConfigFromJSON([]byte(payload))
}

// List returns saved views without their payload, newest first.
func (s *ViewStore) List(ctx context.Context) ([]SavedView, error) {

	qstring := `SELECT name, created_at FROM saved_view ORDER BY created_at DESC, name;`

	rows, err := s.db.QueryContext(ctx, qstring)
	if err != nil {
		return nil, fmt.Errorf("list views: %w", err)
	}
	defer rows.Close()

	var results []SavedView

	for rows.Next() {
		var v SavedView
		if err := rows.Scan(&v.Name, &v.CreatedAt); err != nil {
			return nil, err
		}
		results = append(results, v)
	}

	return results, rows.Err()
}

func (s *ViewStore) Delete(ctx context.Context, name string) error {

	res, err := s.db.ExecContext(ctx, `DELETE FROM saved_view WHERE name = ?;`, name)
	if err != nil {
		return fmt.Errorf("delete view %q: %w", name, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ViewNotExists, name)
	}
	return nil
}
