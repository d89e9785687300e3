package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// sessionRecord is the single-row persistence shape used by BunStore. The
// session survives process restarts, which is what the dashboard needs to
// avoid re-login after a redeploy of the gateway.
type sessionRecord struct {
	bun.BaseModel `bun:"table:session_store,alias:ss"`

	Key          string     `bun:"key,pk"`
	AccessToken  string     `bun:"access_token"`
	RefreshToken string     `bun:"refresh_token"`
	UserJSON     []byte     `bun:"user_json"`
	UpdatedAt    *time.Time `bun:"updated_at,nullzero"`
}

const defaultSessionKey = "current"

// BunStore persists the session in a sqlite file through bun.
type BunStore struct {
	db  *bun.DB
	key string
}

// NewBunStore opens (or creates) the sqlite file at dsn and ensures the
// session table exists.
func NewBunStore(ctx context.Context, dsn string) (*BunStore, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to open session database")
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())

	if _, err := db.NewCreateTable().
		Model((*sessionRecord)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to create session table")
	}

	return &BunStore{db: db, key: defaultSessionKey}, nil
}

// Get returns the persisted session, or the zero SessionData when the row is
// absent.
func (s *BunStore) Get(ctx context.Context) (SessionData, error) {
	record := &sessionRecord{}
	err := s.db.NewSelect().
		Model(record).
		Where("key = ?", s.key).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return SessionData{}, nil
		}
		return SessionData{}, errors.Wrap(err, errors.CategoryInternal, "failed to read session record")
	}

	data := SessionData{
		AccessToken:  record.AccessToken,
		RefreshToken: record.RefreshToken,
	}

	if len(record.UserJSON) > 0 {
		user := &User{}
		if err := json.Unmarshal(record.UserJSON, user); err != nil {
			return SessionData{}, errors.Wrap(err, errors.CategoryBadInput, "failed to decode cached user")
		}
		data.User = user
	}

	return data, nil
}

// Set upserts the session row. Both tokens land in one statement so the pair
// can never be half-written.
func (s *BunStore) Set(ctx context.Context, data SessionData) error {
	var userJSON []byte
	if data.User != nil {
		encoded, err := json.Marshal(data.User)
		if err != nil {
			return errors.Wrap(err, errors.CategoryBadInput, "failed to encode cached user")
		}
		userJSON = encoded
	}

	now := time.Now()
	record := &sessionRecord{
		Key:          s.key,
		AccessToken:  data.AccessToken,
		RefreshToken: data.RefreshToken,
		UserJSON:     userJSON,
		UpdatedAt:    &now,
	}

	_, err := s.db.NewInsert().
		Model(record).
		On("CONFLICT (key) DO UPDATE").
		Set("access_token = EXCLUDED.access_token").
		Set("refresh_token = EXCLUDED.refresh_token").
		Set("user_json = EXCLUDED.user_json").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to persist session record")
	}
	return nil
}

// Clear deletes the session row. Clearing an empty store succeeds.
func (s *BunStore) Clear(ctx context.Context) error {
	_, err := s.db.NewDelete().
		Model((*sessionRecord)(nil)).
		Where("key = ?", s.key).
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to clear session record")
	}
	return nil
}

// Close releases the underlying database handle.
func (s *BunStore) Close() error {
	return s.db.Close()
}
