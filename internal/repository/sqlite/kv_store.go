package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/lessonflow/internal/logger"
	"github.com/vytor/lessonflow/internal/repository"
)

var sqlBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

const kvTable = "progress_kv"

// upsertSuffix keeps the stored row when it already carries a newer revision.
const upsertSuffix = `ON CONFLICT(key) DO UPDATE SET
    value = excluded.value,
    revision = excluded.revision,
    updated_at = excluded.updated_at
WHERE excluded.revision >= progress_kv.revision`

type kvStore struct {
	db *sql.DB
}

// NewKVStore creates a KVStore backed by the progress_kv table.
func NewKVStore(db *sql.DB) repository.KVStore {
	return &kvStore{db: db}
}

func (r *kvStore) Get(ctx context.Context, key string) (*repository.Entry, error) {
	log := logger.FromContext(ctx).WithPrefix("kv_store")
	log.Debug("getting key: %s", key)

	query, args, err := sqlBuilder.Select("key", "value", "revision").From(kvTable).Where(squirrel.Eq{"key": key}).ToSql()
	if err != nil {
		return nil, err
	}

	var e repository.Entry
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&e.Key, &e.Value, &e.Revision)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("key not found: %s", key)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get key %s: %v", key, err)
		return nil, err
	}
	return &e, nil
}

func (r *kvStore) Set(ctx context.Context, key string, value []byte, revision int64) (bool, error) {
	log := logger.FromContext(ctx).WithPrefix("kv_store")
	log.Debug("setting key: %s revision=%d", key, revision)

	res, err := upsert(key, value, revision).RunWith(r.db).ExecContext(ctx)
	if err != nil {
		log.Error("failed to set key %s: %v", key, err)
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		log.Debug("stale write rejected: key=%s revision=%d", key, revision)
		return false, nil
	}
	return true, nil
}

func (r *kvStore) Update(ctx context.Context, key string, fn repository.UpdateFunc) error {
	log := logger.FromContext(ctx).WithPrefix("kv_store")
	log.Debug("updating key: %s", key)

	return tx(ctx, r.db, func(tx *sql.Tx) error {
		query, args, err := sqlBuilder.Select("value", "revision").From(kvTable).Where(squirrel.Eq{"key": key}).ToSql()
		if err != nil {
			return err
		}

		var (
			current  []byte
			revision int64
			found    = true
		)
		err = tx.QueryRowContext(ctx, query, args...).Scan(&current, &revision)
		if errors.Is(err, sql.ErrNoRows) {
			found = false
		} else if err != nil {
			log.Error("failed to read key %s: %v", key, err)
			return err
		}

		next, err := fn(current, found)
		if err != nil {
			return err
		}

		if _, err := upsert(key, next, revision+1).RunWith(tx).ExecContext(ctx); err != nil {
			log.Error("failed to write key %s: %v", key, err)
			return err
		}
		return nil
	})
}

func (r *kvStore) List(ctx context.Context, prefix string) ([]repository.Entry, error) {
	log := logger.FromContext(ctx).WithPrefix("kv_store")
	log.Debug("listing keys with prefix: %s", prefix)

	// A key range instead of LIKE, so '%' and '_' in ids are not wildcards.
	query := sqlBuilder.Select("key", "value", "revision").From(kvTable)
	if prefix != "" {
		query = query.Where(squirrel.And{
			squirrel.GtOrEq{"key": prefix},
			squirrel.Lt{"key": prefix + "\xff"},
		})
	}
	query = query.OrderBy("key")

	rows, err := query.RunWith(r.db).QueryContext(ctx)
	if err != nil {
		log.Error("failed to list prefix %s: %v", prefix, err)
		return nil, err
	}
	defer rows.Close()

	var entries []repository.Entry
	for rows.Next() {
		var e repository.Entry
		if err := rows.Scan(&e.Key, &e.Value, &e.Revision); err != nil {
			log.Error("failed to scan kv row: %v", err)
			return nil, err
		}
		entries = append(entries, e)
	}

	log.Debug("found %d keys with prefix %s", len(entries), prefix)
	return entries, rows.Err()
}

func upsert(key string, value []byte, revision int64) squirrel.InsertBuilder {
	return sqlBuilder.Insert(kvTable).
		Columns("key", "value", "revision", "updated_at").
		Values(key, value, revision, time.Now().UTC()).
		Suffix(upsertSuffix)
}
