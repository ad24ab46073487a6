package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	qb "github.com/riskibarqy/tournament-reconciler/internal/platform/querybuilder"
)

// documentRow is the shape every catalog table shares: key columns used for
// filtering plus the full record as JSONB.
type documentRow struct {
	ID      string `db:"id"`
	Payload []byte `db:"payload"`
}

const uniqueViolationCode = "23505"

// ErrDuplicate is returned by create operations when the key is taken.
var ErrDuplicate = errors.New("document already exists")

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolationCode
}

func encodePayload(value any) ([]byte, error) {
	raw, err := sonic.Marshal(value)
	if err != nil {
		return nil, crerr.Wrap(err, "encode document payload")
	}
	return raw, nil
}

func decodePayload[T any](row documentRow) (T, error) {
	var out T
	if err := sonic.Unmarshal(row.Payload, &out); err != nil {
		return out, crerr.Wrapf(err, "decode document %s", row.ID)
	}
	return out, nil
}

func selectDocuments[T any](ctx context.Context, db sqlx.QueryerContext, what string, query *qb.SelectBuilder) ([]T, error) {
	stmt, args, err := query.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select %s query: %w", what, err)
	}

	var rows []documentRow
	if err := sqlx.SelectContext(ctx, db, &rows, stmt, args...); err != nil {
		return nil, fmt.Errorf("select %s: %w", what, err)
	}

	out := make([]T, 0, len(rows))
	for _, row := range rows {
		item, err := decodePayload[T](row)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

func getDocument[T any](ctx context.Context, db sqlx.QueryerContext, what string, query *qb.SelectBuilder) (T, bool, error) {
	var zero T
	stmt, args, err := query.ToSQL()
	if err != nil {
		return zero, false, fmt.Errorf("build get %s query: %w", what, err)
	}

	var row documentRow
	if err := sqlx.GetContext(ctx, db, &row, stmt, args...); err != nil {
		if isNotFound(err) {
			return zero, false, nil
		}
		return zero, false, fmt.Errorf("get %s: %w", what, err)
	}

	item, err := decodePayload[T](row)
	if err != nil {
		return zero, false, err
	}
	return item, true, nil
}

// document is one row to upsert. Keys are the indexed columns; conflict names
// the unique constraint the upsert targets.
type document struct {
	table    string
	conflict []string
	keys     []string
	values   []any
	payload  any
}

func upsertDocument(ctx context.Context, db sqlx.ExecerContext, doc document) error {
	payload, err := encodePayload(doc.payload)
	if err != nil {
		return err
	}

	stmt, args, err := qb.InsertInto(doc.table).
		Columns(append(append([]string(nil), doc.keys...), "payload")...).
		Values(append(append([]any(nil), doc.values...), payload)...).
		OnConflict(doc.conflict...).
		Touch("updated_at").
		ToSQL()
	if err != nil {
		return fmt.Errorf("build upsert %s query: %w", doc.table, err)
	}
	if _, err := db.ExecContext(ctx, stmt, args...); err != nil {
		return fmt.Errorf("upsert %s: %w", doc.table, err)
	}
	return nil
}

// insertDocument fails with a unique violation when the row already exists.
func insertDocument(ctx context.Context, db sqlx.ExecerContext, doc document) error {
	payload, err := encodePayload(doc.payload)
	if err != nil {
		return err
	}

	stmt, args, err := qb.InsertInto(doc.table).
		Columns(append(append([]string(nil), doc.keys...), "payload")...).
		Values(append(append([]any(nil), doc.values...), payload)...).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build insert %s query: %w", doc.table, err)
	}
	if _, err := db.ExecContext(ctx, stmt, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert %s %v: %w", doc.table, doc.values[0], ErrDuplicate)
		}
		return fmt.Errorf("insert %s: %w", doc.table, err)
	}
	return nil
}

// updateDocument rewrites an existing row and reports whether it was found.
func updateDocument(ctx context.Context, db sqlx.ExecerContext, doc document, where ...qb.Condition) (bool, error) {
	payload, err := encodePayload(doc.payload)
	if err != nil {
		return false, err
	}

	update := qb.Update(doc.table)
	for i, key := range doc.keys {
		update = update.Set(key, doc.values[i])
	}
	stmt, args, err := update.
		Set("payload", payload).
		Touch("updated_at").
		Where(where...).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build update %s query: %w", doc.table, err)
	}

	res, err := db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return false, fmt.Errorf("update %s: %w", doc.table, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update %s rows affected: %w", doc.table, err)
	}
	return affected > 0, nil
}

func deleteWhere(ctx context.Context, db sqlx.ExecerContext, table string, where ...qb.Condition) error {
	stmt, args, err := qb.Delete(table).Where(where...).ToSQL()
	if err != nil {
		return fmt.Errorf("build delete %s query: %w", table, err)
	}
	if _, err := db.ExecContext(ctx, stmt, args...); err != nil {
		return fmt.Errorf("delete %s: %w", table, err)
	}
	return nil
}

func nullString(value string) sql.NullString {
	value = strings.TrimSpace(value)
	return sql.NullString{String: value, Valid: value != ""}
}
