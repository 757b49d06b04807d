package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/sirupsen/logrus"

	"opsconsole/lib/apperr"
	"opsconsole/lib/models"
)

const documentsSchema = `
	CREATE TABLE IF NOT EXISTS console_documents (
		collection  TEXT        NOT NULL,
		id          TEXT        NOT NULL,
		body        JSONB       NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (collection, id)
	);
	CREATE INDEX IF NOT EXISTS console_documents_body_idx ON console_documents USING GIN (body jsonb_path_ops);
`

// PostgresStore keeps every collection in one JSONB document table.
// Filters use JSONB containment and updates use the || merge operator,
// which is a shallow merge of top-level keys.
type PostgresStore struct {
	DB     *sql.DB
	Logger *logrus.Logger
}

// EnsureSchema creates the document table when it does not exist yet.
func (dao *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := dao.DB.ExecContext(ctx, documentsSchema); err != nil {
		dao.Logger.WithFields(logrus.Fields{
			"operation": "EnsureSchema",
			"error":     err.Error(),
		}).Error("Failed to create document table")
		return apperr.Storage("ensure schema", err)
	}
	return nil
}

func (dao *PostgresStore) Insert(ctx context.Context, collection string, doc models.Document) error {
	id := doc.ID()
	if id == "" {
		return apperr.Storage("insert", errors.New("document has no id"))
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return apperr.Storage("insert", err)
	}

	_, err = dao.DB.ExecContext(ctx, `
		INSERT INTO console_documents (collection, id, body)
		VALUES ($1, $2, $3::jsonb)
	`, collection, id, string(body))
	if err != nil {
		dao.Logger.WithFields(logrus.Fields{
			"operation":  "Insert",
			"collection": collection,
			"id":         id,
			"error":      err.Error(),
		}).Error("Failed to insert document")
		return apperr.Storage("insert", err)
	}
	return nil
}

func (dao *PostgresStore) Find(ctx context.Context, collection string, filter Filter, opts FindOptions) ([]models.Document, error) {
	criteria, err := containment(filter)
	if err != nil {
		return nil, apperr.Storage("find", err)
	}
	limit := sql.NullInt64{Int64: int64(opts.Limit), Valid: opts.Limit > 0}

	rows, err := dao.DB.QueryContext(ctx, `
		SELECT body
		FROM console_documents
		WHERE collection = $1 AND body @> $2::jsonb
		ORDER BY created_at, id
		LIMIT $3
	`, collection, criteria, limit)
	if err != nil {
		dao.Logger.WithFields(logrus.Fields{
			"operation":  "Find",
			"collection": collection,
			"error":      err.Error(),
		}).Error("Failed to query documents")
		return nil, apperr.Storage("find", err)
	}
	defer rows.Close()

	docs := []models.Document{}
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, apperr.Storage("find", err)
		}
		var doc models.Document
		if err := json.Unmarshal(body, &doc); err != nil {
			return nil, apperr.Storage("find", err)
		}
		if len(opts.Projection) > 0 {
			doc = doc.Project(opts.Projection)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Storage("find", err)
	}
	return docs, nil
}

func (dao *PostgresStore) Update(ctx context.Context, collection, id string, partial models.Document) (int64, error) {
	body, err := json.Marshal(partial)
	if err != nil {
		return 0, apperr.Storage("update", err)
	}

	result, err := dao.DB.ExecContext(ctx, `
		UPDATE console_documents
		SET body = body || $3::jsonb, updated_at = now()
		WHERE collection = $1 AND id = $2
	`, collection, id, string(body))
	if err != nil {
		dao.Logger.WithFields(logrus.Fields{
			"operation":  "Update",
			"collection": collection,
			"id":         id,
			"error":      err.Error(),
		}).Error("Failed to update document")
		return 0, apperr.Storage("update", err)
	}
	return rowsAffected(result, "update")
}

func (dao *PostgresStore) Delete(ctx context.Context, collection, id string) (int64, error) {
	result, err := dao.DB.ExecContext(ctx, `
		DELETE FROM console_documents WHERE collection = $1 AND id = $2
	`, collection, id)
	if err != nil {
		dao.Logger.WithFields(logrus.Fields{
			"operation":  "Delete",
			"collection": collection,
			"id":         id,
			"error":      err.Error(),
		}).Error("Failed to delete document")
		return 0, apperr.Storage("delete", err)
	}
	return rowsAffected(result, "delete")
}

func (dao *PostgresStore) DeleteMany(ctx context.Context, collection string, filter Filter) (int64, error) {
	criteria, err := containment(filter)
	if err != nil {
		return 0, apperr.Storage("delete many", err)
	}

	result, err := dao.DB.ExecContext(ctx, `
		DELETE FROM console_documents WHERE collection = $1 AND body @> $2::jsonb
	`, collection, criteria)
	if err != nil {
		dao.Logger.WithFields(logrus.Fields{
			"operation":  "DeleteMany",
			"collection": collection,
			"error":      err.Error(),
		}).Error("Failed to delete documents")
		return 0, apperr.Storage("delete many", err)
	}
	return rowsAffected(result, "delete many")
}

func (dao *PostgresStore) Close(ctx context.Context) error {
	if err := dao.DB.Close(); err != nil {
		return apperr.Storage("close", err)
	}
	return nil
}

func containment(filter Filter) (string, error) {
	if len(filter) == 0 {
		return "{}", nil
	}
	raw, err := json.Marshal(filter)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func rowsAffected(result sql.Result, op string) (int64, error) {
	n, err := result.RowsAffected()
	if err != nil {
		return 0, apperr.Storage(op, err)
	}
	return n, nil
}
