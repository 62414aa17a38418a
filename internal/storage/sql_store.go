package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"translingo/internal/models"
)

var translationColumns = []string{
	"source_text",
	"translated_text",
	"source_language",
	"target_language",
	"provider",
	"created_at",
}

// SQLStore keeps the history in a relational database opened with Open.
type SQLStore struct {
	db     *sql.DB
	driver string
	sq     sq.StatementBuilderType
	now    func() time.Time
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	driver = strings.ToLower(driver)
	builder := sq.StatementBuilder
	if driver == "postgres" {
		builder = builder.PlaceholderFormat(sq.Dollar)
	}
	return &SQLStore{db: db, driver: driver, sq: builder, now: time.Now}
}

// DB exposes the underlying handle.
func (s *SQLStore) DB() *sql.DB { return s.db }

func (s *SQLStore) Create(ctx context.Context, in models.NewTranslation) (*models.Translation, error) {
	// Microsecond precision survives every supported column type.
	createdAt := s.now().UTC().Truncate(time.Microsecond)
	q := s.sq.Insert("translations").
		Columns(translationColumns...).
		Values(in.SourceText, in.TranslatedText, in.SourceLanguage, in.TargetLanguage, in.Provider, createdAt)

	var id int64
	if s.driver == "postgres" {
		sqlStr, args, err := q.Suffix("RETURNING id").ToSql()
		if err != nil {
			return nil, fmt.Errorf("build insert: %w", err)
		}
		if err := s.db.QueryRowContext(ctx, sqlStr, args...).Scan(&id); err != nil {
			return nil, fmt.Errorf("insert translation: %w", err)
		}
	} else {
		sqlStr, args, err := q.ToSql()
		if err != nil {
			return nil, fmt.Errorf("build insert: %w", err)
		}
		res, err := s.db.ExecContext(ctx, sqlStr, args...)
		if err != nil {
			return nil, fmt.Errorf("insert translation: %w", err)
		}
		if id, err = res.LastInsertId(); err != nil {
			return nil, fmt.Errorf("translation id: %w", err)
		}
	}
	return newRecord(id, in, createdAt), nil
}

func (s *SQLStore) Recent(ctx context.Context, limit int) ([]*models.Translation, error) {
	limit = normalizeLimit(limit)
	sqlStr, args, err := s.sq.
		Select(append([]string{"id"}, translationColumns...)...).
		From("translations").
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("query translations: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Translation, 0, limit)
	for rows.Next() {
		var rec models.Translation
		if err := rows.Scan(
			&rec.ID,
			&rec.SourceText,
			&rec.TranslatedText,
			&rec.SourceLanguage,
			&rec.TargetLanguage,
			&rec.Provider,
			&rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan translation: %w", err)
		}
		rec.CreatedAt = rec.CreatedAt.UTC()
		out = append(out, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate translations: %w", err)
	}
	return out, nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
