package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	_ "modernc.org/sqlite"

	"github.com/louisbranch/typeshelf/internal/fonts"
	"github.com/louisbranch/typeshelf/internal/fonts/query"
	sqlitemigrate "github.com/louisbranch/typeshelf/internal/platform/storage/sqlitemigrate"
	webstorage "github.com/louisbranch/typeshelf/internal/services/web/storage"
	"github.com/louisbranch/typeshelf/internal/services/web/storage/sqlite/migrations"
)

const fontColumns = `id, family, style, postscript_name, weight, italic, format, size_bytes, sha256, uploaded_by, created_at`

var tracer = otel.Tracer("github.com/louisbranch/typeshelf/internal/services/web/storage/sqlite")

// Store provides SQLite-backed persistence for the font catalog.
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
	newID func() string
}

// Open opens and migrates a font catalog SQLite store.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &Store{
		sqlDB: sqlDB,
		now:   time.Now,
		newID: uuid.NewString,
	}
	if _, err := sqlitemigrate.Apply(context.Background(), sqlDB, migrations.FS, "."); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return store, nil
}

// Close releases the underlying SQLite connection.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Ping reports whether the catalog database answers.
func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return s.sqlDB.PingContext(ctx)
}

// ListFonts returns catalog metadata matching q.
func (s *Store) ListFonts(ctx context.Context, q query.Query) (_ []fonts.Font, err error) {
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	ctx, span := tracer.Start(ctx, "catalog.ListFonts", trace.WithAttributes(
		attribute.String("font.filter", q.Filter),
		attribute.String("font.order_by", q.OrderBy),
	))
	defer func() { endSpan(span, err) }()

	cond, err := q.Where()
	if err != nil {
		return nil, fmt.Errorf("translate filter: %w", err)
	}
	stmt := `SELECT ` + fontColumns + ` FROM fonts`
	if cond.Clause != "" {
		stmt += ` WHERE ` + cond.Clause
	}
	stmt += ` ORDER BY ` + q.OrderClause()

	rows, err := s.sqlDB.QueryContext(ctx, stmt, cond.Params...)
	if err != nil {
		return nil, fmt.Errorf("list fonts: %w", err)
	}
	defer rows.Close()

	list := make([]fonts.Font, 0)
	for rows.Next() {
		font, err := scanFont(rows)
		if err != nil {
			return nil, fmt.Errorf("scan font: %w", err)
		}
		list = append(list, font)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fonts: %w", err)
	}
	span.SetAttributes(attribute.Int("font.count", len(list)))
	return list, nil
}

// GetFont loads one font's metadata.
func (s *Store) GetFont(ctx context.Context, fontID string) (fonts.Font, bool, error) {
	if s == nil || s.sqlDB == nil {
		return fonts.Font{}, false, fmt.Errorf("storage is not configured")
	}
	fontID = strings.TrimSpace(fontID)
	if fontID == "" {
		return fonts.Font{}, false, fmt.Errorf("font id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `SELECT `+fontColumns+` FROM fonts WHERE id = ?`, fontID)
	font, err := scanFont(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fonts.Font{}, false, nil
		}
		return fonts.Font{}, false, fmt.Errorf("get font: %w", err)
	}
	return font, true, nil
}

// FontData loads one font's metadata and binary.
func (s *Store) FontData(ctx context.Context, fontID string) (fonts.Font, []byte, bool, error) {
	font, ok, err := s.GetFont(ctx, fontID)
	if err != nil || !ok {
		return fonts.Font{}, nil, ok, err
	}

	var data []byte
	if err := s.sqlDB.QueryRowContext(ctx, `SELECT data FROM font_files WHERE font_id = ?`, font.ID).Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fonts.Font{}, nil, false, nil
		}
		return fonts.Font{}, nil, false, fmt.Errorf("get font data: %w", err)
	}
	return font, data, true, nil
}

// PutFont stores a new font and its binary. ID and CreatedAt are assigned
// when empty. Duplicate binaries return storage.ErrDuplicate.
func (s *Store) PutFont(ctx context.Context, font fonts.Font, data []byte) (_ fonts.Font, err error) {
	if s == nil || s.sqlDB == nil {
		return fonts.Font{}, fmt.Errorf("storage is not configured")
	}
	ctx, span := tracer.Start(ctx, "catalog.PutFont", trace.WithAttributes(
		attribute.String("font.family", font.Family),
		attribute.Int64("font.size_bytes", font.SizeBytes),
	))
	defer func() { endSpan(span, err) }()

	if strings.TrimSpace(font.Family) == "" {
		return fonts.Font{}, fmt.Errorf("font family is required")
	}
	if strings.TrimSpace(font.SHA256) == "" {
		return fonts.Font{}, fmt.Errorf("font digest is required")
	}
	if len(data) == 0 {
		return fonts.Font{}, fmt.Errorf("font data is required")
	}
	if strings.TrimSpace(font.ID) == "" {
		font.ID = s.newID()
	}
	if font.CreatedAt.IsZero() {
		font.CreatedAt = s.now().UTC()
	}
	font.CreatedAt = unixMillisToTime(timeToUnixMillis(font.CreatedAt))
	font.SizeBytes = int64(len(data))

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fonts.Font{}, fmt.Errorf("begin put font: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO fonts (`+fontColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		font.ID,
		strings.TrimSpace(font.Family),
		strings.TrimSpace(font.Style),
		strings.TrimSpace(font.PostScriptName),
		font.Weight,
		boolToInt(font.Italic),
		string(font.Format),
		font.SizeBytes,
		font.SHA256,
		strings.TrimSpace(font.UploadedBy),
		timeToUnixMillis(font.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fonts.Font{}, webstorage.ErrDuplicate
		}
		return fonts.Font{}, fmt.Errorf("put font: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `INSERT INTO font_files (font_id, data) VALUES (?, ?)`, font.ID, data); err != nil {
		return fonts.Font{}, fmt.Errorf("put font data: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fonts.Font{}, fmt.Errorf("commit put font: %w", err)
	}
	return font, nil
}

// DeleteFont removes a font. A non-empty uploadedBy restricts the delete to
// that uploader's fonts.
func (s *Store) DeleteFont(ctx context.Context, fontID string, uploadedBy string) (bool, error) {
	if s == nil || s.sqlDB == nil {
		return false, fmt.Errorf("storage is not configured")
	}
	fontID = strings.TrimSpace(fontID)
	if fontID == "" {
		return false, fmt.Errorf("font id is required")
	}

	stmt := `DELETE FROM fonts WHERE id = ?`
	args := []any{fontID}
	if owner := strings.TrimSpace(uploadedBy); owner != "" {
		stmt += ` AND uploaded_by = ?`
		args = append(args, owner)
	}
	result, err := s.sqlDB.ExecContext(ctx, stmt, args...)
	if err != nil {
		return false, fmt.Errorf("delete font: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete font: %w", err)
	}
	if affected > 0 {
		// The cascade only fires when the connection enforces foreign keys.
		if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM font_files WHERE font_id = ?`, fontID); err != nil {
			return true, fmt.Errorf("delete font data: %w", err)
		}
	}
	return affected > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFont(row rowScanner) (fonts.Font, error) {
	var font fonts.Font
	var format string
	var italic int64
	var createdAt int64
	if err := row.Scan(
		&font.ID,
		&font.Family,
		&font.Style,
		&font.PostScriptName,
		&font.Weight,
		&italic,
		&format,
		&font.SizeBytes,
		&font.SHA256,
		&font.UploadedBy,
		&createdAt,
	); err != nil {
		return fonts.Font{}, err
	}
	font.Format = fonts.Format(format)
	font.Italic = italic != 0
	font.CreatedAt = unixMillisToTime(createdAt)
	return font, nil
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func isUniqueViolation(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint")
}

func boolToInt(value bool) int64 {
	if value {
		return 1
	}
	return 0
}

func timeToUnixMillis(value time.Time) int64 {
	if value.IsZero() {
		return 0
	}
	return value.UTC().UnixMilli()
}

func unixMillisToTime(value int64) time.Time {
	if value <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(value).UTC()
}

var _ webstorage.FontCatalog = (*Store)(nil)
