// Package storage persists detected objects in SQLite.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"skymatch/internal/extraction"
	"skymatch/pkg/colorutil"
	"skymatch/pkg/geometry"

	_ "modernc.org/sqlite"
)

// DefaultQueryLimit is the row cap QueryReadOnly appends when the caller
// passes 0.
const DefaultQueryLimit = 200

var (
	// ErrReadOnly is returned when a free-form query is not a SELECT or WITH.
	ErrReadOnly = errors.New("only SELECT/WITH queries are allowed")
	// ErrNotInitialized is returned by queries on a nil Store.
	ErrNotInitialized = errors.New("store not initialized")
)

var (
	limitClause = regexp.MustCompile(`(?i)\blimit\s+(\d+|all)\b`)
	writeVerb   = regexp.MustCompile(`(?i)\b(insert|update|delete|drop|truncate|alter|attach|pragma|replace|create|vacuum)\b`)
)

// Store wraps SQLite-backed persistence for detected objects.
type Store struct {
	DB *sql.DB // Export for direct database access
}

// New opens (or creates) the database at path and ensures schema.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	s := &Store{DB: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS space_objects (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            image_path TEXT,
            centroid_x REAL,
            centroid_y REAL,
            area REAL,
            compactness REAL,
            total_brightness REAL,
            peak_brightness REAL,
            color TEXT,
            background_contrast REAL,
            obj_type TEXT,
            bbox_x INTEGER,
            bbox_y INTEGER,
            bbox_width INTEGER,
            bbox_height INTEGER,
            processing_timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
        );`,
		`CREATE INDEX IF NOT EXISTS idx_so_img ON space_objects(image_path);`,
		`CREATE INDEX IF NOT EXISTS idx_so_timestamp ON space_objects(processing_timestamp);`,
		`CREATE INDEX IF NOT EXISTS idx_so_xy ON space_objects(centroid_x, centroid_y);`,
		`CREATE INDEX IF NOT EXISTS idx_so_area ON space_objects(area);`,
		`CREATE INDEX IF NOT EXISTS idx_so_compactness ON space_objects(compactness);`,
		`CREATE INDEX IF NOT EXISTS idx_so_peak_bright ON space_objects(peak_brightness DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_so_total_bright ON space_objects(total_brightness DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_so_bg_contrast ON space_objects(background_contrast);`,
		`CREATE INDEX IF NOT EXISTS idx_so_type ON space_objects(obj_type);`,
		`CREATE INDEX IF NOT EXISTS idx_so_color ON space_objects(color);`,
		`CREATE INDEX IF NOT EXISTS idx_so_type_bright ON space_objects(obj_type, peak_brightness DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_so_color_bright ON space_objects(color, peak_brightness DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_so_img_type ON space_objects(image_path, obj_type);`,
		`CREATE INDEX IF NOT EXISTS idx_so_img_color ON space_objects(image_path, color);`,
	}
	for _, stmt := range stmts {
		if _, err := s.DB.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the underlying DB.
func (s *Store) Close() error {
	if s == nil || s.DB == nil {
		return nil
	}
	return s.DB.Close()
}

// AppendObjects inserts objs detected in image in a single transaction,
// stamped with ts.
func (s *Store) AppendObjects(ctx context.Context, image string, objs []extraction.DetectedObject, ts time.Time) error {
	if s == nil {
		return nil
	}
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO space_objects (image_path, centroid_x, centroid_y, area, compactness,
        total_brightness, peak_brightness, color, background_contrast, obj_type,
        bbox_x, bbox_y, bbox_width, bbox_height, processing_timestamp)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	stamp := ts.UTC().Format(time.RFC3339)
	for i, o := range objs {
		_, err := stmt.ExecContext(ctx, image, o.CentroidX, o.CentroidY, o.Area, o.Compactness,
			o.TotalBrightness, o.PeakBrightness, nullable(string(o.Color)), o.BackgroundContrast, nullable(string(o.Type)),
			o.BBox.X, o.BBox.Y, o.BBox.Width, o.BBox.Height, stamp)
		if err != nil {
			return fmt.Errorf("insert object %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// Filter narrows Objects. Zero fields match everything.
type Filter struct {
	Image string
	Type  extraction.ObjectType
	Color colorutil.Class
	Limit int
}

// Objects returns stored objects matching f, brightest first.
func (s *Store) Objects(ctx context.Context, f Filter) ([]extraction.DetectedObject, error) {
	if s == nil {
		return nil, ErrNotInitialized
	}
	var where []string
	var args []any
	if f.Image != "" {
		where = append(where, "image_path = ?")
		args = append(args, f.Image)
	}
	if f.Type != "" {
		where = append(where, "obj_type = ?")
		args = append(args, string(f.Type))
	}
	if f.Color != "" {
		where = append(where, "color = ?")
		args = append(args, string(f.Color))
	}

	q := `SELECT centroid_x, centroid_y, area, compactness, total_brightness, peak_brightness,
        color, background_contrast, obj_type, bbox_x, bbox_y, bbox_width, bbox_height FROM space_objects`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY peak_brightness DESC, id"
	if f.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.DB.QueryContext(ctx, q+";", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var objs []extraction.DetectedObject
	for rows.Next() {
		var o extraction.DetectedObject
		var color, typ sql.NullString
		var bx, by, bw, bh sql.NullInt64
		if err := rows.Scan(&o.CentroidX, &o.CentroidY, &o.Area, &o.Compactness, &o.TotalBrightness, &o.PeakBrightness,
			&color, &o.BackgroundContrast, &typ, &bx, &by, &bw, &bh); err != nil {
			return nil, err
		}
		o.Color = colorutil.Class(color.String)
		o.Type = extraction.ObjectType(typ.String)
		o.BBox = geometry.RectInt{X: int(bx.Int64), Y: int(by.Int64), Width: int(bw.Int64), Height: int(bh.Int64)}
		objs = append(objs, o)
	}
	return objs, rows.Err()
}

// Count returns the number of stored objects.
func (s *Store) Count(ctx context.Context) (int, error) {
	if s == nil {
		return 0, ErrNotInitialized
	}
	var n int
	err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM space_objects;`).Scan(&n)
	return n, err
}

// QueryResult is the outcome of a free-form read-only query.
type QueryResult struct {
	SQL     string           `json:"sql"`
	Columns []string         `json:"columns"`
	Rows    []map[string]any `json:"rows"`
}

// QueryReadOnly runs a SELECT or WITH statement. A trailing semicolon is
// dropped and "LIMIT limit" appended when the query has no LIMIT clause.
func (s *Store) QueryReadOnly(ctx context.Context, query string, limit int) (*QueryResult, error) {
	if s == nil {
		return nil, ErrNotInitialized
	}
	if limit <= 0 {
		limit = DefaultQueryLimit
	}

	q := strings.TrimSpace(query)
	q = strings.TrimSpace(strings.TrimSuffix(q, ";"))
	head := strings.ToLower(stripComments(q))
	if !strings.HasPrefix(head, "select") && !strings.HasPrefix(head, "with") {
		return nil, fmt.Errorf("%w: %q", ErrReadOnly, query)
	}
	if m := writeVerb.FindString(head); m != "" {
		return nil, fmt.Errorf("%w: %s not permitted", ErrReadOnly, m)
	}
	if !limitClause.MatchString(q) {
		q = fmt.Sprintf("%s LIMIT %d", q, limit)
	}

	rows, err := s.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", q, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	res := &QueryResult{SQL: q, Columns: cols, Rows: []map[string]any{}}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(map[string]any, len(cols))
		for i, c := range cols {
			if b, ok := vals[i].([]byte); ok {
				row[c] = string(b)
			} else {
				row[c] = vals[i]
			}
		}
		res.Rows = append(res.Rows, row)
	}
	return res, rows.Err()
}

// stripComments drops "--" line comments and joins the remaining lines.
func stripComments(q string) string {
	var parts []string
	for _, line := range strings.Split(q, "\n") {
		line, _, _ = strings.Cut(line, "--")
		if line = strings.TrimSpace(line); line != "" {
			parts = append(parts, line)
		}
	}
	return strings.Join(parts, " ")
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
