// Package store indexes classified sessions in an in-memory DuckDB database
// so the commands can filter and aggregate them with SQL.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"fslog/internal/model"
)

// Source is the analysis output the store indexes.
type Source interface {
	Files() []model.LogFile
	Sessions() []*model.Session
	IgnoredLines() []model.IgnoredLine
}

// Store wraps a DuckDB connection.
type Store struct {
	db *sql.DB
}

// Open connects to DuckDB. An empty path opens a private in-memory database.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("duckdb", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open duckdb %s: %w", dbPath, err)
	}
	return &Store{db: db}, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// InitSchema creates the tables and indexes if they don't exist.
func (s *Store) InitSchema() error {
	if _, err := s.db.Exec(coreSchema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// --- Indexing ---

// Index replaces the stored data with src in one transaction.
func (s *Store) Index(src Source) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, q := range resetStatements {
		if _, err := tx.Exec(q); err != nil {
			return fmt.Errorf("reset index: %w", err)
		}
	}

	if err := insertFiles(tx, src.Files()); err != nil {
		return err
	}
	if err := insertSessions(tx, src.Sessions()); err != nil {
		return err
	}
	if err := insertIgnored(tx, src.IgnoredLines()); err != nil {
		return err
	}
	return tx.Commit()
}

func insertFiles(tx *sql.Tx, files []model.LogFile) error {
	stmt, err := tx.Prepare(`INSERT INTO files (file_index, path, start_time, line_count) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare files: %w", err)
	}
	defer stmt.Close()

	for i, f := range files {
		if _, err := stmt.Exec(i, f.Path, nullTime(f.Start), len(f.Lines)); err != nil {
			return fmt.Errorf("insert file %s: %w", f.Path, err)
		}
	}
	return nil
}

func insertSessions(tx *sql.Tx, sessions []*model.Session) error {
	sessStmt, err := tx.Prepare(`
		INSERT INTO sessions (session_id, start_time, call_time, call_number, conclusion, note, line_count, event_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare sessions: %w", err)
	}
	defer sessStmt.Close()

	evStmt, err := tx.Prepare(`
		INSERT INTO events (session_id, seq, file_index, line_no, tag, fields)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare events: %w", err)
	}
	defer evStmt.Close()

	for _, sess := range sessions {
		if _, err := sessStmt.Exec(
			sess.ID,
			sess.StartTime,
			sess.CallTime(),
			sess.CallNumber,
			string(sess.Result.Conclusion),
			sess.Result.Note,
			len(sess.Lines),
			len(sess.Events),
		); err != nil {
			return fmt.Errorf("insert session %s: %w", sess.ID, err)
		}

		for seq, e := range sess.Events {
			fields, err := json.Marshal(e.Fields)
			if err != nil {
				return fmt.Errorf("encode fields: %w", err)
			}
			if _, err := evStmt.Exec(sess.ID, seq, e.File, e.Line, string(e.Tag), string(fields)); err != nil {
				return fmt.Errorf("insert event %s/%d: %w", sess.ID, seq, err)
			}
		}
	}
	return nil
}

func insertIgnored(tx *sql.Tx, lines []model.IgnoredLine) error {
	stmt, err := tx.Prepare(`INSERT INTO ignored_lines (file_index, line_no, text) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare ignored lines: %w", err)
	}
	defer stmt.Close()

	for _, l := range lines {
		if _, err := stmt.Exec(l.File, l.Line, l.Text); err != nil {
			return fmt.Errorf("insert ignored line %d:%d: %w", l.File, l.Line, err)
		}
	}
	return nil
}

// --- Session queries ---

// Filter narrows session queries. Zero values match everything.
type Filter struct {
	// UUID matches session ids by case-insensitive prefix.
	UUID string
	// CallNumber must equal the session's call number.
	CallNumber string
	// Conclusion matches when it is a case-insensitive substring of the
	// session's conclusion.
	Conclusion string
	// Time bounds the call time.
	Time *model.TimeFilter
	// IncludeEmpty keeps sessions that produced no events.
	IncludeEmpty bool
}

// SessionRow is the indexed summary of one session.
type SessionRow struct {
	ID         string
	StartTime  time.Time
	CallTime   time.Time
	CallNumber string
	Conclusion model.Conclusion
	Note       string
	Lines      int
	Events     int
}

// QuerySessions returns matching sessions ordered by start time, then id.
func (s *Store) QuerySessions(f Filter) ([]SessionRow, error) {
	where, params := f.clauses()
	query := fmt.Sprintf(`
		SELECT s.session_id, s.start_time, s.call_time, s.call_number,
		       s.conclusion, s.note, s.line_count, s.event_count
		FROM sessions s
		WHERE 1 = 1
		%s
		ORDER BY s.start_time, s.session_id
	`, where)

	rows, err := s.db.Query(query, params...)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionRow
	for rows.Next() {
		var r SessionRow
		var conclusion string
		if err := rows.Scan(&r.ID, &r.StartTime, &r.CallTime, &r.CallNumber,
			&conclusion, &r.Note, &r.Lines, &r.Events); err != nil {
			return nil, err
		}
		r.Conclusion = model.Conclusion(conclusion)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (f Filter) clauses() (string, []interface{}) {
	var (
		sb     strings.Builder
		params []interface{}
	)
	if !f.IncludeEmpty {
		sb.WriteString(" AND s.event_count > 0")
	}
	if f.UUID != "" {
		sb.WriteString(" AND s.session_id ILIKE ? || '%'")
		params = append(params, f.UUID)
	}
	if f.CallNumber != "" {
		sb.WriteString(" AND s.call_number = ?")
		params = append(params, f.CallNumber)
	}
	if f.Conclusion != "" {
		sb.WriteString(" AND s.conclusion ILIKE '%' || ? || '%'")
		params = append(params, f.Conclusion)
	}
	timeClause, params := appendTimeClauses(f.Time, "s.call_time", params)
	sb.WriteString(timeClause)
	return sb.String(), params
}

// --- Aggregates ---

// Summary counts what the index holds.
type Summary struct {
	Files        int
	Sessions     int
	Empty        int
	IgnoredLines int
	ByConclusion map[model.Conclusion]int
}

// Summarize counts sessions per conclusion for the sessions matching f.
// Files, Empty and IgnoredLines are not affected by f.
func (s *Store) Summarize(f Filter) (Summary, error) {
	out := Summary{ByConclusion: make(map[model.Conclusion]int)}

	err := s.db.QueryRow(`
		SELECT (SELECT count(*) FROM files),
		       (SELECT count(*) FROM sessions WHERE event_count = 0),
		       (SELECT count(*) FROM ignored_lines)
	`).Scan(&out.Files, &out.Empty, &out.IgnoredLines)
	if err != nil {
		return out, fmt.Errorf("count index: %w", err)
	}

	where, params := f.clauses()
	rows, err := s.db.Query(fmt.Sprintf(`
		SELECT s.conclusion, count(*)
		FROM sessions s
		WHERE 1 = 1
		%s
		GROUP BY s.conclusion
	`, where), params...)
	if err != nil {
		return out, fmt.Errorf("count conclusions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c string
		var n int
		if err := rows.Scan(&c, &n); err != nil {
			return out, err
		}
		out.ByConclusion[model.Conclusion(c)] = n
		out.Sessions += n
	}
	return out, rows.Err()
}

// Count pairs a value with how often it occurs.
type Count struct {
	Value string
	N     int
}

// TagCounts returns how many events carry each tag, most frequent first.
func (s *Store) TagCounts() ([]Count, error) {
	return s.counts(`
		SELECT tag, count(*) AS n
		FROM events
		GROUP BY tag
		ORDER BY n DESC, tag
	`)
}

// CallNumbers returns the distinct non-empty call numbers in ascending order
// with the number of sessions using each.
func (s *Store) CallNumbers() ([]Count, error) {
	return s.counts(`
		SELECT call_number, count(*)
		FROM sessions
		WHERE call_number != ''
		GROUP BY call_number
		ORDER BY call_number
	`)
}

// DuplicateCallNumbers returns the call numbers shared by more than one session.
func (s *Store) DuplicateCallNumbers() ([]Count, error) {
	return s.counts(`
		SELECT call_number, count(*) AS n
		FROM sessions
		WHERE call_number != ''
		GROUP BY call_number
		HAVING count(*) > 1
		ORDER BY call_number
	`)
}

// IgnoredPerFile returns the ignored line count of every file that has any,
// in load order.
func (s *Store) IgnoredPerFile() ([]Count, error) {
	return s.counts(`
		SELECT f.path, count(*)
		FROM ignored_lines i
		JOIN files f ON f.file_index = i.file_index
		GROUP BY f.file_index, f.path
		ORDER BY f.file_index
	`)
}

func (s *Store) counts(query string, params ...interface{}) ([]Count, error) {
	rows, err := s.db.Query(query, params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Count
	for rows.Next() {
		var c Count
		if err := rows.Scan(&c.Value, &c.N); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// SessionsWithTag returns the ids of sessions having at least one event
// with tag, in start order.
func (s *Store) SessionsWithTag(tag model.Tag) ([]string, error) {
	rows, err := s.db.Query(`
		SELECT s.session_id
		FROM sessions s
		WHERE EXISTS (SELECT 1 FROM events e WHERE e.session_id = s.session_id AND e.tag = ?)
		ORDER BY s.start_time, s.session_id
	`, string(tag))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// --- helpers ---

// appendTimeClauses returns the AND conditions bounding tsCol by tf.
func appendTimeClauses(tf *model.TimeFilter, tsCol string, params []interface{}) (string, []interface{}) {
	if tf == nil {
		return "", params
	}
	var sb strings.Builder
	if tf.Since != nil {
		fmt.Fprintf(&sb, " AND %s >= ?", tsCol)
		params = append(params, tf.Since.UTC())
	}
	if tf.Until != nil {
		fmt.Fprintf(&sb, " AND %s <= ?", tsCol)
		params = append(params, tf.Until.UTC())
	}
	return sb.String(), params
}

func nullTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t
}
