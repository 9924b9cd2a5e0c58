package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/occugrid/internal/stats"
)

// Session is a persisted mapping session record.
type Session struct {
	SessionID     string  `json:"session_id"`
	StartedAtNs   int64   `json:"started_at_ns"`
	EndedAtNs     int64   `json:"ended_at_ns"`
	Frames        int64   `json:"frames"`
	Bytes         int64   `json:"bytes"`
	Points        int64   `json:"points"`
	SkippedPoints int64   `json:"skipped_points"`
	Dropped       int64   `json:"dropped"`
	MeanFPS       float64 `json:"mean_fps"`
	MeanGapNs     int64   `json:"mean_gap_ns"`
	ObservedCells int64   `json:"observed_cells"`
}

// SessionStore provides persistence for mapping session statistics.
type SessionStore struct {
	db *sql.DB
}

// NewSessionStore creates a SessionStore on an open database.
func NewSessionStore(db *DB) *SessionStore {
	return &SessionStore{db: db.DB}
}

// Insert persists a session record. If SessionID is empty, a UUID is
// generated and written back.
func (s *SessionStore) Insert(sess *Session) error {
	if sess.SessionID == "" {
		sess.SessionID = uuid.New().String()
	}
	if sess.EndedAtNs == 0 {
		sess.EndedAtNs = time.Now().UnixNano()
	}

	return retryOnBusy(func() error {
		_, err := s.db.Exec(`
			INSERT INTO map_sessions (
				session_id, started_at_ns, ended_at_ns,
				frames, bytes, points, skipped_points, dropped,
				mean_fps, mean_gap_ns, observed_cells
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			sess.SessionID, sess.StartedAtNs, sess.EndedAtNs,
			sess.Frames, sess.Bytes, sess.Points, sess.SkippedPoints, sess.Dropped,
			sess.MeanFPS, sess.MeanGapNs, sess.ObservedCells,
		)
		return err
	})
}

// InsertSummary persists a collector summary together with the final grid
// size, returning the generated session ID.
func (s *SessionStore) InsertSummary(summary stats.SessionSummary, observedCells int) (string, error) {
	sess := &Session{
		StartedAtNs:   summary.StartedAt.UnixNano(),
		EndedAtNs:     summary.EndedAt.UnixNano(),
		Frames:        summary.Frames,
		Bytes:         summary.Bytes,
		Points:        summary.Points,
		SkippedPoints: summary.SkippedPoints,
		Dropped:       summary.Dropped,
		MeanFPS:       summary.MeanFPS,
		MeanGapNs:     summary.MeanGap.Nanoseconds(),
		ObservedCells: int64(observedCells),
	}
	if err := s.Insert(sess); err != nil {
		return "", err
	}
	return sess.SessionID, nil
}

// Get returns a single session by ID.
func (s *SessionStore) Get(sessionID string) (*Session, error) {
	row := s.db.QueryRow(`
		SELECT session_id, started_at_ns, ended_at_ns,
		       frames, bytes, points, skipped_points, dropped,
		       mean_fps, mean_gap_ns, observed_cells
		FROM map_sessions
		WHERE session_id = ?`, sessionID)

	var sess Session
	err := row.Scan(
		&sess.SessionID, &sess.StartedAtNs, &sess.EndedAtNs,
		&sess.Frames, &sess.Bytes, &sess.Points, &sess.SkippedPoints, &sess.Dropped,
		&sess.MeanFPS, &sess.MeanGapNs, &sess.ObservedCells,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("session %s not found", sessionID)
		}
		return nil, fmt.Errorf("scan session: %w", err)
	}
	return &sess, nil
}

// List returns the most recent sessions, newest first.
func (s *SessionStore) List(limit int) ([]*Session, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`
		SELECT session_id, started_at_ns, ended_at_ns,
		       frames, bytes, points, skipped_points, dropped,
		       mean_fps, mean_gap_ns, observed_cells
		FROM map_sessions
		ORDER BY started_at_ns DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		var sess Session
		if err := rows.Scan(
			&sess.SessionID, &sess.StartedAtNs, &sess.EndedAtNs,
			&sess.Frames, &sess.Bytes, &sess.Points, &sess.SkippedPoints, &sess.Dropped,
			&sess.MeanFPS, &sess.MeanGapNs, &sess.ObservedCells,
		); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, &sess)
	}
	return sessions, rows.Err()
}
