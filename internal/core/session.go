package core

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrSessionNotFound is returned when a session id is unknown or expired.
var ErrSessionNotFound = errors.New("session not found")

// ErrNoData is returned by session operations that need an uploaded table.
var ErrNoData = errors.New("no data loaded")

// DatasetColumns names the registry columns the dashboard filters on.
type DatasetColumns struct {
	Specialty string // Default: SURGSPEC
	Code      string // Default: CPT
	Sex       string // Default: SEX
}

// DefaultDatasetColumns returns the NSQIP column names.
func DefaultDatasetColumns() DatasetColumns {
	return DatasetColumns{Specialty: "SURGSPEC", Code: "CPT", Sex: "SEX"}
}

// Session is the state of one dashboard user: the merged table, the two
// cascading selections and the figure column pickers. Each session owns its
// table; nothing is shared between sessions. Methods are safe for
// concurrent use and run one at a time per session.
type Session struct {
	ID      string
	columns DatasetColumns

	mu       sync.Mutex
	table    *Table
	files    []string
	pipeline Pipeline
	figures  FigureColumns
	created  time.Time
	lastSeen time.Time
}

func newSession(id string, columns DatasetColumns, now time.Time) *Session {
	s := &Session{ID: id, columns: columns, created: now, lastSeen: now}
	s.resetLocked(nil, nil)
	return s
}

// resetLocked installs a table with empty selections and default pickers.
func (s *Session) resetLocked(t *Table, files []string) {
	s.table = t
	s.files = files
	s.pipeline = Pipeline{
		NewSelection(s.columns.Specialty),
		NewSelection(s.columns.Code),
	}
	s.figures = FigureColumns{}.Resolve(t)
}

// View is a consistent snapshot of a session, with the working subset
// computed from the current selections.
type View struct {
	SessionID        string
	Files            []string
	Rows             int // Rows in the merged table
	Columns          []string
	SpecialtyColumn  string
	CodeColumn       string
	SexColumn        string
	SpecialtyOptions []string
	CodeOptions      []string
	Specialty        []string
	Codes            []string
	Subset           *Table
	SubsetColumns    []string
	Figures          FigureColumns
}

// HasData reports whether a table has been uploaded.
func (v View) HasData() bool {
	return v.Subset != nil && len(v.Columns) > 0
}

// Load replaces the session's table. Selections start empty and figure
// pickers fall back to the first column.
func (s *Session) Load(t *Table, files []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked(t, append([]string(nil), files...))
}

// Clear drops the session's table and selections.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked(nil, nil)
}

// Select sets the specialty and code selections. Values that are not on
// offer (a code outside the chosen specialties, a value from an earlier
// upload) are dropped.
func (s *Session) Select(specialty, codes []string) View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pipeline = Pipeline{
		NewSelection(s.columns.Specialty, specialty...),
		NewSelection(s.columns.Code, codes...),
	}.Resolve(s.table)
	return s.viewLocked()
}

// SetFigures sets the five figure column pickers. Pickers naming a column
// the table does not have fall back to the first column.
func (s *Session) SetFigures(fc FigureColumns) View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.figures = fc.Resolve(s.table)
	return s.viewLocked()
}

// View returns a snapshot of the session.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *Session) viewLocked() View {
	v := View{
		SessionID:        s.ID,
		Files:            append([]string{}, s.files...),
		Rows:             s.table.Len(),
		Columns:          ColumnsOf(s.table),
		SpecialtyColumn:  s.columns.Specialty,
		CodeColumn:       s.columns.Code,
		SexColumn:        s.columns.Sex,
		SpecialtyOptions: s.pipeline.Options(s.table, 0),
		CodeOptions:      s.pipeline.Options(s.table, 1),
		Specialty:        s.pipeline.Values(s.columns.Specialty),
		Codes:            s.pipeline.Values(s.columns.Code),
		Figures:          s.figures,
	}
	if s.table != nil {
		v.Subset = s.pipeline.Apply(s.table)
		v.SubsetColumns = ColumnsOf(v.Subset)
	}
	return v
}

// touch records activity at now.
func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

// idleSince reports when the session was last used.
func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// SessionStore holds live sessions keyed by id.
type SessionStore struct {
	columns DatasetColumns
	ttl     time.Duration
	now     func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewSessionStore creates a store whose sessions expire after ttl without
// use. A non-positive ttl keeps sessions until they are deleted.
func NewSessionStore(columns DatasetColumns, ttl time.Duration) *SessionStore {
	return &SessionStore{
		columns:  columns,
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Create starts a new empty session.
func (st *SessionStore) Create() *Session {
	sess := newSession(uuid.NewString(), st.columns, st.now())

	st.mu.Lock()
	st.sessions[sess.ID] = sess
	st.mu.Unlock()
	return sess
}

// Get returns a live session and marks it used.
func (st *SessionStore) Get(id string) (*Session, error) {
	st.mu.RLock()
	sess, ok := st.sessions[id]
	st.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	sess.touch(st.now())
	return sess, nil
}

// GetOrCreate returns the session for id, or a new session when id is
// unknown. The boolean reports whether a session was created.
func (st *SessionStore) GetOrCreate(id string) (*Session, bool) {
	if id != "" {
		if sess, err := st.Get(id); err == nil {
			return sess, false
		}
	}
	return st.Create(), true
}

// Delete ends a session. It reports whether the session existed.
func (st *SessionStore) Delete(id string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	_, ok := st.sessions[id]
	delete(st.sessions, id)
	return ok
}

// Len returns the number of live sessions.
func (st *SessionStore) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Sweep removes sessions idle for longer than the store's ttl and returns
// how many were removed.
func (st *SessionStore) Sweep() int {
	if st.ttl <= 0 {
		return 0
	}
	cutoff := st.now().Add(-st.ttl)

	st.mu.Lock()
	defer st.mu.Unlock()
	removed := 0
	for id, sess := range st.sessions {
		if sess.idleSince().Before(cutoff) {
			delete(st.sessions, id)
			removed++
		}
	}
	return removed
}
