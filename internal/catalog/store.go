package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/david/sochx/internal/ingest"
	"github.com/david/sochx/internal/models"
)

var ErrNotFound = errors.New("opportunity not found")

// Issue describes a record that was skipped or flagged while loading.
type Issue struct {
	Index int    `json:"index"`
	ID    string `json:"id,omitempty"`
	Msg   string `json:"message"`
}

func (i Issue) String() string {
	if i.ID != "" {
		return fmt.Sprintf("record %d (%s): %s", i.Index, i.ID, i.Msg)
	}
	return fmt.Sprintf("record %d: %s", i.Index, i.Msg)
}

// Snapshot is an immutable, normalized view of the opportunities document.
// Nothing hands out a way to modify it; a reload builds a new Snapshot.
type Snapshot struct {
	opps     []models.Opportunity
	byID     map[string]int
	issues   []Issue
	source   string
	loadedAt time.Time
}

// NewSnapshot indexes already-normalized records.
func NewSnapshot(opps []models.Opportunity) *Snapshot {
	s := &Snapshot{
		opps:     opps,
		byID:     make(map[string]int, len(opps)),
		loadedAt: time.Now().UTC(),
	}
	for i, o := range opps {
		if _, dup := s.byID[o.ID]; dup {
			s.issues = append(s.issues, Issue{Index: i, ID: o.ID, Msg: "duplicate id; lookups return the first record"})
			continue
		}
		s.byID[o.ID] = i
	}
	return s
}

// All returns the records in document order. The slice is shared and must be
// treated as read-only.
func (s *Snapshot) All() []models.Opportunity {
	if s == nil {
		return nil
	}
	return s.opps
}

func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.opps)
}

func (s *Snapshot) Get(id string) (*models.Opportunity, error) {
	if s == nil {
		return nil, ErrNotFound
	}
	idx, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &s.opps[idx], nil
}

func (s *Snapshot) Issues() []Issue { return s.issues }

func (s *Snapshot) Source() string { return s.source }

func (s *Snapshot) LoadedAt() time.Time { return s.loadedAt }

// Decode reads a JSON array of opportunity records and normalizes each one.
// A record that cannot be decoded is skipped and reported as an Issue; only a
// document that is not a JSON array is an error.
func Decode(r io.Reader) ([]models.Opportunity, []Issue, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("read opportunities: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil, nil
	}

	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, nil, fmt.Errorf("decode opportunities document: %w", err)
	}

	opps := make([]models.Opportunity, 0, len(records))
	var issues []Issue
	for i, rec := range records {
		var raw ingest.RawOpportunity
		if err := json.Unmarshal(rec, &raw); err != nil {
			issues = append(issues, Issue{Index: i, Msg: err.Error()})
			continue
		}
		opp := ingest.FromRaw(raw)
		if opp.Title == "" {
			issues = append(issues, Issue{Index: i, ID: opp.ID, Msg: "missing title"})
		}
		for _, d := range opp.Deadline {
			if d.Date != "" && d.At == nil {
				issues = append(issues, Issue{Index: i, ID: opp.ID, Msg: fmt.Sprintf("unparseable deadline %q treated as no deadline", d.Date)})
			}
		}
		opps = append(opps, opp)
	}
	return opps, issues, nil
}

// LoadFile reads and normalizes the opportunities document at path.
func LoadFile(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open opportunities file: %w", err)
	}
	defer f.Close()

	opps, issues, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	snap := NewSnapshot(opps)
	snap.issues = append(issues, snap.issues...)
	snap.source = path
	return snap, nil
}

// Store holds the current Snapshot. Readers get whichever Snapshot was
// current when they asked; a reload never changes a Snapshot already handed out.
type Store struct {
	current atomic.Pointer[Snapshot]
	log     *zap.Logger
}

func NewStore(snap *Snapshot, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	if snap == nil {
		snap = NewSnapshot(nil)
	}
	s := &Store{log: log}
	s.current.Store(snap)
	return s
}

// Open loads path into a new Store.
func Open(path string, log *zap.Logger) (*Store, error) {
	snap, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	s := NewStore(snap, log)
	s.logLoaded(snap)
	return s, nil
}

func (s *Store) Current() *Snapshot {
	return s.current.Load()
}

// Reload replaces the current Snapshot with a fresh load of path. On failure
// the previous Snapshot stays current.
func (s *Store) Reload(path string) error {
	snap, err := LoadFile(path)
	if err != nil {
		s.log.Warn("catalog reload failed; keeping previous snapshot", zap.String("path", path), zap.Error(err))
		return err
	}
	s.current.Store(snap)
	s.logLoaded(snap)
	return nil
}

func (s *Store) logLoaded(snap *Snapshot) {
	s.log.Info("catalog loaded",
		zap.String("path", snap.Source()),
		zap.Int("opportunities", snap.Len()),
		zap.Int("issues", len(snap.Issues())),
	)
	for _, issue := range snap.Issues() {
		s.log.Debug("catalog issue", zap.String("issue", issue.String()))
	}
}
