package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/charlie0129/cellentry/pkg/cell"
)

// ErrCellNotFound is returned when a key does not name a registered cell.
var ErrCellNotFound = errors.New("cell not found")

// Phase is the workflow phase of a session.
type Phase string

const (
	// PhaseAwaitingRegistration means no registration has been submitted yet.
	PhaseAwaitingRegistration Phase = "awaiting-registration"
	// PhaseRegistered means cells exist and currents can be entered.
	PhaseRegistered Phase = "registered"
)

// Options controls how a session registers cells.
type Options struct {
	// CarryOverCurrents keeps the previous current of a slot on
	// re-registration when the label at that slot is unchanged.
	CarryOverCurrents bool
	// Sampler provides cell temperatures. Defaults to a uniform sampler over
	// [25.0, 40.0].
	Sampler cell.TemperatureSampler
}

// Session owns one user's registered cells. All methods are safe for
// concurrent use, though a single user drives it one interaction at a time.
type Session struct {
	ID string

	opts Options

	mu     sync.RWMutex
	labels []string
	order  []string
	cells  map[string]*cell.Spec

	// activeMu guards lastActive so that reads holding mu.RLock can touch it.
	activeMu   sync.Mutex
	lastActive time.Time
	now        func() time.Time
}

// New creates an empty session awaiting registration.
func New(id string, opts Options) *Session {
	if opts.Sampler == nil {
		opts.Sampler = cell.NewUniformSampler(cell.DefaultMinTemperature, cell.DefaultMaxTemperature, nil)
	}
	s := &Session{
		ID:    id,
		opts:  opts,
		cells: make(map[string]*cell.Spec),
		now:   time.Now,
	}
	s.touch()
	return s
}

// SetOptions replaces the options used by later registrations. Cells that
// already exist are not changed.
func (s *Session) SetOptions(opts Options) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if opts.Sampler == nil {
		opts.Sampler = s.opts.Sampler
	}
	s.opts = opts
}

// Phase reports whether the session has been registered.
func (s *Session) Phase() Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.labels == nil {
		return PhaseAwaitingRegistration
	}
	return PhaseRegistered
}

// Register replaces the session's cells with one cell per non-empty label
// among the first count labels. Labels are trimmed and lowercased. Missing
// labels are treated as empty.
//
// It returns the new cells in slot order.
func (s *Session) Register(labels []string, count int) ([]*cell.Spec, error) {
	if err := cell.ValidateCount(count); err != nil {
		return nil, err
	}

	normalized := make([]string, count)
	for i := 0; i < count && i < len(labels); i++ {
		normalized[i] = cell.NormalizeLabel(labels[i])
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prevLabels := s.labels
	prevCells := s.cells

	cells := make(map[string]*cell.Spec, count)
	order := make([]string, 0, count)
	carried := 0
	for i, label := range normalized {
		if label == "" {
			continue
		}
		index := i + 1
		c := cell.New(index, label, s.opts.Sampler.Sample())

		if s.opts.CarryOverCurrents && i < len(prevLabels) && prevLabels[i] == label {
			if prev, ok := prevCells[cell.Key(index, label)]; ok {
				c.SetCurrent(prev.Current)
				carried++
			}
		}

		cells[c.Key] = c
		order = append(order, c.Key)
	}

	s.labels = normalized
	s.cells = cells
	s.order = order
	s.touch()

	logrus.WithFields(logrus.Fields{
		"session": s.ID,
		"count":   count,
		"cells":   len(order),
		"carried": carried,
	}).Debug("cells registered")

	return s.snapshot(), nil
}

// SetCurrent overwrites the current of the cell identified by key and
// recomputes its capacity. It returns a copy of the updated cell.
func (s *Session) SetCurrent(key string, current float64) (*cell.Spec, error) {
	if err := cell.ValidateCurrent(current); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.cells[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCellNotFound, key)
	}
	c.SetCurrent(current)
	s.touch()

	logrus.WithFields(logrus.Fields{
		"session":  s.ID,
		"key":      key,
		"current":  c.Current,
		"capacity": c.Capacity,
	}).Debug("current updated")

	return c.Clone(), nil
}

// Cell returns a copy of the cell identified by key.
func (s *Session) Cell(key string) (*cell.Spec, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.cells[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCellNotFound, key)
	}
	s.touch()
	return c.Clone(), nil
}

// Cells returns copies of all cells in slot order.
func (s *Session) Cells() []*cell.Spec {
	s.mu.RLock()
	defer s.mu.RUnlock()

	s.touch()
	return s.snapshot()
}

// Labels returns the normalized labels of the last registration, including
// empty slots. It is nil before the first registration.
func (s *Session) Labels() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.labels == nil {
		return nil
	}
	return append([]string(nil), s.labels...)
}

// Reset discards all cells and returns the session to the registration phase.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.labels = nil
	s.order = nil
	s.cells = make(map[string]*cell.Spec)
	s.touch()
}

// LastActive is the time the session was last read or written.
func (s *Session) LastActive() time.Time {
	s.activeMu.Lock()
	defer s.activeMu.Unlock()

	return s.lastActive
}

func (s *Session) touch() {
	s.activeMu.Lock()
	defer s.activeMu.Unlock()

	// Strip monotonic clock reading.
	s.lastActive = s.now().Round(0)
}

// snapshot must be called with s.mu held.
func (s *Session) snapshot() []*cell.Spec {
	out := make([]*cell.Spec, 0, len(s.order))
	for _, k := range s.order {
		out = append(out, s.cells[k].Clone())
	}
	return out
}
