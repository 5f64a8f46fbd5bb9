package attendance

import (
	"sync"
	"time"

	"github.com/warp/traffic-engine/jalali"
)

// =============================================================================
// WORKSPACE - the one owner of mutable state
// =============================================================================

// Observer is notified about state changes. Implementations must be safe
// for concurrent use.
type Observer interface {
	DatasetPublished(people, rows int)
	LoadDiscarded()
	ViewComputed(d time.Duration)
}

// Ticket identifies one load attempt.
type Ticket struct {
	generation uint64
}

func (t Ticket) Generation() uint64 { return t.generation }

// Workspace holds the raw dataset and the parameters. The raw dataset is
// only ever replaced as a whole; every view is derived from it on demand.
//
// Loads are generation-numbered: a load that completes after a newer load
// has been published is discarded, so overlapping uploads cannot leave an
// older file on screen.
type Workspace struct {
	mu        sync.RWMutex
	raw       *Dataset
	params    Params
	issued    uint64
	published uint64

	calendar jalali.Calendar
	observer Observer
}

// WorkspaceOption configures a Workspace.
type WorkspaceOption func(*Workspace)

// WithCalendar sets the calendar used for month summaries.
func WithCalendar(c jalali.Calendar) WorkspaceOption {
	return func(w *Workspace) { w.calendar = c }
}

// WithObserver attaches an Observer.
func WithObserver(o Observer) WorkspaceOption {
	return func(w *Workspace) { w.observer = o }
}

func NewWorkspace(params Params, opts ...WorkspaceOption) *Workspace {
	w := &Workspace{params: params.Clamp(), calendar: jalali.Default}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// BeginLoad issues a ticket for a load that is about to start.
func (w *Workspace) BeginLoad() Ticket {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.issued++
	return Ticket{generation: w.issued}
}

// Publish installs ds as the raw dataset unless a newer load has already
// been published, in which case it returns a *StaleLoadError.
func (w *Workspace) Publish(t Ticket, ds *Dataset) error {
	w.mu.Lock()
	if t.generation <= w.published {
		published := w.published
		w.mu.Unlock()
		if w.observer != nil {
			w.observer.LoadDiscarded()
		}
		return &StaleLoadError{Ticket: t.generation, Published: published}
	}
	w.raw = ds
	w.published = t.generation
	w.mu.Unlock()

	if w.observer != nil {
		w.observer.DatasetPublished(ds.Len(), ds.Rows())
	}
	return nil
}

// Restore publishes a dataset under a fresh ticket.
func (w *Workspace) Restore(ds *Dataset) error {
	return w.Publish(w.BeginLoad(), ds)
}

// Reserve makes every ticket issued from now on newer than generation.
// Generations recorded by an earlier run stay ordered before new loads.
func (w *Workspace) Reserve(generation uint64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.issued < generation {
		w.issued = generation
	}
}

// Resume publishes a dataset saved by an earlier run under the generation
// it was saved with. Generation 0 falls back to a fresh ticket.
func (w *Workspace) Resume(generation uint64, ds *Dataset) error {
	if generation == 0 {
		return w.Restore(ds)
	}
	w.Reserve(generation)
	return w.Publish(Ticket{generation: generation}, ds)
}

// Raw returns the current raw dataset, nil before the first load.
func (w *Workspace) Raw() *Dataset {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.raw
}

// Generation of the published dataset; 0 before the first load.
func (w *Workspace) Generation() uint64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.published
}

func (w *Workspace) Params() Params {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.params
}

// SetParams clamps and stores p, returning what was stored.
func (w *Workspace) SetParams(p Params) Params {
	p = p.Clamp()
	w.mu.Lock()
	w.params = p
	w.mu.Unlock()
	return p
}

// View derives the merged dataset and ranking from the current state.
func (w *Workspace) View() View {
	w.mu.RLock()
	raw, params, gen := w.raw, w.params, w.published
	w.mu.RUnlock()

	start := time.Now()
	v := Derive(raw, params, w.calendar)
	v.Generation = gen
	if w.observer != nil {
		w.observer.ViewComputed(time.Since(start))
	}
	return v
}

// =============================================================================
// VIEW - pure derivation over (raw dataset, params)
// =============================================================================

// View is a consistent snapshot of every derived result.
type View struct {
	Generation uint64
	Params     Params
	Merged     *Dataset
	Ranked     []Ranked
	Calendar   jalali.Calendar
}

// Derive computes a View from scratch. It depends on nothing but its
// arguments.
func Derive(raw *Dataset, params Params, cal jalali.Calendar) View {
	params = params.Clamp()
	var merged *Dataset
	if raw != nil {
		merged = Merge(raw, params.MergeIntervalMinutes)
	}
	return View{
		Params:   params,
		Merged:   merged,
		Ranked:   Rank(merged, params.TrafficLimit),
		Calendar: cal,
	}
}

// Search filters the ranking by name or id.
func (v View) Search(term string) []Ranked {
	return Filter(v.Ranked, term)
}

// Person returns a person's merged log.
func (v View) Person(id string) (*Person, error) {
	if v.Merged == nil {
		return nil, ErrNoData
	}
	p, ok := v.Merged.Person(id)
	if !ok {
		return nil, ErrPersonNotFound
	}
	return p, nil
}

// Summary classifies a person's reference month.
func (v View) Summary(id string) (MonthSummary, error) {
	p, err := v.Person(id)
	if err != nil {
		return MonthSummary{}, err
	}
	return Summarize(p, v.Params.TrafficLimit, v.Params.ReferenceMonth, v.Calendar), nil
}

// Report returns the export rows for the current ranking.
func (v View) Report() []ReportRow {
	return ReportRows(v.Ranked)
}
