package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
	"transport-ops-service/internal/domain"
)

type memoryJob struct {
	DriverID string
	Date     time.Time
	Status   string
	Route    *domain.RouteResult
}

type weekKey struct {
	DriverID string
	Monday   string
}

// MemoryStore implements every storage port in process. It backs
// STORAGE_DRIVER=memory and the service and handler tests.
type MemoryStore struct {
	mu      sync.RWMutex
	drivers map[string]domain.Driver
	entries domain.DayEntryBook
	payroll map[weekKey]domain.DriverWeekPayroll
	jobs    map[string]*memoryJob

	// WriteErr, when set, fails every write without changing state.
	WriteErr error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		drivers: make(map[string]domain.Driver),
		entries: domain.NewDayEntryBook(nil),
		payroll: make(map[weekKey]domain.DriverWeekPayroll),
		jobs:    make(map[string]*memoryJob),
	}
}

// SeedMemoryFromJSON loads drivers and jobs from a seed file into s.
func SeedMemoryFromJSON(s *MemoryStore, jsonPath string) error {
	drivers, jobs, err := ReadSeed(jsonPath)
	if err != nil {
		return err
	}
	for _, d := range drivers {
		s.PutDriver(d)
	}
	for _, j := range jobs {
		s.PutJob(j.ID, j.DriverID, j.Date, j.Status)
	}
	return nil
}

func (s *MemoryStore) PutDriver(d domain.Driver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drivers[d.ID] = d
}

// PutJob creates or updates a job, keeping any saved route.
func (s *MemoryStore) PutJob(id, driverID string, date time.Time, status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		j = &memoryJob{}
		s.jobs[id] = j
	}
	j.DriverID = driverID
	j.Date = domain.DateOf(date)
	j.Status = status
}

func (s *MemoryStore) GetDriver(_ context.Context, id string) (domain.Driver, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.drivers[id]
	if !ok {
		return domain.Driver{}, fmt.Errorf("get driver %s: %w", id, domain.ErrNotFound)
	}
	return d, nil
}

func (s *MemoryStore) ListDrivers(_ context.Context) ([]domain.Driver, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Driver, 0, len(s.drivers))
	for _, d := range s.drivers {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FullName != out[j].FullName {
			return out[i].FullName < out[j].FullName
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) ListRange(_ context.Context, from, to time.Time) ([]domain.DriverDayEntry, error) {
	return s.listEntries(func(e domain.DriverDayEntry) bool { return inRange(e.Date, from, to) }), nil
}

func (s *MemoryStore) ListDriverRange(_ context.Context, driverID string, from, to time.Time) ([]domain.DriverDayEntry, error) {
	return s.listEntries(func(e domain.DriverDayEntry) bool {
		return e.DriverID == driverID && inRange(e.Date, from, to)
	}), nil
}

func (s *MemoryStore) listEntries(keep func(domain.DriverDayEntry) bool) []domain.DriverDayEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.DriverDayEntry
	for _, e := range s.entries.Entries() {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

func (s *MemoryStore) Upsert(ctx context.Context, entry domain.DriverDayEntry) error {
	return s.UpsertMany(ctx, []domain.DriverDayEntry{entry})
}

// UpsertMany applies all entries or, on error, none.
func (s *MemoryStore) UpsertMany(_ context.Context, entries []domain.DriverDayEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.WriteErr != nil {
		return domain.Persist("upsert day entries", s.WriteErr)
	}
	for _, e := range entries {
		if _, ok := s.drivers[e.DriverID]; !ok {
			return domain.Persist("upsert day entries", fmt.Errorf("unknown driver %q", e.DriverID))
		}
	}
	for _, e := range entries {
		if e.Provenance == "" {
			e.Provenance = domain.ProvenanceManual
		}
		s.entries.Upsert(e)
	}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, driverID string, date time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.WriteErr != nil {
		return domain.Persist("delete day entry", s.WriteErr)
	}
	s.entries.Delete(domain.DayKey{DriverID: driverID, Date: domain.FormatDate(date)})
	return nil
}

func (s *MemoryStore) GetWeek(_ context.Context, driverID string, monday time.Time) (domain.DriverWeekPayroll, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.payroll[weekKey{DriverID: driverID, Monday: domain.FormatDate(domain.WeekStart(monday))}]
	if !ok {
		return domain.DriverWeekPayroll{}, fmt.Errorf("get week payroll: %w", domain.ErrNotFound)
	}
	return p, nil
}

func (s *MemoryStore) ListWeek(_ context.Context, monday time.Time) ([]domain.DriverWeekPayroll, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key := domain.FormatDate(domain.WeekStart(monday))
	var out []domain.DriverWeekPayroll
	for k, p := range s.payroll {
		if k.Monday == key {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DriverID < out[j].DriverID })
	return out, nil
}

func (s *MemoryStore) SetWeek(_ context.Context, p domain.DriverWeekPayroll) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.WriteErr != nil {
		return domain.Persist("set week payroll", s.WriteErr)
	}
	p.WeekStartMonday = domain.WeekStart(p.WeekStartMonday)
	s.payroll[weekKey{DriverID: p.DriverID, Monday: domain.FormatDate(p.WeekStartMonday)}] = p
	return nil
}

func (s *MemoryStore) ListCompletedJobSignals(_ context.Context, from, to time.Time) ([]domain.CompletedJobSignal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[domain.CompletedJobSignal]struct{})
	var out []domain.CompletedJobSignal
	for _, j := range s.jobs {
		if j.Status != JobStatusCompleted || j.DriverID == "" || !inRange(j.Date, from, to) {
			continue
		}
		sig := domain.CompletedJobSignal{DriverID: j.DriverID, Date: domain.FormatDate(j.Date)}
		if _, ok := seen[sig]; ok {
			continue
		}
		seen[sig] = struct{}{}
		out = append(out, sig)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DriverID != out[j].DriverID {
			return out[i].DriverID < out[j].DriverID
		}
		return out[i].Date < out[j].Date
	})
	return out, nil
}

func (s *MemoryStore) SaveRoute(_ context.Context, jobID string, route *domain.RouteResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.WriteErr != nil {
		return domain.Persist("save route", s.WriteErr)
	}
	j, ok := s.jobs[jobID]
	if !ok {
		return fmt.Errorf("save route: job %s: %w", jobID, domain.ErrNotFound)
	}
	j.Route = cloneRoute(route)
	return nil
}

func (s *MemoryStore) GetRoute(_ context.Context, jobID string) (*domain.RouteResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	j, ok := s.jobs[jobID]
	if !ok {
		return nil, fmt.Errorf("get route: job %s: %w", jobID, domain.ErrNotFound)
	}
	if j.Route == nil {
		return &domain.RouteResult{Stops: []domain.ResolvedStop{}}, nil
	}
	return cloneRoute(j.Route), nil
}

func cloneRoute(r *domain.RouteResult) *domain.RouteResult {
	if r == nil {
		return nil
	}
	out := &domain.RouteResult{Stops: append([]domain.ResolvedStop(nil), r.Stops...)}
	if r.TotalDistanceMiles != nil {
		m := *r.TotalDistanceMiles
		out.TotalDistanceMiles = &m
	}
	return out
}

func inRange(d, from, to time.Time) bool {
	day := domain.DateOf(d)
	return !day.Before(domain.DateOf(from)) && !day.After(domain.DateOf(to))
}
