package planning

import (
	"sync"
	"time"

	"batiplan/domain"
	"batiplan/domain/assignment"
	"batiplan/session"

	"github.com/fundwit/go-commons/types"
)

// Store keeps the in-memory assignment snapshot for the visible planning
// horizon. It is refreshed wholesale from the persistence collaborator after
// every committed mutation, never patched incrementally.
type Store struct {
	mu          sync.RWMutex
	assignments []domain.Assignment
	loadErr     error
}

func NewStore() *Store {
	return &Store{}
}

// Reload refetches the full assignment collection. On failure the previous
// snapshot stays visible and the error is kept as a background state until the
// next successful reload.
func (s *Store) Reload(sec *session.Session) error {
	assignments, err := assignment.ListAssignmentsFunc(sec)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.loadErr = err
		return err
	}
	s.assignments = assignments
	s.loadErr = nil
	return nil
}

// LastError reports a pending background reload failure, nil when healthy.
func (s *Store) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadErr
}

func (s *Store) Snapshot() []domain.Assignment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Assignment, len(s.assignments))
	copy(out, s.assignments)
	return out
}

func (s *Store) Replace(assignments []domain.Assignment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assignments = assignments
	s.loadErr = nil
}

// AssignmentsForChantierAndDay matches on calendar day, not full timestamp.
func (s *Store) AssignmentsForChantierAndDay(chantierID types.ID, day time.Time) []domain.Assignment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := []domain.Assignment{}
	for _, a := range s.assignments {
		if a.ChantierID == chantierID && SameDay(a.StartDate, day) {
			matched = append(matched, a)
		}
	}
	return matched
}

// AssignmentsForEmployeeAndDay returns the employee's assignments on the given
// day, skipping excludeID when non-zero.
func (s *Store) AssignmentsForEmployeeAndDay(employeeID types.ID, day time.Time, excludeID types.ID) []domain.Assignment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := []domain.Assignment{}
	for _, a := range s.assignments {
		if a.EmployeeID != employeeID {
			continue
		}
		if excludeID != 0 && a.ID == excludeID {
			continue
		}
		if SameDay(a.StartDate, day) {
			matched = append(matched, a)
		}
	}
	return matched
}

// WeeklyLoad sums plannedHours (nil defaulting to 8) over the employee's
// assignments in [weekStart, weekStart+6d], skipping excludeID when non-zero.
func (s *Store) WeeklyLoad(employeeID types.ID, weekStart time.Time, excludeID types.ID) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	weekEnd := weekStart.AddDate(0, 0, 6)
	total := 0.0
	for _, a := range s.assignments {
		if a.EmployeeID != employeeID {
			continue
		}
		if excludeID != 0 && a.ID == excludeID {
			continue
		}
		day := DayOf(a.StartDate)
		if day.Before(DayOf(weekStart)) || day.After(DayOf(weekEnd)) {
			continue
		}
		total += a.Hours()
	}
	return total
}

// WeeklyLoads projects hours per employee for the week, a pure view model.
func (s *Store) WeeklyLoads(weekStart time.Time) map[types.ID]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	weekEnd := DayOf(weekStart).AddDate(0, 0, 6)
	loads := map[types.ID]float64{}
	for _, a := range s.assignments {
		day := DayOf(a.StartDate)
		if day.Before(DayOf(weekStart)) || day.After(weekEnd) {
			continue
		}
		loads[a.EmployeeID] += a.Hours()
	}
	return loads
}

// UnassignedCount counts employees without any assignment in the week.
func (s *Store) UnassignedCount(employees []domain.Employee, weekStart time.Time) int {
	loads := s.WeeklyLoads(weekStart)
	count := 0
	for _, e := range employees {
		if _, assigned := loads[e.ID]; !assigned {
			count++
		}
	}
	return count
}

// WeekStart returns the Monday of the week containing ref, date only.
// Sunday belongs to the week started six days earlier.
func WeekStart(ref time.Time) time.Time {
	day := DayOf(ref)
	offset := int(day.Weekday()) - int(time.Monday)
	if offset < 0 {
		offset += 7
	}
	return day.AddDate(0, 0, -offset)
}

func DayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func SameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
