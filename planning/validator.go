package planning

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"batiplan/domain"

	"github.com/fundwit/go-commons/types"
)

// Confirmer answers a yes/no prompt to the acting operator. A negative answer
// is an ordinary outcome, not a failure.
type Confirmer interface {
	Confirm(message string) (bool, error)
}

type ConfirmerFunc func(message string) (bool, error)

func (f ConfirmerFunc) Confirm(message string) (bool, error) {
	return f(message)
}

// cautionStatuses are the employee statuses that trigger a confirmation before
// scheduling.
var cautionStatuses = map[domain.EmployeeStatus]bool{
	domain.EmployeeEnConge:      true,
	domain.EmployeeArretMaladie: true,
	domain.EmployeeEnFormation:  true,
}

type ValidateOptions struct {
	// ExcludeAssignmentID removes the assignment being moved from its own
	// weekly-load and same-day checks, zero when creating.
	ExcludeAssignmentID types.ID
}

// ConflictValidator applies the four advisory staffing checks, in a fixed
// order, before an assignment change. Every check is soft: the operator may
// confirm past any of them, and a decline aborts without error.
type ConflictValidator struct {
	Store     *Store
	Confirmer Confirmer

	// ChantierName resolves ids for the double-booking message.
	ChantierName func(id types.ID) string
}

// Validate decides whether a candidate change (employee on targetDate adding
// hoursToAdd) may proceed. Returns false with a nil error when the operator
// declines a confirmation.
func (v *ConflictValidator) Validate(employee *domain.Employee, targetDate time.Time, hoursToAdd float64, opts ValidateOptions) (bool, error) {
	// 1. weekly hours ceiling
	weekly := v.Store.WeeklyLoad(employee.ID, WeekStart(targetDate), opts.ExcludeAssignmentID)
	if weekly+hoursToAdd > domain.WeeklyHoursCeiling {
		ok, err := v.Confirmer.Confirm(fmt.Sprintf(
			"Attention : %s a déjà %sh planifiées cette semaine. Cette affectation porterait le total à %sh (plafond %dh). Continuer ?",
			employee.DisplayName(), formatHours(weekly), formatHours(weekly+hoursToAdd), domain.WeeklyHoursCeiling))
		if err != nil || !ok {
			return false, err
		}
	}

	// 2. same-day double booking
	sameDay := v.Store.AssignmentsForEmployeeAndDay(employee.ID, targetDate, opts.ExcludeAssignmentID)
	if len(sameDay) > 0 {
		names := make([]string, 0, len(sameDay))
		for _, a := range sameDay {
			names = append(names, v.chantierName(a.ChantierID))
		}
		ok, err := v.Confirmer.Confirm(fmt.Sprintf(
			"%s est déjà affecté le %s sur : %s. Confirmer une double affectation ?",
			employee.DisplayName(), formatDate(targetDate), strings.Join(names, ", ")))
		if err != nil || !ok {
			return false, err
		}
	}

	// 3. status caution
	if cautionStatuses[employee.Status] {
		ok, err := v.Confirmer.Confirm(fmt.Sprintf(
			"%s est %s. L'affecter quand même ?",
			employee.DisplayName(), domain.EmployeeStatusLabels[employee.Status]))
		if err != nil || !ok {
			return false, err
		}
	}

	// 4. availability window
	if employee.AvailableFrom != nil && DayOf(targetDate).Before(DayOf(*employee.AvailableFrom)) {
		ok, err := v.Confirmer.Confirm(fmt.Sprintf(
			"%s n'est disponible qu'à partir du %s. L'affecter quand même ?",
			employee.DisplayName(), formatDate(*employee.AvailableFrom)))
		if err != nil || !ok {
			return false, err
		}
	}

	return true, nil
}

func (v *ConflictValidator) chantierName(id types.ID) string {
	if v.ChantierName != nil {
		if name := v.ChantierName(id); name != "" {
			return name
		}
	}
	return "chantier " + id.String()
}

func formatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64)
}

func formatDate(t time.Time) string {
	return t.Format("02/01/2006")
}
