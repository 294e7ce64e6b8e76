package planning

import (
	"sync"
	"time"

	"batiplan/bizerror"
	"batiplan/domain"
	"batiplan/domain/assignment"
	"batiplan/session"

	"github.com/fundwit/go-commons/types"
	"github.com/sirupsen/logrus"
)

type GestureState string

const (
	GestureIdle       GestureState = "idle"
	GestureDragging   GestureState = "dragging"
	GestureValidating GestureState = "validating"
	GestureCommitting GestureState = "committing"
)

type PayloadKind string

const (
	PayloadEmployee   PayloadKind = "employee"
	PayloadAssignment PayloadKind = "assignment"
)

// DragPayload is what the operator picked up: an employee row from the
// unassigned sidebar, or an assignment chip already on the board.
type DragPayload struct {
	Kind PayloadKind `json:"kind"`

	EmployeeID   types.ID `json:"employeeId"`
	AssignmentID types.ID `json:"assignmentId"`
}

type TargetKind string

const (
	TargetDayCell      TargetKind = "day-cell"
	TargetMonthCell    TargetKind = "month-cell"
	TargetUnassignZone TargetKind = "unassign-zone"
)

// DropTarget is where the payload was released. Month cells carry no chantier
// context, the unassign zone carries neither chantier nor day.
type DropTarget struct {
	Kind TargetKind `json:"kind"`

	ChantierID types.ID  `json:"chantierId"`
	Day        time.Time `json:"day"`
}

type GestureAction string

const (
	ActionNone     GestureAction = "none"
	ActionCreated  GestureAction = "created"
	ActionMoved    GestureAction = "moved"
	ActionDeleted  GestureAction = "deleted"
	ActionOpenForm GestureAction = "open-form"
)

type GestureResult struct {
	Action     GestureAction      `json:"action"`
	Assignment *domain.Assignment `json:"assignment,omitempty"`

	// PrefillDate is set for the open-form intent of an employee dropped on a
	// month cell.
	PrefillDate *time.Time `json:"prefillDate,omitempty"`

	// Declined marks an operator abort at one of the confirmation checks, a
	// normal negative outcome with no mutation performed.
	Declined bool `json:"declined"`
}

// Notifier surfaces gesture failures to the acting operator.
type Notifier interface {
	Notify(message string)
}

type NotifierFunc func(message string)

func (f NotifierFunc) Notify(message string) {
	f(message)
}

func LogNotifier() Notifier {
	return NotifierFunc(func(message string) {
		logrus.Warn("planning notification: ", message)
	})
}

// Orchestrator turns a drag gesture into a validated mutation. One gesture at
// a time: a second drag starting before the previous commit round-trip
// resolves is rejected rather than raced.
type Orchestrator struct {
	store     *Store
	validator *ConflictValidator
	notifier  Notifier

	employees map[types.ID]domain.Employee
	chantiers map[types.ID]domain.Chantier

	mu      sync.Mutex
	state   GestureState
	payload DragPayload
}

func NewOrchestrator(store *Store, confirmer Confirmer, notifier Notifier) *Orchestrator {
	o := &Orchestrator{
		store:     store,
		notifier:  notifier,
		state:     GestureIdle,
		employees: map[types.ID]domain.Employee{},
		chantiers: map[types.ID]domain.Chantier{},
	}
	o.validator = &ConflictValidator{Store: store, Confirmer: confirmer, ChantierName: o.chantierName}
	if o.notifier == nil {
		o.notifier = LogNotifier()
	}
	return o
}

// SetDirectory installs the read-only employee and chantier snapshots the
// orchestrator resolves lookups against.
func (o *Orchestrator) SetDirectory(employees []domain.Employee, chantiers []domain.Chantier) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.employees = map[types.ID]domain.Employee{}
	for _, e := range employees {
		o.employees[e.ID] = e
	}
	o.chantiers = map[types.ID]domain.Chantier{}
	for _, c := range chantiers {
		o.chantiers[c.ID] = c
	}
}

func (o *Orchestrator) State() GestureState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *Orchestrator) OnDragStart(p DragPayload) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state != GestureIdle {
		return bizerror.ErrGestureInFlight
	}
	if p.Kind == PayloadAssignment {
		if a := o.findAssignment(p.AssignmentID); a != nil && a.IsLocked {
			o.notifier.Notify("Cette affectation est verrouillée.")
			return bizerror.ErrAssignmentLocked
		}
	}
	o.payload = p
	o.state = GestureDragging
	return nil
}

// OnDragEnd resolves the in-flight gesture against the drop target. A nil
// target is a cancelled drag. Whatever the outcome, the gesture ends idle.
func (o *Orchestrator) OnDragEnd(target *DropTarget, sec *session.Session) (*GestureResult, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	defer func() {
		o.state = GestureIdle
		o.payload = DragPayload{}
	}()

	if o.state != GestureDragging {
		return &GestureResult{Action: ActionNone}, nil
	}
	if target == nil {
		return &GestureResult{Action: ActionNone}, nil
	}

	switch o.payload.Kind {
	case PayloadEmployee:
		return o.dropEmployee(o.payload.EmployeeID, target, sec)
	case PayloadAssignment:
		return o.dropAssignment(o.payload.AssignmentID, target, sec)
	}
	return &GestureResult{Action: ActionNone}, nil
}

func (o *Orchestrator) dropEmployee(employeeID types.ID, target *DropTarget, sec *session.Session) (*GestureResult, error) {
	if target.Kind == TargetUnassignZone {
		return &GestureResult{Action: ActionNone}, nil
	}

	employee, found := o.employees[employeeID]
	if !found {
		o.notifier.Notify("Employé introuvable pour cette affectation.")
		return nil, bizerror.ErrEmployeeNotFound
	}

	if target.Kind == TargetMonthCell {
		// no chantier context on the month view, hand back a prefilled form
		day := DayOf(target.Day)
		return &GestureResult{Action: ActionOpenForm, PrefillDate: &day}, nil
	}

	chantier, found := o.chantiers[target.ChantierID]
	if !found || !chantier.Schedulable() {
		o.notifier.Notify("Ce chantier n'est pas planifiable.")
		return nil, bizerror.ErrChantierNotSchedulable
	}

	o.state = GestureValidating
	ok, err := o.validator.Validate(&employee, target.Day, domain.DefaultPlannedHours, ValidateOptions{})
	if err != nil {
		return nil, err
	}
	if !ok {
		return &GestureResult{Action: ActionNone, Declined: true}, nil
	}

	o.state = GestureCommitting
	hours := float64(domain.DefaultPlannedHours)
	created, err := assignment.CreateAssignmentFunc(&domain.AssignmentCreating{
		EmployeeID:   employee.ID,
		ChantierID:   chantier.ID,
		StartDate:    DayOf(target.Day),
		Status:       domain.AssignmentPlanifie,
		Role:         employee.Poste,
		PlannedHours: &hours,
		Notes:        "Affecté par glisser-déposer",
	}, sec)
	if err != nil {
		o.notifier.Notify("L'affectation n'a pas pu être créée : " + err.Error())
		return nil, err
	}

	o.reload(sec)
	return &GestureResult{Action: ActionCreated, Assignment: created}, nil
}

func (o *Orchestrator) dropAssignment(assignmentID types.ID, target *DropTarget, sec *session.Session) (*GestureResult, error) {
	moved := o.findAssignment(assignmentID)
	if moved == nil {
		o.notifier.Notify("Affectation introuvable.")
		return nil, domain.ErrNotFound
	}

	if target.Kind == TargetUnassignZone {
		// removing load needs no validation
		o.state = GestureCommitting
		if err := assignment.DeleteAssignmentFunc(moved.ID, sec); err != nil {
			o.notifier.Notify("L'affectation n'a pas pu être supprimée : " + err.Error())
			return nil, err
		}
		o.reload(sec)
		return &GestureResult{Action: ActionDeleted}, nil
	}

	if moved.IsLocked {
		o.notifier.Notify("Cette affectation est verrouillée.")
		return nil, bizerror.ErrAssignmentLocked
	}

	employee, found := o.employees[moved.EmployeeID]
	if !found {
		o.notifier.Notify("Employé introuvable pour cette affectation.")
		return nil, bizerror.ErrEmployeeNotFound
	}

	o.state = GestureValidating
	ok, err := o.validator.Validate(&employee, target.Day, moved.Hours(),
		ValidateOptions{ExcludeAssignmentID: moved.ID})
	if err != nil {
		return nil, err
	}
	if !ok {
		return &GestureResult{Action: ActionNone, Declined: true}, nil
	}

	o.state = GestureCommitting
	day := DayOf(target.Day)
	notes := appendMoveNote(moved.Notes, time.Now())
	updating := domain.AssignmentUpdating{StartDate: &day, Notes: &notes}
	if target.Kind == TargetDayCell {
		// month cells keep the current chantier, day cells may re-home it
		chantierID := target.ChantierID
		updating.ChantierID = &chantierID
	}

	updated, err := assignment.UpdateAssignmentFunc(moved.ID, &updating, sec)
	if err != nil {
		o.notifier.Notify("L'affectation n'a pas pu être déplacée : " + err.Error())
		return nil, err
	}

	o.reload(sec)
	return &GestureResult{Action: ActionMoved, Assignment: updated}, nil
}

// reload refreshes the snapshot after a committed mutation. A failure here is
// a background store error only, the mutation itself already succeeded.
func (o *Orchestrator) reload(sec *session.Session) {
	if err := o.store.Reload(sec); err != nil {
		logrus.Error("planning store reload failed: ", err)
	}
}

func (o *Orchestrator) findAssignment(id types.ID) *domain.Assignment {
	for _, a := range o.store.Snapshot() {
		if a.ID == id {
			found := a
			return &found
		}
	}
	return nil
}

func (o *Orchestrator) chantierName(id types.ID) string {
	if c, found := o.chantiers[id]; found {
		return c.Name
	}
	return ""
}

func appendMoveNote(notes string, when time.Time) string {
	note := "Déplacé le " + when.Format("02/01/2006")
	if notes == "" {
		return note
	}
	return notes + "\n" + note
}
