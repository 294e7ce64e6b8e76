package assignment

import (
	"errors"
	"strconv"
	"time"

	"batiplan/bizerror"
	"batiplan/domain"
	"batiplan/event"
	"batiplan/idgen"
	"batiplan/persistence"
	"batiplan/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	assignmentIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	ListAssignmentsFunc  = ListAssignments
	QueryAssignmentsFunc = QueryAssignments
	DetailAssignmentFunc = DetailAssignment
	CreateAssignmentFunc = CreateAssignment
	UpdateAssignmentFunc = UpdateAssignment
	DeleteAssignmentFunc = DeleteAssignment
)

// ListAssignments is the refetch-all operation the planning store reloads from.
func ListAssignments(sec *session.Session) ([]domain.Assignment, error) {
	var assignments []domain.Assignment
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	if err := db.Order("start_date ASC, id ASC").Find(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}

func QueryAssignments(query *domain.AssignmentQuery, sec *session.Session) ([]domain.Assignment, error) {
	var assignments []domain.Assignment
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)

	q := db.Where(domain.Assignment{EmployeeID: query.EmployeeID, ChantierID: query.ChantierID})
	if err := q.Order("start_date ASC").Find(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}

func DetailAssignment(id types.ID, sec *session.Session) (*domain.Assignment, error) {
	assignment := domain.Assignment{}
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	if err := db.Where(&domain.Assignment{ID: id}).First(&assignment).Error; err != nil {
		return nil, err
	}
	return &assignment, nil
}

func CreateAssignment(c *domain.AssignmentCreating, sec *session.Session) (*domain.Assignment, error) {
	if !sec.CanManagePlanning() {
		return nil, bizerror.ErrForbidden
	}

	var created domain.Assignment
	var ev *event.EventRecord
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	err1 := db.Transaction(func(tx *gorm.DB) error {
		employee := domain.Employee{}
		if err := tx.Where(&domain.Employee{ID: c.EmployeeID}).First(&employee).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return bizerror.ErrEmployeeNotFound
			}
			return err
		}
		chantier := domain.Chantier{}
		if err := tx.Where(&domain.Chantier{ID: c.ChantierID}).First(&chantier).Error; err != nil {
			return err
		}
		if !chantier.Schedulable() {
			return bizerror.ErrChantierNotSchedulable
		}

		status := c.Status
		if status == "" {
			status = domain.AssignmentPlanifie
		}
		role := c.Role
		if role == "" {
			role = employee.Poste
		}

		created = domain.Assignment{
			ID:         idgen.NextID(assignmentIdWorker),
			EmployeeID: c.EmployeeID,
			ChantierID: c.ChantierID,
			Role:       role,

			StartDate: DayOf(c.StartDate),
			EndDate:   c.EndDate,
			StartTime: c.StartTime,
			EndTime:   c.EndTime,

			Status:       status,
			PlannedHours: c.PlannedHours,
			Notes:        c.Notes,

			CreateTime: time.Now(),
		}
		if err := tx.Create(&created).Error; err != nil {
			return err
		}

		var err error
		ev, err = event.CreateEvent("assignment", created.ID, employee.DisplayName()+" / "+chantier.Name,
			event.EventCategoryCreated, nil, &sec.Identity, types.CurrentTimestamp(), tx)
		return err
	})
	if err1 != nil {
		return nil, err1
	}

	if event.InvokeHandlersFunc != nil {
		event.InvokeHandlersFunc(ev)
	}
	return &created, nil
}

func UpdateAssignment(id types.ID, u *domain.AssignmentUpdating, sec *session.Session) (*domain.Assignment, error) {
	if !sec.CanManagePlanning() {
		return nil, bizerror.ErrForbidden
	}

	var updated domain.Assignment
	var ev *event.EventRecord
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	err1 := db.Transaction(func(tx *gorm.DB) error {
		origin := domain.Assignment{}
		if err := tx.Where(&domain.Assignment{ID: id}).First(&origin).Error; err != nil {
			return err
		}

		changes, updatedProperties := buildChanges(&origin, u)
		if len(changes) == 0 {
			updated = origin
			return nil
		}

		r := tx.Model(&domain.Assignment{}).Where(&domain.Assignment{ID: id}).Update(changes)
		if err := r.Error; err != nil {
			return err
		}
		if r.RowsAffected != 1 {
			return errors.New("expected affected row is 1, but actual is " + strconv.FormatInt(r.RowsAffected, 10))
		}

		var err error
		ev, err = event.CreateEvent("assignment", id, origin.Role, event.EventCategoryPropertyUpdated,
			updatedProperties, &sec.Identity, types.CurrentTimestamp(), tx)
		if err != nil {
			return err
		}

		return tx.Where(&domain.Assignment{ID: id}).First(&updated).Error
	})
	if err1 != nil {
		return nil, err1
	}

	if ev != nil && event.InvokeHandlersFunc != nil {
		event.InvokeHandlersFunc(ev)
	}
	return &updated, nil
}

func DeleteAssignment(id types.ID, sec *session.Session) error {
	if !sec.CanManagePlanning() {
		return bizerror.ErrForbidden
	}

	var ev *event.EventRecord
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	err1 := db.Transaction(func(tx *gorm.DB) error {
		assignment := domain.Assignment{}
		err := tx.Where(&domain.Assignment{ID: id}).First(&assignment).Error
		if err == nil {
			ev, err = event.CreateEvent("assignment", id, assignment.Role, event.EventCategoryDeleted,
				nil, &sec.Identity, types.CurrentTimestamp(), tx)
			if err != nil {
				return err
			}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		return tx.Delete(domain.Assignment{}, "id = ?", id).Error
	})
	if err1 != nil {
		return err1
	}

	if ev != nil && event.InvokeHandlersFunc != nil {
		event.InvokeHandlersFunc(ev)
	}
	return nil
}

// DayOf truncates a timestamp to its calendar day.
func DayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func buildChanges(origin *domain.Assignment, u *domain.AssignmentUpdating) (map[string]interface{}, []event.UpdatedProperty) {
	changes := map[string]interface{}{}
	props := []event.UpdatedProperty{}

	appendChange := func(column, name, oldValue, newValue string, value interface{}) {
		changes[column] = value
		props = append(props, event.UpdatedProperty{PropertyName: name, PropertyDesc: name,
			OldValue: oldValue, OldValueDesc: oldValue, NewValue: newValue, NewValueDesc: newValue})
	}

	if u.ChantierID != nil && *u.ChantierID != origin.ChantierID {
		appendChange("chantier_id", "ChantierID", origin.ChantierID.String(), u.ChantierID.String(), *u.ChantierID)
	}
	if u.Role != nil && *u.Role != origin.Role {
		appendChange("role", "Role", origin.Role, *u.Role, *u.Role)
	}
	if u.StartDate != nil {
		day := DayOf(*u.StartDate)
		if !day.Equal(origin.StartDate) {
			appendChange("start_date", "StartDate", origin.StartDate.Format("2006-01-02"), day.Format("2006-01-02"), day)
		}
	}
	if u.EndDate != nil {
		appendChange("end_date", "EndDate", "", u.EndDate.Format("2006-01-02"), *u.EndDate)
	}
	if u.StartTime != nil && *u.StartTime != origin.StartTime {
		appendChange("start_time", "StartTime", origin.StartTime, *u.StartTime, *u.StartTime)
	}
	if u.EndTime != nil && *u.EndTime != origin.EndTime {
		appendChange("end_time", "EndTime", origin.EndTime, *u.EndTime, *u.EndTime)
	}
	if u.Status != nil && *u.Status != origin.Status {
		appendChange("status", "Status", string(origin.Status), string(*u.Status), *u.Status)
	}
	if u.PlannedHours != nil {
		appendChange("planned_hours", "PlannedHours",
			strconv.FormatFloat(origin.Hours(), 'f', -1, 64), strconv.FormatFloat(*u.PlannedHours, 'f', -1, 64), *u.PlannedHours)
	}
	if u.Notes != nil && *u.Notes != origin.Notes {
		appendChange("notes", "Notes", origin.Notes, *u.Notes, *u.Notes)
	}
	if u.IsLocked != nil && *u.IsLocked != origin.IsLocked {
		appendChange("is_locked", "IsLocked", strconv.FormatBool(origin.IsLocked), strconv.FormatBool(*u.IsLocked), *u.IsLocked)
	}
	return changes, props
}
