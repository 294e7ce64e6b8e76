package domain

import (
	"time"

	"github.com/fundwit/go-commons/types"
)

type AssignmentStatus string

const (
	AssignmentPlanifie AssignmentStatus = "PLANIFIE"
	AssignmentConfirme AssignmentStatus = "CONFIRME"
	AssignmentEnCours  AssignmentStatus = "EN_COURS"
	AssignmentTermine  AssignmentStatus = "TERMINE"
	AssignmentRetarde  AssignmentStatus = "RETARDE"
	AssignmentAnnule   AssignmentStatus = "ANNULE"
)

var AssignmentStatusLabels = map[AssignmentStatus]string{
	AssignmentPlanifie: "planifié",
	AssignmentConfirme: "confirmé",
	AssignmentEnCours:  "en cours",
	AssignmentTermine:  "terminé",
	AssignmentRetarde:  "retardé",
	AssignmentAnnule:   "annulé",
}

// DefaultPlannedHours applies when an assignment carries no plannedHours value.
const DefaultPlannedHours = 8

// WeeklyHoursCeiling is the advisory weekly total above which the planning
// validator asks the operator to confirm.
const WeeklyHoursCeiling = 35

// Assignment is one employee on one chantier for one calendar day.
// Conflict detection works at day granularity, EndDate is informational only.
type Assignment struct {
	ID types.ID `json:"id" gorm:"primary_key"`

	EmployeeID types.ID `json:"employeeId" gorm:"index:assignment_employee_idx"`
	ChantierID types.ID `json:"chantierId" gorm:"index:assignment_chantier_idx"`

	Role string `json:"role"`

	StartDate time.Time  `json:"startDate" sql:"type:DATE NOT NULL"`
	EndDate   *time.Time `json:"endDate" sql:"type:DATE"`

	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`

	Status AssignmentStatus `json:"status"`

	PlannedHours *float64 `json:"plannedHours"`
	Notes        string   `json:"notes" sql:"type:TEXT"`
	IsLocked     bool     `json:"isLocked"`

	CreateTime time.Time `json:"createTime" sql:"type:DATETIME(3) NOT NULL"`
}

// Hours returns plannedHours with the nil default applied.
func (a Assignment) Hours() float64 {
	if a.PlannedHours == nil {
		return DefaultPlannedHours
	}
	return *a.PlannedHours
}

type AssignmentCreating struct {
	EmployeeID types.ID `json:"employeeId" binding:"required"`
	ChantierID types.ID `json:"chantierId" binding:"required"`

	Role string `json:"role" binding:"omitempty,lte=60"`

	StartDate time.Time  `json:"startDate" binding:"required"`
	EndDate   *time.Time `json:"endDate"`

	StartTime string `json:"startTime" binding:"omitempty,lte=5"`
	EndTime   string `json:"endTime" binding:"omitempty,lte=5"`

	Status AssignmentStatus `json:"status" binding:"omitempty"`

	PlannedHours *float64 `json:"plannedHours" binding:"omitempty,gt=0,lte=24"`
	Notes        string   `json:"notes"`
}

// AssignmentUpdating is a partial update, nil members keep the stored value.
type AssignmentUpdating struct {
	ChantierID *types.ID `json:"chantierId"`

	Role *string `json:"role" binding:"omitempty,lte=60"`

	StartDate *time.Time `json:"startDate"`
	EndDate   *time.Time `json:"endDate"`

	StartTime *string `json:"startTime" binding:"omitempty,lte=5"`
	EndTime   *string `json:"endTime" binding:"omitempty,lte=5"`

	Status *AssignmentStatus `json:"status"`

	PlannedHours *float64 `json:"plannedHours" binding:"omitempty,gt=0,lte=24"`
	Notes        *string  `json:"notes"`
	IsLocked     *bool    `json:"isLocked"`
}

type AssignmentQuery struct {
	EmployeeID types.ID `form:"employeeId"`
	ChantierID types.ID `form:"chantierId"`
}
