package domain

import (
	"time"

	"github.com/fundwit/go-commons/types"
)

type TrainingStatus string

const (
	TrainingPlanifiee TrainingStatus = "PLANIFIEE"
	TrainingEnCours   TrainingStatus = "EN_COURS"
	TrainingTerminee  TrainingStatus = "TERMINEE"
	TrainingAnnulee   TrainingStatus = "ANNULEE"
)

var TrainingStatusLabels = map[TrainingStatus]string{
	TrainingPlanifiee: "planifiée",
	TrainingEnCours:   "en cours",
	TrainingTerminee:  "terminée",
	TrainingAnnulee:   "annulée",
}

type TrainingSession struct {
	ID types.ID `json:"id" gorm:"primary_key"`

	Title     string `json:"title"`
	Organisme string `json:"organisme"`
	Location  string `json:"location"`
	Capacity  int    `json:"capacity"`

	Status TrainingStatus `json:"status"`

	StartDate time.Time `json:"startDate" sql:"type:DATE NOT NULL"`
	EndDate   time.Time `json:"endDate" sql:"type:DATE NOT NULL"`

	CreateTime time.Time `json:"createTime" sql:"type:DATETIME(3) NOT NULL"`
}

type TrainingAttendee struct {
	TrainingID types.ID `json:"trainingId" gorm:"unique_index:training_attendee_unique"`
	EmployeeID types.ID `json:"employeeId" gorm:"unique_index:training_attendee_unique"`

	CreateTime time.Time `json:"createTime" sql:"type:DATETIME(3) NOT NULL"`
}

type TrainingCreating struct {
	Title     string `json:"title" binding:"required,lte=120"`
	Organisme string `json:"organisme" binding:"omitempty,lte=120"`
	Location  string `json:"location" binding:"omitempty,lte=120"`
	Capacity  int    `json:"capacity" binding:"omitempty,gte=0"`

	StartDate time.Time `json:"startDate" binding:"required"`
	EndDate   time.Time `json:"endDate" binding:"required"`
}

type TrainingUpdating struct {
	Title     string `json:"title" binding:"omitempty,lte=120"`
	Organisme string `json:"organisme" binding:"omitempty,lte=120"`
	Location  string `json:"location" binding:"omitempty,lte=120"`
	Capacity  *int   `json:"capacity" binding:"omitempty,gte=0"`

	Status TrainingStatus `json:"status" binding:"omitempty"`

	StartDate *time.Time `json:"startDate"`
	EndDate   *time.Time `json:"endDate"`
}

type TrainingDetail struct {
	TrainingSession
	Attendees []Employee `json:"attendees" gorm:"-"`
}
