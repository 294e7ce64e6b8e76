package domain

import (
	"time"

	"github.com/fundwit/go-commons/types"
)

type ContractType string

const (
	ContractCDI          ContractType = "CDI"
	ContractCDD          ContractType = "CDD"
	ContractInterim      ContractType = "INTERIM"
	ContractFreelance    ContractType = "FREELANCE"
	ContractSousTraitant ContractType = "SOUS_TRAITANT"
	ContractApprenti     ContractType = "APPRENTI"
)

type EmployeeStatus string

const (
	EmployeeDisponible   EmployeeStatus = "DISPONIBLE"
	EmployeeEnMission    EmployeeStatus = "EN_MISSION"
	EmployeeEnFormation  EmployeeStatus = "EN_FORMATION"
	EmployeeEnConge      EmployeeStatus = "EN_CONGE"
	EmployeeArretMaladie EmployeeStatus = "ARRET_MALADIE"
	EmployeeAbsent       EmployeeStatus = "ABSENT"
	EmployeeParti        EmployeeStatus = "PARTI"
)

// EmployeeStatusLabels are the french ui labels. Presentation only,
// the planning validator uses them in confirmation messages.
var EmployeeStatusLabels = map[EmployeeStatus]string{
	EmployeeDisponible:   "disponible",
	EmployeeEnMission:    "en mission",
	EmployeeEnFormation:  "en formation",
	EmployeeEnConge:      "en congé",
	EmployeeArretMaladie: "en arrêt maladie",
	EmployeeAbsent:       "absent",
	EmployeeParti:        "parti",
}

var ContractTypeLabels = map[ContractType]string{
	ContractCDI:          "CDI",
	ContractCDD:          "CDD",
	ContractInterim:      "Intérim",
	ContractFreelance:    "Freelance",
	ContractSousTraitant: "Sous-traitant",
	ContractApprenti:     "Apprenti",
}

var ContractTypeColors = map[ContractType]string{
	ContractCDI:          "green",
	ContractCDD:          "blue",
	ContractInterim:      "orange",
	ContractFreelance:    "purple",
	ContractSousTraitant: "brown",
	ContractApprenti:     "cyan",
}

type Employee struct {
	ID types.ID `json:"id" gorm:"primary_key"`

	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Poste     string `json:"poste"`

	ContractType ContractType   `json:"contractType"`
	Status       EmployeeStatus `json:"status"`

	// AvailableFrom is the earliest day the employee may be scheduled, nil when unconstrained
	AvailableFrom *time.Time `json:"availableFrom" sql:"type:DATE"`

	Phone    string `json:"phone"`
	Email    string `json:"email"`
	PhotoKey string `json:"photoKey"`

	CreateTime time.Time `json:"createTime" sql:"type:DATETIME(3) NOT NULL"`
}

func (e Employee) DisplayName() string {
	return e.FirstName + " " + e.LastName
}

type EmployeeCreating struct {
	FirstName string `json:"firstName" binding:"required,lte=60"`
	LastName  string `json:"lastName" binding:"required,lte=60"`
	Poste     string `json:"poste" binding:"required,lte=60"`

	ContractType ContractType   `json:"contractType" binding:"required"`
	Status       EmployeeStatus `json:"status" binding:"omitempty"`

	AvailableFrom *time.Time `json:"availableFrom"`

	Phone string `json:"phone" binding:"omitempty,lte=20"`
	Email string `json:"email" binding:"omitempty,email,lte=120"`
}

type EmployeeUpdating struct {
	FirstName string `json:"firstName" binding:"omitempty,lte=60"`
	LastName  string `json:"lastName" binding:"omitempty,lte=60"`
	Poste     string `json:"poste" binding:"omitempty,lte=60"`

	ContractType ContractType   `json:"contractType" binding:"omitempty"`
	Status       EmployeeStatus `json:"status" binding:"omitempty"`

	AvailableFrom *time.Time `json:"availableFrom"`

	Phone string `json:"phone" binding:"omitempty,lte=20"`
	Email string `json:"email" binding:"omitempty,email,lte=120"`
}

type EmployeeQuery struct {
	Name   string         `form:"name"`
	Status EmployeeStatus `form:"status"`
}
