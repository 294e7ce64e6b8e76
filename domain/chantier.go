package domain

import (
	"time"

	"github.com/fundwit/go-commons/types"
)

type ChantierStatus string

const (
	ChantierBrouillon     ChantierStatus = "BROUILLON"
	ChantierPlanification ChantierStatus = "PLANIFICATION"
	ChantierActif         ChantierStatus = "ACTIF"
	ChantierEnPause       ChantierStatus = "EN_PAUSE"
	ChantierRetarde       ChantierStatus = "RETARDE"
	ChantierTermine       ChantierStatus = "TERMINE"
	ChantierAnnule        ChantierStatus = "ANNULE"
	ChantierArchive       ChantierStatus = "ARCHIVE"
)

var ChantierStatusLabels = map[ChantierStatus]string{
	ChantierBrouillon:     "brouillon",
	ChantierPlanification: "en planification",
	ChantierActif:         "actif",
	ChantierEnPause:       "en pause",
	ChantierRetarde:       "retardé",
	ChantierTermine:       "terminé",
	ChantierAnnule:        "annulé",
	ChantierArchive:       "archivé",
}

// SchedulableChantierStatuses are the statuses shown as rows on the weekly board.
var SchedulableChantierStatuses = []ChantierStatus{ChantierActif, ChantierPlanification}

type Chantier struct {
	ID types.ID `json:"id" gorm:"primary_key"`

	Name    string `json:"name" gorm:"unique_index:chantier_name_idx"`
	City    string `json:"city"`
	Address string `json:"address"`
	Client  string `json:"client"`

	Status ChantierStatus `json:"status"`

	StartDate *time.Time `json:"startDate" sql:"type:DATE"`
	EndDate   *time.Time `json:"endDate" sql:"type:DATE"`

	CreateTime time.Time `json:"createTime" sql:"type:DATETIME(3) NOT NULL"`
	Creator    types.ID  `json:"creator"`
}

func (c Chantier) Schedulable() bool {
	for _, s := range SchedulableChantierStatuses {
		if c.Status == s {
			return true
		}
	}
	return false
}

type ChantierCreating struct {
	Name    string `json:"name" binding:"required,lte=120"`
	City    string `json:"city" binding:"omitempty,lte=60"`
	Address string `json:"address" binding:"omitempty,lte=200"`
	Client  string `json:"client" binding:"omitempty,lte=120"`

	Status ChantierStatus `json:"status" binding:"omitempty"`

	StartDate *time.Time `json:"startDate"`
	EndDate   *time.Time `json:"endDate"`
}

type ChantierUpdating struct {
	Name    string `json:"name" binding:"omitempty,lte=120"`
	City    string `json:"city" binding:"omitempty,lte=60"`
	Address string `json:"address" binding:"omitempty,lte=200"`
	Client  string `json:"client" binding:"omitempty,lte=120"`

	Status ChantierStatus `json:"status" binding:"omitempty"`

	StartDate *time.Time `json:"startDate"`
	EndDate   *time.Time `json:"endDate"`
}

type ChantierQuery struct {
	Name        string           `form:"name"`
	City        string           `form:"city"`
	Statuses    []ChantierStatus `form:"status"`
	Schedulable bool             `form:"schedulable"`
}
