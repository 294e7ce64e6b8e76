package domain

import (
	"time"

	"github.com/fundwit/go-commons/types"
)

type AlertType string

const (
	AlertRetardChantier AlertType = "RETARD_CHANTIER"
	AlertSurcharge      AlertType = "SURCHARGE"
	AlertFinContrat     AlertType = "FIN_CONTRAT"
	AlertDocumentExpire AlertType = "DOCUMENT_EXPIRE"
	AlertAutre          AlertType = "AUTRE"
)

type AlertSeverity string

const (
	SeverityInfo      AlertSeverity = "INFO"
	SeverityAttention AlertSeverity = "ATTENTION"
	SeverityCritique  AlertSeverity = "CRITIQUE"
)

var AlertSeverityLabels = map[AlertSeverity]string{
	SeverityInfo:      "information",
	SeverityAttention: "attention",
	SeverityCritique:  "critique",
}

type Alert struct {
	ID types.ID `json:"id" gorm:"primary_key"`

	Type     AlertType     `json:"type"`
	Severity AlertSeverity `json:"severity"`
	Message  string        `json:"message" sql:"type:TEXT"`

	ChantierID types.ID `json:"chantierId"`
	EmployeeID types.ID `json:"employeeId"`

	Read       bool      `json:"read"`
	CreateTime time.Time `json:"createTime" sql:"type:DATETIME(3) NOT NULL"`
}

type AlertCreating struct {
	Type     AlertType     `json:"type" binding:"required"`
	Severity AlertSeverity `json:"severity" binding:"required"`
	Message  string        `json:"message" binding:"required"`

	ChantierID types.ID `json:"chantierId"`
	EmployeeID types.ID `json:"employeeId"`
}

type AlertQuery struct {
	Severity AlertSeverity `form:"severity"`
	Unread   bool          `form:"unread"`
}
