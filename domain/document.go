package domain

import (
	"time"

	"github.com/fundwit/go-commons/types"
)

type DocumentCategory string

const (
	DocumentPlan    DocumentCategory = "PLAN"
	DocumentContrat DocumentCategory = "CONTRAT"
	DocumentRapport DocumentCategory = "RAPPORT"
	DocumentPhoto   DocumentCategory = "PHOTO"
	DocumentAutre   DocumentCategory = "AUTRE"
)

type Document struct {
	ID types.ID `json:"id" gorm:"primary_key"`

	Name     string           `json:"name"`
	Category DocumentCategory `json:"category"`

	ChantierID types.ID `json:"chantierId" gorm:"index:document_chantier_idx"`

	ObjectKey   string `json:"objectKey"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`

	Uploader   types.ID  `json:"uploader"`
	CreateTime time.Time `json:"createTime" sql:"type:DATETIME(3) NOT NULL"`
}

type DocumentCreating struct {
	Name     string           `json:"name" binding:"required,lte=200"`
	Category DocumentCategory `json:"category" binding:"omitempty"`

	ChantierID types.ID `json:"chantierId"`

	ContentType string `json:"contentType" binding:"omitempty,lte=120"`
}

type DocumentQuery struct {
	ChantierID types.ID         `form:"chantierId"`
	Category   DocumentCategory `form:"category"`
}
