package document

import (
	"io"
	"time"

	"batiplan/bizerror"
	"batiplan/client/s3"
	"batiplan/domain"
	"batiplan/idgen"
	"batiplan/persistence"
	"batiplan/session"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	documentIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	QueryDocumentsFunc = QueryDocuments
	CreateDocumentFunc = CreateDocument
	DeleteDocumentFunc = DeleteDocument
)

func QueryDocuments(query *domain.DocumentQuery, sec *session.Session) ([]domain.Document, error) {
	var documents []domain.Document
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)

	q := db.Model(&domain.Document{})
	if query.ChantierID != 0 {
		q = q.Where("chantier_id = ?", query.ChantierID)
	}
	if query.Category != "" {
		q = q.Where("category = ?", query.Category)
	}
	if err := q.Order("create_time DESC").Find(&documents).Error; err != nil {
		return nil, err
	}
	return documents, nil
}

// CreateDocument stores the content in the object bucket first, then the
// metadata row. A failed row insert leaves a dangling object rather than a
// row without content.
func CreateDocument(c *domain.DocumentCreating, content io.Reader, size int64, sec *session.Session) (*domain.Document, error) {
	if !sec.CanManagePlanning() {
		return nil, bizerror.ErrForbidden
	}

	category := c.Category
	if category == "" {
		category = domain.DocumentAutre
	}
	document := domain.Document{
		ID:       idgen.NextID(documentIdWorker),
		Name:     c.Name,
		Category: category,

		ChantierID: c.ChantierID,

		ContentType: c.ContentType,
		Size:        size,

		Uploader:   sec.Identity.ID,
		CreateTime: time.Now(),
	}
	document.ObjectKey = "documents/" + document.ID.String()

	if err := s3.PutObjectFunc(document.ObjectKey, content, sec); err != nil {
		return nil, err
	}

	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	if err := db.Create(&document).Error; err != nil {
		return nil, err
	}
	return &document, nil
}

func DetailContent(id types.ID, sec *session.Session) (*domain.Document, io.ReadCloser, error) {
	document := domain.Document{}
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	if err := db.Where(&domain.Document{ID: id}).First(&document).Error; err != nil {
		return nil, nil, err
	}

	r, err := s3.GetObjectFunc(document.ObjectKey, sec)
	if err != nil {
		if serErr, ok := err.(oss.ServiceError); ok && serErr.Code == "NoSuchKey" {
			return nil, nil, domain.ErrNotFound
		}
		return nil, nil, err
	}
	return &document, r, nil
}

func DeleteDocument(id types.ID, sec *session.Session) error {
	if !sec.CanManagePlanning() {
		return bizerror.ErrForbidden
	}

	document := domain.Document{}
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	err := db.Where(&domain.Document{ID: id}).First(&document).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil
		}
		return err
	}

	if err := db.Delete(domain.Document{}, "id = ?", id).Error; err != nil {
		return err
	}
	// best effort, the metadata row is already gone
	_ = s3.DeleteObjectFunc(document.ObjectKey, sec)
	return nil
}
