package document_test

import (
	"context"
	"io"
	"io/ioutil"
	"strings"

	"batiplan/bizerror"
	"batiplan/client/s3"
	"batiplan/domain"
	"batiplan/domain/document"
	"batiplan/persistence"
	"batiplan/session"
	"batiplan/testinfra"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/jinzhu/gorm"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("documents", func() {
	var (
		testDatabase *testinfra.TestDatabase
		sec          *session.Session
		bucket       map[string]string
	)

	BeforeEach(func() {
		testDatabase = testinfra.StartMysqlTestDatabase("batiplan")
		persistence.ActiveDataSourceManager = testDatabase.DS
		db := testDatabase.DS.GormDB(context.TODO())
		Expect(db.AutoMigrate(&domain.Document{}).Error).To(BeNil())
		sec = testinfra.BuildSession(1, session.RoleManager)

		bucket = map[string]string{}
		s3.PutObjectFunc = func(key string, r io.Reader, s *session.Session, opts ...oss.Option) error {
			bytes, err := ioutil.ReadAll(r)
			if err != nil {
				return err
			}
			bucket[key] = string(bytes)
			return nil
		}
		s3.GetObjectFunc = func(key string, s *session.Session, opts ...oss.Option) (io.ReadCloser, error) {
			content, found := bucket[key]
			if !found {
				return nil, oss.ServiceError{Code: "NoSuchKey"}
			}
			return ioutil.NopCloser(strings.NewReader(content)), nil
		}
		s3.DeleteObjectFunc = func(key string, s *session.Session) error {
			delete(bucket, key)
			return nil
		}
	})
	AfterEach(func() {
		s3.GetObjectFunc = nil
		s3.PutObjectFunc = nil
		s3.DeleteObjectFunc = nil
		testinfra.StopMysqlTestDatabase(testDatabase)
	})

	Describe("CreateDocument", func() {
		It("should be forbidden for common users", func() {
			common := testinfra.BuildSession(2, session.RoleCommon)
			_, err := document.CreateDocument(&domain.DocumentCreating{Name: "plan.pdf"},
				strings.NewReader("x"), 1, common)
			Expect(err).To(Equal(bizerror.ErrForbidden))
		})

		It("should store content under the object key and default category", func() {
			created, err := document.CreateDocument(&domain.DocumentCreating{
				Name: "plan-etage-3.pdf", ChantierID: 10, ContentType: "application/pdf",
			}, strings.NewReader("pdf content"), 11, sec)
			Expect(err).To(BeNil())
			Expect(created.Category).To(Equal(domain.DocumentAutre))
			Expect(created.ObjectKey).To(Equal("documents/" + created.ID.String()))
			Expect(created.Size).To(Equal(int64(11)))
			Expect(created.Uploader).To(Equal(sec.Identity.ID))
			Expect(bucket[created.ObjectKey]).To(Equal("pdf content"))
		})
	})

	Describe("QueryDocuments", func() {
		It("should filter by chantier and category", func() {
			_, err := document.CreateDocument(&domain.DocumentCreating{
				Name: "plan.pdf", Category: domain.DocumentPlan, ChantierID: 10,
			}, strings.NewReader("a"), 1, sec)
			Expect(err).To(BeNil())
			_, err = document.CreateDocument(&domain.DocumentCreating{
				Name: "contrat.pdf", Category: domain.DocumentContrat, ChantierID: 11,
			}, strings.NewReader("b"), 1, sec)
			Expect(err).To(BeNil())

			found, err := document.QueryDocuments(&domain.DocumentQuery{ChantierID: 10}, sec)
			Expect(err).To(BeNil())
			Expect(len(found)).To(Equal(1))
			Expect(found[0].Name).To(Equal("plan.pdf"))

			found, err = document.QueryDocuments(&domain.DocumentQuery{Category: domain.DocumentContrat}, sec)
			Expect(err).To(BeNil())
			Expect(len(found)).To(Equal(1))
			Expect(found[0].Name).To(Equal("contrat.pdf"))
		})
	})

	Describe("DetailContent", func() {
		It("should stream the stored content back", func() {
			created, err := document.CreateDocument(&domain.DocumentCreating{Name: "rapport.pdf"},
				strings.NewReader("rapport de chantier"), 18, sec)
			Expect(err).To(BeNil())

			detail, r, err := document.DetailContent(created.ID, sec)
			Expect(err).To(BeNil())
			defer r.Close()
			Expect(detail.Name).To(Equal("rapport.pdf"))
			content, err := ioutil.ReadAll(r)
			Expect(err).To(BeNil())
			Expect(string(content)).To(Equal("rapport de chantier"))
		})

		It("should return record not found for unknown document", func() {
			_, _, err := document.DetailContent(404, sec)
			Expect(gorm.IsRecordNotFoundError(err)).To(BeTrue())
		})

		It("should map a missing object to not found", func() {
			created, err := document.CreateDocument(&domain.DocumentCreating{Name: "perdu.pdf"},
				strings.NewReader("x"), 1, sec)
			Expect(err).To(BeNil())
			delete(bucket, created.ObjectKey)

			_, _, err = document.DetailContent(created.ID, sec)
			Expect(err).To(Equal(domain.ErrNotFound))
		})
	})

	Describe("DeleteDocument", func() {
		It("should remove the row and the stored object", func() {
			created, err := document.CreateDocument(&domain.DocumentCreating{Name: "old.pdf"},
				strings.NewReader("x"), 1, sec)
			Expect(err).To(BeNil())

			Expect(document.DeleteDocument(created.ID, sec)).To(BeNil())
			Expect(bucket).ToNot(HaveKey(created.ObjectKey))

			found, err := document.QueryDocuments(&domain.DocumentQuery{}, sec)
			Expect(err).To(BeNil())
			Expect(len(found)).To(BeZero())

			Expect(document.DeleteDocument(created.ID, sec)).To(BeNil())
		})
	})
})
