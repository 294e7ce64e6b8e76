package employee_test

import (
	"context"
	"io"
	"io/ioutil"
	"strings"
	"time"

	"batiplan/bizerror"
	"batiplan/client/s3"
	"batiplan/domain"
	"batiplan/domain/employee"
	"batiplan/event"
	"batiplan/persistence"
	"batiplan/session"
	"batiplan/testinfra"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/fundwit/go-commons/types"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("employees", func() {
	var (
		testDatabase *testinfra.TestDatabase
		sec          *session.Session
	)

	BeforeEach(func() {
		testDatabase = testinfra.StartMysqlTestDatabase("batiplan")
		persistence.ActiveDataSourceManager = testDatabase.DS
		db := testDatabase.DS.GormDB(context.TODO())
		Expect(db.AutoMigrate(&domain.Employee{}, &domain.Assignment{}, &event.EventRecord{}).Error).To(BeNil())
		sec = testinfra.BuildSession(1, session.RoleManager)
	})
	AfterEach(func() {
		testinfra.StopMysqlTestDatabase(testDatabase)
	})

	Describe("CreateEmployee and QueryEmployees", func() {
		It("should default new employees to disponible", func() {
			created, err := employee.CreateEmployee(&domain.EmployeeCreating{
				FirstName: "Marc", LastName: "Dubois", Poste: "Maçon", ContractType: domain.ContractCDI,
			}, sec)
			Expect(err).To(BeNil())
			Expect(created.Status).To(Equal(domain.EmployeeDisponible))
			Expect(created.DisplayName()).To(Equal("Marc Dubois"))
		})

		It("should filter by partial name and status", func() {
			_, err := employee.CreateEmployee(&domain.EmployeeCreating{
				FirstName: "Marc", LastName: "Dubois", Poste: "Maçon", ContractType: domain.ContractCDI,
			}, sec)
			Expect(err).To(BeNil())
			_, err = employee.CreateEmployee(&domain.EmployeeCreating{
				FirstName: "Sophie", LastName: "Martin", Poste: "Grutier",
				ContractType: domain.ContractInterim, Status: domain.EmployeeEnConge,
			}, sec)
			Expect(err).To(BeNil())

			found, err := employee.QueryEmployees(&domain.EmployeeQuery{Name: "Dub"}, sec)
			Expect(err).To(BeNil())
			Expect(len(found)).To(Equal(1))
			Expect(found[0].LastName).To(Equal("Dubois"))

			found, err = employee.QueryEmployees(&domain.EmployeeQuery{Status: domain.EmployeeEnConge}, sec)
			Expect(err).To(BeNil())
			Expect(len(found)).To(Equal(1))
			Expect(found[0].LastName).To(Equal("Martin"))
		})
	})

	Describe("UpdateEmployee", func() {
		It("should track changed properties in the event record", func() {
			created, err := employee.CreateEmployee(&domain.EmployeeCreating{
				FirstName: "Marc", LastName: "Dubois", Poste: "Maçon", ContractType: domain.ContractCDI,
			}, sec)
			Expect(err).To(BeNil())

			updated, err := employee.UpdateEmployee(created.ID, &domain.EmployeeUpdating{
				Status: domain.EmployeeArretMaladie,
			}, sec)
			Expect(err).To(BeNil())
			Expect(updated.Status).To(Equal(domain.EmployeeArretMaladie))
			Expect(updated.Poste).To(Equal("Maçon"))

			records := []event.EventRecord{}
			db := testDatabase.DS.GormDB(context.TODO())
			Expect(db.Where("event_category = ?", event.EventCategoryPropertyUpdated).Find(&records).Error).To(BeNil())
			Expect(len(records)).To(Equal(1))
			Expect(len(records[0].UpdatedProperties)).To(Equal(1))
			Expect(records[0].UpdatedProperties[0].PropertyName).To(Equal("Status"))
			Expect(records[0].UpdatedProperties[0].NewValue).To(Equal(string(domain.EmployeeArretMaladie)))
		})
	})

	Describe("DeleteEmployee", func() {
		It("should cascade the employee's assignments", func() {
			created, err := employee.CreateEmployee(&domain.EmployeeCreating{
				FirstName: "Marc", LastName: "Dubois", Poste: "Maçon", ContractType: domain.ContractCDI,
			}, sec)
			Expect(err).To(BeNil())

			db := testDatabase.DS.GormDB(context.TODO())
			Expect(db.Save(&domain.Assignment{ID: 1, EmployeeID: created.ID, ChantierID: 10,
				StartDate: time.Now(), CreateTime: time.Now()}).Error).To(BeNil())

			Expect(employee.DeleteEmployee(created.ID, sec)).To(BeNil())

			assignments := []domain.Assignment{}
			Expect(db.Find(&assignments).Error).To(BeNil())
			Expect(assignments).To(BeEmpty())
		})

		It("should be forbidden for common users", func() {
			Expect(employee.DeleteEmployee(1, testinfra.BuildSession(2, session.RoleCommon))).
				To(Equal(bizerror.ErrForbidden))
		})
	})

	Describe("photos", func() {
		var originGet func(key string, s *session.Session, opts ...oss.Option) (io.ReadCloser, error)
		var originPut func(key string, r io.Reader, s *session.Session, opts ...oss.Option) error

		BeforeEach(func() {
			originGet = s3.GetObjectFunc
			originPut = s3.PutObjectFunc
		})
		AfterEach(func() {
			s3.GetObjectFunc = originGet
			s3.PutObjectFunc = originPut
		})

		It("should store the photo under the employee key and remember it", func() {
			created, err := employee.CreateEmployee(&domain.EmployeeCreating{
				FirstName: "Marc", LastName: "Dubois", Poste: "Maçon", ContractType: domain.ContractCDI,
			}, sec)
			Expect(err).To(BeNil())

			var putKey string
			s3.PutObjectFunc = func(key string, r io.Reader, s *session.Session, opts ...oss.Option) error {
				putKey = key
				return nil
			}

			Expect(employee.UploadPhoto(created.ID, strings.NewReader("png-bytes"), sec)).To(BeNil())
			Expect(putKey).To(Equal("photos/" + created.ID.String() + ".png"))

			detail, err := employee.DetailEmployee(created.ID, sec)
			Expect(err).To(BeNil())
			Expect(detail.PhotoKey).To(Equal(putKey))
		})

		It("should translate a missing object into not found", func() {
			s3.GetObjectFunc = func(key string, s *session.Session, opts ...oss.Option) (io.ReadCloser, error) {
				return nil, oss.ServiceError{Code: "NoSuchKey"}
			}
			_, err := employee.DetailPhoto(types.ID(404), sec)
			Expect(err).To(Equal(domain.ErrNotFound))
		})

		It("should stream the stored photo back", func() {
			s3.GetObjectFunc = func(key string, s *session.Session, opts ...oss.Option) (io.ReadCloser, error) {
				return ioutil.NopCloser(strings.NewReader("png-bytes")), nil
			}
			r, err := employee.DetailPhoto(types.ID(100), sec)
			Expect(err).To(BeNil())
			defer r.Close()
			content, err := ioutil.ReadAll(r)
			Expect(err).To(BeNil())
			Expect(string(content)).To(Equal("png-bytes"))
		})
	})
})
