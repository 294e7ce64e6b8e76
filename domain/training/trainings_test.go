package training_test

import (
	"context"
	"time"

	"batiplan/bizerror"
	"batiplan/domain"
	"batiplan/domain/training"
	"batiplan/event"
	"batiplan/persistence"
	"batiplan/session"
	"batiplan/testinfra"

	"github.com/fundwit/go-commons/types"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("trainings", func() {
	var (
		testDatabase *testinfra.TestDatabase
		sec          *session.Session
	)

	day := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
	}

	createTraining := func(capacity int) *domain.TrainingSession {
		created, err := training.CreateTraining(&domain.TrainingCreating{
			Title: "Habilitation électrique", Organisme: "APAVE", Capacity: capacity,
			StartDate: day(2025, time.June, 10), EndDate: day(2025, time.June, 12),
		}, sec)
		Expect(err).To(BeNil())
		return created
	}

	seedEmployee := func(id types.ID, lastName string) {
		db := testDatabase.DS.GormDB(context.TODO())
		Expect(db.Save(&domain.Employee{ID: id, FirstName: "Test", LastName: lastName,
			Poste: "Maçon", Status: domain.EmployeeDisponible, CreateTime: time.Now()}).Error).To(BeNil())
	}

	BeforeEach(func() {
		testDatabase = testinfra.StartMysqlTestDatabase("batiplan")
		persistence.ActiveDataSourceManager = testDatabase.DS
		db := testDatabase.DS.GormDB(context.TODO())
		Expect(db.AutoMigrate(&domain.Employee{}, &domain.TrainingSession{},
			&domain.TrainingAttendee{}, &event.EventRecord{}).Error).To(BeNil())
		sec = testinfra.BuildSession(1, session.RoleManager)
	})
	AfterEach(func() {
		testinfra.StopMysqlTestDatabase(testDatabase)
	})

	Describe("AddAttendee", func() {
		It("should refuse past capacity", func() {
			created := createTraining(1)
			seedEmployee(100, "Dubois")
			seedEmployee(200, "Martin")

			Expect(training.AddAttendee(created.ID, 100, sec)).To(BeNil())
			Expect(training.AddAttendee(created.ID, 200, sec)).To(Equal(bizerror.ErrTrainingFull))
		})

		It("should refuse an unknown employee", func() {
			created := createTraining(0)
			Expect(training.AddAttendee(created.ID, 999, sec)).To(Equal(bizerror.ErrEmployeeNotFound))
		})

		It("should flag attendees of a running session as in formation", func() {
			created := createTraining(0)
			seedEmployee(100, "Dubois")

			_, err := training.UpdateTraining(created.ID, &domain.TrainingUpdating{
				Status: domain.TrainingEnCours}, sec)
			Expect(err).To(BeNil())
			Expect(training.AddAttendee(created.ID, 100, sec)).To(BeNil())

			db := testDatabase.DS.GormDB(context.TODO())
			e := domain.Employee{}
			Expect(db.Where("id = ?", 100).First(&e).Error).To(BeNil())
			Expect(e.Status).To(Equal(domain.EmployeeEnFormation))
		})
	})

	Describe("UpdateTraining status transitions", func() {
		It("should release attendees when the session completes", func() {
			created := createTraining(0)
			seedEmployee(100, "Dubois")
			Expect(training.AddAttendee(created.ID, 100, sec)).To(BeNil())

			_, err := training.UpdateTraining(created.ID, &domain.TrainingUpdating{
				Status: domain.TrainingEnCours}, sec)
			Expect(err).To(BeNil())

			db := testDatabase.DS.GormDB(context.TODO())
			e := domain.Employee{}
			Expect(db.Where("id = ?", 100).First(&e).Error).To(BeNil())
			Expect(e.Status).To(Equal(domain.EmployeeEnFormation))

			_, err = training.UpdateTraining(created.ID, &domain.TrainingUpdating{
				Status: domain.TrainingTerminee}, sec)
			Expect(err).To(BeNil())
			Expect(db.Where("id = ?", 100).First(&e).Error).To(BeNil())
			Expect(e.Status).To(Equal(domain.EmployeeDisponible))
		})
	})

	Describe("DetailTraining", func() {
		It("should list the attendees", func() {
			created := createTraining(0)
			seedEmployee(100, "Dubois")
			seedEmployee(200, "Martin")
			Expect(training.AddAttendee(created.ID, 100, sec)).To(BeNil())
			Expect(training.AddAttendee(created.ID, 200, sec)).To(BeNil())
			Expect(training.RemoveAttendee(created.ID, 200, sec)).To(BeNil())

			detail, err := training.DetailTraining(created.ID, sec)
			Expect(err).To(BeNil())
			Expect(detail.Title).To(Equal("Habilitation électrique"))
			Expect(len(detail.Attendees)).To(Equal(1))
			Expect(detail.Attendees[0].LastName).To(Equal("Dubois"))
		})
	})
})
