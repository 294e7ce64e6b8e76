package assignment_test

import (
	"context"
	"time"

	"batiplan/bizerror"
	"batiplan/domain"
	"batiplan/domain/assignment"
	"batiplan/event"
	"batiplan/persistence"
	"batiplan/session"
	"batiplan/testinfra"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("assignments", func() {
	var (
		testDatabase *testinfra.TestDatabase
		sec          *session.Session
	)

	day := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
	}

	BeforeEach(func() {
		testDatabase = testinfra.StartMysqlTestDatabase("batiplan")
		persistence.ActiveDataSourceManager = testDatabase.DS
		db := testDatabase.DS.GormDB(context.TODO())
		Expect(db.AutoMigrate(&domain.Employee{}, &domain.Chantier{},
			&domain.Assignment{}, &event.EventRecord{}).Error).To(BeNil())

		Expect(db.Save(&domain.Employee{ID: 100, FirstName: "Marc", LastName: "Dubois",
			Poste: "Maçon", Status: domain.EmployeeDisponible, CreateTime: time.Now()}).Error).To(BeNil())
		Expect(db.Save(&domain.Chantier{ID: 10, Name: "Tour Horizon",
			Status: domain.ChantierActif, CreateTime: time.Now()}).Error).To(BeNil())
		Expect(db.Save(&domain.Chantier{ID: 12, Name: "Entrepôt Nord",
			Status: domain.ChantierTermine, CreateTime: time.Now()}).Error).To(BeNil())

		sec = testinfra.BuildSession(1, session.RoleManager)
	})
	AfterEach(func() {
		testinfra.StopMysqlTestDatabase(testDatabase)
	})

	Describe("CreateAssignment", func() {
		It("should reject users without planning rights", func() {
			_, err := assignment.CreateAssignment(&domain.AssignmentCreating{
				EmployeeID: 100, ChantierID: 10, StartDate: day(2025, time.June, 2),
			}, testinfra.BuildSession(2, session.RoleCommon))
			Expect(err).To(Equal(bizerror.ErrForbidden))
		})

		It("should reject an unknown employee", func() {
			_, err := assignment.CreateAssignment(&domain.AssignmentCreating{
				EmployeeID: 999, ChantierID: 10, StartDate: day(2025, time.June, 2),
			}, sec)
			Expect(err).To(Equal(bizerror.ErrEmployeeNotFound))
		})

		It("should reject a chantier off the board", func() {
			_, err := assignment.CreateAssignment(&domain.AssignmentCreating{
				EmployeeID: 100, ChantierID: 12, StartDate: day(2025, time.June, 2),
			}, sec)
			Expect(err).To(Equal(bizerror.ErrChantierNotSchedulable))
		})

		It("should apply defaults and truncate the date, and record an event", func() {
			created, err := assignment.CreateAssignment(&domain.AssignmentCreating{
				EmployeeID: 100, ChantierID: 10,
				StartDate: time.Date(2025, time.June, 2, 14, 25, 0, 0, time.Local),
			}, sec)
			Expect(err).To(BeNil())
			Expect(created.ID).ToNot(BeZero())
			Expect(created.Status).To(Equal(domain.AssignmentPlanifie))
			Expect(created.Role).To(Equal("Maçon"))
			Expect(created.StartDate).To(Equal(day(2025, time.June, 2)))
			Expect(created.Hours()).To(Equal(8.0))

			records := []event.EventRecord{}
			db := testDatabase.DS.GormDB(context.TODO())
			Expect(db.Find(&records).Error).To(BeNil())
			Expect(len(records)).To(Equal(1))
			Expect(records[0].SourceType).To(Equal("assignment"))
			Expect(records[0].SourceId).To(Equal(created.ID))
			Expect(records[0].EventCategory).To(Equal(event.EventCategory(event.EventCategoryCreated)))
			Expect(records[0].SourceDesc).To(Equal("Marc Dubois / Tour Horizon"))
		})
	})

	Describe("UpdateAssignment", func() {
		It("should apply only the provided members", func() {
			created, err := assignment.CreateAssignment(&domain.AssignmentCreating{
				EmployeeID: 100, ChantierID: 10, StartDate: day(2025, time.June, 2), Notes: "première note",
			}, sec)
			Expect(err).To(BeNil())

			newDay := day(2025, time.June, 4)
			locked := true
			updated, err := assignment.UpdateAssignment(created.ID, &domain.AssignmentUpdating{
				StartDate: &newDay, IsLocked: &locked,
			}, sec)
			Expect(err).To(BeNil())
			Expect(updated.StartDate).To(Equal(newDay))
			Expect(updated.IsLocked).To(BeTrue())
			Expect(updated.Notes).To(Equal("première note"))
			Expect(updated.ChantierID).To(Equal(types.ID(10)))
		})

		It("should be a no-op when nothing changes", func() {
			created, err := assignment.CreateAssignment(&domain.AssignmentCreating{
				EmployeeID: 100, ChantierID: 10, StartDate: day(2025, time.June, 2),
			}, sec)
			Expect(err).To(BeNil())

			sameDay := day(2025, time.June, 2)
			updated, err := assignment.UpdateAssignment(created.ID, &domain.AssignmentUpdating{
				StartDate: &sameDay,
			}, sec)
			Expect(err).To(BeNil())
			Expect(updated.StartDate).To(Equal(sameDay))

			records := []event.EventRecord{}
			db := testDatabase.DS.GormDB(context.TODO())
			Expect(db.Where("event_category = ?", event.EventCategoryPropertyUpdated).
				Find(&records).Error).To(BeNil())
			Expect(records).To(BeEmpty())
		})

		It("should report a missing assignment", func() {
			newDay := day(2025, time.June, 4)
			_, err := assignment.UpdateAssignment(404, &domain.AssignmentUpdating{StartDate: &newDay}, sec)
			Expect(gorm.IsRecordNotFoundError(err)).To(BeTrue())
		})
	})

	Describe("DeleteAssignment and ListAssignments", func() {
		It("should delete and list in start date order", func() {
			first, err := assignment.CreateAssignment(&domain.AssignmentCreating{
				EmployeeID: 100, ChantierID: 10, StartDate: day(2025, time.June, 4),
			}, sec)
			Expect(err).To(BeNil())
			second, err := assignment.CreateAssignment(&domain.AssignmentCreating{
				EmployeeID: 100, ChantierID: 10, StartDate: day(2025, time.June, 2),
			}, sec)
			Expect(err).To(BeNil())

			listed, err := assignment.ListAssignments(sec)
			Expect(err).To(BeNil())
			Expect(len(listed)).To(Equal(2))
			Expect(listed[0].ID).To(Equal(second.ID))
			Expect(listed[1].ID).To(Equal(first.ID))

			Expect(assignment.DeleteAssignment(first.ID, sec)).To(BeNil())
			listed, err = assignment.ListAssignments(sec)
			Expect(err).To(BeNil())
			Expect(len(listed)).To(Equal(1))

			// deleting a gone row stays quiet
			Expect(assignment.DeleteAssignment(first.ID, sec)).To(BeNil())
		})
	})
})
