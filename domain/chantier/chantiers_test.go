package chantier_test

import (
	"context"
	"time"

	"batiplan/bizerror"
	"batiplan/domain"
	"batiplan/domain/chantier"
	"batiplan/event"
	"batiplan/persistence"
	"batiplan/session"
	"batiplan/testinfra"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("chantiers", func() {
	var (
		testDatabase *testinfra.TestDatabase
		sec          *session.Session
	)

	BeforeEach(func() {
		testDatabase = testinfra.StartMysqlTestDatabase("batiplan")
		persistence.ActiveDataSourceManager = testDatabase.DS
		db := testDatabase.DS.GormDB(context.TODO())
		Expect(db.AutoMigrate(&domain.Chantier{}, &domain.Assignment{}, &event.EventRecord{}).Error).To(BeNil())
		sec = testinfra.BuildSession(1, session.RoleManager)
	})
	AfterEach(func() {
		testinfra.StopMysqlTestDatabase(testDatabase)
	})

	Describe("CreateChantier", func() {
		It("should be forbidden for common users", func() {
			common := testinfra.BuildSession(2, session.RoleCommon)
			_, err := chantier.CreateChantier(&domain.ChantierCreating{Name: "Tour Horizon"}, common)
			Expect(err).To(Equal(bizerror.ErrForbidden))
		})

		It("should default status to brouillon and record a creation event", func() {
			created, err := chantier.CreateChantier(&domain.ChantierCreating{
				Name: "Tour Horizon", City: "Lyon", Client: "Immo Horizon SA",
			}, sec)
			Expect(err).To(BeNil())
			Expect(created.Status).To(Equal(domain.ChantierBrouillon))
			Expect(created.Schedulable()).To(BeFalse())
			Expect(created.Creator).To(Equal(types.ID(1)))

			records := []event.EventRecord{}
			db := testDatabase.DS.GormDB(context.TODO())
			Expect(db.Find(&records).Error).To(BeNil())
			Expect(len(records)).To(Equal(1))
			Expect(records[0].SourceType).To(Equal("chantier"))
			Expect(records[0].SourceDesc).To(Equal("Tour Horizon"))
			Expect(records[0].EventCategory).To(Equal(event.EventCategoryCreated))
		})
	})

	Describe("QueryChantiers", func() {
		It("should restrict to schedulable statuses when asked", func() {
			for _, seed := range []struct {
				name   string
				status domain.ChantierStatus
			}{
				{"Tour Horizon", domain.ChantierActif},
				{"Résidence Les Pins", domain.ChantierPlanification},
				{"Pont de l'Est", domain.ChantierTermine},
				{"Halle Sud", domain.ChantierBrouillon},
			} {
				_, err := chantier.CreateChantier(&domain.ChantierCreating{Name: seed.name, Status: seed.status}, sec)
				Expect(err).To(BeNil())
			}

			all, err := chantier.QueryChantiers(&domain.ChantierQuery{}, sec)
			Expect(err).To(BeNil())
			Expect(len(all)).To(Equal(4))

			schedulable, err := chantier.QueryChantiers(&domain.ChantierQuery{Schedulable: true}, sec)
			Expect(err).To(BeNil())
			Expect(len(schedulable)).To(Equal(2))
			Expect(schedulable[0].Name).To(Equal("Résidence Les Pins"))
			Expect(schedulable[1].Name).To(Equal("Tour Horizon"))
		})

		It("should filter by partial name and city", func() {
			_, err := chantier.CreateChantier(&domain.ChantierCreating{Name: "Tour Horizon", City: "Lyon"}, sec)
			Expect(err).To(BeNil())
			_, err = chantier.CreateChantier(&domain.ChantierCreating{Name: "Halle Sud", City: "Nantes"}, sec)
			Expect(err).To(BeNil())

			found, err := chantier.QueryChantiers(&domain.ChantierQuery{Name: "Hori"}, sec)
			Expect(err).To(BeNil())
			Expect(len(found)).To(Equal(1))
			Expect(found[0].Name).To(Equal("Tour Horizon"))

			found, err = chantier.QueryChantiers(&domain.ChantierQuery{City: "Nantes"}, sec)
			Expect(err).To(BeNil())
			Expect(len(found)).To(Equal(1))
			Expect(found[0].Name).To(Equal("Halle Sud"))
		})
	})

	Describe("UpdateChantier", func() {
		It("should update changed members only and record updated properties", func() {
			created, err := chantier.CreateChantier(&domain.ChantierCreating{Name: "Tour Horizon", City: "Lyon"}, sec)
			Expect(err).To(BeNil())

			updated, err := chantier.UpdateChantier(created.ID,
				&domain.ChantierUpdating{Status: domain.ChantierActif}, sec)
			Expect(err).To(BeNil())
			Expect(updated.Status).To(Equal(domain.ChantierActif))
			Expect(updated.Name).To(Equal("Tour Horizon"))
			Expect(updated.City).To(Equal("Lyon"))

			records := []event.EventRecord{}
			db := testDatabase.DS.GormDB(context.TODO())
			Expect(db.Where("event_category = ?", event.EventCategoryPropertyUpdated).Find(&records).Error).To(BeNil())
			Expect(len(records)).To(Equal(1))
			Expect(len(records[0].UpdatedProperties)).To(Equal(1))
			Expect(records[0].UpdatedProperties[0].PropertyName).To(Equal("Status"))
			Expect(records[0].UpdatedProperties[0].NewValue).To(Equal(string(domain.ChantierActif)))
		})

		It("should not record an event when nothing changes", func() {
			created, err := chantier.CreateChantier(&domain.ChantierCreating{Name: "Tour Horizon"}, sec)
			Expect(err).To(BeNil())

			_, err = chantier.UpdateChantier(created.ID, &domain.ChantierUpdating{Name: "Tour Horizon"}, sec)
			Expect(err).To(BeNil())

			records := []event.EventRecord{}
			db := testDatabase.DS.GormDB(context.TODO())
			Expect(db.Where("event_category = ?", event.EventCategoryPropertyUpdated).Find(&records).Error).To(BeNil())
			Expect(len(records)).To(BeZero())
		})

		It("should return record not found for unknown chantier", func() {
			_, err := chantier.UpdateChantier(404, &domain.ChantierUpdating{Name: "X"}, sec)
			Expect(gorm.IsRecordNotFoundError(err)).To(BeTrue())
		})
	})

	Describe("DeleteChantier", func() {
		It("should cascade delete assignments of the chantier", func() {
			created, err := chantier.CreateChantier(&domain.ChantierCreating{
				Name: "Tour Horizon", Status: domain.ChantierActif,
			}, sec)
			Expect(err).To(BeNil())

			db := testDatabase.DS.GormDB(context.TODO())
			day := time.Date(2025, 6, 2, 0, 0, 0, 0, time.Local)
			Expect(db.Create(&domain.Assignment{
				ID: 900, EmployeeID: 100, ChantierID: created.ID, StartDate: day,
				Status: domain.AssignmentPlanifie, CreateTime: time.Now(),
			}).Error).To(BeNil())

			Expect(chantier.DeleteChantier(created.ID, sec)).To(BeNil())

			remaining := []domain.Assignment{}
			Expect(db.Find(&remaining).Error).To(BeNil())
			Expect(len(remaining)).To(BeZero())

			_, err = chantier.DetailChantier(created.ID, sec)
			Expect(gorm.IsRecordNotFoundError(err)).To(BeTrue())
		})

		It("should be idempotent for unknown chantier", func() {
			Expect(chantier.DeleteChantier(404, sec)).To(BeNil())
		})
	})
})
