package alert_test

import (
	"context"
	"errors"

	"batiplan/bizerror"
	"batiplan/domain"
	"batiplan/domain/alert"
	"batiplan/notify"
	"batiplan/persistence"
	"batiplan/session"
	"batiplan/testinfra"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("alerts", func() {
	var (
		testDatabase *testinfra.TestDatabase
		sec          *session.Session
		published    []*domain.Alert
	)

	BeforeEach(func() {
		testDatabase = testinfra.StartMysqlTestDatabase("batiplan")
		persistence.ActiveDataSourceManager = testDatabase.DS
		db := testDatabase.DS.GormDB(context.TODO())
		Expect(db.AutoMigrate(&domain.Alert{}).Error).To(BeNil())
		sec = testinfra.BuildSession(1, session.RoleManager)

		published = nil
		notify.PublishAlertFunc = func(a *domain.Alert) error {
			published = append(published, a)
			return nil
		}
	})
	AfterEach(func() {
		notify.PublishAlertFunc = notify.PublishAlert
		testinfra.StopMysqlTestDatabase(testDatabase)
	})

	Describe("CreateAlert", func() {
		It("should be forbidden for common users", func() {
			common := testinfra.BuildSession(2, session.RoleCommon)
			_, err := alert.CreateAlert(&domain.AlertCreating{
				Type: domain.AlertSurcharge, Severity: domain.SeverityInfo, Message: "m"}, common)
			Expect(err).To(Equal(bizerror.ErrForbidden))
		})

		It("should not publish non critical alerts", func() {
			created, err := alert.CreateAlert(&domain.AlertCreating{
				Type: domain.AlertSurcharge, Severity: domain.SeverityAttention,
				Message: "Marc Dubois dépasse 35h cette semaine", EmployeeID: 100,
			}, sec)
			Expect(err).To(BeNil())
			Expect(created.Read).To(BeFalse())
			Expect(published).To(BeEmpty())
		})

		It("should publish critical alerts to the notify queue", func() {
			created, err := alert.CreateAlert(&domain.AlertCreating{
				Type: domain.AlertRetardChantier, Severity: domain.SeverityCritique,
				Message: "Tour Horizon a 15 jours de retard", ChantierID: 10,
			}, sec)
			Expect(err).To(BeNil())
			Expect(len(published)).To(Equal(1))
			Expect(published[0].ID).To(Equal(created.ID))
		})

		It("should still create the alert when publishing fails", func() {
			notify.PublishAlertFunc = func(a *domain.Alert) error {
				return errors.New("broker unreachable")
			}
			created, err := alert.CreateAlert(&domain.AlertCreating{
				Type: domain.AlertRetardChantier, Severity: domain.SeverityCritique, Message: "m",
			}, sec)
			Expect(err).To(BeNil())

			found, err := alert.QueryAlerts(&domain.AlertQuery{}, sec)
			Expect(err).To(BeNil())
			Expect(len(found)).To(Equal(1))
			Expect(found[0].ID).To(Equal(created.ID))
		})
	})

	Describe("QueryAlerts and MarkAlert", func() {
		It("should filter unread alerts by severity", func() {
			a1, err := alert.CreateAlert(&domain.AlertCreating{
				Type: domain.AlertFinContrat, Severity: domain.SeverityAttention,
				Message: "Fin de contrat de Karim Benali dans 14 jours", EmployeeID: 102,
			}, sec)
			Expect(err).To(BeNil())
			_, err = alert.CreateAlert(&domain.AlertCreating{
				Type: domain.AlertDocumentExpire, Severity: domain.SeverityInfo, Message: "m2",
			}, sec)
			Expect(err).To(BeNil())

			found, err := alert.QueryAlerts(&domain.AlertQuery{Severity: domain.SeverityAttention}, sec)
			Expect(err).To(BeNil())
			Expect(len(found)).To(Equal(1))
			Expect(found[0].Type).To(Equal(domain.AlertFinContrat))

			Expect(alert.MarkAlert(a1.ID, true, sec)).To(BeNil())
			found, err = alert.QueryAlerts(&domain.AlertQuery{Unread: true}, sec)
			Expect(err).To(BeNil())
			Expect(len(found)).To(Equal(1))
			Expect(found[0].Type).To(Equal(domain.AlertDocumentExpire))

			Expect(alert.MarkAlert(a1.ID, false, sec)).To(BeNil())
			found, err = alert.QueryAlerts(&domain.AlertQuery{Unread: true}, sec)
			Expect(err).To(BeNil())
			Expect(len(found)).To(Equal(2))
		})
	})

	Describe("DeleteAlert", func() {
		It("should delete and be idempotent", func() {
			created, err := alert.CreateAlert(&domain.AlertCreating{
				Type: domain.AlertAutre, Severity: domain.SeverityInfo, Message: "m",
			}, sec)
			Expect(err).To(BeNil())

			Expect(alert.DeleteAlert(created.ID, sec)).To(BeNil())
			Expect(alert.DeleteAlert(created.ID, sec)).To(BeNil())

			found, err := alert.QueryAlerts(&domain.AlertQuery{}, sec)
			Expect(err).To(BeNil())
			Expect(len(found)).To(BeZero())
		})

		It("should be forbidden for common users", func() {
			common := testinfra.BuildSession(2, session.RoleCommon)
			Expect(alert.DeleteAlert(1, common)).To(Equal(bizerror.ErrForbidden))
		})
	})
})
