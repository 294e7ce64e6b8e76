package alert

import (
	"time"

	"batiplan/bizerror"
	"batiplan/domain"
	"batiplan/idgen"
	"batiplan/notify"
	"batiplan/persistence"
	"batiplan/session"

	"github.com/fundwit/go-commons/types"
	"github.com/sirupsen/logrus"
	"github.com/sony/sonyflake"
)

var (
	alertIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	QueryAlertsFunc = QueryAlerts
	CreateAlertFunc = CreateAlert
	MarkAlertFunc   = MarkAlert
	DeleteAlertFunc = DeleteAlert
)

func QueryAlerts(query *domain.AlertQuery, sec *session.Session) ([]domain.Alert, error) {
	var alerts []domain.Alert
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)

	q := db.Model(&domain.Alert{})
	if query.Severity != "" {
		q = q.Where("severity = ?", query.Severity)
	}
	if query.Unread {
		q = q.Where("`read` = ?", false)
	}
	if err := q.Order("create_time DESC").Find(&alerts).Error; err != nil {
		return nil, err
	}
	return alerts, nil
}

func CreateAlert(c *domain.AlertCreating, sec *session.Session) (*domain.Alert, error) {
	if !sec.CanManagePlanning() {
		return nil, bizerror.ErrForbidden
	}

	alert := domain.Alert{
		ID:       idgen.NextID(alertIdWorker),
		Type:     c.Type,
		Severity: c.Severity,
		Message:  c.Message,

		ChantierID: c.ChantierID,
		EmployeeID: c.EmployeeID,

		CreateTime: time.Now(),
	}

	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	if err := db.Create(&alert).Error; err != nil {
		return nil, err
	}

	// critical alerts go out by mail, a broker outage must not fail the create
	if alert.Severity == domain.SeverityCritique {
		if err := notify.PublishAlertFunc(&alert); err != nil {
			logrus.Error("failed to publish critical alert ", alert.ID, ": ", err)
		}
	}
	return &alert, nil
}

func MarkAlert(id types.ID, read bool, sec *session.Session) error {
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	return db.Model(&domain.Alert{}).Where(&domain.Alert{ID: id}).Update("read", read).Error
}

func DeleteAlert(id types.ID, sec *session.Session) error {
	if !sec.CanManagePlanning() {
		return bizerror.ErrForbidden
	}

	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	return db.Delete(domain.Alert{}, "id = ?", id).Error
}
