package chantier

import (
	"errors"
	"time"

	"batiplan/bizerror"
	"batiplan/domain"
	"batiplan/event"
	"batiplan/idgen"
	"batiplan/persistence"
	"batiplan/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	chantierIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	QueryChantiersFunc = QueryChantiers
	DetailChantierFunc = DetailChantier
	CreateChantierFunc = CreateChantier
	UpdateChantierFunc = UpdateChantier
	DeleteChantierFunc = DeleteChantier
)

func QueryChantiers(query *domain.ChantierQuery, sec *session.Session) ([]domain.Chantier, error) {
	var chantiers []domain.Chantier
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)

	q := db.Model(&domain.Chantier{})
	if query.Name != "" {
		q = q.Where("name like ?", "%"+query.Name+"%")
	}
	if query.City != "" {
		q = q.Where("city = ?", query.City)
	}
	if query.Schedulable {
		q = q.Where("status in (?)", domain.SchedulableChantierStatuses)
	} else if len(query.Statuses) > 0 {
		q = q.Where("status in (?)", query.Statuses)
	}
	if err := q.Order("name ASC").Find(&chantiers).Error; err != nil {
		return nil, err
	}
	return chantiers, nil
}

func DetailChantier(id types.ID, sec *session.Session) (*domain.Chantier, error) {
	chantier := domain.Chantier{}
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	if err := db.Where(&domain.Chantier{ID: id}).First(&chantier).Error; err != nil {
		return nil, err
	}
	return &chantier, nil
}

func CreateChantier(c *domain.ChantierCreating, sec *session.Session) (*domain.Chantier, error) {
	if !sec.CanManagePlanning() {
		return nil, bizerror.ErrForbidden
	}

	status := c.Status
	if status == "" {
		status = domain.ChantierBrouillon
	}
	chantier := domain.Chantier{
		ID:      idgen.NextID(chantierIdWorker),
		Name:    c.Name,
		City:    c.City,
		Address: c.Address,
		Client:  c.Client,

		Status:    status,
		StartDate: c.StartDate,
		EndDate:   c.EndDate,

		CreateTime: time.Now(),
		Creator:    sec.Identity.ID,
	}

	var ev *event.EventRecord
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	err1 := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&chantier).Error; err != nil {
			return err
		}
		var err error
		ev, err = event.CreateEvent("chantier", chantier.ID, chantier.Name,
			event.EventCategoryCreated, nil, &sec.Identity, types.CurrentTimestamp(), tx)
		return err
	})
	if err1 != nil {
		return nil, err1
	}

	if event.InvokeHandlersFunc != nil {
		event.InvokeHandlersFunc(ev)
	}
	return &chantier, nil
}

func UpdateChantier(id types.ID, u *domain.ChantierUpdating, sec *session.Session) (*domain.Chantier, error) {
	if !sec.CanManagePlanning() {
		return nil, bizerror.ErrForbidden
	}

	var updated domain.Chantier
	var ev *event.EventRecord
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	err1 := db.Transaction(func(tx *gorm.DB) error {
		origin := domain.Chantier{}
		if err := tx.Where(&domain.Chantier{ID: id}).First(&origin).Error; err != nil {
			return err
		}

		changes := map[string]interface{}{}
		props := []event.UpdatedProperty{}
		appendChange := func(column, name, oldValue, newValue string, value interface{}) {
			changes[column] = value
			props = append(props, event.UpdatedProperty{PropertyName: name, PropertyDesc: name,
				OldValue: oldValue, OldValueDesc: oldValue, NewValue: newValue, NewValueDesc: newValue})
		}
		if u.Name != "" && u.Name != origin.Name {
			appendChange("name", "Name", origin.Name, u.Name, u.Name)
		}
		if u.City != "" && u.City != origin.City {
			appendChange("city", "City", origin.City, u.City, u.City)
		}
		if u.Address != "" && u.Address != origin.Address {
			appendChange("address", "Address", origin.Address, u.Address, u.Address)
		}
		if u.Client != "" && u.Client != origin.Client {
			appendChange("client", "Client", origin.Client, u.Client, u.Client)
		}
		if u.Status != "" && u.Status != origin.Status {
			appendChange("status", "Status", string(origin.Status), string(u.Status), u.Status)
		}
		if u.StartDate != nil {
			appendChange("start_date", "StartDate", "", u.StartDate.Format("2006-01-02"), u.StartDate)
		}
		if u.EndDate != nil {
			appendChange("end_date", "EndDate", "", u.EndDate.Format("2006-01-02"), u.EndDate)
		}
		if len(changes) == 0 {
			updated = origin
			return nil
		}

		if err := tx.Model(&domain.Chantier{}).Where(&domain.Chantier{ID: id}).Update(changes).Error; err != nil {
			return err
		}

		var err error
		ev, err = event.CreateEvent("chantier", id, origin.Name, event.EventCategoryPropertyUpdated,
			props, &sec.Identity, types.CurrentTimestamp(), tx)
		if err != nil {
			return err
		}
		return tx.Where(&domain.Chantier{ID: id}).First(&updated).Error
	})
	if err1 != nil {
		return nil, err1
	}

	if ev != nil && event.InvokeHandlersFunc != nil {
		event.InvokeHandlersFunc(ev)
	}
	return &updated, nil
}

func DeleteChantier(id types.ID, sec *session.Session) error {
	if !sec.CanManagePlanning() {
		return bizerror.ErrForbidden
	}

	var ev *event.EventRecord
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	err1 := db.Transaction(func(tx *gorm.DB) error {
		chantier := domain.Chantier{}
		err := tx.Where(&domain.Chantier{ID: id}).First(&chantier).Error
		if err == nil {
			ev, err = event.CreateEvent("chantier", id, chantier.Name, event.EventCategoryDeleted,
				nil, &sec.Identity, types.CurrentTimestamp(), tx)
			if err != nil {
				return err
			}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err := tx.Delete(domain.Assignment{}, "chantier_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(domain.Chantier{}, "id = ?", id).Error
	})
	if err1 != nil {
		return err1
	}

	if ev != nil && event.InvokeHandlersFunc != nil {
		event.InvokeHandlersFunc(ev)
	}
	return nil
}
