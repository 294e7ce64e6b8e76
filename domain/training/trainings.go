package training

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
	trainingIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	QueryTrainingsFunc = QueryTrainings
	DetailTrainingFunc = DetailTraining
	CreateTrainingFunc = CreateTraining
	UpdateTrainingFunc = UpdateTraining
	DeleteTrainingFunc = DeleteTraining
	AddAttendeeFunc    = AddAttendee
	RemoveAttendeeFunc = RemoveAttendee
)

func QueryTrainings(sec *session.Session) ([]domain.TrainingSession, error) {
	var trainings []domain.TrainingSession
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	if err := db.Order("start_date ASC").Find(&trainings).Error; err != nil {
		return nil, err
	}
	return trainings, nil
}

func DetailTraining(id types.ID, sec *session.Session) (*domain.TrainingDetail, error) {
	detail := domain.TrainingDetail{}
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	if err := db.Where(&domain.TrainingSession{ID: id}).First(&detail.TrainingSession).Error; err != nil {
		return nil, err
	}

	var attendees []domain.Employee
	err := db.Model(&domain.Employee{}).
		Joins("JOIN training_attendees ON training_attendees.employee_id = employees.id").
		Where("training_attendees.training_id = ?", id).
		Find(&attendees).Error
	if err != nil {
		return nil, err
	}
	detail.Attendees = attendees
	return &detail, nil
}

func CreateTraining(c *domain.TrainingCreating, sec *session.Session) (*domain.TrainingSession, error) {
	if !sec.CanManagePlanning() {
		return nil, bizerror.ErrForbidden
	}

	training := domain.TrainingSession{
		ID:        idgen.NextID(trainingIdWorker),
		Title:     c.Title,
		Organisme: c.Organisme,
		Location:  c.Location,
		Capacity:  c.Capacity,

		Status:    domain.TrainingPlanifiee,
		StartDate: c.StartDate,
		EndDate:   c.EndDate,

		CreateTime: time.Now(),
	}

	var ev *event.EventRecord
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	err1 := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&training).Error; err != nil {
			return err
		}
		var err error
		ev, err = event.CreateEvent("training", training.ID, training.Title,
			event.EventCategoryCreated, nil, &sec.Identity, types.CurrentTimestamp(), tx)
		return err
	})
	if err1 != nil {
		return nil, err1
	}

	if event.InvokeHandlersFunc != nil {
		event.InvokeHandlersFunc(ev)
	}
	return &training, nil
}

func UpdateTraining(id types.ID, u *domain.TrainingUpdating, sec *session.Session) (*domain.TrainingSession, error) {
	if !sec.CanManagePlanning() {
		return nil, bizerror.ErrForbidden
	}

	var updated domain.TrainingSession
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	err1 := db.Transaction(func(tx *gorm.DB) error {
		origin := domain.TrainingSession{}
		if err := tx.Where(&domain.TrainingSession{ID: id}).First(&origin).Error; err != nil {
			return err
		}

		changes := map[string]interface{}{}
		if u.Title != "" && u.Title != origin.Title {
			changes["title"] = u.Title
		}
		if u.Organisme != "" && u.Organisme != origin.Organisme {
			changes["organisme"] = u.Organisme
		}
		if u.Location != "" && u.Location != origin.Location {
			changes["location"] = u.Location
		}
		if u.Capacity != nil {
			changes["capacity"] = *u.Capacity
		}
		if u.Status != "" && u.Status != origin.Status {
			changes["status"] = u.Status
		}
		if u.StartDate != nil {
			changes["start_date"] = *u.StartDate
		}
		if u.EndDate != nil {
			changes["end_date"] = *u.EndDate
		}
		if len(changes) == 0 {
			updated = origin
			return nil
		}

		if err := tx.Model(&domain.TrainingSession{}).Where(&domain.TrainingSession{ID: id}).Update(changes).Error; err != nil {
			return err
		}

		// a running session keeps its attendees flagged as in training,
		// completion or cancellation releases them
		if u.Status != "" && u.Status != origin.Status {
			if err := syncAttendeeStatuses(tx, id, u.Status); err != nil {
				return err
			}
		}

		return tx.Where(&domain.TrainingSession{ID: id}).First(&updated).Error
	})
	if err1 != nil {
		return nil, err1
	}
	return &updated, nil
}

func DeleteTraining(id types.ID, sec *session.Session) error {
	if !sec.CanManagePlanning() {
		return bizerror.ErrForbidden
	}

	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(domain.TrainingAttendee{}, "training_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(domain.TrainingSession{}, "id = ?", id).Error
	})
}

func AddAttendee(trainingId, employeeId types.ID, sec *session.Session) error {
	if !sec.CanManagePlanning() {
		return bizerror.ErrForbidden
	}

	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	return db.Transaction(func(tx *gorm.DB) error {
		training := domain.TrainingSession{}
		if err := tx.Where(&domain.TrainingSession{ID: trainingId}).First(&training).Error; err != nil {
			return err
		}
		if err := tx.Where(&domain.Employee{ID: employeeId}).First(&domain.Employee{}).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return bizerror.ErrEmployeeNotFound
			}
			return err
		}

		if training.Capacity > 0 {
			var count int
			if err := tx.Model(&domain.TrainingAttendee{}).Where("training_id = ?", trainingId).Count(&count).Error; err != nil {
				return err
			}
			if count >= training.Capacity {
				return bizerror.ErrTrainingFull
			}
		}

		attendee := domain.TrainingAttendee{TrainingID: trainingId, EmployeeID: employeeId, CreateTime: time.Now()}
		if err := tx.Create(&attendee).Error; err != nil {
			return err
		}

		if training.Status == domain.TrainingEnCours {
			return tx.Model(&domain.Employee{}).Where(&domain.Employee{ID: employeeId}).
				Update("status", domain.EmployeeEnFormation).Error
		}
		return nil
	})
}

func RemoveAttendee(trainingId, employeeId types.ID, sec *session.Session) error {
	if !sec.CanManagePlanning() {
		return bizerror.ErrForbidden
	}

	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	return db.Delete(domain.TrainingAttendee{}, "training_id = ? AND employee_id = ?", trainingId, employeeId).Error
}

func syncAttendeeStatuses(tx *gorm.DB, trainingId types.ID, status domain.TrainingStatus) error {
	var employeeStatus domain.EmployeeStatus
	switch status {
	case domain.TrainingEnCours:
		employeeStatus = domain.EmployeeEnFormation
	case domain.TrainingTerminee, domain.TrainingAnnulee:
		employeeStatus = domain.EmployeeDisponible
	default:
		return nil
	}

	var attendees []domain.TrainingAttendee
	if err := tx.Where("training_id = ?", trainingId).Find(&attendees).Error; err != nil {
		return err
	}
	for _, attendee := range attendees {
		if err := tx.Model(&domain.Employee{}).Where(&domain.Employee{ID: attendee.EmployeeID}).
			Update("status", employeeStatus).Error; err != nil {
			return err
		}
	}
	return nil
}
