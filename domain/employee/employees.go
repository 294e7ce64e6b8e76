package employee

import (
	"errors"
	"io"
	"time"

	"batiplan/bizerror"
	"batiplan/client/s3"
	"batiplan/domain"
	"batiplan/event"
	"batiplan/idgen"
	"batiplan/persistence"
	"batiplan/session"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	employeeIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	QueryEmployeesFunc = QueryEmployees
	DetailEmployeeFunc = DetailEmployee
	CreateEmployeeFunc = CreateEmployee
	UpdateEmployeeFunc = UpdateEmployee
	DeleteEmployeeFunc = DeleteEmployee
)

func QueryEmployees(query *domain.EmployeeQuery, sec *session.Session) ([]domain.Employee, error) {
	var employees []domain.Employee
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)

	q := db.Model(&domain.Employee{})
	if query.Name != "" {
		q = q.Where("first_name like ? OR last_name like ?", "%"+query.Name+"%", "%"+query.Name+"%")
	}
	if query.Status != "" {
		q = q.Where("status = ?", query.Status)
	}
	if err := q.Order("last_name ASC, first_name ASC").Find(&employees).Error; err != nil {
		return nil, err
	}
	return employees, nil
}

func DetailEmployee(id types.ID, sec *session.Session) (*domain.Employee, error) {
	employee := domain.Employee{}
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	if err := db.Where(&domain.Employee{ID: id}).First(&employee).Error; err != nil {
		return nil, err
	}
	return &employee, nil
}

func CreateEmployee(c *domain.EmployeeCreating, sec *session.Session) (*domain.Employee, error) {
	if !sec.CanManagePlanning() {
		return nil, bizerror.ErrForbidden
	}

	status := c.Status
	if status == "" {
		status = domain.EmployeeDisponible
	}
	employee := domain.Employee{
		ID:        idgen.NextID(employeeIdWorker),
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Poste:     c.Poste,

		ContractType:  c.ContractType,
		Status:        status,
		AvailableFrom: c.AvailableFrom,

		Phone: c.Phone,
		Email: c.Email,

		CreateTime: time.Now(),
	}

	var ev *event.EventRecord
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	err1 := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&employee).Error; err != nil {
			return err
		}
		var err error
		ev, err = event.CreateEvent("employee", employee.ID, employee.DisplayName(),
			event.EventCategoryCreated, nil, &sec.Identity, types.CurrentTimestamp(), tx)
		return err
	})
	if err1 != nil {
		return nil, err1
	}

	if event.InvokeHandlersFunc != nil {
		event.InvokeHandlersFunc(ev)
	}
	return &employee, nil
}

func UpdateEmployee(id types.ID, u *domain.EmployeeUpdating, sec *session.Session) (*domain.Employee, error) {
	if !sec.CanManagePlanning() {
		return nil, bizerror.ErrForbidden
	}

	var updated domain.Employee
	var ev *event.EventRecord
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	err1 := db.Transaction(func(tx *gorm.DB) error {
		origin := domain.Employee{}
		if err := tx.Where(&domain.Employee{ID: id}).First(&origin).Error; err != nil {
			return err
		}

		changes := map[string]interface{}{}
		props := []event.UpdatedProperty{}
		if u.FirstName != "" && u.FirstName != origin.FirstName {
			changes["first_name"] = u.FirstName
			props = append(props, updatedProperty("FirstName", origin.FirstName, u.FirstName))
		}
		if u.LastName != "" && u.LastName != origin.LastName {
			changes["last_name"] = u.LastName
			props = append(props, updatedProperty("LastName", origin.LastName, u.LastName))
		}
		if u.Poste != "" && u.Poste != origin.Poste {
			changes["poste"] = u.Poste
			props = append(props, updatedProperty("Poste", origin.Poste, u.Poste))
		}
		if u.ContractType != "" && u.ContractType != origin.ContractType {
			changes["contract_type"] = u.ContractType
			props = append(props, updatedProperty("ContractType", string(origin.ContractType), string(u.ContractType)))
		}
		if u.Status != "" && u.Status != origin.Status {
			changes["status"] = u.Status
			props = append(props, updatedProperty("Status", string(origin.Status), string(u.Status)))
		}
		if u.AvailableFrom != nil {
			changes["available_from"] = u.AvailableFrom
			props = append(props, updatedProperty("AvailableFrom", "", u.AvailableFrom.Format("2006-01-02")))
		}
		if u.Phone != "" && u.Phone != origin.Phone {
			changes["phone"] = u.Phone
			props = append(props, updatedProperty("Phone", origin.Phone, u.Phone))
		}
		if u.Email != "" && u.Email != origin.Email {
			changes["email"] = u.Email
			props = append(props, updatedProperty("Email", origin.Email, u.Email))
		}
		if len(changes) == 0 {
			updated = origin
			return nil
		}

		if err := tx.Model(&domain.Employee{}).Where(&domain.Employee{ID: id}).Update(changes).Error; err != nil {
			return err
		}

		var err error
		ev, err = event.CreateEvent("employee", id, origin.DisplayName(), event.EventCategoryPropertyUpdated,
			props, &sec.Identity, types.CurrentTimestamp(), tx)
		if err != nil {
			return err
		}

		return tx.Where(&domain.Employee{ID: id}).First(&updated).Error
	})
	if err1 != nil {
		return nil, err1
	}

	if ev != nil && event.InvokeHandlersFunc != nil {
		event.InvokeHandlersFunc(ev)
	}
	return &updated, nil
}

func DeleteEmployee(id types.ID, sec *session.Session) error {
	if !sec.CanManagePlanning() {
		return bizerror.ErrForbidden
	}

	var ev *event.EventRecord
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	err1 := db.Transaction(func(tx *gorm.DB) error {
		employee := domain.Employee{}
		err := tx.Where(&domain.Employee{ID: id}).First(&employee).Error
		if err == nil {
			ev, err = event.CreateEvent("employee", id, employee.DisplayName(), event.EventCategoryDeleted,
				nil, &sec.Identity, types.CurrentTimestamp(), tx)
			if err != nil {
				return err
			}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err := tx.Delete(domain.Assignment{}, "employee_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(domain.Employee{}, "id = ?", id).Error
	})
	if err1 != nil {
		return err1
	}

	if ev != nil && event.InvokeHandlersFunc != nil {
		event.InvokeHandlersFunc(ev)
	}
	return nil
}

func DetailPhoto(id types.ID, sec *session.Session) (io.ReadCloser, error) {
	r, err := s3.GetObjectFunc("photos/"+id.String()+".png", sec)
	if err != nil {
		if serErr, ok := err.(oss.ServiceError); ok && serErr.Code == "NoSuchKey" {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return r, nil
}

func UploadPhoto(id types.ID, r io.Reader, sec *session.Session) error {
	if !sec.CanManagePlanning() && id != sec.Identity.ID {
		return bizerror.ErrForbidden
	}

	key := "photos/" + id.String() + ".png"
	if err := s3.PutObjectFunc(key, r, sec); err != nil {
		return err
	}
	db := persistence.ActiveDataSourceManager.GormDB(sec.Context)
	return db.Model(&domain.Employee{}).Where(&domain.Employee{ID: id}).Update("photo_key", key).Error
}

func updatedProperty(name, oldValue, newValue string) event.UpdatedProperty {
	return event.UpdatedProperty{PropertyName: name, PropertyDesc: name,
		OldValue: oldValue, OldValueDesc: oldValue, NewValue: newValue, NewValueDesc: newValue}
}
