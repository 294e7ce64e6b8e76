package indices

import (
	"context"
	"fmt"
	"sync"

	"batiplan/bizerror"
	"batiplan/client/es"
	"batiplan/domain"
	"batiplan/domain/chantier"
	"batiplan/domain/employee"
	"batiplan/event"
	"batiplan/session"

	"github.com/sirupsen/logrus"
)

var (
	EmployeeIndexEventHandlerName = "employeeIndexer"
	ChantierIndexEventHandlerName = "chantierIndexer"

	indexRobot = &session.Session{
		Identity: session.Identity{ID: 10, Name: "index-robot"},
		Perms:    session.Permissions{session.RoleAdmin},
		Context:  context.Background(),
	}

	lock    sync.Mutex
	running bool

	IndicesFullSyncFunc    = IndicesFullSync
	ScheduleNewSyncRunFunc = ScheduleNewSyncRun
)

// ScheduleNewSyncRun starts a full reindex in the background. It returns
// false without error when a run is already in progress.
func ScheduleNewSyncRun(sec *session.Session) (bool, error) {
	if !sec.Perms.HasRole(session.RoleAdmin) {
		return false, bizerror.ErrForbidden
	}

	lock.Lock()
	if running {
		lock.Unlock()
		return false, nil
	}
	running = true
	lock.Unlock()

	waitRunning := sync.WaitGroup{}
	waitRunning.Add(1)
	go func() {
		waitRunning.Done()
		defer func() {
			lock.Lock()
			running = false
			lock.Unlock()
		}()
		IndicesFullSyncFunc()
	}()
	waitRunning.Wait()
	return true, nil
}

func IndicesFullSync() (err error) {
	defer func() {
		if ret := recover(); ret != nil {
			e, ok := ret.(error)
			if ok {
				err = e
			} else {
				err = fmt.Errorf("error on indices full sync: %v", ret)
			}
		}
	}()

	employees, err := employee.QueryEmployeesFunc(&domain.EmployeeQuery{}, indexRobot)
	if err != nil {
		logrus.Warnf("indices full sync: error on retrieve employees: %v", err)
	} else if err := IndexEmployees(employees, indexRobot); err != nil {
		logrus.Warnf("indices full sync: error on index employees: %v", err)
	}

	chantiers, err := chantier.QueryChantiersFunc(&domain.ChantierQuery{}, indexRobot)
	if err != nil {
		logrus.Warnf("indices full sync: error on retrieve chantiers: %v", err)
	} else if err := IndexChantiers(chantiers, indexRobot); err != nil {
		logrus.Warnf("indices full sync: error on index chantiers: %v", err)
	}
	return nil
}

func IndexEmployeeEventHandle(e *event.EventRecord) *event.EventHandleResult {
	if e.SourceType != "employee" {
		return nil
	}

	if e.EventCategory == event.EventCategoryDeleted {
		if err := es.DeleteDocumentByIdFunc(EmployeeIndexName, e.Event.SourceId, indexRobot); err != nil {
			return &event.EventHandleResult{
				Message:           fmt.Sprintf("delete employee index %d, %v", e.Event.SourceId, err),
				HandlerIdentifier: EmployeeIndexEventHandlerName,
			}
		}
		return &event.EventHandleResult{Success: true, HandlerIdentifier: EmployeeIndexEventHandlerName}
	}

	record, err := employee.DetailEmployeeFunc(e.Event.SourceId, indexRobot)
	if err != nil {
		return &event.EventHandleResult{
			Message:           fmt.Sprintf("detail employee when index employee %d, %v", e.Event.SourceId, err),
			HandlerIdentifier: EmployeeIndexEventHandlerName,
		}
	}
	if err := IndexEmployees([]domain.Employee{*record}, indexRobot); err != nil {
		return &event.EventHandleResult{
			Message:           fmt.Sprintf("index employee %d, %v", e.Event.SourceId, err),
			HandlerIdentifier: EmployeeIndexEventHandlerName,
		}
	}
	return &event.EventHandleResult{Success: true, HandlerIdentifier: EmployeeIndexEventHandlerName}
}

func IndexChantierEventHandle(e *event.EventRecord) *event.EventHandleResult {
	if e.SourceType != "chantier" {
		return nil
	}

	if e.EventCategory == event.EventCategoryDeleted {
		if err := es.DeleteDocumentByIdFunc(ChantierIndexName, e.Event.SourceId, indexRobot); err != nil {
			return &event.EventHandleResult{
				Message:           fmt.Sprintf("delete chantier index %d, %v", e.Event.SourceId, err),
				HandlerIdentifier: ChantierIndexEventHandlerName,
			}
		}
		return &event.EventHandleResult{Success: true, HandlerIdentifier: ChantierIndexEventHandlerName}
	}

	record, err := chantier.DetailChantierFunc(e.Event.SourceId, indexRobot)
	if err != nil {
		return &event.EventHandleResult{
			Message:           fmt.Sprintf("detail chantier when index chantier %d, %v", e.Event.SourceId, err),
			HandlerIdentifier: ChantierIndexEventHandlerName,
		}
	}
	if err := IndexChantiers([]domain.Chantier{*record}, indexRobot); err != nil {
		return &event.EventHandleResult{
			Message:           fmt.Sprintf("index chantier %d, %v", e.Event.SourceId, err),
			HandlerIdentifier: ChantierIndexEventHandlerName,
		}
	}
	return &event.EventHandleResult{Success: true, HandlerIdentifier: ChantierIndexEventHandlerName}
}
