package indices

import (
	"fmt"

	"batiplan/client/es"
	"batiplan/domain"
	"batiplan/session"

	"github.com/fundwit/go-commons/types"
	"github.com/sirupsen/logrus"
)

var (
	EmployeeIndexName = "employees"
	ChantierIndexName = "chantiers"
)

type EmployeeDocument struct {
	domain.Employee
}

type ChantierDocument struct {
	domain.Chantier
}

type BatchActionError map[types.ID]error

func (e BatchActionError) Error() string {
	return fmt.Sprintf("%v", map[types.ID]error(e))
}

func IndexEmployees(employees []domain.Employee, s *session.Session) error {
	errs := BatchActionError{}
	for _, employee := range employees {
		doc := EmployeeDocument{Employee: employee}
		if err := es.IndexFunc(EmployeeIndexName, doc.ID, doc, s); err != nil {
			errs[doc.ID] = err
			logrus.Warnf("index employee %d %s %s\n", doc.ID, doc.DisplayName(), err)
		} else {
			logrus.Infof("index employee %d %s successfully\n", doc.ID, doc.DisplayName())
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func IndexChantiers(chantiers []domain.Chantier, s *session.Session) error {
	errs := BatchActionError{}
	for _, chantier := range chantiers {
		doc := ChantierDocument{Chantier: chantier}
		if err := es.IndexFunc(ChantierIndexName, doc.ID, doc, s); err != nil {
			errs[doc.ID] = err
			logrus.Warnf("index chantier %d %s %s\n", doc.ID, doc.Name, err)
		} else {
			logrus.Infof("index chantier %d %s successfully\n", doc.ID, doc.Name)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}
