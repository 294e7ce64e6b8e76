package search

import (
	"encoding/json"
	"fmt"
	"strings"

	"batiplan/client/es"
	"batiplan/domain"
	"batiplan/indices"
	"batiplan/session"
)

var (
	SearchEmployeesFunc = SearchEmployees
	SearchChantiersFunc = SearchChantiers
)

// DirectoryQuery is the free text search over the indexed directories.
type DirectoryQuery struct {
	Keyword  string                `form:"keyword"`
	Statuses []string              `form:"status"`
	Poste    string                `form:"poste"`
	Contract []domain.ContractType `form:"contract"`
}

func SearchEmployees(q DirectoryQuery, s *session.Session) ([]domain.Employee, error) {
	filters := make([]es.H, 0, 4)
	if q.Keyword != "" {
		filters = append(filters, es.H{"multi_match": es.H{
			"query":    q.Keyword,
			"fields":   []string{"firstName", "lastName", "poste"},
			"operator": "AND",
		}})
	}
	if q.Poste != "" {
		filters = append(filters, es.H{"match": es.H{"poste": es.H{"query": q.Poste, "operator": "AND"}}})
	}
	if len(q.Statuses) > 0 {
		filters = append(filters, es.H{"terms": es.H{"status": q.Statuses}})
	}
	if len(q.Contract) > 0 {
		filters = append(filters, es.H{"terms": es.H{"contractType": q.Contract}})
	}

	sorts := []es.H{{"lastName.keyword": es.H{"order": "asc"}}}
	root := es.H{"bool": es.H{"filter": filters}}
	r, err := es.SearchFunc(indices.EmployeeIndexName, es.H{"size": 10000, "query": root, "sort": sorts}, s)
	if err != nil {
		return nil, err
	}

	employees := make([]domain.Employee, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		record := domain.Employee{}
		if err := json.NewDecoder(strings.NewReader(string(hit.Source))).Decode(&record); err != nil {
			return nil, fmt.Errorf(string(hit.Source))
		}
		employees = append(employees, record)
	}
	return employees, nil
}

func SearchChantiers(q DirectoryQuery, s *session.Session) ([]domain.Chantier, error) {
	filters := make([]es.H, 0, 2)
	if q.Keyword != "" {
		filters = append(filters, es.H{"multi_match": es.H{
			"query":    q.Keyword,
			"fields":   []string{"name", "city", "address"},
			"operator": "AND",
		}})
	}
	if len(q.Statuses) > 0 {
		filters = append(filters, es.H{"terms": es.H{"status": q.Statuses}})
	}

	sorts := []es.H{{"name.keyword": es.H{"order": "asc"}}}
	root := es.H{"bool": es.H{"filter": filters}}
	r, err := es.SearchFunc(indices.ChantierIndexName, es.H{"size": 10000, "query": root, "sort": sorts}, s)
	if err != nil {
		return nil, err
	}

	chantiers := make([]domain.Chantier, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		record := domain.Chantier{}
		if err := json.NewDecoder(strings.NewReader(string(hit.Source))).Decode(&record); err != nil {
			return nil, fmt.Errorf(string(hit.Source))
		}
		chantiers = append(chantiers, record)
	}
	return chantiers, nil
}
