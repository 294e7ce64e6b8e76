package employee_test

import (
	"testing"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

func TestBatiplanEmployees(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Employees Suite")
}
