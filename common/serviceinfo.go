package common

import (
	"os"
	"sync"

	"github.com/google/uuid"
)

var (
	serviceInstance     string
	serviceInstanceOnce sync.Once
)

func GetServiceName() string {
	name := os.Getenv("SERVICE_NAME")
	if name == "" {
		name = "batiplan"
	}
	return name
}

// GetServiceInstance returns a stable identifier of this process,
// hostname when available, a random uuid otherwise.
func GetServiceInstance() string {
	serviceInstanceOnce.Do(func() {
		hostname, err := os.Hostname()
		if err != nil || hostname == "" {
			hostname = uuid.New().String()
		}
		serviceInstance = hostname
	})
	return serviceInstance
}
