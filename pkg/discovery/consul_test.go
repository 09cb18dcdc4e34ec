package discovery

import (
	"testing"

	"orientation-service/internal/config"
)

func TestRegistration(t *testing.T) {
	cfg := &config.Config{
		Port:           "8080",
		ServiceName:    "orientation-service",
		ServiceID:      "orientation-service-1",
		ServiceAddress: "orientation",
	}
	reg := registration(cfg)

	if reg.ID != "orientation-service-1" || reg.Name != "orientation-service" {
		t.Errorf("Unexpected identity %s/%s", reg.ID, reg.Name)
	}
	if reg.Port != 8080 {
		t.Errorf("Expected port 8080, got %d", reg.Port)
	}
	if reg.Check == nil || reg.Check.HTTP != "http://orientation:8080/health" {
		t.Errorf("Unexpected health check %+v", reg.Check)
	}
}

func TestRegistryDisabledWithoutAddress(t *testing.T) {
	registry, err := NewServiceRegistry(&config.Config{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if registry != nil {
		t.Errorf("Expected no registry without a Consul address")
	}
}
