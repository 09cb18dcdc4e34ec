package discovery

import (
	"fmt"
	"log"
	"strconv"

	"orientation-service/internal/config"

	"github.com/hashicorp/consul/api"
)

type ServiceRegistry struct {
	client *api.Client
	config *config.Config
}

// NewServiceRegistry returns nil without error when no Consul address is
// configured, so callers can treat discovery as optional.
func NewServiceRegistry(cfg *config.Config) (*ServiceRegistry, error) {
	if cfg.ConsulAddress == "" {
		return nil, nil
	}
	consulConfig := api.DefaultConfig()
	consulConfig.Address = cfg.ConsulAddress

	client, err := api.NewClient(consulConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Consul client: %v", err)
	}
	return &ServiceRegistry{client: client, config: cfg}, nil
}

func (sr *ServiceRegistry) Register() error {
	if err := sr.client.Agent().ServiceRegister(registration(sr.config)); err != nil {
		return fmt.Errorf("failed to register service with Consul: %v", err)
	}
	log.Printf("Registered %s with Consul as %s", sr.config.ServiceName, sr.config.ServiceID)
	return nil
}

// Deregister removes the service from Consul
func (sr *ServiceRegistry) Deregister() error {
	return sr.client.Agent().ServiceDeregister(sr.config.ServiceID)
}

func registration(cfg *config.Config) *api.AgentServiceRegistration {
	port, _ := strconv.Atoi(cfg.Port)
	return &api.AgentServiceRegistration{
		ID:      cfg.ServiceID,
		Name:    cfg.ServiceName,
		Port:    port,
		Address: cfg.ServiceAddress,
		Check: &api.AgentServiceCheck{
			HTTP:                           fmt.Sprintf("http://%s:%s/health", cfg.ServiceAddress, cfg.Port),
			Interval:                       "10s",
			Timeout:                        "5s",
			DeregisterCriticalServiceAfter: "1m",
		},
		Tags: []string{"orientation", "quiz", "recommendation"},
	}
}
