package extension

import (
	"sort"
	"sync"

	"github.com/viant/vaultflow/model/types"
)

// Actions is a registry of side-effect services keyed by service name.
type Actions struct {
	services map[string]types.Service
	mux      sync.RWMutex
}

// Lookup returns a service by name
func (s *Actions) Lookup(name string) types.Service {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return s.services[name]
}

// Register registers a service, replacing any service with the same name.
func (s *Actions) Register(service types.Service) {
	if service == nil {
		return
	}
	s.mux.Lock()
	defer s.mux.Unlock()
	s.services[service.Name()] = service
}

// Names returns registered service names in sorted order.
func (s *Actions) Names() []string {
	s.mux.RLock()
	defer s.mux.RUnlock()
	ret := make([]string, 0, len(s.services))
	for name := range s.services {
		ret = append(ret, name)
	}
	sort.Strings(ret)
	return ret
}

// Method resolves the executable of service.method.
func (s *Actions) Method(service, method string) (types.Executable, error) {
	svc := s.Lookup(service)
	if svc == nil {
		return nil, types.NewServiceNotFoundError(service)
	}
	return svc.Method(method)
}

// NewActions creates a registry with the supplied services.
func NewActions(services ...types.Service) *Actions {
	ret := &Actions{services: make(map[string]types.Service)}
	for _, service := range services {
		ret.Register(service)
	}
	return ret
}
