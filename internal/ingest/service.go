package ingest

import (
	"sync/atomic"

	"datamart/internal/config"
	"datamart/internal/registry"
)

// Service owns the current registry and supports hot reload. Reload builds a
// complete fresh registry first and then swaps it in atomically; readers
// holding the old pointer keep a consistent view for as long as they need it.
type Service struct {
	cfg config.Config
	cur atomic.Pointer[registry.Registry]
}

// NewService runs an initial ingestion and returns the service.
func NewService(cfg config.Config) (*Service, error) {
	s := &Service{cfg: cfg}
	if _, err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Registry returns the current registry snapshot.
func (s *Service) Registry() *registry.Registry {
	return s.cur.Load()
}

// Reload runs a fresh ingestion pass (build-then-swap) and reports whether
// any dataset was loaded.
func (s *Service) Reload() (bool, error) {
	reg, err := Run(s.cfg)
	if err != nil {
		return false, err
	}
	s.cur.Store(reg)
	return reg.Loaded(), nil
}
