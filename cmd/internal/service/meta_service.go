package service

import (
	"sync/atomic"
	"time"

	"setores/cmd/internal/contract"
	"setores/cmd/internal/domain/directory"
	"setores/cmd/internal/infrastructure/overrides"
	"setores/cmd/internal/utils"
)

type PersistStatusProvider interface {
	Status() overrides.Status
}

type MetaConfig struct {
	Version      string
	Env          string
	ReleaseNotes string
	ChangeLog    bool
}

type DefaultMetaService struct {
	Store     *directory.Store
	Persister PersistStatusProvider
	Config    MetaConfig
	StartedAt time.Time

	ready atomic.Bool
}

func NewMetaService(store *directory.Store, persister PersistStatusProvider, cfg MetaConfig) *DefaultMetaService {
	return &DefaultMetaService{
		Store:     store,
		Persister: persister,
		Config:    cfg,
		StartedAt: time.Now(),
	}
}

// MarkReady is called once the initial load finished.
func (m *DefaultMetaService) MarkReady() {
	m.ready.Store(true)
}

func (m *DefaultMetaService) Version() *contract.VersionResponse {
	return &contract.VersionResponse{
		Version:         m.Config.Version,
		Env:             m.Config.Env,
		ServerStartedAt: utils.ISOTimestamp(m.StartedAt),
		TotalSetores:    m.Store.Len(),
		ReleaseNotes:    m.Config.ReleaseNotes,
	}
}

func (m *DefaultMetaService) Ready() *contract.ReadyResponse {
	return &contract.ReadyResponse{
		Ready:   m.ready.Load(),
		Setores: m.Store.Len(),
	}
}

func (m *DefaultMetaService) PersistStatus() *contract.PersistStatusResponse {
	return &contract.PersistStatusResponse{
		Status:    m.Persister.Status(),
		ChangeLog: m.Config.ChangeLog,
		Setores:   m.Store.Len(),
	}
}
