package contract

import (
	"setores/cmd/internal/infrastructure/overrides"
)

type UnlockRequest struct {
	MasterPassword string `json:"master_password"`
}

type UnlockResponse struct {
	OK       bool  `json:"ok"`
	UnlockMs int64 `json:"unlock_ms"`
}

type AdminStatusResponse struct {
	Unlocked bool  `json:"unlocked"`
	UnlockMs int64 `json:"unlock_ms"`
	Disabled bool  `json:"disabled"`
}

type PersistStatusResponse struct {
	overrides.Status
	ChangeLog bool `json:"changeLog"`
	Setores   int  `json:"setores"`
}

type VersionResponse struct {
	Version         string `json:"version"`
	Env             string `json:"env"`
	ServerStartedAt string `json:"serverStartedAt"`
	TotalSetores    int    `json:"totalSetores"`
	ReleaseNotes    string `json:"releaseNotes"`
}

type HealthResponse struct {
	OK bool `json:"ok"`
}

type ReadyResponse struct {
	Ready   bool `json:"ready"`
	Setores int  `json:"setores"`
}
