package service

import (
	"setores/cmd/internal/admin"
	"setores/cmd/internal/contract"
	"setores/cmd/internal/infrastructure/metrics"
	"setores/cmd/internal/utils/apierror"

	"github.com/labstack/gommon/log"
)

// UnlockRecorder counts unlock attempts by result.
type UnlockRecorder interface {
	UnlockAttempt(result string)
}

type DefaultAdminService struct {
	Gate    *admin.Gate
	Limiter *admin.AttemptLimiter
	Metrics UnlockRecorder
}

func NewAdminService(gate *admin.Gate, limiter *admin.AttemptLimiter, metrics UnlockRecorder) *DefaultAdminService {
	return &DefaultAdminService{
		Gate:    gate,
		Limiter: limiter,
		Metrics: metrics,
	}
}

// Allowed is the check every admin-only request goes through.
func (a *DefaultAdminService) Allowed(credential string) bool {
	return a.Gate.Allowed(credential)
}

// Unlock counts the attempt against source before looking at the credential,
// so a flood of guesses is refused even while the window is open.
func (a *DefaultAdminService) Unlock(source, credential string) (*contract.UnlockResponse, apierror.ErrorResponse) {
	if !a.Limiter.Allow(source) {
		a.observe(metrics.UnlockLimited)
		log.Warnf("unlock attempts from %s over the limit", source)
		return nil, apierror.TooManyAttemptsError
	}

	if !a.Gate.Allowed(credential) {
		a.observe(metrics.UnlockDenied)
		return nil, apierror.MasterPasswordError
	}

	a.observe(metrics.UnlockOK)
	return &contract.UnlockResponse{OK: true, UnlockMs: a.Gate.Remaining().Milliseconds()}, nil
}

func (a *DefaultAdminService) Status() *contract.AdminStatusResponse {
	remaining := a.Gate.Remaining()
	return &contract.AdminStatusResponse{
		Unlocked: remaining > 0,
		UnlockMs: remaining.Milliseconds(),
		Disabled: a.Gate.Disabled(),
	}
}

func (a *DefaultAdminService) Lock() {
	a.Gate.Lock()
}

func (a *DefaultAdminService) observe(result string) {
	if a.Metrics != nil {
		a.Metrics.UnlockAttempt(result)
	}
}
