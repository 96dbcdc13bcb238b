package store

import (
	"context"

	"github.com/hr95savage/screenshotter/internal/types"
)

//go:generate mockgen -destination=../../mocks/mock_status_store.go -package=mocks github.com/hr95savage/screenshotter/internal/store StatusStore

// StatusStore persists run status for external pollers.
type StatusStore interface {
	SetStatus(ctx context.Context, status types.RunStatus) error
	GetStatus(ctx context.Context, runID string) (types.RunStatus, bool, error)
}
