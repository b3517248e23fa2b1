package service

import (
	"errors"

	"github.com/spec-kit/job-portal/internal/repository"
	apperrors "github.com/spec-kit/job-portal/pkg/util"
)

// mapStoreError converts repository sentinels into response-ready errors.
func mapStoreError(err error, resource string, details map[string]any) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NewNotFound(resource, details)
	case errors.Is(err, repository.ErrVersionConflict):
		return apperrors.NewConflict(resource+" was modified concurrently; reload and retry", details)
	case errors.Is(err, repository.ErrDuplicate):
		return apperrors.NewConflict(resource+" already exists", details)
	case errors.Is(err, repository.ErrUnavailable):
		return apperrors.NewUnavailable(err)
	}
	return apperrors.MapError(err)
}

func jobDetails(jobID string) map[string]any {
	return map[string]any{"job_id": jobID}
}
