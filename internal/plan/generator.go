package plan

import (
	"github.com/felixgeelhaar/taskplan/internal/errors"
	"github.com/felixgeelhaar/taskplan/internal/scheduler"
)

// Schedule validates req, runs it through svc and returns the wire response.
// Validation failures and scheduler errors come back as coded errors.
func Schedule(svc *scheduler.Service, req *ScheduleRequest) (*ScheduleResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	result, err := svc.Generate(req.ToScheduler())
	if err != nil {
		return nil, errors.FromScheduler(err)
	}

	return FromResult(result), nil
}

// CheckDependencies runs a dependency-only check on req.
// Only an empty task list is rejected up front; cycles are reported in the response.
func CheckDependencies(svc *scheduler.Service, req *ScheduleRequest) (*ValidationResponse, error) {
	if len(req.Tasks) == 0 {
		return nil, errors.NewInvalidRequestError([]string{"at least one task is required"})
	}

	return FromValidation(svc.Validate(req.TaskSpecs())), nil
}
