package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/Butros55/studysync-ai-study-c-sub002/internal/domain"
	"github.com/Butros55/studysync-ai-study-c-sub002/internal/store"
)

// Service loads the module knowledge and coverage state and produces
// blueprints. Blueprints are ephemeral; the coverage counters it updates
// are the durable state.
type Service struct {
	profiles *store.ProfileRepo
	coverage *store.CoverageRepo
	now      func() time.Time
}

func NewService(profiles *store.ProfileRepo, coverage *store.CoverageRepo) *Service {
	return &Service{profiles: profiles, coverage: coverage, now: time.Now}
}

// BuildBlueprint plans targetCount generation slots for the module. A
// module without an analyzed profile or without topics yields an empty
// blueprint, which callers read as "analyze more material first".
func (s *Service) BuildBlueprint(ctx context.Context, moduleID string, targetCount int) (domain.TaskBlueprint, error) {
	profile, err := s.profiles.Get(ctx, moduleID)
	if err != nil {
		if store.IsNotFound(err) {
			return BuildBlueprint(moduleID, nil, nil, targetCount, s.now()), nil
		}
		return domain.TaskBlueprint{}, fmt.Errorf("loading module profile: %w", err)
	}

	coverage, err := s.coverage.ListByModule(ctx, moduleID)
	if err != nil {
		return domain.TaskBlueprint{}, fmt.Errorf("loading topic coverage: %w", err)
	}

	return BuildBlueprint(moduleID, profile.Knowledge.Topics, coverage, targetCount, s.now()), nil
}

// RecordGenerated bumps the coverage counter for one fulfilled blueprint
// item. Called by the task-generation consumer after it persists a task.
func (s *Service) RecordGenerated(ctx context.Context, moduleID string, item domain.BlueprintItem) error {
	return s.coverage.Increment(ctx, moduleID, item.TopicID, item.TopicName, item.Difficulty, s.now())
}

// ResetCoverage clears all coverage counters of a module. The only
// operation that ever lowers counts.
func (s *Service) ResetCoverage(ctx context.Context, moduleID string) error {
	return s.coverage.Reset(ctx, moduleID)
}
