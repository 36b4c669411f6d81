package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"deskly/internal/availability"
	workspaceserrors "deskly/internal/workspaces/errors"
	"deskly/internal/workspaces/repository"
	"deskly/internal/workspaces/validator"
	"deskly/pkg/config"
	apperrors "deskly/pkg/errors"
	"deskly/pkg/model"
	"deskly/pkg/sanitizer"
)

type WorkspaceService interface {
	Create(ctx context.Context, workspace *model.Workspace) error
	GetByID(ctx context.Context, id string) (*model.Workspace, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Workspace, int64, error)
	Update(ctx context.Context, id string, updates *model.WorkspaceUpdate) error
	Delete(ctx context.Context, id string) error
	GetAvailable(ctx context.Context, start, end time.Time) ([]*model.Workspace, error)
}

type workspaceService struct {
	repo      repository.WorkspaceRepository
	engine    availability.Engine
	validator *validator.WorkspaceValidator
	cfg       *config.Config
}

func NewWorkspaceService(
	repo repository.WorkspaceRepository,
	engine availability.Engine,
	validator *validator.WorkspaceValidator,
	cfg *config.Config,
) WorkspaceService {
	return &workspaceService{
		repo:      repo,
		engine:    engine,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *workspaceService) Create(ctx context.Context, workspace *model.Workspace) error {
	workspace.Name = sanitizer.NormalizeName(workspace.Name)
	workspace.Description = sanitizer.NormalizeDescription(workspace.Description)
	workspace.Active = true

	if err := s.validator.Validate(workspace); err != nil {
		s.cfg.Log.Warn("Workspace validation failed", "error", err)
		return apperrors.Validation("Workspace validation failed", map[string]any{"error": err.Error()})
	}

	if err := s.repo.Create(ctx, workspace); err != nil {
		s.cfg.Log.Error("Failed to create workspace", "error", err)
		return apperrors.Internal("Failed to create workspace", err)
	}

	s.cfg.Log.Info("Workspace created successfully",
		"id", workspace.ID,
		"name", workspace.Name,
		"capacity", workspace.Capacity,
	)
	return nil
}

func (s *workspaceService) GetByID(ctx context.Context, id string) (*model.Workspace, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Workspace ID cannot be empty")
	}

	workspace, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, workspaceserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Workspace", id)
		}
		if errors.Is(err, workspaceserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid workspace ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve workspace", err)
	}

	if !workspace.Active {
		return nil, apperrors.NotFoundWithID("Workspace", id)
	}

	return workspace, nil
}

func (s *workspaceService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Workspace, int64, error) {
	var count int64
	var workspaces []*model.Workspace
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountActive(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count workspaces", "error", errCount)
			errCount = apperrors.Internal("Failed to count workspaces", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		workspaces, errFind = s.repo.FindAllActive(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list workspaces", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve workspaces", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return workspaces, count, nil
}

func (s *workspaceService) Update(ctx context.Context, id string, updates *model.WorkspaceUpdate) error {
	if id == "" {
		return apperrors.InvalidInput("Workspace ID cannot be empty")
	}

	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Workspace update validation failed", "id", id, "error", err)
		return apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	merged := s.mergeWorkspaceUpdates(existing, updates)
	if err := s.validator.Validate(merged); err != nil {
		return apperrors.Validation("Workspace validation failed", map[string]any{"error": err.Error()})
	}

	if _, err := s.repo.Update(ctx, id, merged); err != nil {
		if errors.Is(err, workspaceserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Workspace", id)
		}
		s.cfg.Log.Error("Failed to update workspace", "id", id, "error", err)
		return apperrors.Internal("Failed to update workspace", err)
	}

	s.cfg.Log.Info("Workspace updated successfully", "id", id)
	return nil
}

// Delete soft-deletes the workspace. Its bookings stay on record and its
// id disappears from listings and availability.
func (s *workspaceService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Workspace ID cannot be empty")
	}

	if err := s.repo.Deactivate(ctx, id); err != nil {
		if errors.Is(err, workspaceserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Workspace", id)
		}
		if errors.Is(err, workspaceserrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid workspace ID format")
		}
		s.cfg.Log.Error("Failed to deactivate workspace", "id", id, "error", err)
		return apperrors.Internal("Failed to deactivate workspace", err)
	}

	s.cfg.Log.Info("Workspace deactivated", "id", id)
	return nil
}

// GetAvailable filters the active workspaces through the availability
// engine. Browsing reads are lock-free: a stale answer here is corrected
// by the serialized create path.
func (s *workspaceService) GetAvailable(ctx context.Context, start, end time.Time) ([]*model.Workspace, error) {
	if start.IsZero() || end.IsZero() {
		return nil, apperrors.InvalidInput("Start and end times are required")
	}
	if !end.After(start) {
		return nil, apperrors.Validation("End time must be after start time", nil)
	}

	var available []*model.Workspace
	var offset int64

	for {
		page, err := s.repo.FindAllActive(ctx, config.DefaultPaginationLimit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to list workspaces for availability", "error", err)
			return nil, apperrors.Internal("Failed to retrieve workspaces", err)
		}

		for _, workspace := range page {
			free, err := s.engine.IsAvailable(ctx, workspace.ID, start, end)
			if err != nil {
				return nil, err
			}
			if free {
				available = append(available, workspace)
			}
		}

		if len(page) < config.DefaultPaginationLimit {
			break
		}
		offset += int64(len(page))
	}

	return available, nil
}

func (s *workspaceService) mergeWorkspaceUpdates(existing *model.Workspace, updates *model.WorkspaceUpdate) *model.Workspace {
	merged := *existing

	if updates.Name != "" {
		merged.Name = sanitizer.NormalizeName(updates.Name)
	}
	if updates.Description != nil {
		merged.Description = sanitizer.NormalizeDescription(*updates.Description)
	}
	if updates.Capacity != nil {
		merged.Capacity = *updates.Capacity
	}
	if updates.PricePerHour != nil {
		merged.PricePerHour = *updates.PricePerHour
	}

	return &merged
}
