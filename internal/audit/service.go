package audit

import (
	"context"
	"fmt"

	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
)

// Service exposes the audit trail read surface.
type Service interface {
	List(ctx context.Context, input ListInput) (*ListResult, error)
}

type service struct {
	repo Repository
}

// NewService builds an audit service with the required dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("audit repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, input ListInput) (*ListResult, error) {
	input.normalize()

	entries, total, err := s.repo.List(ctx, input)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list audit logs")
	}
	return &ListResult{
		Entries: entries,
		Total:   total,
		Limit:   input.Limit,
		Offset:  input.Offset,
	}, nil
}
