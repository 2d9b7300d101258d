package payments

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/slooze/foodorder/internal/rbac"
	"github.com/slooze/foodorder/internal/shared"
)

// Service guards payment method administration.
type Service struct {
	repo     Repository
	logger   *slog.Logger
	validate *validator.Validate
	now      func() time.Time
}

// NewService constructs a Service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger, validate: validator.New(), now: time.Now}
}

// List returns every payment method, newest first.
func (s *Service) List(ctx context.Context, p rbac.Principal) ([]Method, error) {
	if err := rbac.Permit(p, rbac.OpListPaymentMethod); err != nil {
		return nil, err
	}
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []Method{}
	}
	return list, nil
}

// Create stores a new active method and makes it the default.
func (s *Service) Create(ctx context.Context, p rbac.Principal, in CreateInput) (Method, error) {
	if err := rbac.Permit(p, rbac.OpCreatePayment); err != nil {
		return Method{}, err
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Last4 = strings.TrimSpace(in.Last4)
	if err := s.validate.Struct(in); err != nil {
		return Method{}, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	m := Method{
		ID:        uuid.NewString(),
		Name:      in.Name,
		Last4:     in.Last4,
		IsActive:  true,
		IsDefault: true,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return Method{}, err
	}
	s.logger.Info("payment method created", slog.String("payment_method_id", m.ID), slog.String("principal", p.ID))
	return m, nil
}

// Remove deletes a payment method.
func (s *Service) Remove(ctx context.Context, p rbac.Principal, id string) (Method, error) {
	if err := rbac.Permit(p, rbac.OpRemovePayment); err != nil {
		return Method{}, err
	}
	m, err := s.repo.Delete(ctx, id)
	if err != nil {
		return Method{}, err
	}
	s.logger.Info("payment method removed", slog.String("payment_method_id", id), slog.String("principal", p.ID))
	return m, nil
}
