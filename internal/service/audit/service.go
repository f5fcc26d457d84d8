package audit

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/joshwoodland/boredcertified/internal/model"
	"github.com/joshwoodland/boredcertified/internal/repository"
	"github.com/joshwoodland/boredcertified/pkg/logger"
)

// ContextActorKey is where the auth middleware stores the caller's user
// ID on the gin context.
const ContextActorKey = "actor_id"

type actorKey struct{}

// WithActor stamps the authenticated actor onto a request context so
// service-layer audit calls can attribute writes.
func WithActor(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, actorKey{}, id)
}

type Service struct {
	repo   repository.AuditRepository
	logger *logger.Logger
}

func NewService(repo repository.AuditRepository, log *logger.Logger) *Service {
	return &Service{repo: repo, logger: log}
}

// Log records an access to a clinical resource. Audit failures are
// logged but never bubble up: losing one trail entry must not fail the
// clinical operation that produced it.
func (s *Service) Log(ctx context.Context, actorID uuid.UUID, action, resourceType string, resourceID uuid.UUID, details interface{}) {
	var raw json.RawMessage
	if details != nil {
		encoded, err := json.Marshal(details)
		if err != nil {
			s.logger.Error(err, "failed to encode audit details")
		} else {
			raw = encoded
		}
	}

	entry := &model.AuditLog{
		ID:           uuid.New(),
		ActorID:      actorID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Details:      raw,
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		s.logger.Error(err, "failed to write audit log",
			"action", action, "resource_type", resourceType)
	}
}

func (s *Service) History(ctx context.Context, resourceType string, resourceID uuid.UUID) ([]*model.AuditLog, error) {
	return s.repo.ListByResource(ctx, resourceType, resourceID)
}

// ActorFromContext extracts the authenticated actor, uuid.Nil if absent.
func ActorFromContext(ctx context.Context) uuid.UUID {
	if id, ok := ctx.Value(actorKey{}).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}
