package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/joshwoodland/boredcertified/internal/model"
	"github.com/joshwoodland/boredcertified/internal/repository"
	"github.com/joshwoodland/boredcertified/internal/repository/postgres"
	"github.com/joshwoodland/boredcertified/pkg/auth"
	apperrors "github.com/joshwoodland/boredcertified/pkg/errors"
	"github.com/joshwoodland/boredcertified/pkg/security"
	"github.com/joshwoodland/boredcertified/pkg/validator"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

const defaultRole = "clinician"

type Service struct {
	repo     repository.UserRepository
	hasher   security.PasswordHasher
	tokens   *auth.TokenManager
	validate *validator.Validator
}

func NewService(repo repository.UserRepository, hasher security.PasswordHasher, tokens *auth.TokenManager) *Service {
	return &Service{repo: repo, hasher: hasher, tokens: tokens, validate: validator.New()}
}

// Register creates a clinician account. Requests are validated here as
// well as at the HTTP boundary because accounts are also seeded from
// operational tooling.
func (s *Service) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	if err := s.validate.Validate(req); err != nil {
		return nil, apperrors.BadRequest(err.Error(), err)
	}

	if existing, err := s.repo.GetByEmail(ctx, req.Email); err == nil && existing != nil {
		return nil, apperrors.Conflict("email already registered", nil)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Base:         model.Base{ID: uuid.New()},
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: hash,
		Role:         defaultRole,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.TokenResponse, error) {
	user, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &model.TokenResponse{
		AccessToken: token,
		ExpiresIn:   int(s.tokens.Expiry().Seconds()),
	}, nil
}

func (s *Service) VerifyToken(tokenString string) (*auth.Claims, error) {
	return s.tokens.Verify(tokenString)
}
