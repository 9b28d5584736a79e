package service

import (
	"context"
	"errors"
	"time"

	"filevault-backend/internal/auth"
	"filevault-backend/internal/logging"
	"filevault-backend/internal/models"
	"filevault-backend/internal/repository"

	"github.com/google/uuid"
)

// UserService cuida do cadastro e do ciclo de vida das sessões
type UserService struct {
	store    repository.UserStore
	verifier *auth.Verifier
	sessions auth.SessionStore
	log      logging.Logger
}

// NewUserService cria um novo serviço de usuário
func NewUserService(store repository.UserStore, verifier *auth.Verifier, sessions auth.SessionStore, log logging.Logger) *UserService {
	return &UserService{
		store:    store,
		verifier: verifier,
		sessions: sessions,
		log:      log.With("component", "users"),
	}
}

// Register cria um novo usuário.
// A verificação e o insert não são atômicos; cadastros concorrentes com o
// mesmo email são barrados pelo índice único do store, quando houver.
func (s *UserService) Register(ctx context.Context, email, password string) (*models.User, error) {
	if email == "" {
		return nil, ErrMissingEmail
	}
	if password == "" {
		return nil, ErrMissingPassword
	}

	if _, err := s.store.GetUserByEmail(ctx, email); err == nil {
		return nil, ErrAlreadyExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		s.log.Error(ctx, "failed to look up user", "error", err)
		return nil, ErrInternal
	}

	hash, err := s.verifier.HashPassword(password)
	if err != nil {
		s.log.Error(ctx, "failed to hash password", "error", err)
		return nil, ErrInternal
	}

	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, ErrAlreadyExists
		}
		s.log.Error(ctx, "failed to save user", "error", err)
		return nil, ErrInternal
	}

	s.log.Info(ctx, "user registered", "user_id", user.ID)
	return user, nil
}

// Login verifica as credenciais e emite um token de sessão
func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	userID, err := s.verifier.Verify(ctx, email, password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			// mesma resposta para email desconhecido e senha errada
			return "", ErrUnauthorized
		}
		s.log.Error(ctx, "failed to verify credentials", "error", err)
		return "", ErrInternal
	}

	token, err := s.sessions.Issue(ctx, userID)
	if err != nil {
		s.log.Error(ctx, "failed to issue session", "error", err)
		return "", ErrInternal
	}

	return token, nil
}

// Authenticate resolve o token para o seu usuário. Toda falha é ErrUnauthorized.
func (s *UserService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	userID, err := s.sessions.Resolve(ctx, token)
	if err != nil {
		// ErrNoSession puro é só um token desconhecido; embrulhado traz falha do store
		if err != auth.ErrNoSession {
			s.log.Warn(ctx, "session resolution failed", "error", err)
		}
		return nil, ErrUnauthorized
	}

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.log.Error(ctx, "failed to load session user", "error", err)
		}
		return nil, ErrUnauthorized
	}

	return user, nil
}

// Logout revoga o token. Tokens que não resolvem são rejeitados.
func (s *UserService) Logout(ctx context.Context, token string) error {
	if _, err := s.sessions.Resolve(ctx, token); err != nil {
		return ErrUnauthorized
	}

	if err := s.sessions.Revoke(ctx, token); err != nil {
		s.log.Error(ctx, "failed to revoke session", "error", err)
		return ErrInternal
	}
	return nil
}

// GetUserByID busca um usuário pelo id
func (s *UserService) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		s.log.Error(ctx, "failed to load user", "error", err)
		return nil, ErrInternal
	}
	return user, nil
}
