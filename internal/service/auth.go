package service

import (
	"context"

	"go.uber.org/zap"

	"tinbr-service/internal/apperror"
	"tinbr-service/internal/credential"
	"tinbr-service/internal/model"
	"tinbr-service/internal/store"
	"tinbr-service/internal/tenant"
	metrics "tinbr-service/prometheus"
)

// maxLoginCandidates bounds the cross-tenant lookup used when no tenant is given.
const maxLoginCandidates = 20

// dummyHash keeps unknown logins as slow as wrong passwords.
var dummyHash, _ = credential.Hash("Dummy#Passw0rd")

// AuthService authenticates users against the stored password hashes.
type AuthService struct {
	store  store.Store
	users  model.Collection
	logger *zap.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(s store.Store, logger *zap.Logger) *AuthService {
	return &AuthService{
		store:  s,
		users:  model.MustLookup(model.Users),
		logger: logger,
	}
}

// Login resolves login as an email or a document number and checks password.
// With a tenant the lookup is scoped to it, without one every tenant is searched
// and the first user whose hash matches wins. Unknown logins and wrong passwords
// fail with the same error.
func (s *AuthService) Login(ctx context.Context, login, password, tenantID string) (map[string]any, error) {
	resolved, err := credential.ResolveLogin(login)
	if err != nil {
		s.reject("invalid_login")
		return nil, err
	}

	filter := map[string]any{resolved.Field: resolved.Value}
	if tenantID != "" {
		scope, err := tenant.For(s.users, tenant.Read, tenantID)
		if err != nil {
			return nil, err
		}
		filter = scope.Filter(filter)
	}

	candidates, err := s.store.Find(ctx, model.Users, filter, store.FindOptions{Limit: maxLoginCandidates})
	if err != nil {
		s.logger.Error("Login lookup failed", zap.Error(err))
		return nil, apperror.Storage(err)
	}

	if len(candidates) == 0 {
		credential.Verify(password, dummyHash)
		s.logger.Info("Login rejected", zap.String("field", resolved.Field))
		s.reject("user_not_found")
		return nil, apperror.InvalidCredentials()
	}

	for _, user := range candidates {
		hash, _ := user[s.users.PasswordField].(string)
		if hash != "" && credential.Verify(password, hash) {
			s.logger.Info("User logged in",
				zap.Any("user_id", user[model.FieldID]),
				zap.Any("cliente_id", user[model.FieldTenantID]))
			metrics.RecordLogin("success")
			return s.users.Redact(user), nil
		}
	}

	s.logger.Info("Login rejected", zap.String("field", resolved.Field))
	s.reject("invalid_password")
	return nil, apperror.InvalidCredentials()
}

func (s *AuthService) reject(reason string) {
	metrics.RecordLogin(reason)
}
