package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/fernet/fernet-go"

	"github.com/ndewijer/portfolio-tracker/internal/apperrors"
	"github.com/ndewijer/portfolio-tracker/internal/model"
	"github.com/ndewijer/portfolio-tracker/internal/repository"
	"github.com/ndewijer/portfolio-tracker/internal/upstream"
)

// CredentialService encrypts provider API tokens with fernet before they
// reach the api_credential table. Without a key the store is disabled.
type CredentialService struct {
	credentialRepo *repository.CredentialRepository
	key            *fernet.Key
}

// NewCredentialService creates a CredentialService. An empty encryptionKey
// disables the store; a malformed one is an error.
func NewCredentialService(credentialRepo *repository.CredentialRepository, encryptionKey string) (*CredentialService, error) {
	s := &CredentialService{credentialRepo: credentialRepo}
	if encryptionKey == "" {
		return s, nil
	}

	key, err := fernet.DecodeKey(encryptionKey)
	if err != nil {
		return nil, fmt.Errorf("invalid encryption key: %w", err)
	}
	s.key = key
	return s, nil
}

// Enabled reports whether an encryption key is configured.
func (s *CredentialService) Enabled() bool {
	return s.key != nil
}

func (s *CredentialService) checkProvider(provider string) (string, error) {
	if s.key == nil {
		return "", apperrors.ErrCredentialStoreDisabled
	}
	provider = strings.ToLower(strings.TrimSpace(provider))
	if !model.ValidProviders[provider] {
		return "", fmt.Errorf("unknown provider %q: %w", provider, apperrors.ErrValidation)
	}
	return provider, nil
}

// ListCredentials returns the stored providers without their tokens.
func (s *CredentialService) ListCredentials(ctx context.Context) ([]model.Credential, error) {
	if s.key == nil {
		return nil, apperrors.ErrCredentialStoreDisabled
	}
	return s.credentialRepo.ListCredentials(ctx)
}

// SetCredential encrypts and stores a token, replacing any previous one.
func (s *CredentialService) SetCredential(ctx context.Context, provider, token string) error {
	provider, err := s.checkProvider(provider)
	if err != nil {
		return err
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("token is required: %w", apperrors.ErrValidation)
	}

	ciphertext, err := fernet.EncryptAndSign([]byte(token), s.key)
	if err != nil {
		return fmt.Errorf("failed to encrypt token: %w", err)
	}
	if err := s.credentialRepo.UpsertCredential(ctx, provider, string(ciphertext)); err != nil {
		return err
	}

	slog.Info("stored credential", "provider", provider)
	return nil
}

// DeleteCredential removes a stored token.
func (s *CredentialService) DeleteCredential(ctx context.Context, provider string) error {
	provider, err := s.checkProvider(provider)
	if err != nil {
		return err
	}
	return s.credentialRepo.DeleteCredential(ctx, provider)
}

// GetToken decrypts the stored token of a provider.
func (s *CredentialService) GetToken(ctx context.Context, provider string) (string, error) {
	provider, err := s.checkProvider(provider)
	if err != nil {
		return "", err
	}

	c, err := s.credentialRepo.GetCredential(ctx, provider)
	if err != nil {
		return "", err
	}

	plaintext := fernet.VerifyAndDecrypt([]byte(c.Token), 0, []*fernet.Key{s.key})
	if plaintext == nil {
		return "", fmt.Errorf("stored %s token cannot be decrypted with the configured key", provider)
	}
	return string(plaintext), nil
}

// TokenFunc resolves a provider token for an upstream client. envToken
// wins when set; otherwise the store is consulted on every call so
// updates apply without a restart.
func (s *CredentialService) TokenFunc(provider, envToken string) upstream.TokenFunc {
	if envToken != "" {
		return upstream.StaticToken(provider, envToken)
	}
	return func(ctx context.Context) (string, error) {
		if s == nil || s.key == nil {
			return "", fmt.Errorf("%s: %w", provider, apperrors.ErrCredentialMissing)
		}
		token, err := s.GetToken(ctx, provider)
		if errors.Is(err, apperrors.ErrCredentialNotFound) {
			return "", fmt.Errorf("%s: %w", provider, apperrors.ErrCredentialMissing)
		}
		return token, err
	}
}
