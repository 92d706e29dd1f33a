package services

import (
	"context"
	"errors"
	"strings"

	"github.com/samber/oops"
	"go.uber.org/zap"

	"github.com/cppla/commentbox/models"
	"github.com/cppla/commentbox/repositories"
	"github.com/cppla/commentbox/utils"
)

// CredentialStore registers accounts and verifies login credentials.
type CredentialStore struct {
	users  repositories.UserRepository
	hasher *utils.PasswordHasher
	logger *zap.Logger

	// dummyHash is compared against for unknown usernames so both login failure
	// paths cost one bcrypt comparison.
	dummyHash string
}

// NewCredentialStore precomputes the dummy hash at the hasher's cost.
func NewCredentialStore(users repositories.UserRepository, hasher *utils.PasswordHasher, logger *zap.Logger) (*CredentialStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	dummy, err := hasher.Hash("commentbox-dummy-password")
	if err != nil {
		return nil, oops.Code(CodeStoreFailure).With("operation", "prepare dummy hash").Wrap(err)
	}
	return &CredentialStore{
		users:     users,
		hasher:    hasher,
		logger:    logger.Named("credentials"),
		dummyHash: dummy,
	}, nil
}

// Register hashes password and persists a new user. The plaintext is never stored.
// Any store rejection, duplicates included, is reported as CodeStoreFailure.
func (s *CredentialStore) Register(ctx context.Context, email, username, password string) (*models.User, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, oops.Code(CodeStoreFailure).With("operation", "hash password").Wrap(err)
	}

	user := &models.User{
		Email:        optionalEmail(email),
		Username:     username,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		s.logger.Warn("user insert rejected", zap.String("username", username), zap.Error(err))
		return nil, oops.Code(CodeStoreFailure).With("operation", "create user").Wrap(err)
	}
	return user, nil
}

// Verify checks username/password. Unknown user and wrong password yield the
// same CodeInvalidCredentials error; only store failures are distinguishable.
func (s *CredentialStore) Verify(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, oops.Code(CodeStoreFailure).With("operation", "find user by username").Wrap(err)
	}

	target := s.dummyHash
	if user != nil {
		target = user.PasswordHash
	}

	ok, checkErr := s.hasher.Check(target, password)
	if checkErr != nil {
		// corrupt stored hash; still indistinguishable to the caller
		s.logger.Error("stored password hash unreadable", zap.String("username", username), zap.Error(checkErr))
	}
	if user == nil || !ok {
		return nil, invalidCredentials()
	}
	return user, nil
}

// FindByID loads a user for identity resolution.
func (s *CredentialStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, oops.Code(CodeUserNotFound).With("user_id", id).Errorf("user not found")
		}
		return nil, oops.Code(CodeStoreFailure).With("operation", "find user by id").Wrap(err)
	}
	return user, nil
}

// optionalEmail maps a blank email to NULL so accounts without one never collide
// on the unique index.
func optionalEmail(email string) *string {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil
	}
	return &email
}

func invalidCredentials() error {
	return oops.Code(CodeInvalidCredentials).Errorf(InvalidCredentialsMessage)
}
