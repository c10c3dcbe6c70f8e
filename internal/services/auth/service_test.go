package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/stretchr/testify/suite"

	"github.com/tabletome/authcore/internal/dependencies/mocks"
	"github.com/tabletome/authcore/internal/model"
	"github.com/tabletome/authcore/internal/storage/memory"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.service = New(s.storage, s.clock, Config{
		Secret: "test-secret",
		// MinCost keeps the suite fast; production cost comes from config
		BcryptCost: bcrypt.MinCost,
	})
	s.ctx = context.Background()
}

func (s *ServiceSuite) createUser(username, password string, roles ...model.Role) {
	hash, err := s.service.HashPassword(s.ctx, password)
	s.Require().NoError(err)
	err = s.storage.Create(s.ctx, &model.User{
		Username:     username,
		PasswordHash: hash,
		Roles:        roles,
	})
	s.Require().NoError(err)
}

// Login tests

func (s *ServiceSuite) TestLoginSucceeds() {
	s.createUser("alice", "password123", model.RolePlayer)

	result, err := s.service.Login(s.ctx, "alice", "password123")
	s.Require().NoError(err)

	s.NotEmpty(result.Token)
	s.Equal("alice", result.User.Username)
	s.Equal(s.clock.Now().Add(600*time.Second), result.ExpiresAt)
}

func (s *ServiceSuite) TestLoginTokenVerifiesToCurrentIdentity() {
	s.createUser("alice", "password123", model.RoleGM, model.RolePlayer)

	result, err := s.service.Login(s.ctx, "alice", "password123")
	s.Require().NoError(err)

	payload, err := s.service.VerifyToken(result.Token)
	s.Require().NoError(err)
	s.Equal("alice", payload.Subject)
	s.Equal([]model.Role{model.RoleGM, model.RolePlayer}, payload.Roles)
	s.Equal(s.clock.Now(), payload.IssuedAt)
}

func (s *ServiceSuite) TestLoginFailsWithWrongPassword() {
	s.createUser("alice", "password123")

	_, err := s.service.Login(s.ctx, "alice", "wrongpassword")
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *ServiceSuite) TestLoginFailsWithUnknownUser() {
	_, err := s.service.Login(s.ctx, "nobody", "password123")
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *ServiceSuite) TestLoginFailsWithoutPasswordHash() {
	err := s.storage.Create(s.ctx, &model.User{Username: "sso-user", Roles: []model.Role{model.RolePlayer}})
	s.Require().NoError(err)

	_, err = s.service.Login(s.ctx, "sso-user", "")
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *ServiceSuite) TestLoginFailureMessageIsUniform() {
	// The same error for every cause, so failures never reveal whether a
	// username exists
	s.createUser("alice", "password123")

	_, wrongPass := s.service.Login(s.ctx, "alice", "nope")
	_, unknownUser := s.service.Login(s.ctx, "nobody", "nope")

	s.Equal(wrongPass.Error(), unknownUser.Error())
}

// HashPassword tests

func (s *ServiceSuite) TestHashPasswordProducesVerifiableHash() {
	hash, err := s.service.HashPassword(s.ctx, "hunter2")
	s.Require().NoError(err)

	s.NoError(bcrypt.CompareHashAndPassword([]byte(hash), []byte("hunter2")))
	s.Error(bcrypt.CompareHashAndPassword([]byte(hash), []byte("hunter3")))
}

func (s *ServiceSuite) TestHashPasswordSaltsPerRecord() {
	h1, err := s.service.HashPassword(s.ctx, "hunter2")
	s.Require().NoError(err)
	h2, err := s.service.HashPassword(s.ctx, "hunter2")
	s.Require().NoError(err)

	s.NotEqual(h1, h2)
}

// VerifyToken tests

func (s *ServiceSuite) TestVerifyTokenFailsWhenExpired() {
	s.createUser("alice", "password123")
	result, err := s.service.Login(s.ctx, "alice", "password123")
	s.Require().NoError(err)

	s.clock.Advance(601 * time.Second)

	_, err = s.service.VerifyToken(result.Token)
	s.ErrorIs(err, ErrInvalidToken)
}

func (s *ServiceSuite) TestVerifyTokenFailsWithTamperedPayload() {
	s.createUser("alice", "password123")
	result, err := s.service.Login(s.ctx, "alice", "password123")
	s.Require().NoError(err)

	parts := strings.Split(result.Token, ".")
	s.Require().Len(parts, 3)
	parts[1] = "eyJzdWIiOiJtYWxsb3J5In0"
	tampered := strings.Join(parts, ".")

	_, err = s.service.VerifyToken(tampered)
	s.ErrorIs(err, ErrInvalidToken)
}

func (s *ServiceSuite) TestVerifyTokenFailsWithGarbage() {
	_, err := s.service.VerifyToken("not-a-token")
	s.ErrorIs(err, ErrInvalidToken)
}

func (s *ServiceSuite) TestSecretRotationInvalidatesOutstandingTokens() {
	s.createUser("alice", "password123")
	result, err := s.service.Login(s.ctx, "alice", "password123")
	s.Require().NoError(err)

	rotated := New(s.storage, s.clock, Config{Secret: "new-secret", BcryptCost: bcrypt.MinCost})

	_, err = rotated.VerifyToken(result.Token)
	s.ErrorIs(err, ErrInvalidToken)
}

func (s *ServiceSuite) TestTokenSnapshotsRolesAtIssuance() {
	s.createUser("alice", "password123", model.RoleGM, model.RolePlayer)
	result, err := s.service.Login(s.ctx, "alice", "password123")
	s.Require().NoError(err)

	// Revoking after issuance does not reach into outstanding tokens
	_, err = s.storage.RevokeRole(s.ctx, "alice", model.RoleGM)
	s.Require().NoError(err)

	payload, err := s.service.VerifyToken(result.Token)
	s.Require().NoError(err)
	s.Equal([]model.Role{model.RoleGM, model.RolePlayer}, payload.Roles)
}

// AssignRolesAsAdmin tests

func (s *ServiceSuite) TestAssignRolesAsAdminSucceeds() {
	s.createUser("root", "password123", model.RoleAdmin)
	s.createUser("alice", "password123", model.RolePlayer)

	user, err := s.service.AssignRolesAsAdmin(s.ctx, "root", "alice", []model.Role{model.RoleGM})
	s.Require().NoError(err)
	s.Equal([]model.Role{model.RoleGM, model.RolePlayer}, user.Roles)
}

func (s *ServiceSuite) TestAssignRolesAsAdminFailsForNonAdmin() {
	s.createUser("alice", "password123", model.RoleGM, model.RolePlayer)
	s.createUser("bob", "password123", model.RolePlayer)

	_, err := s.service.AssignRolesAsAdmin(s.ctx, "alice", "bob", []model.Role{model.RoleAdmin})
	s.ErrorIs(err, ErrNotAuthorized)

	// Target state unchanged
	bob, _ := s.storage.Get(s.ctx, "bob")
	s.Equal([]model.Role{model.RolePlayer}, bob.Roles)
}

func (s *ServiceSuite) TestAssignRolesAsAdminFailsForUnknownActor() {
	s.createUser("alice", "password123", model.RolePlayer)

	_, err := s.service.AssignRolesAsAdmin(s.ctx, "ghost", "alice", []model.Role{model.RoleGM})
	s.ErrorIs(err, ErrNotAuthorized)
}

func (s *ServiceSuite) TestAssignRolesAsAdminChecksLiveAuthority() {
	s.createUser("root", "password123", model.RoleAdmin)
	s.createUser("alice", "password123", model.RolePlayer)

	// Demote root after it would have obtained a token claiming admin
	_, err := s.storage.SetRoles(s.ctx, "root", []model.Role{model.RolePlayer})
	s.Require().NoError(err)

	_, err = s.service.AssignRolesAsAdmin(s.ctx, "root", "alice", []model.Role{model.RoleGM})
	s.ErrorIs(err, ErrNotAuthorized)
}

func (s *ServiceSuite) TestAssignRolesAsAdminFailsForUnknownTarget() {
	s.createUser("root", "password123", model.RoleAdmin)

	_, err := s.service.AssignRolesAsAdmin(s.ctx, "root", "ghost", []model.Role{model.RoleGM})
	s.ErrorIs(err, model.ErrUserNotFound)
}

// RemovedUser tests

func (s *ServiceSuite) TestLoginFailsAfterUserRemoved() {
	s.createUser("alice", "password123", model.RolePlayer)
	s.Require().NoError(s.storage.Delete(s.ctx, "alice"))

	_, err := s.service.Login(s.ctx, "alice", "password123")
	s.ErrorIs(err, ErrInvalidCredentials)
}
