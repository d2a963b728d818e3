package credentials_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-item-parser/internal/errors"
	"github.com/KirkDiggler/rpg-item-parser/internal/repositories/credentials"
	"github.com/KirkDiggler/rpg-item-parser/internal/testutils"
)

type CredentialsTestSuite struct {
	suite.Suite
	ctx     context.Context
	cleanup func()
	repos   map[string]credentials.Repository
}

func TestCredentialsSuite(t *testing.T) {
	suite.Run(t, new(CredentialsTestSuite))
}

func (s *CredentialsTestSuite) SetupTest() {
	s.ctx = context.Background()
	client, cleanup := testutils.CreateTestRedisClient(s.T())
	s.cleanup = cleanup

	redisRepo, err := credentials.NewRedis(&credentials.RedisConfig{Client: client})
	s.Require().NoError(err)

	s.repos = map[string]credentials.Repository{
		"redis":    redisRepo,
		"inmemory": credentials.NewInMemory(),
	}
}

func (s *CredentialsTestSuite) TearDownTest() {
	s.cleanup()
}

func (s *CredentialsTestSuite) TestSetAndGet() {
	for name, repo := range s.repos {
		s.Run(name, func() {
			s.Require().NoError(repo.Set(s.ctx, "OpenAI", "  sk-test  "))

			key, err := repo.Get(s.ctx, "openai")
			s.Require().NoError(err)
			s.Assert().Equal("sk-test", key)

			s.Require().NoError(repo.Set(s.ctx, "openai", "sk-new"))
			key, err = repo.Get(s.ctx, "openai")
			s.Require().NoError(err)
			s.Assert().Equal("sk-new", key)
		})
	}
}

func (s *CredentialsTestSuite) TestMissing() {
	for name, repo := range s.repos {
		s.Run(name, func() {
			_, err := repo.Get(s.ctx, "anthropic")
			s.Assert().True(errors.IsNotFound(err))
		})
	}
}

func (s *CredentialsTestSuite) TestValidation() {
	for name, repo := range s.repos {
		s.Run(name, func() {
			s.Assert().True(errors.IsInvalidArgument(repo.Set(s.ctx, "", "sk")))
			s.Assert().True(errors.IsInvalidArgument(repo.Set(s.ctx, "openai", " ")))
			_, err := repo.Get(s.ctx, " ")
			s.Assert().True(errors.IsInvalidArgument(err))
		})
	}
}

func (s *CredentialsTestSuite) TestNewRedis() {
	_, err := credentials.NewRedis(nil)
	s.Assert().Error(err)
	_, err = credentials.NewRedis(&credentials.RedisConfig{})
	s.Assert().Error(err)
}
