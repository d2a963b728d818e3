package settings_test

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-item-parser/internal/errors"
	"github.com/KirkDiggler/rpg-item-parser/internal/repositories/settings"
)

const settingsHash = "itemparser:settings"

type RedisSettingsTestSuite struct {
	suite.Suite
	mockClient *redis.Client
	mock       redismock.ClientMock
	repo       settings.Repository
	ctx        context.Context
}

func TestRedisSettingsSuite(t *testing.T) {
	suite.Run(t, new(RedisSettingsTestSuite))
}

func (s *RedisSettingsTestSuite) SetupTest() {
	s.mockClient, s.mock = redismock.NewClientMock()
	s.ctx = context.Background()

	repo, err := settings.NewRedis(&settings.RedisConfig{Client: s.mockClient})
	s.Require().NoError(err)
	s.repo = repo
}

func (s *RedisSettingsTestSuite) TearDownTest() {
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *RedisSettingsTestSuite) TestNewRedis() {
	_, err := settings.NewRedis(nil)
	s.Assert().ErrorContains(err, "config cannot be nil")

	_, err = settings.NewRedis(&settings.RedisConfig{})
	s.Assert().ErrorContains(err, "client cannot be nil")
}

func (s *RedisSettingsTestSuite) TestGet() {
	s.mock.ExpectHGet(settingsHash, "batch.enabled").SetVal("true")

	out, err := s.repo.Get(s.ctx, &settings.GetInput{Key: "batch.enabled"})
	s.Require().NoError(err)
	s.Assert().Equal("true", out.Value)
}

func (s *RedisSettingsTestSuite) TestGetMissing() {
	s.mock.ExpectHGet(settingsHash, "batch.enabled").RedisNil()

	_, err := s.repo.Get(s.ctx, &settings.GetInput{Key: "batch.enabled"})
	s.Assert().True(errors.IsNotFound(err))
}

func (s *RedisSettingsTestSuite) TestGetFailure() {
	s.mock.ExpectHGet(settingsHash, "batch.enabled").SetErr(stderrors.New("connection lost"))

	_, err := s.repo.Get(s.ctx, &settings.GetInput{Key: "batch.enabled"})
	s.Assert().Equal(errors.CodeInternal, errors.GetCode(err))
}

func (s *RedisSettingsTestSuite) TestSet() {
	s.mock.ExpectHSet(settingsHash, "retry.max_retries", "5").SetVal(1)

	_, err := s.repo.Set(s.ctx, &settings.SetInput{Key: "retry.max_retries", Value: "5"})
	s.Require().NoError(err)
}

func (s *RedisSettingsTestSuite) TestSetEmptyKey() {
	_, err := s.repo.Set(s.ctx, &settings.SetInput{Value: "5"})
	s.Assert().True(errors.IsInvalidArgument(err))
}

func (s *RedisSettingsTestSuite) TestList() {
	s.mock.ExpectHGetAll(settingsHash).SetVal(map[string]string{
		"batch.enabled":        "false",
		"parsing.default_mode": "ONE_CALL",
	})

	out, err := s.repo.List(s.ctx)
	s.Require().NoError(err)
	s.Assert().Equal("ONE_CALL", out.Values["parsing.default_mode"])
	s.Assert().Len(out.Values, 2)
}

func (s *RedisSettingsTestSuite) TestDelete() {
	s.mock.ExpectHDel(settingsHash, "batch.enabled").SetVal(1)

	_, err := s.repo.Delete(s.ctx, &settings.DeleteInput{Key: "batch.enabled"})
	s.Require().NoError(err)
}

func (s *RedisSettingsTestSuite) TestNamespace() {
	repo, err := settings.NewRedis(&settings.RedisConfig{Client: s.mockClient, Namespace: "staging"})
	s.Require().NoError(err)

	s.mock.ExpectHGet("staging:settings", "debug.enabled").SetVal("true")
	_, err = repo.Get(s.ctx, &settings.GetInput{Key: "debug.enabled"})
	s.Require().NoError(err)
}

func TestInMemory(t *testing.T) {
	ctx := context.Background()
	repo := settings.NewInMemory()

	_, err := repo.Get(ctx, &settings.GetInput{Key: "batch.enabled"})
	assert.True(t, errors.IsNotFound(err))

	_, err = repo.Set(ctx, &settings.SetInput{Key: "batch.enabled", Value: "false"})
	require.NoError(t, err)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	list.Values["batch.enabled"] = "mutated"

	out, err := repo.Get(ctx, &settings.GetInput{Key: "batch.enabled"})
	require.NoError(t, err)
	assert.Equal(t, "false", out.Value)

	_, err = repo.Delete(ctx, &settings.DeleteInput{Key: "batch.enabled"})
	require.NoError(t, err)
	_, err = repo.Get(ctx, &settings.GetInput{Key: "batch.enabled"})
	assert.True(t, errors.IsNotFound(err))
}
