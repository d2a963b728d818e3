package items_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-item-parser/internal/entities/vtt"
	"github.com/KirkDiggler/rpg-item-parser/internal/errors"
	"github.com/KirkDiggler/rpg-item-parser/internal/pkg/clock"
	"github.com/KirkDiggler/rpg-item-parser/internal/pkg/idgen"
	"github.com/KirkDiggler/rpg-item-parser/internal/repositories/items"
	"github.com/KirkDiggler/rpg-item-parser/internal/testutils"
)

type ItemsRepositoryTestSuite struct {
	suite.Suite
	ctx     context.Context
	clock   *clock.Manual
	mr      *miniredis.Miniredis
	cleanup func()
	repos   map[string]items.Repository
}

func TestItemsRepositorySuite(t *testing.T) {
	suite.Run(t, new(ItemsRepositoryTestSuite))
}

func (s *ItemsRepositoryTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.clock = clock.NewManual(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))

	client, cleanup := testutils.CreateTestRedisClientWithContext(s.T(), func(mr *miniredis.Miniredis) {
		s.mr = mr
	})
	s.cleanup = cleanup

	redisRepo, err := items.NewRedis(&items.RedisConfig{
		Client: client,
		Clock:  s.clock,
		IDs:    idgen.NewSequential("item"),
	})
	s.Require().NoError(err)

	s.repos = map[string]items.Repository{
		"redis":    redisRepo,
		"inmemory": items.NewInMemory(),
	}
}

func (s *ItemsRepositoryTestSuite) TearDownTest() {
	s.cleanup()
}

func longsword() *vtt.Item {
	return &vtt.Item{Name: "Longsword", Type: vtt.ItemTypeWeapon, Effects: []any{}, Flags: map[string]any{}}
}

func (s *ItemsRepositoryTestSuite) TestNewRedis() {
	_, err := items.NewRedis(nil)
	s.Assert().True(errors.IsInvalidArgument(err))

	_, err = items.NewRedis(&items.RedisConfig{})
	s.Assert().ErrorContains(err, "client cannot be nil")
}

func (s *ItemsRepositoryTestSuite) TestCreateAndGet() {
	for name, repo := range s.repos {
		s.Run(name, func() {
			created, err := repo.Create(s.ctx, &items.CreateInput{Item: longsword(), RawText: "Longsword"})
			s.Require().NoError(err)
			s.Assert().NotEmpty(created.Record.ID)

			got, err := repo.Get(s.ctx, &items.GetInput{ID: created.Record.ID})
			s.Require().NoError(err)
			s.Assert().Equal("Longsword", got.Record.Item.Name)
			s.Assert().Equal(vtt.ItemTypeWeapon, got.Record.Item.Type)
			s.Assert().Equal("Longsword", got.Record.RawText)
		})
	}
}

func (s *ItemsRepositoryTestSuite) TestValidation() {
	for name, repo := range s.repos {
		s.Run(name, func() {
			_, err := repo.Create(s.ctx, &items.CreateInput{})
			s.Assert().True(errors.IsInvalidArgument(err))

			_, err = repo.Get(s.ctx, &items.GetInput{})
			s.Assert().True(errors.IsInvalidArgument(err))

			_, err = repo.Delete(s.ctx, nil)
			s.Assert().True(errors.IsInvalidArgument(err))
		})
	}
}

func (s *ItemsRepositoryTestSuite) TestNotFound() {
	for name, repo := range s.repos {
		s.Run(name, func() {
			_, err := repo.Get(s.ctx, &items.GetInput{ID: "missing"})
			s.Assert().True(errors.IsNotFound(err))

			_, err = repo.Delete(s.ctx, &items.DeleteInput{ID: "missing"})
			s.Assert().True(errors.IsNotFound(err))
		})
	}
}

func (s *ItemsRepositoryTestSuite) TestListNewestFirst() {
	repo := s.repos["redis"]
	for _, name := range []string{"Club", "Dagger", "Mace"} {
		it := longsword()
		it.Name = name
		_, err := repo.Create(s.ctx, &items.CreateInput{Item: it})
		s.Require().NoError(err)
		s.clock.Advance(time.Second)
	}

	all, err := repo.List(s.ctx, &items.ListInput{})
	s.Require().NoError(err)
	s.Require().Len(all.Records, 3)
	s.Assert().Equal("Mace", all.Records[0].Item.Name)
	s.Assert().Equal("Club", all.Records[2].Item.Name)

	limited, err := repo.List(s.ctx, &items.ListInput{Limit: 2})
	s.Require().NoError(err)
	s.Assert().Len(limited.Records, 2)
}

func (s *ItemsRepositoryTestSuite) TestDelete() {
	for name, repo := range s.repos {
		s.Run(name, func() {
			created, err := repo.Create(s.ctx, &items.CreateInput{Item: longsword()})
			s.Require().NoError(err)

			_, err = repo.Delete(s.ctx, &items.DeleteInput{ID: created.Record.ID})
			s.Require().NoError(err)

			_, err = repo.Get(s.ctx, &items.GetInput{ID: created.Record.ID})
			s.Assert().True(errors.IsNotFound(err))
		})
	}
}

func (s *ItemsRepositoryTestSuite) TestCorruptRecord() {
	s.Require().NoError(s.mr.Set("itemparser:item:bad", "{not json"))

	_, err := s.repos["redis"].Get(s.ctx, &items.GetInput{ID: "bad"})
	s.Assert().True(errors.IsDataLoss(err))
}

func (s *ItemsRepositoryTestSuite) TestEmptyList() {
	for name, repo := range s.repos {
		s.Run(name, func() {
			out, err := repo.List(s.ctx, nil)
			s.Require().NoError(err)
			s.Assert().Empty(out.Records)
		})
	}
}
