package itemparse_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/KirkDiggler/rpg-item-parser/internal/batch"
	batchmock "github.com/KirkDiggler/rpg-item-parser/internal/batch/mock"
	"github.com/KirkDiggler/rpg-item-parser/internal/clients/srd"
	srdmock "github.com/KirkDiggler/rpg-item-parser/internal/clients/srd/mock"
	"github.com/KirkDiggler/rpg-item-parser/internal/diagnosis"
	"github.com/KirkDiggler/rpg-item-parser/internal/entities/item"
	"github.com/KirkDiggler/rpg-item-parser/internal/entities/vtt"
	"github.com/KirkDiggler/rpg-item-parser/internal/errors"
	"github.com/KirkDiggler/rpg-item-parser/internal/extraction"
	"github.com/KirkDiggler/rpg-item-parser/internal/notify"
	notifymock "github.com/KirkDiggler/rpg-item-parser/internal/notify/mock"
	"github.com/KirkDiggler/rpg-item-parser/internal/orchestrators/itemparse"
	"github.com/KirkDiggler/rpg-item-parser/internal/pkg/clock"
	"github.com/KirkDiggler/rpg-item-parser/internal/repositories/items"
	itemsmock "github.com/KirkDiggler/rpg-item-parser/internal/repositories/items/mock"
	"github.com/KirkDiggler/rpg-item-parser/internal/shape"
)

const venomfangText = `Venomfang
Weapon (shortsword), rare (requires attunement)
You gain a +1 bonus to attack and damage rolls made with this magic weapon.
The blade deals an extra 2d10 poison damage; a creature must succeed on a DC 15 Constitution saving throw or take the poison damage.`

type OrchestratorTestSuite struct {
	suite.Suite
	ctrl          *gomock.Controller
	mockProcessor *batchmock.MockProcessor
	mockSRD       *srdmock.MockClient
	mockItems     *itemsmock.MockRepository
	mockNotifier  *notifymock.MockNotifier
	clock         *clock.Manual
	orchestrator  itemparse.Service
	ctx           context.Context
}

func TestOrchestratorSuite(t *testing.T) {
	suite.Run(t, new(OrchestratorTestSuite))
}

func (s *OrchestratorTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockProcessor = batchmock.NewMockProcessor(s.ctrl)
	s.mockSRD = srdmock.NewMockClient(s.ctrl)
	s.mockItems = itemsmock.NewMockRepository(s.ctrl)
	s.mockNotifier = notifymock.NewMockNotifier(s.ctrl)
	s.clock = clock.NewManual(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	s.ctx = context.Background()

	o, err := itemparse.NewOrchestrator(&itemparse.Config{
		Processor: s.mockProcessor,
		SRD:       s.mockSRD,
		Items:     s.mockItems,
		Reporter:  diagnosis.NewReporter(&diagnosis.ReporterConfig{Notifier: s.mockNotifier}),
		Clock:     s.clock,
	})
	s.Require().NoError(err)
	s.orchestrator = o
}

func (s *OrchestratorTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func venomfang() map[string]any {
	return map[string]any{
		"name":         "Venomfang",
		"description":  venomfangText,
		"itemType":     "weapon",
		"rarity":       "rare",
		"baseItem":     "shortsword",
		"magicalBonus": float64(1),
		"attunement":   "required",
		"damage": map[string]any{
			"parts": []any{
				[]any{"1d6 + @mod", "piercing"},
				[]any{"2d10", "poison"},
			},
		},
		"save": map[string]any{"ability": "con", "dc": float64(15)},
	}
}

func answer(value map[string]any) *extraction.AskOutput {
	return &extraction.AskOutput{Value: value}
}

func (s *OrchestratorTestSuite) TestNewOrchestratorValidation() {
	_, err := itemparse.NewOrchestrator(nil)
	s.Assert().True(errors.IsInvalidArgument(err))

	_, err = itemparse.NewOrchestrator(&itemparse.Config{})
	s.Assert().True(errors.IsInvalidArgument(err))

	_, err = itemparse.NewOrchestrator(&itemparse.Config{
		Processor:   s.mockProcessor,
		DefaultMode: "TWO_CALLS",
	})
	s.Assert().True(errors.IsInvalidArgument(err))
}

func (s *OrchestratorTestSuite) TestInputValidation() {
	testCases := []struct {
		name  string
		input *itemparse.ParseInput
	}{
		{"nil input", nil},
		{"blank text", &itemparse.ParseInput{RawText: "   "}},
		{"unknown strategy", &itemparse.ParseInput{RawText: "Dagger", Strategy: "GUESS"}},
		{"unknown mode", &itemparse.ParseInput{RawText: "Dagger", ParsingMode: "TWO_CALLS"}},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			_, err := s.orchestrator.ParseAndFormat(s.ctx, tc.input)
			s.Assert().True(errors.IsInvalidArgument(err))
		})
	}
}

func (s *OrchestratorTestSuite) TestPersistWithoutRepository() {
	o, err := itemparse.NewOrchestrator(&itemparse.Config{Processor: s.mockProcessor})
	s.Require().NoError(err)

	_, err = o.ParseAndFormat(s.ctx, &itemparse.ParseInput{RawText: "Dagger", Persist: true})
	s.Assert().True(errors.IsInvalidArgument(err))
}

func (s *OrchestratorTestSuite) TestDirectOneCall() {
	s.mockProcessor.EXPECT().
		ProcessRequest(s.ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, in *extraction.AskInput) (*extraction.AskOutput, error) {
			s.Assert().True(strings.HasPrefix(in.Prompt, batch.ItemParsingPrefix))
			s.Assert().Equal(shape.NameItem, in.Shape.Name)
			s.Assert().Equal("Longsword", in.Inputs["text"])
			s.Assert().ElementsMatch([]string{"_id", "id"}, in.Deletions)
			s.Assert().Empty(in.Overrides)
			s.clock.Advance(1500 * time.Millisecond)
			return answer(map[string]any{
				"name":        "Longsword",
				"description": "A plain longsword.",
				"itemType":    "weapon",
				"properties":  []any{"versatile"},
			}), nil
		})
	s.mockSRD.EXPECT().
		LookupWeapon(s.ctx, "Longsword").
		Return(nil, errors.NotFound("no reference weapon"))

	out, err := s.orchestrator.ParseAndFormat(s.ctx, &itemparse.ParseInput{
		RawText:  "  Longsword ",
		Strategy: itemparse.StrategyDirectParsing,
	})
	s.Require().NoError(err)
	s.Assert().Equal(1, out.Calls)
	s.Assert().False(out.Enriched)
	s.Assert().Empty(out.ID)
	s.Assert().Equal(1500*time.Millisecond, out.Duration)
	s.Assert().Equal(vtt.ItemTypeWeapon, out.Item.Type)
	s.Require().NotNil(out.Item.System.Type)
	s.Assert().Equal("longsword", out.Item.System.Type.BaseItem)
	s.Assert().Contains(out.Item.System.Properties, "ver")
}

func (s *OrchestratorTestSuite) TestBasicStrategyPinsName() {
	gomock.InOrder(
		s.mockProcessor.EXPECT().
			ProcessRequest(s.ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, in *extraction.AskInput) (*extraction.AskOutput, error) {
				s.Assert().True(strings.HasPrefix(in.Prompt, batch.BasicItemPrefix))
				s.Assert().Equal(shape.NameBasic, in.Shape.Name)
				s.Assert().Equal(venomfangText, in.Inputs["text"])
				return answer(map[string]any{"name": " Venomfang ", "description": venomfangText}), nil
			}),
		s.mockProcessor.EXPECT().
			ProcessRequest(s.ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, in *extraction.AskInput) (*extraction.AskOutput, error) {
				s.Assert().Equal(shape.NameItem, in.Shape.Name)
				s.Assert().Equal(map[string]any{"name": "Venomfang"}, in.Overrides)
				s.Assert().True(strings.HasPrefix(in.Inputs["text"], "Name: Venomfang\n\n"))
				return answer(venomfang()), nil
			}),
	)
	s.mockSRD.EXPECT().
		LookupWeapon(s.ctx, "shortsword").
		Return(&srd.Weapon{
			Key:        "shortsword",
			Name:       "Shortsword",
			Category:   "Martial",
			Range:      "Melee",
			Weight:     2,
			Cost:       &srd.Cost{Quantity: 10, Unit: "gp"},
			DamageDice: "1d6",
			DamageType: "piercing",
			Properties: []string{"fin", "lgt"},
		}, nil)

	out, err := s.orchestrator.ParseAndFormat(s.ctx, &itemparse.ParseInput{RawText: venomfangText})
	s.Require().NoError(err)
	s.Assert().Equal(2, out.Calls)
	s.Assert().True(out.Enriched)
	s.Assert().Equal(item.WeaponMartialMelee, out.Parsed.WeaponType)
	s.Assert().Equal([]string{"fin", "lgt"}, out.Parsed.Properties)
	// explicit damage from the text is kept
	s.Require().Len(out.Parsed.Damage.Parts, 2)
	s.Assert().Equal("1d6 + @mod", out.Parsed.Damage.Parts[0].Formula)
	s.Require().NotNil(out.Parsed.Weight)
	s.Assert().Equal(2.0, out.Parsed.Weight.Value)

	s.Require().Len(out.Item.System.Activities, 2)
}

func (s *OrchestratorTestSuite) TestSeparateItemsAndStatsForcesBasicPass() {
	var shapes []string
	s.mockProcessor.EXPECT().
		ProcessRequest(s.ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, in *extraction.AskInput) (*extraction.AskOutput, error) {
			shapes = append(shapes, in.Shape.Name)
			return answer(map[string]any{"name": "Cloak of Elvenkind", "description": "A hooded cloak."}), nil
		}).
		Times(2)

	out, err := s.orchestrator.ParseAndFormat(s.ctx, &itemparse.ParseInput{
		RawText:     "Cloak of Elvenkind",
		Strategy:    itemparse.StrategyDirectParsing,
		ParsingMode: itemparse.ModeSeparateItemsAndStats,
	})
	s.Require().NoError(err)
	s.Assert().Equal([]string{shape.NameBasic, shape.NameItem}, shapes)
	s.Assert().Equal(2, out.Calls)
	// not a weapon, so no reference lookup
	s.Assert().Equal(vtt.ItemTypeFeat, out.Item.Type)
}

func (s *OrchestratorTestSuite) TestSmallSchemaNoChunks() {
	s.mockProcessor.EXPECT().
		ProcessRequest(s.ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, in *extraction.AskInput) (*extraction.AskOutput, error) {
			s.Assert().Equal(shape.NameCore, in.Shape.Name)
			return answer(map[string]any{"name": "Ring of Warmth", "description": "", "itemType": "equipment"}), nil
		})

	out, err := s.orchestrator.ParseAndFormat(s.ctx, &itemparse.ParseInput{
		RawText:     "Ring of Warmth",
		Strategy:    itemparse.StrategyDirectParsing,
		ParsingMode: itemparse.ModeSmallSchemaNoChunks,
	})
	s.Require().NoError(err)
	s.Assert().Equal(vtt.ItemTypeEquipment, out.Item.Type)
	s.Assert().Equal(1, out.Calls)
}

func (s *OrchestratorTestSuite) TestSmallSchemaNoChunksIgnoresUndeclaredFields() {
	s.mockProcessor.EXPECT().
		ProcessRequest(s.ctx, gomock.Any()).
		Return(answer(map[string]any{
			"name":        "Bedroll",
			"description": "A warm roll.",
			"itemType":    "equipment",
			"weight":      "1 lb",
		}), nil)

	out, err := s.orchestrator.ParseAndFormat(s.ctx, &itemparse.ParseInput{
		RawText:     "Bedroll",
		Strategy:    itemparse.StrategyDirectParsing,
		ParsingMode: itemparse.ModeSmallSchemaNoChunks,
	})
	s.Require().NoError(err)
	s.Assert().Equal("Bedroll", out.Parsed.Name)
	s.Assert().Nil(out.Parsed.Weight)
}

func (s *OrchestratorTestSuite) TestSmallSchemaInChunksIgnoresFieldsOutsideEachChunk() {
	s.mockProcessor.EXPECT().
		ProcessRequest(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, in *extraction.AskInput) (*extraction.AskOutput, error) {
			switch in.Shape.Name {
			case shape.NameCore:
				return answer(map[string]any{
					"name": "Bedroll", "description": "A warm roll.", "itemType": "equipment",
					"weight": "1 lb",
				}), nil
			case shape.NamePhysical:
				return answer(map[string]any{"weight": map[string]any{"value": float64(7), "units": "lb"}}), nil
			default:
				return answer(map[string]any{"price": "5 sp"}), nil
			}
		}).
		Times(4)

	out, err := s.orchestrator.ParseAndFormat(s.ctx, &itemparse.ParseInput{
		RawText:     "Bedroll",
		Strategy:    itemparse.StrategyDirectParsing,
		ParsingMode: itemparse.ModeSmallSchemaInChunks,
	})
	s.Require().NoError(err)
	s.Require().NotNil(out.Parsed.Weight)
	s.Assert().Equal(float64(7), out.Parsed.Weight.Value)
	s.Assert().Nil(out.Parsed.Price)
}

func (s *OrchestratorTestSuite) TestUnreadableItemIsDiagnosedAsBadAnswer() {
	s.mockProcessor.EXPECT().
		ProcessRequest(s.ctx, gomock.Any()).
		Return(answer(map[string]any{
			"name":        "Bedroll",
			"description": "A warm roll.",
			"weight":      "1 lb",
		}), nil)
	s.mockNotifier.EXPECT().
		NotifyError(s.ctx, "read parsed item: Could not read the model's answer", gomock.Any(), gomock.Any()).
		Return(nil)

	_, err := s.orchestrator.ParseAndFormat(s.ctx, &itemparse.ParseInput{
		RawText:  "Bedroll",
		Strategy: itemparse.StrategyDirectParsing,
	})
	s.Require().Error(err)
	s.Assert().True(errors.IsInvalidArgument(err))
	s.Assert().True(shape.IsValidationError(err))
}

func (s *OrchestratorTestSuite) TestSmallSchemaInChunksMergesCoreFirst() {
	var mu sync.Mutex
	seen := map[string]*extraction.AskInput{}

	s.mockProcessor.EXPECT().
		ProcessRequest(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, in *extraction.AskInput) (*extraction.AskOutput, error) {
			mu.Lock()
			seen[in.Shape.Name] = in
			mu.Unlock()

			switch in.Shape.Name {
			case shape.NameCore:
				return answer(map[string]any{"name": "Poison Blade", "description": "Drips venom.", "itemType": "weapon"}), nil
			case shape.NameCombat:
				return answer(map[string]any{
					"damage": map[string]any{"parts": []any{[]any{"1d4 + @mod", "piercing"}}},
				}), nil
			case shape.NameUsage:
				return answer(map[string]any{"uses": map[string]any{"value": float64(3), "per": "day"}}), nil
			default:
				return answer(map[string]any{"name": "Wrong", "quantity": float64(2)}), nil
			}
		}).
		Times(4)
	s.mockSRD.EXPECT().
		LookupWeapon(gomock.Any(), "Poison Blade").
		Return(nil, errors.Unavailable("api down"))

	out, err := s.orchestrator.ParseAndFormat(s.ctx, &itemparse.ParseInput{
		RawText:     "Poison Blade",
		Strategy:    itemparse.StrategyDirectParsing,
		ParsingMode: itemparse.ModeSmallSchemaInChunks,
	})
	s.Require().NoError(err)
	s.Assert().Equal(4, out.Calls)
	s.Assert().False(out.Enriched)
	s.Assert().Equal("Poison Blade", out.Parsed.Name)
	s.Assert().Equal(2, out.Parsed.Quantity)
	s.Require().NotNil(out.Parsed.Uses)
	s.Require().NotNil(out.Parsed.Uses.Value)
	s.Assert().Equal(3, *out.Parsed.Uses.Value)

	s.Require().Len(seen, 4)
	combat := seen[shape.NameCombat]
	s.Assert().True(strings.HasPrefix(combat.Prompt, batch.ChunkPrefix))
	s.Assert().Equal("damage, save, range, armorClass", combat.Inputs["fields"])
	s.Assert().Empty(combat.Overrides)
}

func (s *OrchestratorTestSuite) TestChunkFailureFailsParse() {
	s.mockProcessor.EXPECT().
		ProcessRequest(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, in *extraction.AskInput) (*extraction.AskOutput, error) {
			if in.Shape.Name == shape.NameUsage {
				return nil, errors.Provider("openai", 500, nil)
			}
			return answer(map[string]any{"name": "x", "description": ""}), nil
		}).
		AnyTimes()

	_, err := s.orchestrator.ParseAndFormat(s.ctx, &itemparse.ParseInput{
		RawText:     "x",
		Strategy:    itemparse.StrategyDirectParsing,
		ParsingMode: itemparse.ModeSmallSchemaInChunks,
	})
	s.Require().Error(err)
	s.Assert().Contains(err.Error(), "item-usage extraction failed")
	s.Assert().Equal(500, errors.StatusCode(err))
}

func (s *OrchestratorTestSuite) TestBasicPassFailure() {
	s.mockProcessor.EXPECT().
		ProcessRequest(s.ctx, gomock.Any()).
		Return(nil, errors.Provider("anthropic", 401, nil))

	_, err := s.orchestrator.ParseAndFormat(s.ctx, &itemparse.ParseInput{RawText: "Dagger"})
	s.Require().Error(err)
	s.Assert().Equal(401, errors.StatusCode(err))
}

func (s *OrchestratorTestSuite) TestNamelessResultIsRejected() {
	s.mockProcessor.EXPECT().
		ProcessRequest(s.ctx, gomock.Any()).
		Return(answer(map[string]any{"description": "???"}), nil)
	s.mockNotifier.EXPECT().
		NotifyError(s.ctx, "read parsed item: Could not read the model's answer", gomock.Any(), gomock.Any()).
		Return(nil)

	_, err := s.orchestrator.ParseAndFormat(s.ctx, &itemparse.ParseInput{
		RawText:  "???",
		Strategy: itemparse.StrategyDirectParsing,
	})
	s.Assert().True(errors.IsInvalidArgument(err))
}

func (s *OrchestratorTestSuite) TestPersist() {
	s.mockProcessor.EXPECT().
		ProcessRequest(s.ctx, gomock.Any()).
		Return(answer(map[string]any{"name": "Potion of Healing", "description": "Heals 2d4 + 2.", "itemType": "consumable"}), nil)
	s.mockItems.EXPECT().
		Create(s.ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, in *items.CreateInput) (*items.CreateOutput, error) {
			s.Assert().Equal("Potion of Healing", in.Item.Name)
			s.Assert().Equal("Potion of Healing\nHeals 2d4 + 2.", in.RawText)
			return &items.CreateOutput{Record: &items.Record{ID: "item_1", Item: in.Item}}, nil
		})

	out, err := s.orchestrator.ParseAndFormat(s.ctx, &itemparse.ParseInput{
		RawText:  "Potion of Healing\nHeals 2d4 + 2.",
		Strategy: itemparse.StrategyDirectParsing,
		Persist:  true,
	})
	s.Require().NoError(err)
	s.Assert().Equal("item_1", out.ID)
}

func (s *OrchestratorTestSuite) TestPersistFailure() {
	s.mockProcessor.EXPECT().
		ProcessRequest(s.ctx, gomock.Any()).
		Return(answer(map[string]any{"name": "Rope", "description": "", "itemType": "loot"}), nil)
	s.mockItems.EXPECT().
		Create(s.ctx, gomock.Any()).
		Return(nil, errors.Unavailable("redis down"))
	s.mockNotifier.EXPECT().
		NotifyError(s.ctx, "store Rope: Could not store the item", gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _, body string, opts *notify.Options) error {
			s.Assert().Contains(body, "redis down")
			s.Assert().True(opts.Persistent)
			return nil
		})

	_, err := s.orchestrator.ParseAndFormat(s.ctx, &itemparse.ParseInput{
		RawText:  "Rope",
		Strategy: itemparse.StrategyDirectParsing,
		Persist:  true,
	})
	s.Require().Error(err)
	s.Assert().Equal(errors.CodeUnavailable, errors.GetCode(err))
}
