package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/KirkDiggler/rpg-item-parser/internal/batch"
	"github.com/KirkDiggler/rpg-item-parser/internal/config"
	"github.com/KirkDiggler/rpg-item-parser/internal/entities/item"
	"github.com/KirkDiggler/rpg-item-parser/internal/entities/vtt"
	"github.com/KirkDiggler/rpg-item-parser/internal/errors"
	extractionmock "github.com/KirkDiggler/rpg-item-parser/internal/extraction/mock"
	"github.com/KirkDiggler/rpg-item-parser/internal/orchestrators/dice"
	"github.com/KirkDiggler/rpg-item-parser/internal/orchestrators/itemparse"
	itemparsemock "github.com/KirkDiggler/rpg-item-parser/internal/orchestrators/itemparse/mock"
	"github.com/KirkDiggler/rpg-item-parser/internal/projector"
	"github.com/KirkDiggler/rpg-item-parser/internal/repositories/items"
	"github.com/KirkDiggler/rpg-item-parser/internal/repositories/settings"
	"github.com/KirkDiggler/rpg-item-parser/internal/services/credential"
)

func TestRender(t *testing.T) {
	v := struct {
		Name  string `json:"name"`
		Code  string `json:"code"`
		Notes string `json:"notes"`
		Count int    `json:"count"`
	}{Name: "Dagger +1", Code: "1", Notes: "line one\nline two", Count: 2}

	var out bytes.Buffer
	require.NoError(t, render(&out, formatJSON, v))
	assert.JSONEq(t, `{"name":"Dagger +1","code":"1","notes":"line one\nline two","count":2}`, out.String())

	out.Reset()
	require.NoError(t, render(&out, formatYAML, v))
	yamlOut := out.String()
	assert.True(t, strings.HasPrefix(yamlOut, "name: Dagger +1\n"), yamlOut)
	assert.Contains(t, yamlOut, `code: "1"`)
	assert.Contains(t, yamlOut, "notes: |-\n  line one\n  line two\n")
	assert.Contains(t, yamlOut, "count: 2\n")
	assert.Less(t, strings.Index(yamlOut, "code:"), strings.Index(yamlOut, "notes:"))

	err := render(&out, "xml", v)
	assert.True(t, errors.IsInvalidArgument(err))
}

func TestReadText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dagger.txt")
	require.NoError(t, os.WriteFile(path, []byte("  Dagger +1\n"), 0o600))

	text, err := readText(nil, path, strings.NewReader("ignored"))
	require.NoError(t, err)
	assert.Equal(t, "Dagger +1", text)

	text, err = readText([]string{"Longsword"}, "", strings.NewReader("ignored"))
	require.NoError(t, err)
	assert.Equal(t, "Longsword", text)

	text, err = readText([]string{"-"}, "", strings.NewReader("Venomfang\n"))
	require.NoError(t, err)
	assert.Equal(t, "Venomfang", text)

	_, err = readText(nil, "", strings.NewReader("   "))
	assert.True(t, errors.IsInvalidArgument(err))

	_, err = readText(nil, filepath.Join(dir, "missing.txt"), nil)
	assert.Error(t, err)
}

type CommandTestSuite struct {
	suite.Suite
	ctrl       *gomock.Controller
	mockParser *itemparsemock.MockService
	ctx        context.Context
	out        *bytes.Buffer
	status     *bytes.Buffer
	longsword  *vtt.Item
}

func TestCommandSuite(t *testing.T) {
	suite.Run(t, new(CommandTestSuite))
}

func (s *CommandTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockParser = itemparsemock.NewMockService(s.ctrl)
	s.ctx = context.Background()
	s.out = &bytes.Buffer{}
	s.status = &bytes.Buffer{}
	format = formatJSON

	s.longsword = projector.Project(&item.Item{
		Name:     "Longsword",
		ItemType: item.TypeWeapon,
		Damage: &item.Damage{
			Parts: []item.DamagePart{{Formula: "1d8 + @mod", Type: "slashing"}},
		},
	})
}

func (s *CommandTestSuite) TearDownTest() {
	s.ctrl.Finish()
	format = formatYAML
}

func (s *CommandTestSuite) TestRunParse() {
	input := &itemparse.ParseInput{RawText: "Longsword", ParsingMode: itemparse.ModeOneCall}
	s.mockParser.EXPECT().
		ParseAndFormat(s.ctx, input).
		Return(&itemparse.ParseOutput{Item: s.longsword}, nil)

	err := runParse(s.ctx, s.mockParser, s.out, s.status, input)
	s.Require().NoError(err)
	s.Contains(s.out.String(), `"name": "Longsword"`)
	s.Empty(s.status.String())
}

func (s *CommandTestSuite) TestRunParse_Persisted() {
	s.mockParser.EXPECT().
		ParseAndFormat(s.ctx, gomock.Any()).
		Return(&itemparse.ParseOutput{ID: "item_1", Item: s.longsword}, nil)

	err := runParse(s.ctx, s.mockParser, s.out, s.status, &itemparse.ParseInput{RawText: "Longsword", Persist: true})
	s.Require().NoError(err)
	s.Equal("Stored Longsword as item_1\n", s.status.String())
}

func (s *CommandTestSuite) TestRunParse_Error() {
	s.mockParser.EXPECT().
		ParseAndFormat(s.ctx, gomock.Any()).
		Return(nil, errors.Unavailable("model is overloaded"))

	err := runParse(s.ctx, s.mockParser, s.out, s.status, &itemparse.ParseInput{RawText: "Longsword"})
	s.Require().Error(err)
	s.Equal(errors.CodeUnavailable, errors.GetCode(err))
	s.Empty(s.out.String())
}

func (s *CommandTestSuite) TestRunParseBatch() {
	dir := s.T().TempDir()
	good := filepath.Join(dir, "longsword.txt")
	bad := filepath.Join(dir, "gibberish.txt")
	missing := filepath.Join(dir, "missing.txt")
	s.Require().NoError(os.WriteFile(good, []byte("Longsword\n"), 0o600))
	s.Require().NoError(os.WriteFile(bad, []byte("???"), 0o600))

	s.mockParser.EXPECT().
		ParseAndFormat(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, input *itemparse.ParseInput) (*itemparse.ParseOutput, error) {
			s.Equal(itemparse.ModeSmallSchemaInChunks, input.ParsingMode)
			if input.RawText == "Longsword" {
				return &itemparse.ParseOutput{ID: "item_1", Item: s.longsword}, nil
			}
			return nil, errors.InvalidArgument("parsed item has no name")
		}).
		Times(2)

	err := runParseBatch(s.ctx, s.mockParser, s.out, []string{good, bad, missing}, &itemparse.ParseInput{
		ParsingMode: itemparse.ModeSmallSchemaInChunks,
	})
	s.Require().Error(err)
	s.Contains(err.Error(), "2 of 3 items failed")

	got := s.out.String()
	s.Less(strings.Index(got, good), strings.Index(got, bad))
	s.Less(strings.Index(got, bad), strings.Index(got, missing))
	s.Contains(got, `"id": "item_1"`)
	s.Contains(got, "parsed item has no name")
	s.Contains(got, "failed to read file")
}

func (s *CommandTestSuite) TestRunPreview() {
	roller, err := dice.NewOrchestrator(&dice.Config{Roller: fixedRoller(4)})
	s.Require().NoError(err)

	err = runPreview(s.ctx, roller, s.out, s.longsword, 3)
	s.Require().NoError(err)

	got := s.out.String()
	s.Contains(got, "Longsword (modifier +3)")
	s.Contains(got, "Damage Type: slashing")
	s.Contains(got, "Individual Dice: [4]")
	s.Contains(got, "Total: 7")
}

func (s *CommandTestSuite) TestRunPreview_NoDamage() {
	roller, err := dice.NewOrchestrator(&dice.Config{Roller: fixedRoller(4)})
	s.Require().NoError(err)

	rope := projector.Project(&item.Item{Name: "Rope of Climbing", ItemType: item.TypeEquipment})
	err = runPreview(s.ctx, roller, s.out, rope, 0)
	s.True(errors.IsInvalidArgument(err))
}

func (s *CommandTestSuite) TestSetSetting() {
	asker := extractionmock.NewMockAsker(s.ctrl)
	batcher, err := batch.New(&batch.Config{
		Asker:        asker,
		MaxBatchSize: batch.DefaultMaxBatchSize,
		Timeout:      batch.DefaultTimeout,
	})
	s.Require().NoError(err)
	defer batcher.Close()

	store := settings.NewInMemory()
	a := &app{cfg: config.Defaults(), settings: store, batcher: batcher}

	s.Require().NoError(a.setSetting(s.ctx, "batch.enabled", "true"))
	s.True(a.cfg.Batch.Enabled)
	s.True(batcher.Enabled())

	stored, err := store.Get(s.ctx, &settings.GetInput{Key: "batch.enabled"})
	s.Require().NoError(err)
	s.Equal("true", stored.Value)

	err = a.setSetting(s.ctx, "batch.max_size", "500")
	s.True(errors.IsInvalidArgument(err))
	_, err = store.Get(s.ctx, &settings.GetInput{Key: "batch.max_size"})
	s.True(errors.IsNotFound(err))
	s.Equal(batch.DefaultMaxBatchSize, a.cfg.Batch.MaxSize)

	s.Require().NoError(a.setSetting(s.ctx, "batch.enabled", "false"))
	s.False(batcher.Enabled())
}

func (s *CommandTestSuite) TestListSettings() {
	store := settings.NewInMemory()
	a := &app{cfg: config.Defaults(), settings: store}
	s.Require().NoError(a.setSetting(s.ctx, "parsing.default_mode", "small_schema_no_chunks"))

	s.Require().NoError(listSettings(s.ctx, a, s.out))

	lines := strings.Split(strings.TrimRight(s.out.String(), "\n"), "\n")
	s.Len(lines, len(config.Keys()))
	s.Contains(lines, "* parsing.default_mode = SMALL_SCHEMA_NO_CHUNKS")
	s.Contains(lines, "  batch.enabled = false")
}

func (s *CommandTestSuite) TestListItems() {
	repo := items.NewInMemory()

	s.Require().NoError(listItems(s.ctx, repo, s.out, 0))
	s.Equal("No items stored\n", s.out.String())

	created, err := repo.Create(s.ctx, &items.CreateInput{Item: s.longsword, RawText: "Longsword"})
	s.Require().NoError(err)

	s.out.Reset()
	s.Require().NoError(listItems(s.ctx, repo, s.out, 0))
	s.Contains(s.out.String(), created.Record.ID)
	s.Contains(s.out.String(), "Longsword")
	s.Contains(s.out.String(), "weapon")
}

func (s *CommandTestSuite) TestRunValidate() {
	testCases := []struct {
		name    string
		result  *credential.ValidateOutput
		want    string
		wantErr bool
	}{
		{
			name:   "valid",
			result: &credential.ValidateOutput{Status: credential.StatusValid, Models: []string{"gpt-4o", "gpt-4o-mini"}, Family: "gpt-4"},
			want:   "openai: VALID\n  2 models available\n",
		},
		{
			name:    "no model access",
			result:  &credential.ValidateOutput{Status: credential.StatusNoModelAccess, Models: []string{"whisper-1"}, Family: "gpt-4"},
			want:    "openai: NO_MODEL_ACCESS\n  no gpt-4 model among 1 available\n",
			wantErr: true,
		},
		{
			name:    "invalid key",
			result:  &credential.ValidateOutput{Status: credential.StatusInvalidKey, Family: "gpt-4"},
			want:    "openai: INVALID_KEY\n",
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			var out bytes.Buffer
			v := validatorFunc(func(context.Context, *credential.ValidateInput) (*credential.ValidateOutput, error) {
				return tc.result, nil
			})

			err := runValidate(s.ctx, v, &out, &credential.ValidateInput{Provider: "openai"})
			s.Equal(tc.want, out.String())
			if tc.wantErr {
				s.Equal(errors.CodeFailedPrecondition, errors.GetCode(err))
			} else {
				s.NoError(err)
			}
		})
	}
}

type validatorFunc func(ctx context.Context, input *credential.ValidateInput) (*credential.ValidateOutput, error)

func (f validatorFunc) Validate(ctx context.Context, input *credential.ValidateInput) (*credential.ValidateOutput, error) {
	return f(ctx, input)
}

// fixedRoller rolls every die as its value
type fixedRoller int

func (r fixedRoller) Roll(_ int) (int, error) { return int(r), nil }

func (r fixedRoller) RollN(count, _ int) ([]int, error) {
	out := make([]int, count)
	for i := range out {
		out[i] = int(r)
	}
	return out, nil
}
