package credential_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/KirkDiggler/rpg-item-parser/internal/clients/llm"
	llmmock "github.com/KirkDiggler/rpg-item-parser/internal/clients/llm/mock"
	"github.com/KirkDiggler/rpg-item-parser/internal/errors"
	credentialsmock "github.com/KirkDiggler/rpg-item-parser/internal/repositories/credentials/mock"
	"github.com/KirkDiggler/rpg-item-parser/internal/services/credential"
)

type CredentialServiceTestSuite struct {
	suite.Suite
	ctrl       *gomock.Controller
	mockStore  *credentialsmock.MockRepository
	mockLister *llmmock.MockModelLister
	service    *credential.Service
	ctx        context.Context
	usedKey    string
}

func TestCredentialServiceSuite(t *testing.T) {
	suite.Run(t, new(CredentialServiceTestSuite))
}

func (s *CredentialServiceTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockStore = credentialsmock.NewMockRepository(s.ctrl)
	s.mockLister = llmmock.NewMockModelLister(s.ctrl)
	s.ctx = context.Background()
	s.usedKey = ""

	svc, err := credential.New(&credential.Config{
		Credentials: s.mockStore,
		Listers: func(_, apiKey string) (llm.ModelLister, error) {
			s.usedKey = apiKey
			return s.mockLister, nil
		},
	})
	s.Require().NoError(err)
	s.service = svc
}

func (s *CredentialServiceTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *CredentialServiceTestSuite) TestNew() {
	_, err := credential.New(nil)
	s.Assert().Error(err)

	_, err = credential.New(&credential.Config{})
	s.Assert().True(errors.IsInvalidArgument(err))
}

func (s *CredentialServiceTestSuite) TestValidate() {
	testCases := []struct {
		name     string
		provider string
		models   []string
		listErr  error
		expected credential.Status
	}{
		{
			name:     "openai key with gpt-4 access",
			provider: "openai",
			models:   []string{"whisper-1", "gpt-4o-mini"},
			expected: credential.StatusValid,
		},
		{
			name:     "openai key without gpt-4",
			provider: "openai",
			models:   []string{"gpt-3.5-turbo"},
			expected: credential.StatusNoModelAccess,
		},
		{
			name:     "anthropic key",
			provider: "Anthropic",
			models:   []string{"claude-3-5-haiku-20241022"},
			expected: credential.StatusValid,
		},
		{
			name:     "unauthorized",
			provider: "openai",
			listErr:  errors.Provider("openai", 401, nil),
			expected: credential.StatusInvalidKey,
		},
		{
			name:     "forbidden",
			provider: "anthropic",
			listErr:  errors.Provider("anthropic", 403, nil),
			expected: credential.StatusInvalidKey,
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.mockLister.EXPECT().ListModels(s.ctx).Return(tc.models, tc.listErr)

			out, err := s.service.Validate(s.ctx, &credential.ValidateInput{Provider: tc.provider, APIKey: "sk-given"})
			s.Require().NoError(err)
			s.Assert().Equal(tc.expected, out.Status)
			s.Assert().Equal("sk-given", s.usedKey)
		})
	}
}

func (s *CredentialServiceTestSuite) TestValidateStoredKey() {
	s.mockStore.EXPECT().Get(s.ctx, "openai").Return("sk-stored", nil)
	s.mockLister.EXPECT().ListModels(s.ctx).Return([]string{"gpt-4o"}, nil)

	out, err := s.service.Validate(s.ctx, &credential.ValidateInput{Provider: "openai"})
	s.Require().NoError(err)
	s.Assert().Equal(credential.StatusValid, out.Status)
	s.Assert().Equal("sk-stored", s.usedKey)
	s.Assert().Equal("gpt-4", out.Family)
}

func (s *CredentialServiceTestSuite) TestValidateWithoutStoredKey() {
	s.mockStore.EXPECT().Get(s.ctx, "openai").Return("", errors.NotFound("no credential"))

	out, err := s.service.Validate(s.ctx, &credential.ValidateInput{Provider: "openai"})
	s.Require().NoError(err)
	s.Assert().Equal(credential.StatusInvalidKey, out.Status)
}

func (s *CredentialServiceTestSuite) TestProbeFailure() {
	s.mockLister.EXPECT().ListModels(s.ctx).Return(nil, errors.Provider("openai", 503, nil))

	_, err := s.service.Validate(s.ctx, &credential.ValidateInput{Provider: "openai", APIKey: "sk"})
	s.Assert().Error(err)
	s.Assert().Equal(503, errors.StatusCode(err))
}

func (s *CredentialServiceTestSuite) TestModelFamilyOverride() {
	svc, err := credential.New(&credential.Config{
		Credentials: s.mockStore,
		ModelFamily: "O1",
		Listers: func(string, string) (llm.ModelLister, error) {
			return s.mockLister, nil
		},
	})
	s.Require().NoError(err)

	s.mockLister.EXPECT().ListModels(s.ctx).Return([]string{"gpt-4o", "o1-mini"}, nil)
	out, err := svc.Validate(s.ctx, &credential.ValidateInput{Provider: "openai", APIKey: "sk"})
	s.Require().NoError(err)
	s.Assert().Equal(credential.StatusValid, out.Status)
	s.Assert().Equal("o1", out.Family)
}

func (s *CredentialServiceTestSuite) TestSetAndGetCredential() {
	s.mockStore.EXPECT().Set(s.ctx, "openai", "sk-new").Return(nil)
	s.mockStore.EXPECT().Get(s.ctx, "openai").Return("sk-new", nil)

	s.Require().NoError(s.service.SetCredential(s.ctx, "openai", "sk-new"))
	key, err := s.service.GetCredential(s.ctx, "openai")
	s.Require().NoError(err)
	s.Assert().Equal("sk-new", key)
}
