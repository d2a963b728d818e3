package diagnosis_test

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/KirkDiggler/rpg-item-parser/internal/diagnosis"
	"github.com/KirkDiggler/rpg-item-parser/internal/errors"
	"github.com/KirkDiggler/rpg-item-parser/internal/notify"
	notifymock "github.com/KirkDiggler/rpg-item-parser/internal/notify/mock"
	"github.com/KirkDiggler/rpg-item-parser/internal/shape"
)

type DiagnosisTestSuite struct {
	suite.Suite
	ctrl         *gomock.Controller
	mockNotifier *notifymock.MockNotifier
	reporter     *diagnosis.Reporter
	ctx          context.Context
}

func TestDiagnosisSuite(t *testing.T) {
	suite.Run(t, new(DiagnosisTestSuite))
}

func (s *DiagnosisTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockNotifier = notifymock.NewMockNotifier(s.ctrl)
	s.reporter = diagnosis.NewReporter(&diagnosis.ReporterConfig{Notifier: s.mockNotifier})
	s.ctx = context.Background()
}

func (s *DiagnosisTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *DiagnosisTestSuite) TestAnalyze() {
	testCases := []struct {
		name       string
		err        error
		category   diagnosis.Category
		quota      bool
		rateLimit  bool
		retryAfter time.Duration
	}{
		{
			name:     "quota text",
			err:      stderrors.New("You exceeded your current quota, please check your plan"),
			category: diagnosis.CategoryQuota,
			quota:    true,
		},
		{
			name: "quota wins over 429",
			err: errors.Provider("openai", 429, nil).
				WithMeta(errors.MetaErrorType, "insufficient_quota"),
			category: diagnosis.CategoryQuota,
			quota:    true,
		},
		{
			name: "429 with retry after",
			err: errors.Provider("openai", 429, nil).
				WithMeta(errors.MetaRetryAfter, "20"),
			category:   diagnosis.CategoryRateLimit,
			rateLimit:  true,
			retryAfter: 20 * time.Second,
		},
		{
			name: "rate limit error type without 429",
			err: errors.Provider("anthropic", 400, nil).
				WithMeta(errors.MetaErrorType, "rate_limit_error"),
			category:  diagnosis.CategoryRateLimit,
			rateLimit: true,
		},
		{
			name:       "rate limit text",
			err:        stderrors.New("Rate limit reached for gpt-4o"),
			category:   diagnosis.CategoryRateLimit,
			rateLimit:  true,
			retryAfter: 0,
		},
		{
			name:     "unauthorized",
			err:      errors.Provider("anthropic", 401, nil),
			category: diagnosis.CategoryHTTP,
		},
		{
			name:     "server error",
			err:      errors.Provider("openai", 503, nil),
			category: diagnosis.CategoryHTTP,
		},
		{
			name:     "malformed response",
			err:      fmt.Errorf("ask: %w", &shape.ValidationError{Shape: "item", Issues: []shape.Issue{{Path: "name", Message: "is required"}}}),
			category: diagnosis.CategoryParse,
		},
		{
			name:     "canceled",
			err:      context.Canceled,
			category: diagnosis.CategoryCanceled,
		},
		{
			name:     "unknown",
			err:      stderrors.New("something odd"),
			category: diagnosis.CategoryUnknown,
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			d := diagnosis.Analyze(tc.err)
			s.Require().NotNil(d)
			s.Assert().Equal(tc.category, d.Category)
			s.Assert().Equal(tc.quota, d.IsQuotaError)
			s.Assert().Equal(tc.rateLimit, d.IsRateLimitError)
			s.Assert().Equal(tc.retryAfter, d.RetryAfter)
			s.Assert().Equal(tc.err.Error(), d.TechnicalMessage)
			s.Assert().NotEmpty(d.UserMessage)
			s.Assert().NotEmpty(d.SuggestedAction)
		})
	}

	s.Assert().Nil(diagnosis.Analyze(nil))
}

func (s *DiagnosisTestSuite) TestHTTPMessages() {
	d401 := diagnosis.Analyze(errors.Provider("openai", 401, nil))
	s.Assert().Contains(d401.SuggestedAction, "credential validate")
	s.Assert().Equal(401, d401.StatusCode)

	d403 := diagnosis.Analyze(errors.Provider("openai", 403, nil))
	s.Assert().Contains(d403.SuggestedAction, "permission")

	d404 := diagnosis.Analyze(errors.Provider("openai", 404, nil))
	s.Assert().Contains(d404.SuggestedAction, "provider.model")

	d502 := diagnosis.Analyze(errors.Provider("openai", 502, nil))
	s.Assert().Contains(d502.UserMessage, "trouble")
	s.Assert().Equal("Provider error (502)", d502.Title())
}

func (s *DiagnosisTestSuite) TestStorage() {
	s.Assert().Nil(diagnosis.Storage(nil))

	d := diagnosis.Storage(errors.Unavailable("redis down"))
	s.Assert().Equal(diagnosis.CategoryStorage, d.Category)
	s.Assert().Equal("Could not store the item", d.Title())
	s.Assert().Contains(d.TechnicalMessage, "redis down")
	s.Assert().Contains(d.SuggestedAction, "--persist")
}

func (s *DiagnosisTestSuite) TestDisplaySendsPersistentNotification() {
	d := diagnosis.Analyze(errors.Provider("openai", 429, nil))

	s.mockNotifier.EXPECT().
		NotifyError(s.ctx, "Parsing Dagger +1: Rate limit reached", gomock.Any(), &notify.Options{Persistent: true}).
		DoAndReturn(func(_ context.Context, _, body string, _ *notify.Options) error {
			s.Assert().Contains(body, "<details><summary>Technical details</summary>")
			s.Assert().Contains(body, "Suggested action:")
			return nil
		})

	s.reporter.Display(s.ctx, d, "Parsing Dagger +1")
}

func (s *DiagnosisTestSuite) TestDisplaySwallowsNotifierFailure() {
	d := diagnosis.Analyze(stderrors.New("boom"))

	s.mockNotifier.EXPECT().
		NotifyError(s.ctx, gomock.Any(), gomock.Any(), gomock.Any()).
		Return(errors.Unavailable("no console"))

	s.Assert().NotPanics(func() {
		s.reporter.Display(s.ctx, d, "")
	})
}

func (s *DiagnosisTestSuite) TestDisplayRecoversFromPanickingNotifier() {
	d := diagnosis.Analyze(stderrors.New("boom"))

	s.mockNotifier.EXPECT().
		NotifyError(s.ctx, gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, string, string, *notify.Options) error {
			panic("broken surface")
		})

	s.Assert().NotPanics(func() {
		s.reporter.Display(s.ctx, d, "")
	})
}

func (s *DiagnosisTestSuite) TestDisplayWithoutNotifier() {
	r := diagnosis.NewReporter(nil)
	s.Assert().NotPanics(func() {
		r.Display(s.ctx, diagnosis.Analyze(stderrors.New("boom")), "x")
		r.Display(s.ctx, nil, "x")
	})
}

func (s *DiagnosisTestSuite) TestRenderHTMLEscapes() {
	body := diagnosis.RenderHTML(&diagnosis.Diagnosis{
		UserMessage:      "a < b",
		TechnicalMessage: "<script>",
	})
	s.Assert().Contains(body, "a &lt; b")
	s.Assert().Contains(body, "&lt;script&gt;")
	s.Assert().NotContains(body, "Suggested action")
}
