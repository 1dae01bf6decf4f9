// ABOUTME: Tests for the onboarding wizard transition table, guards and submission
// ABOUTME: Uses a fake onboarding endpoint to observe exactly what is submitted

package onboarding

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/nova-dashboard/internal/form"
	"github.com/2389/nova-dashboard/internal/novaapi"
)

var longDescription = strings.Repeat("We bake sourdough bread daily. ", 3)

type fakeOnboardAPI struct {
	calls []novaapi.OnboardRequest
	token string
	err   error
}

func (f *fakeOnboardAPI) Onboard(ctx context.Context, token string, req novaapi.OnboardRequest) error {
	f.token = token
	f.calls = append(f.calls, req)
	return f.err
}

func TestNewWizardDefaults(t *testing.T) {
	w := NewWizard()
	assert.Equal(t, 1, w.Step.Number())
	assert.Equal(t, "Nova", w.Draft.AgentName)
	assert.Equal(t, Friendly, w.Draft.PersonalityType)
	assert.False(t, w.Done())
}

func TestDescriptionGuard(t *testing.T) {
	w := NewWizard()
	w.Draft.BusinessDescription = strings.Repeat("x", 49)

	err := w.Apply(ActionNext)
	v, ok := form.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, MsgDescriptionTooShort, v.Message)
	assert.Equal(t, MsgDescriptionTooShort, w.Error)
	assert.IsType(t, DescriptionStep{}, w.Step)

	w.Draft.BusinessDescription = strings.Repeat(" ", 60)
	assert.Error(t, w.Apply(ActionNext))

	w.Draft.BusinessDescription = strings.Repeat("x", 50)
	require.NoError(t, w.Apply(ActionNext))
	assert.IsType(t, KnowledgeBaseStep{}, w.Step)
	assert.Empty(t, w.Error)
}

func TestTransitionTable(t *testing.T) {
	tests := []struct {
		name    string
		from    Step
		action  Action
		want    Step
		invalid bool
	}{
		{"kb next", KnowledgeBaseStep{}, ActionNext, IdentityStep{}, false},
		{"kb skip", KnowledgeBaseStep{}, ActionSkip, IdentityStep{}, false},
		{"kb back", KnowledgeBaseStep{}, ActionBack, DescriptionStep{}, false},
		{"identity back", IdentityStep{}, ActionBack, KnowledgeBaseStep{}, false},
		{"description back", DescriptionStep{}, ActionBack, DescriptionStep{}, true},
		{"description submit", DescriptionStep{}, ActionSubmit, DescriptionStep{}, true},
		{"identity next", IdentityStep{}, ActionNext, IdentityStep{}, true},
		{"done next", DoneStep{}, ActionNext, DoneStep{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWizard()
			w.Draft.BusinessDescription = longDescription
			w.Step = tt.from

			err := w.Apply(tt.action)
			if tt.invalid {
				assert.ErrorIs(t, err, ErrInvalidTransition)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, w.Step)
		})
	}
}

func TestSkipClearsLinks(t *testing.T) {
	w := NewWizard()
	w.Step = KnowledgeBaseStep{}
	w.SetKnowledgeBaseURLs([]string{" https://example.com/faq ", "", "", "", "", "https://ignored.example"})
	assert.Equal(t, "https://example.com/faq", w.Draft.KnowledgeBaseURLs[0])

	require.NoError(t, w.Apply(ActionSkip))
	assert.Equal(t, [KnowledgeBaseSlots]string{}, w.Draft.KnowledgeBaseURLs)
}

func TestSubmit_Success(t *testing.T) {
	api := &fakeOnboardAPI{}
	w := NewWizard()
	w.Draft.BusinessDescription = longDescription
	require.NoError(t, w.Apply(ActionNext))
	w.SetKnowledgeBaseURLs([]string{"https://example.com/faq"})
	require.NoError(t, w.Apply(ActionNext))
	w.Draft.AgentName = "  Ada  "
	w.Draft.PersonalityType = Luxury

	require.NoError(t, w.Submit(t.Context(), api, "tok"))
	assert.True(t, w.Done())
	assert.Equal(t, "tok", api.token)
	assert.Equal(t, []novaapi.OnboardRequest{{
		AgentName:           "Ada",
		BusinessDescription: longDescription,
		PersonalityType:     "luxury",
	}}, api.calls)
}

func TestSubmit_RequiresAgentName(t *testing.T) {
	api := &fakeOnboardAPI{}
	w := NewWizard()
	w.Step = IdentityStep{}
	w.Draft.BusinessDescription = longDescription
	w.Draft.AgentName = "   "

	err := w.Submit(t.Context(), api, "tok")
	v, ok := form.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, MsgAgentNameRequired, v.Message)
	assert.Empty(t, api.calls)
}

func TestSubmit_RechecksDescription(t *testing.T) {
	api := &fakeOnboardAPI{}
	w := NewWizard()
	w.Step = IdentityStep{}
	w.Draft.BusinessDescription = "too short"

	assert.Error(t, w.Submit(t.Context(), api, "tok"))
	assert.Equal(t, MsgDescriptionTooShort, w.Error)
	assert.Empty(t, api.calls)
}

func TestSubmit_OnlyFromIdentity(t *testing.T) {
	w := NewWizard()
	w.Draft.BusinessDescription = longDescription
	err := w.Submit(t.Context(), &fakeOnboardAPI{}, "tok")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestSubmit_FailureStaysForRetry(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"detail", &novaapi.Error{Kind: novaapi.KindValidation, Status: http.StatusBadRequest, Detail: "Description rejected"}, "Description rejected"},
		{"generic", &novaapi.Error{Kind: novaapi.KindTransport, Err: errors.New("reset")}, MsgSubmitFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeOnboardAPI{err: tt.err}
			w := NewWizard()
			w.Step = IdentityStep{}
			w.Draft.BusinessDescription = longDescription

			assert.Error(t, w.Submit(t.Context(), api, "tok"))
			assert.IsType(t, IdentityStep{}, w.Step)
			assert.Equal(t, tt.want, w.Error)

			api.err = nil
			require.NoError(t, w.Submit(t.Context(), api, "tok"))
			assert.Len(t, api.calls, 2)
		})
	}
}

func TestAcceptUpload(t *testing.T) {
	for _, name := range []string{"a.pdf", "b.DOC", "c.docx", "notes.TXT"} {
		assert.True(t, AcceptUpload(name), name)
	}
	for _, name := range []string{"a.png", "archive.zip", "noext", "doc.pdf.exe"} {
		assert.False(t, AcceptUpload(name), name)
	}
}

func TestApplyExtraction(t *testing.T) {
	w := NewWizard()
	w.Draft.BusinessDescription = "typed"

	w.ApplyExtraction("", errors.New("boom"))
	assert.Equal(t, "typed", w.Draft.BusinessDescription)
	assert.Equal(t, MsgExtractionFailed, w.Error)

	w.ApplyExtraction("extracted text", nil)
	assert.Equal(t, "extracted text", w.Draft.BusinessDescription)
	assert.Empty(t, w.Error)
}

func TestPersonalities(t *testing.T) {
	p, ok := ParsePersonality("professional")
	assert.True(t, ok)
	assert.Equal(t, Professional, p)
	assert.Equal(t, "Professional", p.Info().Title)

	_, ok = ParsePersonality("grumpy")
	assert.False(t, ok)
	assert.Equal(t, Friendly, Personality("grumpy").Info().Type)
	assert.Len(t, Personalities(), 3)
}

func TestDrafts(t *testing.T) {
	d := NewDrafts()

	require.NoError(t, d.With("s1", func(w *Wizard) error {
		w.Draft.BusinessDescription = longDescription
		return w.Apply(ActionNext)
	}))
	require.NoError(t, d.With("s1", func(w *Wizard) error {
		assert.IsType(t, KnowledgeBaseStep{}, w.Step)
		return nil
	}))
	require.NoError(t, d.With("s2", func(w *Wizard) error {
		assert.IsType(t, DescriptionStep{}, w.Step)
		return nil
	}))
	assert.Equal(t, 2, d.Len())

	api := &fakeOnboardAPI{}
	require.NoError(t, d.With("s1", func(w *Wizard) error {
		require.NoError(t, w.Apply(ActionSkip))
		return w.Submit(context.Background(), api, "tok")
	}))
	assert.Equal(t, 1, d.Len(), "completed wizard is discarded")

	d.Discard("s2")
	assert.Equal(t, 0, d.Len())
}

func TestDrafts_ConcurrentSessions(t *testing.T) {
	d := NewDrafts()
	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := "s" + string(rune('a'+i%5))
			_ = d.With(id, func(w *Wizard) error {
				w.Draft.AgentName += "x"
				return nil
			})
		}()
	}
	wg.Wait()
	assert.Equal(t, 5, d.Len())
}
