package specialist

import (
	"context"
	"errors"
	"strings"
	"testing"

	"restaurant-advisor-be/internal/constant"
	"restaurant-advisor-be/internal/entity"
	"restaurant-advisor-be/pkg/advisor/evidence"
	"restaurant-advisor-be/pkg/llm"
)

type fakeProvider struct {
	reply    string
	err      error
	messages []llm.Message
	calls    int
}

func (f *fakeProvider) Chat(ctx context.Context, messages []llm.Message, opts ...llm.Option) (string, error) {
	f.calls++
	f.messages = messages
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return f.Chat(ctx, []llm.Message{{Role: constant.TurnRoleUser, Content: prompt}})
}

func TestRunMakesSingleCallWithEvidenceAndHistory(t *testing.T) {
	provider := &fakeProvider{reply: "T Nagar looks promising."}
	ex := NewExecutor(provider)
	registry := NewRegistry()
	desc, _ := registry.Get(constant.DomainLocation)

	input := Input{
		Query: "Where should I open in Chennai?",
		Evidence: &evidence.Result{
			Snippets: []evidence.Snippet{{DocumentId: "d1", Title: "Chennai rents", Category: "real_estate", Page: 4, Content: "rent per sqft"}},
			Graph:    []evidence.GraphHit{{Node: "T Nagar", Kind: "Area", Path: []string{"LOCATED_IN"}, Properties: map[string]interface{}{"foot_traffic": 8000.0}}},
		},
		Context: []entity.ConversationTurn{
			{Query: "I want to open an Italian place", Response: "Noted."},
		},
		Preferences: map[string]entity.PreferenceValue{
			"cuisine": {Value: "Italian"},
		},
	}

	out, err := ex.Run(context.Background(), desc, input)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.Domain != constant.DomainLocation || out.Text != provider.reply {
		t.Fatalf("output = %+v", out)
	}
	if provider.calls != 1 {
		t.Fatalf("provider calls = %d, want exactly 1", provider.calls)
	}

	// system + one context pair + final prompt
	if len(provider.messages) != 4 {
		t.Fatalf("messages = %d, want 4", len(provider.messages))
	}
	if provider.messages[0].Role != "system" {
		t.Errorf("first message role = %s, want system", provider.messages[0].Role)
	}
	final := provider.messages[len(provider.messages)-1].Content
	for _, frag := range []string{"Where should I open in Chennai?", "Chennai rents", "T Nagar", "foot_traffic=8000", "cuisine=Italian"} {
		if !strings.Contains(final, frag) {
			t.Errorf("prompt missing %q", frag)
		}
	}
}

func TestRunUnknownDomainFallsBackToGeneralPrompt(t *testing.T) {
	provider := &fakeProvider{reply: "ok"}
	ex := NewExecutor(provider)

	_, err := ex.Run(context.Background(), Descriptor{Domain: "astrology"}, Input{Query: "stars?"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if provider.calls != 1 {
		t.Fatalf("provider calls = %d, want 1", provider.calls)
	}
}

func TestRunWrapsProviderError(t *testing.T) {
	boom := errors.New("model offline")
	ex := NewExecutor(&fakeProvider{err: boom})
	registry := NewRegistry()
	desc, _ := registry.Get(constant.DomainMarket)

	_, err := ex.Run(context.Background(), desc, Input{Query: "demand?"})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped provider error", err)
	}
	if !strings.Contains(err.Error(), constant.DomainMarket) {
		t.Errorf("err = %v, want domain named", err)
	}
}

func TestFormatHelpersHandleMissingEvidence(t *testing.T) {
	if got := formatSnippets(nil); !strings.Contains(got, "no document evidence") {
		t.Errorf("formatSnippets(nil) = %q", got)
	}
	if got := formatGraph(&evidence.Result{}); !strings.Contains(got, "no graph evidence") {
		t.Errorf("formatGraph(empty) = %q", got)
	}
	if got := formatPreferences(nil); got != "(none recorded)" {
		t.Errorf("formatPreferences(nil) = %q", got)
	}
}
