package specialist

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"restaurant-advisor-be/internal/constant"
	"restaurant-advisor-be/internal/entity"
	"restaurant-advisor-be/pkg/advisor/evidence"
	"restaurant-advisor-be/pkg/llm"
)

// Input is everything one specialist needs for a single run. Specialists
// never call collaborators; all evidence arrives pre-retrieved.
type Input struct {
	Query       string
	Evidence    *evidence.Result
	Context     []entity.ConversationTurn
	Preferences map[string]entity.PreferenceValue
}

// Output is one specialist's section of the final answer.
type Output struct {
	Domain string
	Text   string
}

// Executor renders the domain prompt and makes exactly one generation call
// per specialist run.
type Executor struct {
	provider llm.LLMProvider
}

func NewExecutor(provider llm.LLMProvider) *Executor {
	return &Executor{provider: provider}
}

func (e *Executor) Run(ctx context.Context, desc Descriptor, input Input) (Output, error) {
	template, ok := constant.SpecialistPrompts[desc.Domain]
	if !ok {
		template = constant.SpecialistPrompts[constant.DomainGeneral]
	}

	prompt := fmt.Sprintf(template,
		input.Query,
		formatSnippets(input.Evidence),
		formatGraph(input.Evidence),
		formatPreferences(input.Preferences),
	)

	history := make([]llm.Message, 0, len(input.Context)*2+2)
	history = append(history, llm.Message{Role: "system", Content: constant.SpecialistSystemPrompt})
	for _, turn := range input.Context {
		history = append(history,
			llm.Message{Role: constant.TurnRoleUser, Content: turn.Query},
			llm.Message{Role: constant.TurnRoleModel, Content: turn.Response},
		)
	}
	history = append(history, llm.Message{Role: constant.TurnRoleUser, Content: prompt})

	text, err := e.provider.Chat(ctx, history)
	if err != nil {
		return Output{}, fmt.Errorf("%s specialist: %w", desc.Domain, err)
	}
	return Output{Domain: desc.Domain, Text: text}, nil
}

func formatSnippets(result *evidence.Result) string {
	if result == nil || len(result.Snippets) == 0 {
		return "(no document evidence available)"
	}
	var sb strings.Builder
	for i, s := range result.Snippets {
		fmt.Fprintf(&sb, "[%d] %s (%s, p.%d): %s\n", i+1, s.Title, s.Category, s.Page, s.Content)
	}
	return sb.String()
}

func formatGraph(result *evidence.Result) string {
	if result == nil || len(result.Graph) == 0 {
		return "(no graph evidence available)"
	}
	var sb strings.Builder
	for i, g := range result.Graph {
		path := "direct"
		if len(g.Path) > 0 {
			path = strings.Join(g.Path, " -> ")
		}
		fmt.Fprintf(&sb, "[%d] %s (%s, via %s)", i+1, g.Node, g.Kind, path)
		if len(g.Properties) > 0 {
			keys := make([]string, 0, len(g.Properties))
			for k := range g.Properties {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			parts := make([]string, len(keys))
			for j, k := range keys {
				parts[j] = fmt.Sprintf("%s=%v", k, g.Properties[k])
			}
			fmt.Fprintf(&sb, " {%s}", strings.Join(parts, ", "))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func formatPreferences(prefs map[string]entity.PreferenceValue) string {
	if len(prefs) == 0 {
		return "(none recorded)"
	}
	keys := make([]string, 0, len(prefs))
	for k := range prefs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%s", k, prefs[k].Value)
	}
	return strings.Join(parts, ", ")
}
