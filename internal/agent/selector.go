package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
)

// ErrInvalidSelection marks a selector reply that names no eligible
// role. The conversation cannot continue past it.
var ErrInvalidSelection = errors.New("invalid role selection")

const selectorSystemPrompt = "You are in a role play game. The following roles are available:\n" +
	"{roles}\n" +
	"Read the conversation, then select the next role from {participants} to play. " +
	"If you are missing information, select the planner role. " +
	"Respond with a single JSON object containing the fields \"role\" (the selected role name) " +
	"and \"reason\" (one short sentence). Do not output anything else."

const selectorUserPrompt = "{history}\n\n" +
	"Read the above conversation. Then select the next role from {participants} to play."

// Selector asks the model which eligible role speaks next. The primary
// contract is the JSON object above; when the reply does not parse, it
// falls back to scanning the free text for an eligible role name, in
// registration order, first match wins.
type Selector struct {
	chain compose.Runnable[map[string]any, *schema.Message]
}

// NewSelector compiles the selection chain over the given model.
func NewSelector(ctx context.Context, chatModel model.ChatModel) (*Selector, error) {
	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage(selectorSystemPrompt),
		schema.UserMessage(selectorUserPrompt),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("compile selector chain: %w", err)
	}

	return &Selector{chain: runnable}, nil
}

// SelectNext returns the name of the next speaker. eligible must not
// contain the previous speaker; the returned name is always a member of
// eligible.
func (s *Selector) SelectNext(ctx context.Context, eligible []Descriptor, history string) (string, error) {
	input := map[string]any{
		"roles":        formatRoles(eligible),
		"participants": formatParticipants(eligible),
		"history":      history,
	}

	msg, err := s.chain.Invoke(ctx, input)
	if err != nil {
		return "", fmt.Errorf("selector invoke: %w", err)
	}
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		return "", fmt.Errorf("selector returned empty reply: %w", ErrInvalidSelection)
	}

	return ResolveSelection(msg.Content, eligible)
}

type selectionPayload struct {
	Role   string `json:"role"`
	Reason string `json:"reason"`
}

// ResolveSelection maps a raw selector reply onto an eligible role.
func ResolveSelection(reply string, eligible []Descriptor) (string, error) {
	if payload, err := parseSelectionPayload(reply); err == nil {
		if name, ok := matchRole(payload.Role, eligible); ok {
			if payload.Reason != "" {
				log.Printf("[selector] chose %s: %s", name, payload.Reason)
			}
			return name, nil
		}
	}

	// Compatibility fallback: scan the free text for an eligible role
	// name, registration order, first match wins.
	lowered := strings.ToLower(reply)
	for _, d := range eligible {
		if strings.Contains(lowered, strings.ToLower(d.Name)) {
			return d.Name, nil
		}
	}

	return "", fmt.Errorf("%w: %q", ErrInvalidSelection, strings.TrimSpace(reply))
}

func parseSelectionPayload(content string) (*selectionPayload, error) {
	trimmed := strings.TrimSpace(content)
	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start == -1 || end == -1 || end <= start {
		return nil, fmt.Errorf("missing json object")
	}

	payload := &selectionPayload{}
	if err := json.Unmarshal([]byte(trimmed[start:end+1]), payload); err != nil {
		return nil, err
	}
	if payload.Role == "" {
		return nil, fmt.Errorf("missing role field")
	}
	return payload, nil
}

func matchRole(raw string, eligible []Descriptor) (string, bool) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	for _, d := range eligible {
		if normalized == strings.ToLower(d.Name) {
			return d.Name, true
		}
	}
	return "", false
}

func formatRoles(eligible []Descriptor) string {
	lines := make([]string, 0, len(eligible))
	for _, d := range eligible {
		lines = append(lines, strings.TrimSpace(fmt.Sprintf("%s: %s", d.Name, d.Description)))
	}
	return strings.Join(lines, "\n")
}

func formatParticipants(eligible []Descriptor) string {
	names := make([]string, 0, len(eligible))
	for _, d := range eligible {
		names = append(names, d.Name)
	}
	return "[" + strings.Join(names, ", ") + "]"
}
