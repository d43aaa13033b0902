package script

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

// Vars are the placeholder values of one rendered message.
type Vars map[string]string

// Placeholders every template may reference. Render fills missing ones with "".
var Placeholders = []string{
	"name", "attribute", "level", "target", "baseline", "tip", "specialist",
	"phase", "phases", "status", "signoff", "title", "apob", "hscrp", "fpg", "recommendation",
}

// Renderer interpolates templates with eino's f-string chat templates.
// Member lines render as user messages, team lines as assistant messages.
type Renderer struct {
	mu    sync.Mutex
	cache map[cacheKey]prompt.ChatTemplate
}

type cacheKey struct {
	role schema.RoleType
	text string
}

// NewRenderer creates an empty renderer.
func NewRenderer() *Renderer {
	return &Renderer{cache: make(map[cacheKey]prompt.ChatTemplate)}
}

// Render formats text with vars. fromMember selects the message role.
func (r *Renderer) Render(ctx context.Context, fromMember bool, text string, vars Vars) (string, error) {
	role := schema.Assistant
	if fromMember {
		role = schema.User
	}

	tpl := r.template(role, text)

	values := make(map[string]any, len(Placeholders)+len(vars))
	for _, key := range Placeholders {
		values[key] = ""
	}
	for key, value := range vars {
		values[key] = value
	}

	msgs, err := tpl.Format(ctx, values)
	if err != nil {
		return "", fmt.Errorf("render template %q: %w", text, err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("render template %q: empty result", text)
	}
	return strings.TrimSpace(msgs[0].Content), nil
}

func (r *Renderer) template(role schema.RoleType, text string) prompt.ChatTemplate {
	key := cacheKey{role: role, text: text}

	r.mu.Lock()
	defer r.mu.Unlock()

	if tpl, ok := r.cache[key]; ok {
		return tpl
	}

	var msg *schema.Message
	if role == schema.User {
		msg = schema.UserMessage(text)
	} else {
		msg = schema.AssistantMessage(text, nil)
	}
	tpl := prompt.FromMessages(schema.FString, msg)
	r.cache[key] = tpl
	return tpl
}

// Validate renders every template of lib with placeholder values so broken
// templates fail before any message is produced.
func (r *Renderer) Validate(ctx context.Context, lib *Library) error {
	sample := make(Vars, len(Placeholders))
	for _, key := range Placeholders {
		sample[key] = key
	}
	for kind, texts := range lib.All() {
		for _, text := range texts {
			if _, err := r.Render(ctx, false, text, sample); err != nil {
				return fmt.Errorf("%s: %w", kind, err)
			}
		}
	}
	return nil
}
