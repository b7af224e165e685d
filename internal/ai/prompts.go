package ai

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const DefaultSystemPrompt = `
You are HomeLead AI, the assistant of a real estate lead management product.
You talk to staff of the company named in the conversation.
Answer briefly and concretely. Never invent lead counts, prices or listings.
When it helps the user, offer up to three short follow-up questions they could
ask you next.
`

// jsonGuard goes last so it wins over anything in the history.
const jsonGuard = `
Reply ONLY with valid JSON, no text outside it.
Exact shape:
{"answer":"string","suggestions":["string"]}
"suggestions" may be empty. A suggestion must not contain commas or square brackets.
`

const DefaultCannedReply = "Thank you for your message. Our AI is processing your request. How else can I assist you today?"

// PromptSet is the editable copy of the assistant, loaded from YAML.
type PromptSet struct {
	System string `yaml:"system"`
	Canned struct {
		Reply       string   `yaml:"reply"`
		Suggestions []string `yaml:"suggestions"`
	} `yaml:"canned"`
	Style struct {
		Temperature float32 `yaml:"temperature"`
		MaxTokens   int     `yaml:"max_tokens"`
	} `yaml:"style"`
}

func DefaultPrompts() PromptSet {
	var p PromptSet
	p.fillDefaults()
	return p
}

// LoadPrompts reads a prompt set from path. An empty path yields the defaults;
// fields missing from the file keep their defaults.
func LoadPrompts(path string) (PromptSet, error) {
	if path == "" {
		return DefaultPrompts(), nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return PromptSet{}, fmt.Errorf("read prompts: %w", err)
	}
	var p PromptSet
	if err := yaml.Unmarshal(b, &p); err != nil {
		return PromptSet{}, fmt.Errorf("parse prompts %s: %w", path, err)
	}
	p.fillDefaults()
	return p, nil
}

func (p *PromptSet) fillDefaults() {
	if p.System == "" {
		p.System = DefaultSystemPrompt
	}
	if p.Canned.Reply == "" {
		p.Canned.Reply = DefaultCannedReply
	}
	if p.Style.Temperature <= 0 {
		p.Style.Temperature = 0.3
	}
	if p.Style.MaxTokens <= 0 {
		p.Style.MaxTokens = 400
	}
}
