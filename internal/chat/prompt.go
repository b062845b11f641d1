package chat

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed prompts/qa_prompt.yaml
var promptFile []byte

// promptSet holds the templates driving question answering and
// conversation summarization.
type promptSet struct {
	System   string `yaml:"system"`
	QA       string `yaml:"qa_template"`
	Summary  string `yaml:"summary_template"`
	language string
}

// loadPrompts parses the embedded template file. language replaces the
// {language} placeholder of the system prompt; empty means auto-detect.
func loadPrompts(language string) (promptSet, error) {
	var p promptSet
	if err := yaml.Unmarshal(promptFile, &p); err != nil {
		return promptSet{}, fmt.Errorf("parsing prompt templates: %w", err)
	}
	if p.System == "" || p.QA == "" || p.Summary == "" {
		return promptSet{}, fmt.Errorf("prompt template file is missing a section")
	}

	if language == "" || language == "auto" {
		language = "the same language as the question"
	}
	p.language = language
	p.System = strings.ReplaceAll(p.System, "{language}", language)
	return p, nil
}

// renderQA builds the user prompt for one turn from the effective
// history, the formatted context block, and the question.
func (p promptSet) renderQA(history, contextBlock, question string) string {
	return strings.NewReplacer(
		"{chat_history}", history,
		"{context}", contextBlock,
		"{question}", question,
	).Replace(p.QA)
}

// renderSummary builds the summarization prompt from the previous
// summary and the rendered conversation lines being folded.
func (p promptSet) renderSummary(previous, conversation string) string {
	if previous == "" {
		previous = "(none)"
	}
	return strings.NewReplacer(
		"{summary}", previous,
		"{conversation}", conversation,
	).Replace(p.Summary)
}
