// Package prompts holds the prompt templates used by the conversation
// router. Template text is configuration: it can be replaced from a
// YAML file as long as the required slots stay present.
package prompts

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Slot placeholders. Every QA template variant must contain all three.
const (
	SlotHistory  = "{history_global}"
	SlotContext  = "{context}"
	SlotQuestion = "{question}"
)

const defaultQATemplate = `You are a question answering system. Synthesize the information in Context to answer the question.
1. If the answer is not in the Context or you are not sure, reply "I do not have enough information to answer this question."
2. Do not speculate or invent content beyond the Context.
3. Answer fully, using only the Context found.

History: {history_global}
Context: {context}
Question: {question}

Answer:
`

const defaultChatTemplate = `You are a question answering assistant. Help the user answer the following question.

{question}
`

const defaultContinuationTemplate = `Your previous answer was cut off. Continue it without repeating anything already written.

Original question: {question}
Previous answer: {previous_answer}
{word_target}{context_constraint}
Continue:
`

type Templates struct {
	QA           string   `yaml:"qa"`
	Chat         string   `yaml:"chat"`
	Continuation string   `yaml:"continuation"`
	EndTokens    []string `yaml:"end_tokens"`
}

func Defaults() Templates {
	return Templates{
		QA:           defaultQATemplate,
		Chat:         defaultChatTemplate,
		Continuation: defaultContinuationTemplate,
		EndTokens:    []string{".", "!", "?"},
	}
}

// Load reads template overrides from a YAML file. An empty path yields
// the defaults; missing fields fall back per field.
func Load(path string) (Templates, error) {
	templates := Defaults()
	if path == "" {
		return templates, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return templates, fmt.Errorf("read prompt config: %w", err)
	}

	var overrides Templates
	if err := yaml.Unmarshal(raw, &overrides); err != nil {
		return templates, fmt.Errorf("parse prompt config: %w", err)
	}

	if overrides.QA != "" {
		templates.QA = overrides.QA
	}
	if overrides.Chat != "" {
		templates.Chat = overrides.Chat
	}
	if overrides.Continuation != "" {
		templates.Continuation = overrides.Continuation
	}
	if len(overrides.EndTokens) > 0 {
		templates.EndTokens = overrides.EndTokens
	}

	if err := templates.Validate(); err != nil {
		return Defaults(), err
	}
	return templates, nil
}

// Validate checks that the QA template carries every required slot.
func (t Templates) Validate() error {
	for _, slot := range []string{SlotHistory, SlotContext, SlotQuestion} {
		if !strings.Contains(t.QA, slot) {
			return fmt.Errorf("qa template missing slot %s", slot)
		}
	}
	if !strings.Contains(t.Chat, SlotQuestion) {
		return fmt.Errorf("chat template missing slot %s", SlotQuestion)
	}
	return nil
}

func (t Templates) RenderQA(historyGlobal, context, question string) string {
	out := strings.ReplaceAll(t.QA, SlotHistory, historyGlobal)
	out = strings.ReplaceAll(out, SlotContext, context)
	out = strings.ReplaceAll(out, SlotQuestion, question)
	return out
}

func (t Templates) RenderChat(question string) string {
	return strings.ReplaceAll(t.Chat, SlotQuestion, question)
}

// RenderContinuation builds the stateless continuation prompt.
// wordTarget is the remaining word count, 0 when the user never asked
// for a specific total. retainedContext of "" drops the constraint.
func (t Templates) RenderContinuation(previousAnswer, originalQuestion, retainedContext string, wordTarget int) string {
	target := ""
	if wordTarget > 0 {
		target = fmt.Sprintf("Write about %d more words.\n", wordTarget)
	}
	constraint := ""
	if retainedContext != "" {
		constraint = "Stay within this context:\n" + retainedContext + "\n"
	}

	out := strings.ReplaceAll(t.Continuation, "{question}", originalQuestion)
	out = strings.ReplaceAll(out, "{previous_answer}", previousAnswer)
	out = strings.ReplaceAll(out, "{word_target}", target)
	out = strings.ReplaceAll(out, "{context_constraint}", constraint)
	return out
}
