// Package suggest carries follow-up questions inside bot message text.
//
// A bot reply may end with a block of the form " [q1, q2, ..., qN]". The
// block stays in the displayed text; the decoded questions are rendered next
// to it as quick replies.
package suggest

import (
	"errors"
	"strings"

	"github.com/samber/lo"
)

var (
	ErrInvalidQuestion = errors.New("suggest: question must be non-blank and contain no ',', '[' or ']'")
	ErrBracketInReply  = errors.New("suggest: reply text must not contain '[' when suggestions are attached")
)

var neutralizer = strings.NewReplacer("[", "(", "]", ")")

// Encode appends the suggestion block to reply. With no questions the reply
// is returned untouched.
func Encode(reply string, questions []string) (string, error) {
	if len(questions) == 0 {
		return reply, nil
	}
	if strings.Contains(reply, "[") {
		return "", ErrBracketInReply
	}
	for _, q := range questions {
		if !Valid(q) {
			return "", ErrInvalidQuestion
		}
	}

	trimmed := lo.Map(questions, func(q string, _ int) string {
		return strings.TrimSpace(q)
	})
	return reply + " [" + strings.Join(trimmed, ", ") + "]", nil
}

// Decode extracts the questions of the first bracket pair in text. A pair
// never spans a line break: a '[' whose line ends before any ']' is skipped
// and the search resumes at the next '['. A missing block, an unclosed
// bracket or an empty block all decode to nil.
func Decode(text string) []string {
	body, ok := firstBlock(text)
	if !ok {
		return nil
	}

	parts := lo.Map(strings.Split(body, ","), func(p string, _ int) string {
		return strings.TrimSpace(p)
	})
	questions := lo.Compact(parts)
	if len(questions) == 0 {
		return nil
	}
	return questions
}

func firstBlock(text string) (string, bool) {
	for {
		open := strings.IndexByte(text, '[')
		if open < 0 {
			return "", false
		}
		text = text[open+1:]

		end := strings.IndexAny(text, "]\n\r")
		switch {
		case end < 0:
			return "", false
		case text[end] == ']':
			return text[:end], true
		}
		text = text[end+1:]
	}
}

// Valid reports whether q can travel inside a block and decode back to itself.
func Valid(q string) bool {
	return strings.TrimSpace(q) != "" && !strings.ContainsAny(q, ",[]")
}

// Neutralize rewrites square brackets in free text so it never reads as a block.
func Neutralize(text string) string {
	return neutralizer.Replace(text)
}
