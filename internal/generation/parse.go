package generation

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	ErrEmptyResponse     = errors.New("generation returned an empty response")
	ErrMalformedResponse = errors.New("generation response is not valid plan JSON")
)

// fencePattern matches a markdown code block, with or without a language tag.
var fencePattern = regexp.MustCompile("(?s)```[a-zA-Z]*\\s*\\n?(.*?)\\n?\\s*```")

// ParseDraft decodes model output into a PlanDraft. A response wrapped in a
// fenced code block is unwrapped first. Shape checks beyond JSON decoding are
// left to the caller.
func ParseDraft(text string) (*PlanDraft, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyResponse
	}
	if m := fencePattern.FindStringSubmatch(text); m != nil {
		text = strings.TrimSpace(m[1])
	}
	if text == "" {
		return nil, ErrEmptyResponse
	}

	var draft PlanDraft
	if err := json.Unmarshal([]byte(text), &draft); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return &draft, nil
}
