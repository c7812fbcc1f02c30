package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/atinylittleshell/memorycare/internal/models"
	"github.com/samber/lo"
	"github.com/sashabaranov/go-openai"
)

const maxJournalTags = 3

var fencePattern = regexp.MustCompile("(?s)^```(\\w*)?\\s*\\n?(.*?)\\n?\\s*```$")

// ParseJSONResponse decodes a model reply as JSON, first removing a markdown
// code fence around it if present.
func ParseJSONResponse[T any](text string) (T, error) {
	var result T
	body := strings.TrimSpace(text)
	if match := fencePattern.FindStringSubmatch(body); match != nil && match[2] != "" {
		body = strings.TrimSpace(match[2])
	}
	if err := json.Unmarshal([]byte(body), &result); err != nil {
		return result, fmt.Errorf("failed to parse model response as JSON: %w", err)
	}
	return result, nil
}

type tagsResponse struct {
	Tags []string `json:"tags"`
}

// GenerateJournalTags asks for one to three tags describing a journal entry in
// lang. Empty and duplicate tags are dropped.
func (c *Client) GenerateJournalTags(ctx context.Context, text string, lang models.Language) ([]string, error) {
	prompt := fmt.Sprintf(
		"Analyze the following journal entry and provide 1 to 3 relevant tags in %s that categorize the content. "+
			"Focus on emotions, activities, or key subjects mentioned. "+
			`Reply with a JSON object of the form {"tags": ["..."]}. Here is the text: %q`,
		lang.Name(), text,
	)

	reply, err := c.complete(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, err
	}

	parsed, err := ParseJSONResponse[tagsResponse](reply)
	if err != nil {
		return nil, err
	}

	tags := lo.Uniq(lo.FilterMap(parsed.Tags, func(tag string, _ int) (string, bool) {
		trimmed := strings.TrimSpace(tag)
		return trimmed, trimmed != ""
	}))
	if len(tags) > maxJournalTags {
		tags = tags[:maxJournalTags]
	}
	return tags, nil
}

// SummarizeKeyInfo writes a one or two sentence reminder of who a person is,
// addressed to the person being cared for.
func (c *Client) SummarizeKeyInfo(ctx context.Context, person models.Person, lang models.Language) (string, error) {
	prompt := fmt.Sprintf(
		"Write a one or two sentence reminder, in %s, that helps someone with memory loss recall who this person is. "+
			"Speak directly to them (\"This is ...\"). Name: %s. Relationship: %s. Key information: %s",
		lang.Name(), person.Name, person.Relationship, person.KeyInfo,
	)

	summary, err := c.GenerateText(ctx, prompt, "You write short, gentle memory aids.")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(summary), nil
}
