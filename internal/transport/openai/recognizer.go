package openai

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const labelsPrompt = `You label photos for a search index.
Return a JSON object {"labels": [...]} listing the objects, animals, scenes and activities
visible in the image, most prominent first. Each label is one or two plain English words.`

const facesPrompt = `Count the human faces visible in the image.
Return a JSON object {"faces": N} where N is a non-negative integer.`

// Recognizer labels images with a vision-capable chat model.
// The model fetches the image from the public base URL, so objects must be readable there.
type Recognizer struct {
	client    *client
	baseURL   string
	maxLabels int
}

// NewRecognizer creates a vision recognizer. publicBaseURL is prepended to object keys.
func NewRecognizer(cfg *Config, publicBaseURL string, maxLabels int) *Recognizer {
	return &Recognizer{client: newClient(cfg), baseURL: publicBaseURL, maxLabels: maxLabels}
}

// DetectLabels returns the labels the model sees in the image, in its order.
func (r *Recognizer) DetectLabels(ctx context.Context, _, key string) ([]string, error) {
	var out struct {
		Labels []string `json:"labels"`
	}
	if err := r.client.completeJSON(ctx, "detect_labels", "", r.imageMessages(labelsPrompt, key), &out); err != nil {
		return nil, fmt.Errorf("detect labels %s: %w", key, err)
	}

	labels := make([]string, 0, len(out.Labels))
	for _, l := range out.Labels {
		if l = strings.TrimSpace(l); l != "" {
			labels = append(labels, l)
		}
	}
	if r.maxLabels > 0 && len(labels) > r.maxLabels {
		labels = labels[:r.maxLabels]
	}
	return labels, nil
}

// DetectFaces returns the number of faces the model counts in the image.
func (r *Recognizer) DetectFaces(ctx context.Context, _, key string) (int, error) {
	var out struct {
		Faces int `json:"faces"`
	}
	if err := r.client.completeJSON(ctx, "detect_faces", "", r.imageMessages(facesPrompt, key), &out); err != nil {
		return 0, fmt.Errorf("detect faces %s: %w", key, err)
	}
	if out.Faces < 0 {
		return 0, fmt.Errorf("negative face count %d: %w", out.Faces, ErrMalformedResponse)
	}
	return out.Faces, nil
}

// HealthCheck verifies the provider is reachable.
func (r *Recognizer) HealthCheck(ctx context.Context) error {
	return r.client.HealthCheck(ctx)
}

func (r *Recognizer) imageMessages(prompt, key string) []openai.ChatCompletionMessage {
	return []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: prompt},
		{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{
					Type: openai.ChatMessagePartTypeImageURL,
					ImageURL: &openai.ChatMessageImageURL{
						URL:    r.baseURL + key,
						Detail: openai.ImageURLDetailLow,
					},
				},
			},
		},
	}
}
