package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sketchify/internal/core/domain"
	"sketchify/internal/core/port"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// ImageEditConfig wires the synchronous multimodal edit provider, the
// secondary remote attempt when the synthesis task API is unavailable.
type ImageEditConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	Timeout    time.Duration
	Prompts    domain.StylePrompts
	Constraint domain.SizeConstraint
}

// ImageEdit performs single-shot image editing: one POST, result URL in the
// response, no job lifecycle.
type ImageEdit struct {
	apiKey     string
	baseURL    string
	model      string
	prompts    domain.StylePrompts
	constraint domain.SizeConstraint
	normalizer port.Normalizer
	client     *http.Client
}

func NewImageEdit(cfg ImageEditConfig, normalizer port.Normalizer) *ImageEdit {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://dashscope.aliyuncs.com/api/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "qwen-image-edit"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.Prompts == nil {
		cfg.Prompts = domain.DefaultStylePrompts()
	}
	if cfg.Constraint == (domain.SizeConstraint{}) {
		cfg.Constraint = domain.RemoteSizePolicy
	}

	return &ImageEdit{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		model:      cfg.Model,
		prompts:    cfg.Prompts,
		constraint: cfg.Constraint,
		normalizer: normalizer,
		client:     &http.Client{Timeout: cfg.Timeout},
	}
}

func (e *ImageEdit) Name() string {
	return "image-edit"
}

func (e *ImageEdit) Kind() domain.ProviderKind {
	return domain.ProviderRemote
}

func (e *ImageEdit) Available() bool {
	return e.apiKey != ""
}

func (e *ImageEdit) Constraint() domain.SizeConstraint {
	return e.constraint
}

func (e *ImageEdit) Produce(ctx context.Context, request *domain.EffectRequest, source domain.Image) (domain.Image, error) {
	if !e.Available() {
		return domain.Image{}, domain.ErrMissingAPIKey
	}

	inline, err := inlineImage(source, e.constraint, e.normalizer)
	if err != nil {
		return domain.Image{}, err
	}

	seed := derivedSeed(inline)

	resultURL, err := e.EditOnce(ctx, inline, e.prompts.For(request.Style), request.Watermark, &seed)
	if err != nil {
		return domain.Image{}, err
	}

	return fetchImage(ctx, resultURL)
}

type editMessage struct {
	Role    string              `json:"role"`
	Content []map[string]string `json:"content"`
}

type editRequest struct {
	Model string `json:"model"`
	Input struct {
		Messages []editMessage `json:"messages"`
	} `json:"input"`
	Parameters struct {
		NegativePrompt string `json:"negative_prompt,omitempty"`
		Watermark      bool   `json:"watermark"`
		Seed           *int   `json:"seed,omitempty"`
	} `json:"parameters"`
}

type editResponse struct {
	Output struct {
		Choices []struct {
			Message struct {
				Content []map[string]string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	} `json:"output"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// EditOnce submits one edit instruction for one image and returns the result
// URL from the response.
func (e *ImageEdit) EditOnce(ctx context.Context, imageRef, instruction string, watermark bool, seed *int) (string, error) {
	if strings.TrimSpace(imageRef) == "" {
		return "", errors.New("missing image reference")
	}

	var payload editRequest
	payload.Model = e.model
	payload.Input.Messages = []editMessage{{
		Role: "user",
		Content: []map[string]string{
			{"image": imageRef},
			{"text": instruction},
		},
	}}
	payload.Parameters.NegativePrompt = domain.DefaultNegativePrompt
	payload.Parameters.Watermark = watermark
	payload.Parameters.Seed = seed

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encoding edit request: %w", err)
	}

	endpoint := e.baseURL + "/services/aigc/multimodal-generation/generation"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating edit request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+e.apiKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("executing edit request: %w", err)
	}
	defer res.Body.Close()

	var result editResponse
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		if res.StatusCode != http.StatusOK {
			return "", fmt.Errorf("unexpected status code on edit: %d", res.StatusCode)
		}
		return "", fmt.Errorf("unmarshalling edit response: %w", err)
	}

	if res.StatusCode != http.StatusOK {
		if result.Message != "" {
			return "", fmt.Errorf("edit request rejected: %s (%s)", result.Message, result.Code)
		}
		return "", fmt.Errorf("unexpected status code on edit: %d", res.StatusCode)
	}

	if len(result.Output.Choices) == 0 || len(result.Output.Choices[0].Message.Content) == 0 {
		return "", errors.New("no images returned from edit response")
	}

	url := result.Output.Choices[0].Message.Content[0]["image"]
	if strings.TrimSpace(url) == "" {
		return "", errors.New("edit response missing image url")
	}

	log.Debug().Str("resultURL", url).Msg("edit request succeeded")

	return url, nil
}
