package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sketchify/internal/core/domain"
	"sketchify/internal/core/port"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// DashScopeConfig wires the asynchronous image-synthesis provider.
type DashScopeConfig struct {
	APIKey       string
	BaseURL      string
	Model        string
	PollInterval time.Duration
	MaxWait      time.Duration
	PollTimeout  time.Duration
	Prompts      domain.StylePrompts
	Constraint   domain.SizeConstraint
}

// DashScope drives the asynchronous task API: submit a synthesis job, poll
// its status on a fixed interval, fetch the result on success.
type DashScope struct {
	apiKey       string
	baseURL      string
	model        string
	pollInterval time.Duration
	maxWait      time.Duration
	prompts      domain.StylePrompts
	constraint   domain.SizeConstraint
	normalizer   port.Normalizer
	client       *http.Client
}

func NewDashScope(cfg DashScopeConfig, normalizer port.Normalizer) *DashScope {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://dashscope.aliyuncs.com/api/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "wan2.5-i2i-preview"
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 10 * time.Second
	}
	if cfg.MaxWait <= 0 {
		cfg.MaxWait = 180 * time.Second
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = 30 * time.Second
	}
	if cfg.Prompts == nil {
		cfg.Prompts = domain.DefaultStylePrompts()
	}
	if cfg.Constraint == (domain.SizeConstraint{}) {
		cfg.Constraint = domain.RemoteSizePolicy
	}

	return &DashScope{
		apiKey:       cfg.APIKey,
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		model:        cfg.Model,
		pollInterval: cfg.PollInterval,
		maxWait:      cfg.MaxWait,
		prompts:      cfg.Prompts,
		constraint:   cfg.Constraint,
		normalizer:   normalizer,
		client:       &http.Client{Timeout: cfg.PollTimeout},
	}
}

func (d *DashScope) Name() string {
	return "dashscope"
}

func (d *DashScope) Kind() domain.ProviderKind {
	return domain.ProviderRemote
}

func (d *DashScope) Available() bool {
	return d.apiKey != ""
}

func (d *DashScope) Constraint() domain.SizeConstraint {
	return d.constraint
}

func (d *DashScope) Produce(ctx context.Context, request *domain.EffectRequest, source domain.Image) (domain.Image, error) {
	if !d.Available() {
		return domain.Image{}, domain.ErrMissingAPIKey
	}

	inline, err := inlineImage(source, d.constraint, d.normalizer)
	if err != nil {
		return domain.Image{}, err
	}

	seed := derivedSeed(inline)
	prompt := d.prompts.For(request.Style)

	return d.RunToCompletion(ctx, prompt, []string{inline}, request.Watermark, &seed)
}

type synthesisRequest struct {
	Model string `json:"model"`
	Input struct {
		Prompt         string   `json:"prompt"`
		NegativePrompt string   `json:"negative_prompt,omitempty"`
		Images         []string `json:"images"`
	} `json:"input"`
	Parameters struct {
		N         int  `json:"n"`
		Watermark bool `json:"watermark"`
		Seed      *int `json:"seed,omitempty"`
	} `json:"parameters"`
}

type synthesisResponse struct {
	Output struct {
		TaskID string `json:"task_id"`
	} `json:"output"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type taskResponse struct {
	Output struct {
		TaskStatus string `json:"task_status"`
		Message    string `json:"message"`
		Results    []struct {
			URL string `json:"url"`
		} `json:"results"`
	} `json:"output"`
}

// Submit enqueues a synthesis job and returns its opaque task id.
func (d *DashScope) Submit(ctx context.Context, prompt string, images []string, watermark bool, seed *int) (string, error) {
	payload := synthesisRequest{Model: d.model}
	payload.Input.Prompt = prompt
	payload.Input.NegativePrompt = domain.DefaultNegativePrompt
	payload.Input.Images = images
	payload.Parameters.N = 1
	payload.Parameters.Watermark = watermark
	payload.Parameters.Seed = seed

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encoding synthesis request: %w", err)
	}

	endpoint := d.baseURL + "/services/aigc/image2image/image-synthesis"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating synthesis request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+d.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-DashScope-Async", "enable")

	res, err := d.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("executing synthesis request: %w", err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("reading synthesis response: %w", err)
	}

	var result synthesisResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return "", fmt.Errorf("unmarshalling synthesis response: %w", err)
	}

	if res.StatusCode != http.StatusOK {
		if result.Message != "" {
			return "", fmt.Errorf("synthesis request rejected: %s (%s)", result.Message, result.Code)
		}
		return "", fmt.Errorf("unexpected status code on submit: %d", res.StatusCode)
	}

	if result.Output.TaskID == "" {
		return "", fmt.Errorf("synthesis response missing task id")
	}

	log.Debug().Str("jobId", result.Output.TaskID).Msg("synthesis job submitted")

	return result.Output.TaskID, nil
}

// Poll queries the task endpoint and returns an updated copy of the job. On
// transport or decode failure the job comes back unchanged alongside the
// error; callers treat that as an inconclusive PENDING observation.
func (d *DashScope) Poll(ctx context.Context, job domain.RemoteJob) (domain.RemoteJob, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+"/tasks/"+job.ID, nil)
	if err != nil {
		return job, fmt.Errorf("creating poll request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+d.apiKey)

	res, err := d.client.Do(req)
	if err != nil {
		return job, fmt.Errorf("executing poll request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return job, fmt.Errorf("unexpected status code on poll: %d", res.StatusCode)
	}

	var result taskResponse
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return job, fmt.Errorf("unmarshalling poll response: %w", err)
	}

	job.LastPolledAt = time.Now()

	switch domain.JobStatus(result.Output.TaskStatus) {
	case domain.JobSucceeded:
		job.Status = domain.JobSucceeded
		if len(result.Output.Results) > 0 {
			job.ResultURL = result.Output.Results[0].URL
		}
	case domain.JobFailed:
		job.Status = domain.JobFailed
		job.FailureReason = result.Output.Message
	case domain.JobRunning:
		job.Status = domain.JobRunning
	default:
		job.Status = domain.JobPending
	}

	return job, nil
}

// RunToCompletion submits a job and polls it on a fixed interval until a
// terminal state is observed or the wall-clock budget runs out. Timing out
// abandons the job locally; the remote side is not notified.
func (d *DashScope) RunToCompletion(ctx context.Context, prompt string, images []string, watermark bool, seed *int) (domain.Image, error) {
	jobID, err := d.Submit(ctx, prompt, images, watermark, seed)
	if err != nil {
		return domain.Image{}, err
	}

	job := domain.RemoteJob{
		ID:        jobID,
		Status:    domain.JobSubmitted,
		CreatedAt: time.Now(),
	}

	l := log.With().Str("jobId", job.ID).Logger()
	start := time.Now()

	for {
		updated, err := d.Poll(ctx, job)
		if err != nil {
			l.Warn().Err(err).Msg("inconclusive poll, retrying on next interval")
		} else {
			job = updated
		}

		switch job.Status {
		case domain.JobSucceeded:
			if job.ResultURL == "" {
				return domain.Image{}, &domain.RemoteJobFailedError{Reason: "job succeeded without a result"}
			}
			l.Debug().Dur("elapsed", time.Since(start)).Msg("synthesis job succeeded")
			return fetchImage(ctx, job.ResultURL)
		case domain.JobFailed:
			return domain.Image{}, &domain.RemoteJobFailedError{Reason: job.FailureReason}
		}

		select {
		case <-ctx.Done():
			return domain.Image{}, ctx.Err()
		case <-time.After(d.pollInterval):
		}

		if elapsed := time.Since(start); elapsed >= d.maxWait {
			job.Status = domain.JobTimedOut
			l.Warn().Dur("elapsed", elapsed).Msg("abandoning synthesis job")
			return domain.Image{}, &domain.RemoteJobTimeoutError{JobID: job.ID, Elapsed: elapsed}
		}
	}
}
