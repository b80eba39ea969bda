package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// apiEngine posts audio to an OpenAI-compatible audio/transcriptions
// endpoint. Hosted Whisper, Canary and similar services all speak this
// shape, so one engine covers them; the base URL and model select the
// vendor. Request.VAD is whatever the service does internally and is
// ignored here.
type apiEngine struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *zap.Logger
}

const defaultAPITimeout = 30 * time.Minute

func newAPIEngine(opts Options) (Engine, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.APIBaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("api engine requires a base URL")
	}
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("api engine requires an API key")
	}

	timeout := opts.APITimeout
	if timeout <= 0 {
		timeout = defaultAPITimeout
	}

	return &apiEngine{
		baseURL: baseURL,
		apiKey:  opts.APIKey,
		client:  &http.Client{Timeout: timeout},
		logger:  opts.logger(),
	}, nil
}

func (e *apiEngine) Name() string { return EngineAPI }

type apiResponse struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

func (e *apiEngine) Transcribe(ctx context.Context, req Request) (Result, error) {
	if strings.TrimSpace(req.AudioPath) == "" {
		return Result{}, errors.New("audio path is required")
	}
	if strings.TrimSpace(req.Model) == "" {
		return Result{}, errors.New("model name is required")
	}

	body, contentType, err := e.buildRequestBody(req)
	if err != nil {
		return Result{}, err
	}

	endpoint := e.baseURL + "/audio/transcriptions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return Result{}, fmt.Errorf("build transcription request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+e.apiKey)
	httpReq.Header.Set("Content-Type", contentType)

	e.logger.Debug("posting audio for transcription", zap.String("endpoint", endpoint), zap.String("model", req.Model))
	started := time.Now()
	resp, err := e.client.Do(httpReq)
	if err != nil {
		return Result{}, fmt.Errorf("transcription request failed: %w", err)
	}
	defer resp.Body.Close()
	elapsed := time.Since(started)

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return Result{}, fmt.Errorf("transcription endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	var decoded apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return Result{}, fmt.Errorf("decode transcription response: %w", err)
	}

	language := decoded.Language
	if language == "" {
		language = languageArg(req.Language)
	}

	return Result{
		Text:     strings.TrimSpace(decoded.Text),
		Language: language,
		Elapsed:  elapsed,
	}, nil
}

func (e *apiEngine) buildRequestBody(req Request) (*bytes.Buffer, string, error) {
	audio, err := os.Open(req.AudioPath)
	if err != nil {
		return nil, "", fmt.Errorf("open audio file: %w", err)
	}
	defer audio.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if err := writer.WriteField("model", req.Model); err != nil {
		return nil, "", fmt.Errorf("write model field: %w", err)
	}
	if err := writer.WriteField("response_format", "verbose_json"); err != nil {
		return nil, "", fmt.Errorf("write response_format field: %w", err)
	}
	if lang := languageArg(req.Language); lang != "" {
		if err := writer.WriteField("language", lang); err != nil {
			return nil, "", fmt.Errorf("write language field: %w", err)
		}
	}

	part, err := writer.CreateFormFile("file", filepath.Base(req.AudioPath))
	if err != nil {
		return nil, "", fmt.Errorf("create file part: %w", err)
	}
	if _, err := io.Copy(part, audio); err != nil {
		return nil, "", fmt.Errorf("copy audio into request: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("finalize multipart body: %w", err)
	}

	return &body, writer.FormDataContentType(), nil
}
