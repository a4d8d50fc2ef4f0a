package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"os"
	"strings"
	"time"

	"interviewsim/internal/model"
	"interviewsim/internal/session"
)

// InterviewClient drives the interview API over HTTP. It implements the same
// backend surface as the in-process adapter, so a session controller can run
// against a remote deployment (split front/back hosts) without code changes
type InterviewClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
	maxRetries int
}

var _ session.Backend = (*InterviewClient)(nil)

// NewInterviewClient creates a new interview API client
func NewInterviewClient(baseURL, token string) *InterviewClient {
	if baseURL == "" {
		baseURL = os.Getenv("INTERVIEW_API_URL")
	}
	if baseURL == "" {
		baseURL = "http://localhost:8080/v1"
	}

	return &InterviewClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		maxRetries: 5,
	}
}

// doRequest performs an HTTP request with retry logic. The payload is kept as
// bytes so every attempt sends the full body, not a drained reader
func (c *InterviewClient) doRequest(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	url := c.baseURL + path

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			log.Printf("[API Client] Retry attempt %d/%d for %s %s", attempt, c.maxRetries, method, path)
		}

		var body io.Reader
		if payload != nil {
			body = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, body)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode == 429 {
			backoff := time.Duration(math.Pow(2, float64(attempt))) * time.Second
			log.Printf("[API Client] Rate limited: retry %d/%d in %v", attempt+1, c.maxRetries, backoff)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			lastErr = fmt.Errorf("rate limited")
			continue
		}

		if resp.StatusCode >= 500 {
			log.Printf("[API Client] Server error %d on %s %s", resp.StatusCode, method, path)
			lastErr = fmt.Errorf("API error %d: %s", resp.StatusCode, string(respBody))
			continue
		}
		if resp.StatusCode >= 400 {
			return nil, fmt.Errorf("API error %d: %s", resp.StatusCode, string(respBody))
		}

		return respBody, nil
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

// FetchInterview returns the readiness snapshot for an interview
func (c *InterviewClient) FetchInterview(ctx context.Context, interviewID string) (*model.InterviewMeta, error) {
	body, err := c.doRequest(ctx, "GET", "/interviews/"+interviewID+"/meta", nil)
	if err != nil {
		return nil, err
	}

	var meta model.InterviewMeta
	if err := json.Unmarshal(body, &meta); err != nil {
		return nil, fmt.Errorf("failed to parse interview meta: %w", err)
	}
	return &meta, nil
}

// NextQuestion fetches the next unanswered question
func (c *InterviewClient) NextQuestion(ctx context.Context, interviewID string) (*model.NextQuestionResult, error) {
	body, err := c.doRequest(ctx, "GET", "/interviews/"+interviewID+"/next-question", nil)
	if err != nil {
		return nil, err
	}

	var result model.NextQuestionResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse next question: %w", err)
	}
	return &result, nil
}

// SubmitAnswer stores the answer text for a question
func (c *InterviewClient) SubmitAnswer(ctx context.Context, interviewID, questionID, text string) error {
	payload, _ := json.Marshal(map[string]string{
		"question_id": questionID,
		"answer_text": text,
	})
	_, err := c.doRequest(ctx, "POST", "/interviews/"+interviewID+"/answers", payload)
	return err
}

// EvaluateAnswer requests the AI evaluation for a submitted answer
func (c *InterviewClient) EvaluateAnswer(ctx context.Context, interviewID, questionID, questionText, answerText string, followupCount int) (*model.EvaluationResult, error) {
	payload, _ := json.Marshal(map[string]interface{}{
		"question_id":    questionID,
		"question_text":  questionText,
		"answer_text":    answerText,
		"followup_count": followupCount,
	})
	body, err := c.doRequest(ctx, "POST", "/interviews/"+interviewID+"/evaluate", payload)
	if err != nil {
		return nil, err
	}

	var result model.EvaluationResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse evaluation: %w", err)
	}
	return &result, nil
}

// Complete finalizes the interview
func (c *InterviewClient) Complete(ctx context.Context, interviewID string) error {
	_, err := c.doRequest(ctx, "POST", "/interviews/"+interviewID+"/complete", nil)
	return err
}

// AppendTurn records a conversation turn
func (c *InterviewClient) AppendTurn(ctx context.Context, turn *model.ConversationTurn) error {
	payload, _ := json.Marshal(turn)
	_, err := c.doRequest(ctx, "POST", "/interviews/"+turn.InterviewID+"/turns", payload)
	return err
}
