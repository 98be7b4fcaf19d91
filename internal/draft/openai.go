package draft

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"outreach-engine/internal/domain"
)

const fallbackSubject = "Regarding your posted opportunity"

// OpenAIDrafter calls an OpenAI-compatible chat completions endpoint.
type OpenAIDrafter struct {
	BaseURL     string // e.g. https://api.openai.com/v1
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int

	hc *http.Client
}

func NewOpenAIDrafter(baseURL, apiKey, model string, temperature float64, maxTokens int, timeout time.Duration) *OpenAIDrafter {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &OpenAIDrafter{
		BaseURL:     strings.TrimRight(baseURL, "/"),
		APIKey:      apiKey,
		Model:       model,
		Temperature: temperature,
		MaxTokens:   maxTokens,
		hc:          &http.Client{Timeout: timeout},
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (d *OpenAIDrafter) Draft(ctx context.Context, req Request) (Message, error) {
	body, err := json.Marshal(chatRequest{
		Model: d.Model,
		Messages: []chatMessage{
			{Role: "system", Content: "You are a professional job seeker writing an email response to a hiring post."},
			{Role: "user", Content: buildPrompt(req)},
		},
		Temperature: d.Temperature,
		MaxTokens:   d.MaxTokens,
	})
	if err != nil {
		return Message{}, fmt.Errorf("drafter marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, d.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return Message{}, fmt.Errorf("drafter build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+d.APIKey)

	res, err := d.hc.Do(httpReq)
	if err != nil {
		return Message{}, fmt.Errorf("drafter call: %w", err)
	}
	defer res.Body.Close()

	rb, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return Message{}, fmt.Errorf("drafter read response: %w", err)
	}

	// Status first: an error page from a proxy is not JSON.
	if res.StatusCode >= 400 {
		msg := res.Status
		var cr chatResponse
		if json.Unmarshal(rb, &cr) == nil && cr.Error != nil && cr.Error.Message != "" {
			msg = cr.Error.Message
		}
		return Message{}, fmt.Errorf("drafter status %d: %s", res.StatusCode, msg)
	}

	var cr chatResponse
	if err := json.Unmarshal(rb, &cr); err != nil {
		return Message{}, fmt.Errorf("drafter decode response: %w", err)
	}
	if len(cr.Choices) == 0 || strings.TrimSpace(cr.Choices[0].Message.Content) == "" {
		return Message{}, fmt.Errorf("drafter returned no content")
	}

	return ParseMessage(cr.Choices[0].Message.Content, fallbackSubject), nil
}

func buildPrompt(req Request) string {
	positionType := "Full-time"
	if req.EmploymentType == domain.EmploymentContract {
		positionType = "Contract/C2C"
	}

	resume := req.Resume
	if strings.TrimSpace(resume) == "" {
		resume = "Not provided, use general software engineering experience"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Write a professional email response to a %s opportunity.\n\n", positionType)
	fmt.Fprintf(&b, "Post Author: %s\n", req.Author)
	fmt.Fprintf(&b, "Post Content: %s\n", req.Content)
	if req.Supplementary != "" {
		fmt.Fprintf(&b, "Job Description: %s\n", req.Supplementary)
	}
	fmt.Fprintf(&b, "\nMy Resume Information:\n%s\n\n", resume)
	b.WriteString("Requirements:\n")
	b.WriteString("1. Personalize based on the post content and job description\n")
	b.WriteString("2. Keep it concise but professional\n")
	b.WriteString("3. Express genuine interest in the opportunity\n")
	b.WriteString("4. Highlight experience matching the stated requirements\n")
	fmt.Fprintf(&b, "5. Emphasize availability for %s roles\n", positionType)
	b.WriteString("6. End with a call to action\n")
	fmt.Fprintf(&b, "7. Include my contact information at the end: Phone: %s, Email: %s\n", req.Identity.Phone, req.Identity.Email)
	fmt.Fprintf(&b, "8. Sign the email with my name: %s\n", req.Identity.Name)
	b.WriteString("\nFormat:\nSubject: [Your subject line]\n\n[Your email body]\n")

	return b.String()
}
