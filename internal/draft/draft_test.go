package draft

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"outreach-engine/internal/domain"
)

func TestParseMessage(t *testing.T) {
	m := ParseMessage("Subject: Contract Java role\n\nHello,\n\nI saw your post.", "fb")
	assert.Equal(t, "Contract Java role", m.Subject)
	assert.Equal(t, "Hello,\n\nI saw your post.", m.Body)
}

func TestParseMessageFallbackSubject(t *testing.T) {
	m := ParseMessage("Hello, I saw your post and would love to talk.", "fb")
	assert.Equal(t, "fb", m.Subject)
	assert.Equal(t, "Hello, I saw your post and would love to talk.", m.Body)
}

func TestParseMessageSubjectNotOnFirstLine(t *testing.T) {
	m := ParseMessage("Sure, here is the email:\nSubject: Hi there\n\nBody text.", "fb")
	assert.Equal(t, "Hi there", m.Subject)
	assert.Equal(t, "Body text.", m.Body)
}

func openAIStub(t *testing.T, content string, check func(r *http.Request, cr chatRequest)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var cr chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&cr))
		if check != nil {
			check(r, cr)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": content}},
			},
		})
	}))
}

func TestOpenAIDrafterDraft(t *testing.T) {
	srv := openAIStub(t, "Subject: Re: your Go opening\n\nHi Jane,\n\nBody here.",
		func(r *http.Request, cr chatRequest) {
			assert.Equal(t, "/chat/completions", r.URL.Path)
			assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
			assert.Equal(t, "gpt-4o-mini", cr.Model)
			require.Len(t, cr.Messages, 2)
			assert.Contains(t, cr.Messages[1].Content, "Contract/C2C")
			assert.Contains(t, cr.Messages[1].Content, "Post Author: Jane")
			assert.Contains(t, cr.Messages[1].Content, "Phone: 555-0100")
		})
	defer srv.Close()

	d := NewOpenAIDrafter(srv.URL, "test-key", "gpt-4o-mini", 0.7, 500, 0)
	msg, err := d.Draft(context.Background(), Request{
		Author:         "Jane",
		Content:        "Hiring Go engineers",
		EmploymentType: domain.EmploymentContract,
		Identity:       Identity{Name: "John Doe", Phone: "555-0100", Email: "john@doe.dev"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Re: your Go opening", msg.Subject)
	assert.Equal(t, "Hi Jane,\n\nBody here.", msg.Body)
}

func TestOpenAIDrafterAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad api key"}}`))
	}))
	defer srv.Close()

	d := NewOpenAIDrafter(srv.URL, "wrong", "gpt-4o-mini", 0, 0, 0)
	_, err := d.Draft(context.Background(), Request{Author: "Jane"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad api key")
}

func TestOpenAIDrafterNonJSONErrorPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`<html><body>502 Bad Gateway</body></html>`))
	}))
	defer srv.Close()

	// A proxy error page is not JSON; the status must still come through
	// instead of a decode error.
	d := NewOpenAIDrafter(srv.URL, "k", "m", 0, 0, 0)
	_, err := d.Draft(context.Background(), Request{Author: "Jane"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "drafter status 502")
	assert.NotContains(t, err.Error(), "invalid character")
}

func TestOpenAIDrafterEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	d := NewOpenAIDrafter(srv.URL, "k", "m", 0, 0, 0)
	_, err := d.Draft(context.Background(), Request{})
	require.Error(t, err)
}

func TestBuildPromptResumeFallback(t *testing.T) {
	p := buildPrompt(Request{Author: "Jane", Content: "post"})
	assert.Contains(t, p, "Not provided")
	assert.True(t, strings.Contains(p, "Full-time"), "unset employment type reads as full-time")

	p = buildPrompt(Request{Resume: "10 years of Go", EmploymentType: domain.EmploymentContract})
	assert.Contains(t, p, "10 years of Go")
	assert.Contains(t, p, "Contract/C2C")
}
