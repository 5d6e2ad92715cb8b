// Package search provides the technology search client. The live GitHub
// integration is out of scope, so the only implementation is a stub that
// serves fixed sample data with realistic latency.
package search

import (
	"context"
	"strings"
	"time"
)

// Result is one technology found by a search
type Result struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Difficulty  string   `json:"difficulty"`
	Stars       int      `json:"stars"`
	Language    string   `json:"language"`
	Topics      []string `json:"topics"`
	URL         string   `json:"url"`
}

// Client searches the technology catalog
type Client interface {
	Search(ctx context.Context, query string) ([]Result, error)
	Popular(ctx context.Context) ([]Result, error)
}

// MockClient serves fixed sample data, standing in for the GitHub search
// API. The artificial delay mimics network latency so callers exercise
// their cancellation paths.
type MockClient struct {
	// Delay before results are returned; zero disables the wait
	Delay time.Duration
}

// NewMockClient creates a stub client with the default latency
func NewMockClient() *MockClient {
	return &MockClient{Delay: 500 * time.Millisecond}
}

// Search returns the sample results whose title or description contains
// the query, case-insensitively.
func (c *MockClient) Search(ctx context.Context, query string) ([]Result, error) {
	if err := c.wait(ctx, c.Delay); err != nil {
		return nil, err
	}

	q := strings.ToLower(query)
	var out []Result
	for _, r := range sampleResults {
		if strings.Contains(strings.ToLower(r.Title), q) ||
			strings.Contains(strings.ToLower(r.Description), q) {
			out = append(out, r)
		}
	}
	return out, nil
}

// Popular returns the fixed list of trending technologies
func (c *MockClient) Popular(ctx context.Context) ([]Result, error) {
	if err := c.wait(ctx, c.Delay/2); err != nil {
		return nil, err
	}
	out := make([]Result, len(samplePopular))
	copy(out, samplePopular)
	return out, nil
}

func (c *MockClient) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

var sampleResults = []Result{
	{
		ID:          1,
		Title:       "React",
		Description: "A JavaScript library for building user interfaces",
		Category:    "Frontend",
		Difficulty:  "intermediate",
		Stars:       200000,
		Language:    "JavaScript",
		Topics:      []string{"react", "javascript", "ui"},
		URL:         "https://github.com/facebook/react",
	},
	{
		ID:          2,
		Title:       "Vue.js",
		Description: "A progressive framework for building user interfaces",
		Category:    "Frontend",
		Difficulty:  "intermediate",
		Stars:       180000,
		Language:    "JavaScript",
		Topics:      []string{"vue", "javascript", "framework"},
		URL:         "https://github.com/vuejs/vue",
	},
	{
		ID:          3,
		Title:       "Node.js",
		Description: "A JavaScript runtime for the server side",
		Category:    "Backend",
		Difficulty:  "advanced",
		Stars:       95000,
		Language:    "JavaScript",
		Topics:      []string{"nodejs", "javascript", "backend"},
		URL:         "https://github.com/nodejs/node",
	},
}

var samplePopular = []Result{
	{
		ID:          1,
		Title:       "React",
		Description: "A library for building user interfaces",
		Category:    "Frontend",
		Stars:       200000,
		Language:    "JavaScript",
	},
	{
		ID:          2,
		Title:       "TypeScript",
		Description: "A typed superset of JavaScript",
		Category:    "Language",
		Stars:       88000,
		Language:    "TypeScript",
	},
	{
		ID:          3,
		Title:       "Next.js",
		Description: "The React framework for production",
		Category:    "Fullstack",
		Stars:       110000,
		Language:    "JavaScript",
	},
	{
		ID:          4,
		Title:       "Tailwind CSS",
		Description: "A utility-first CSS framework",
		Category:    "CSS",
		Stars:       68000,
		Language:    "CSS",
	},
}
