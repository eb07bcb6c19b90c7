package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/yourusername/careerops-api/internal/llm"
	"github.com/yourusername/careerops-api/internal/model"
)

var (
	// ErrInvalidURL is returned for job links that are not absolute http(s) URLs.
	ErrInvalidURL = errors.New("invalid job URL")
	// ErrEmptyJob is returned when a posting has no text.
	ErrEmptyJob = errors.New("job description is empty")
)

const (
	maxPageBytes    = 1 << 20
	maxJobTextChars = 50000
	userAgent       = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

var jobContentSelectors = []string{
	".job-description",
	".job-content",
	"#job-description",
	"#job-content",
	".posting-content",
	".job-details",
	"[data-testid='job-description']",
	"main",
	"article",
	".content",
	"#content",
}

// JobPageFetcher downloads a job posting and reduces it to text.
type JobPageFetcher struct {
	client *http.Client
}

func NewJobPageFetcher(client *http.Client) *JobPageFetcher {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &JobPageFetcher{client: client}
}

// Fetch retrieves the page and returns its main text.
func (f *JobPageFetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", ErrInvalidURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	// Job boards block obvious bots.
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("URL returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", fmt.Errorf("reading URL content: %w", err)
	}

	text, err := ExtractMainText(string(body))
	if err != nil {
		return "", err
	}
	if len(text) > maxJobTextChars {
		text = text[:maxJobTextChars]
	}
	return text, nil
}

// ExtractMainText strips page chrome and returns the posting body, one
// non-empty line per line.
func ExtractMainText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parsing HTML: %w", err)
	}

	doc.Find("nav, footer, header, script, style, noscript, .ad, .advertisement, .sidebar, .cookie-banner, .popup").Remove()

	var main *goquery.Selection
	for _, selector := range jobContentSelectors {
		if sel := doc.Find(selector); sel.Length() > 0 {
			main = sel.First()
			break
		}
	}
	if main == nil {
		main = doc.Find("body")
	}

	var kept []string
	for _, line := range strings.Split(main.Text(), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n"), nil
}

const jobExtractPrompt = `You are a job posting parser. Extract structured data from the job posting.

Respond with ONLY a JSON object:
{
  "title": "Job title",
  "company": "Company name",
  "description": "A clean summary of the role (2-4 sentences, not the full posting)",
  "requirements": ["Required skill or qualification"]
}

Extract only what's explicitly stated. Use an empty string or empty array for anything missing.`

// JobExtractor turns a pasted or fetched posting into a target job.
type JobExtractor struct {
	llm   llm.Completer
	pages *JobPageFetcher
}

func NewJobExtractor(c llm.Completer, pages *JobPageFetcher) *JobExtractor {
	return &JobExtractor{llm: c, pages: pages}
}

// FromText structures a pasted job description.
func (e *JobExtractor) FromText(ctx context.Context, text string) (*model.TargetJob, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyJob
	}
	if len(text) > maxJobTextChars {
		text = text[:maxJobTextChars]
	}

	req := llm.UserPrompt("extract_job", jobExtractPrompt, "Parse this job posting and return the JSON:\n\n"+text)
	req.MaxTokens = 1500

	var target model.TargetJob
	if _, err := llm.CompleteJSON(ctx, e.llm, req, &target); err != nil {
		return nil, fmt.Errorf("parsing job posting: %w", err)
	}
	target.Source = model.TargetSourceText
	if target.Description == "" {
		target.Description = text
	}
	return &target, nil
}

// FromURL fetches a posting and structures it.
func (e *JobExtractor) FromURL(ctx context.Context, rawURL string) (*model.TargetJob, error) {
	text, err := e.pages.Fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	target, err := e.FromText(ctx, "Source URL: "+rawURL+"\n\n"+text)
	if err != nil {
		return nil, err
	}
	target.Source = model.TargetSourceURL
	target.URL = rawURL
	return target, nil
}
