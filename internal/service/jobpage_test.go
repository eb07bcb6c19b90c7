package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/careerops-api/internal/model"
)

const postingHTML = `<html><head><title>Jobs</title><script>var x = 1;</script></head>
<body>
  <nav>Home | Careers</nav>
  <div class="job-description">
    <h1>Backend Engineer</h1>
    <p>  Build payment APIs in Go.  </p>
    <ul>
      <li>5+ years Go</li>
      <li>PostgreSQL</li>
    </ul>
  </div>
  <footer>Copyright</footer>
</body></html>`

func TestExtractMainText(t *testing.T) {
	text, err := ExtractMainText(postingHTML)
	require.NoError(t, err)
	assert.Equal(t, "Backend Engineer\nBuild payment APIs in Go.\n5+ years Go\nPostgreSQL", text)
}

func TestExtractMainText_FallsBackToBody(t *testing.T) {
	text, err := ExtractMainText(`<html><body><nav>menu</nav><p>Only paragraph</p></body></html>`)
	require.NoError(t, err)
	assert.Equal(t, "Only paragraph", text)
}

func TestJobPageFetcher_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(postingHTML))
	}))
	defer srv.Close()

	f := NewJobPageFetcher(srv.Client())

	text, err := f.Fetch(context.Background(), srv.URL+"/jobs/1")
	require.NoError(t, err)
	assert.Contains(t, text, "Build payment APIs in Go.")
	assert.NotContains(t, text, "Copyright")

	_, err = f.Fetch(context.Background(), srv.URL+"/missing")
	assert.Error(t, err)

	_, err = f.Fetch(context.Background(), "ftp://example.com/job")
	assert.ErrorIs(t, err, ErrInvalidURL)
	_, err = f.Fetch(context.Background(), "not a url")
	assert.ErrorIs(t, err, ErrInvalidURL)
}

func TestJobExtractor(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(postingHTML))
	}))
	defer srv.Close()

	fake := newFakeLLM().on("extract_job", `{"title": "Backend Engineer", "company": "Payco", "requirements": ["Go", "PostgreSQL"]}`)
	ex := NewJobExtractor(fake, NewJobPageFetcher(srv.Client()))

	target, err := ex.FromURL(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, model.TargetSourceURL, target.Source)
	assert.Equal(t, srv.URL, target.URL)
	assert.Equal(t, "Payco", target.Company)
	assert.Contains(t, fake.last().Messages[0].Content, "Build payment APIs in Go.")

	target, err = ex.FromText(context.Background(), "We need a Go engineer.")
	require.NoError(t, err)
	assert.Equal(t, model.TargetSourceText, target.Source)
	assert.Equal(t, "We need a Go engineer.", target.Description)

	_, err = ex.FromText(context.Background(), "  ")
	assert.Error(t, err)
}
