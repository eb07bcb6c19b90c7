package service

import (
	"context"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/yourusername/careerops-api/internal/model"
)

// Insights is the analysis and job matching for one resume.
type Insights struct {
	Analysis *model.Analysis
	Matches  *model.MatchResult
}

// Pipeline runs the post-upload analysis and job matching concurrently.
type Pipeline struct {
	analyzer *Analyzer
	matcher  *Matcher
}

func NewPipeline(a *Analyzer, m *Matcher) *Pipeline {
	return &Pipeline{analyzer: a, matcher: m}
}

// Run analyses the resume and matches it against jobs. If either call fails
// the other is cancelled and the first error is returned.
func (p *Pipeline) Run(ctx context.Context, resumeText string, jobs []model.Job) (*Insights, error) {
	var out Insights
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a, err := p.analyzer.Analyze(gctx, resumeText)
		if err != nil {
			return err
		}
		out.Analysis = a
		return nil
	})
	g.Go(func() error {
		m, err := p.matcher.Match(gctx, resumeText, jobs)
		if err != nil {
			return err
		}
		out.Matches = m
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Warn().Err(err).Msg("Resume insights pipeline failed")
		return nil, err
	}
	return &out, nil
}
