// Package pipeline sequences scraping, scoring, tailoring and rendering.
// Scoring and tailoring themselves are pure; the pipeline owns every state
// write and is the only component that touches the posting store.
package pipeline

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"job-tailor/internal/logger"
	"job-tailor/internal/posting"
	"job-tailor/internal/profile"
	"job-tailor/internal/scoring"
	"job-tailor/internal/tailoring"
)

// Store is the narrow persistence contract the pipeline works against.
type Store interface {
	Get(id string) (*posting.Posting, error)
	Upsert(p *posting.Posting) error
	List(state posting.State) (*posting.Postings, error)
	SetState(id string, state posting.State) error
	SetFit(id string, score float64, tier string) error
}

// Renderer hands a tailored resume off to the document layer. It may fail;
// the pipeline never assumes success.
type Renderer interface {
	Render(resume *tailoring.TailoredResume, post *posting.Posting) (string, error)
}

// ScoreReport summarizes one scoring pass, mirroring the per-step counters
// the rest of the pipeline logs.
type ScoreReport struct {
	Total   int
	Scored  int
	Skipped int
}

type Pipeline struct {
	store       Store
	scorer      *scoring.Scorer
	selector    *tailoring.Selector
	renderer    Renderer
	logger      *zap.Logger
	parallelism int
}

func New(store Store, scorer *scoring.Scorer, selector *tailoring.Selector, renderer Renderer, logger *zap.Logger, parallelism int) *Pipeline {
	if parallelism <= 0 {
		parallelism = 1
	}
	return &Pipeline{
		store:       store,
		scorer:      scorer,
		selector:    selector,
		renderer:    renderer,
		logger:      logger,
		parallelism: parallelism,
	}
}

// Ingest upserts freshly fetched postings and scores whatever is new.
// Re-ingesting postings already in the store neither duplicates them nor
// resets their state.
func (p *Pipeline) Ingest(ctx context.Context, prof *profile.Profile, postings *posting.Postings) (*ScoreReport, error) {
	for _, post := range postings.Items {
		if err := p.store.Upsert(post); err != nil {
			return nil, fmt.Errorf("upserting posting %s: %w", post.ID, err)
		}
	}

	p.logger.Info("ingested postings", zap.Int("count", postings.Len()))
	return p.ScoreAll(ctx, prof, false)
}

// ScoreAll scores stored postings against the profile and persists tier and
// score. Postings already scored are skipped unless force is set; postings
// that progressed past scored (applied, skipped) are never touched. Each
// scoring call is independent, so the batch fans out across goroutines; the
// store serializes the final state writes.
func (p *Pipeline) ScoreAll(ctx context.Context, prof *profile.Profile, force bool) (*ScoreReport, error) {
	all, err := p.store.List("")
	if err != nil {
		return nil, fmt.Errorf("listing postings: %w", err)
	}

	report := &ScoreReport{Total: all.Len()}

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.parallelism)

	for _, post := range all.Items {
		switch post.State {
		case posting.StateNew:
		case posting.StateScored:
			if !force {
				report.Skipped++
				continue
			}
		default:
			report.Skipped++
			continue
		}

		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			result := p.scorer.Score(prof, post)
			if err := p.store.SetFit(post.ID, result.Score, result.TierName); err != nil {
				return fmt.Errorf("persisting fit for posting %s: %w", post.ID, err)
			}

			p.logger.Debug("scored posting",
				zap.String("posting_id", post.ID),
				zap.String("company", post.Company),
				zap.String("title_preview", logger.TruncateForLog(post.Title, 80)),
				zap.Float64("score", result.Score),
				zap.String("tier", result.TierName),
				zap.Strings("matched", result.Matched),
			)

			mu.Lock()
			report.Scored++
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	p.logger.Info("scoring pass finished",
		zap.Int("total", report.Total),
		zap.Int("scored", report.Scored),
		zap.Int("skipped", report.Skipped),
	)
	return report, nil
}

// Results returns stored postings ordered by fit, optionally narrowed to a
// single state, for presentation to the user.
func (p *Pipeline) Results(state posting.State) (*posting.Postings, error) {
	postings, err := p.store.List(state)
	if err != nil {
		return nil, err
	}
	postings.SortByFit()
	return postings, nil
}

// Tailor builds the tailored resume for one stored posting without touching
// its state, so callers can preview before committing.
func (p *Pipeline) Tailor(prof *profile.Profile, postingID string) (*tailoring.TailoredResume, *posting.Posting, error) {
	post, err := p.store.Get(postingID)
	if err != nil {
		return nil, nil, err
	}

	resume, err := p.selector.Tailor(prof, post)
	if err != nil {
		return nil, nil, err
	}
	return resume, post, nil
}

// Apply renders the tailored resume and, only if rendering succeeds,
// advances the posting to applied. On a render failure the posting keeps
// its scored state so the attempt can be repeated.
func (p *Pipeline) Apply(resume *tailoring.TailoredResume, post *posting.Posting) (string, error) {
	path, err := p.renderer.Render(resume, post)
	if err != nil {
		p.logger.Warn("render failed; posting state unchanged",
			zap.String("posting_id", post.ID),
			zap.Error(err),
		)
		return "", fmt.Errorf("rendering resume: %w", err)
	}

	if err := p.store.SetState(post.ID, posting.StateApplied); err != nil {
		return "", fmt.Errorf("marking posting applied: %w", err)
	}

	p.logger.Info("resume rendered",
		zap.String("posting_id", post.ID),
		zap.String("company", post.Company),
		zap.String("path", path),
	)
	return path, nil
}

// Skip marks a posting as consciously passed over.
func (p *Pipeline) Skip(postingID string) error {
	return p.store.SetState(postingID, posting.StateSkipped)
}
