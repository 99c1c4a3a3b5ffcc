package pipeline

import (
	"context"
	"fmt"

	"aduan-agent/matcher"
	"aduan-agent/prompts"
	"aduan-agent/social"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	draftMaxTokens     = 512
	rationaleMaxTokens = 256
)

// AgencyMatcher produces ranked agency suggestions for a complaint. Both
// matching tiers satisfy this.
type AgencyMatcher interface {
	Match(ctx context.Context, complaint string, k int) []matcher.Match
}

// TextGenerator produces prose from a prompt.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// HandleResolver looks up an agency's social handle.
type HandleResolver interface {
	Resolve(ctx context.Context, agencyName string) social.HandleInfo
}

// Result is the assembled outcome of one complaint request. Nothing here is
// cached; only the handle cache persists across calls.
type Result struct {
	GeneratedText string
	Matches       []matcher.Match
	Rationale     string
	SocialHandle  social.HandleInfo
}

// Pipeline runs the complaint flow: two-tier agency matching in parallel with
// complaint drafting, then rationale generation in parallel with handle
// resolution for the top match.
type Pipeline struct {
	primary  AgencyMatcher
	fallback AgencyMatcher
	llm      TextGenerator
	resolver HandleResolver
	topK     int
	logger   *zap.Logger
}

func New(primary, fallback AgencyMatcher, llm TextGenerator, resolver HandleResolver, topK int, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		primary:  primary,
		fallback: fallback,
		llm:      llm,
		resolver: resolver,
		topK:     topK,
		logger:   logger,
	}
}

// Process handles one complaint. It always returns a well-formed result:
// upstream failures degrade individual fields (empty draft, no suggestions,
// NOT_FOUND handle) instead of failing the request.
func (p *Pipeline) Process(ctx context.Context, complaint string, tone Tone) *Result {
	result := &Result{
		SocialHandle: social.HandleInfo{Handle: social.HandleNotFound, Status: social.StatusNone},
	}

	// Stage 1: draft the complaint text while matching runs. The vector tier
	// is strictly a fallback, so the two matchers stay sequential within
	// their task.
	var g errgroup.Group
	g.Go(func() error {
		prompt := fmt.Sprintf(tone.template(), complaint)
		text, err := p.llm.Generate(ctx, prompt, draftMaxTokens)
		if err != nil {
			p.logger.Warn("Complaint drafting failed, returning empty draft",
				zap.String("tone", string(tone)), zap.Error(err))
			return nil
		}
		result.GeneratedText = text
		return nil
	})
	g.Go(func() error {
		matches := p.primary.Match(ctx, complaint, p.topK)
		if len(matches) == 0 {
			p.logger.Debug("Keyword matching found nothing, using vector fallback")
			matches = p.fallback.Match(ctx, complaint, p.topK)
		}
		result.Matches = matches
		return nil
	})
	g.Wait()

	if len(result.Matches) == 0 {
		return result
	}

	// Stage 2: rationale and handle resolution for the top match are
	// independent of each other.
	top := result.Matches[0]
	var g2 errgroup.Group
	g2.Go(func() error {
		prompt := fmt.Sprintf(prompts.Rationale(), complaint, top.Name, top.Description)
		rationale, err := p.llm.Generate(ctx, prompt, rationaleMaxTokens)
		if err != nil {
			p.logger.Warn("Rationale generation failed, returning empty rationale",
				zap.String("agency", top.Name), zap.Error(err))
			return nil
		}
		result.Rationale = rationale
		return nil
	})
	g2.Go(func() error {
		result.SocialHandle = p.resolver.Resolve(ctx, top.Name)
		return nil
	})
	g2.Wait()

	return result
}
