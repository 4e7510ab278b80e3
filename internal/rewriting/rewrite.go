// Package rewriting produces stylistic variations of an outreach email body.
package rewriting

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/outreach-pipeline/internal/generation"
	"github.com/jonathan/outreach-pipeline/internal/prompts"
	"github.com/jonathan/outreach-pipeline/internal/types"
	"golang.org/x/sync/errgroup"
)

// VariantCount is the number of rewrites produced per email (body_2..body_4)
const VariantCount = 3

// VariantError reports which rewrite failed
type VariantError struct {
	Variant int // 2, 3 or 4, matching the body column
	Cause   error
}

func (e *VariantError) Error() string {
	return fmt.Sprintf("rewrite for body_%d failed: %v", e.Variant, e.Cause)
}

func (e *VariantError) Unwrap() error {
	return e.Cause
}

// GenerateVariations rewrites body three times against the job description.
// The calls are independent and run concurrently; if any of them fails no
// variants are returned.
func GenerateVariations(ctx context.Context, adapter generation.Adapter, jobDescription, body string) (types.VariantSet, error) {
	if adapter == nil {
		return types.VariantSet{}, &generation.AdapterError{Op: "complete", Message: "no generation adapter configured"}
	}

	prompt := BuildPrompt(jobDescription, body)

	var results [VariantCount]string
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(VariantCount)

	for i := range results {
		g.Go(func() (err error) {
			// errgroup does not recover panics
			defer func() {
				if r := recover(); r != nil {
					err = &VariantError{Variant: i + 2, Cause: fmt.Errorf("panic: %v", r)}
				}
			}()

			text, err := adapter.Complete(gCtx, prompt)
			if err != nil {
				return &VariantError{Variant: i + 2, Cause: err}
			}
			// each goroutine owns its own slot
			results[i] = text
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return types.VariantSet{}, err
	}

	return types.VariantSet{
		Body2: results[0],
		Body3: results[1],
		Body4: results[2],
	}, nil
}

// BuildPrompt fills the rewrite template with the worked example, the job
// description and the current message
func BuildPrompt(jobDescription, body string) string {
	jd := NormalizeJobDescription(jobDescription)
	template := prompts.MustGet(prompts.OutreachFile, prompts.KeyRewriteEmail)
	example := prompts.MustGet(prompts.OutreachFile, prompts.KeyRewriteExample)

	return prompts.Format(template, map[string]string{
		"Example":        example,
		"JobDescription": jd,
		"CurrentMessage": strings.TrimSpace(body),
	})
}
