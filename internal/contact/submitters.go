package contact

import (
	"context"
	"fmt"
	"html"
	"strings"
	"sync"
	"time"

	"github.com/microcosm-cc/bluemonday"
)

// Simulated waits for Delay and succeeds, unless ctx ends first.
type Simulated struct {
	Delay time.Duration
}

func (s Simulated) Submit(ctx context.Context, _ Values) error {
	t := time.NewTimer(s.Delay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Chain runs submitters in order and stops at the first failure.
func Chain(steps ...Submitter) Submitter {
	return SubmitterFunc(func(ctx context.Context, v Values) error {
		for i, s := range steps {
			if err := s.Submit(ctx, v); err != nil {
				return fmt.Errorf("submit step %d: %w", i, err)
			}
		}
		return nil
	})
}

var (
	textPolicyOnce sync.Once
	textPolicy     *bluemonday.Policy
)

func textSanitizer() *bluemonday.Policy {
	textPolicyOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()
	})
	return textPolicy
}

// StripMarkup removes any HTML from s and returns plain text. It is for
// display only: submitters receive the values exactly as validated.
func StripMarkup(s string) string {
	cleaned := textSanitizer().Sanitize(s)
	return strings.TrimSpace(html.UnescapeString(cleaned))
}
