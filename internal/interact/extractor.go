// File: internal/interact/extractor.go
package interact

import (
	"context"

	"go.uber.org/zap"

	"github.com/probeworks/gptprobe/internal/browser"
	"github.com/probeworks/gptprobe/internal/selectors"
)

// AnswerExtractor pulls the most recent assistant reply off the page.
type AnswerExtractor struct {
	probe  browser.PageProbe
	chains selectors.Table
	logger *zap.Logger
}

// NewAnswerExtractor wires an extractor over the given probe and selector
// table.
func NewAnswerExtractor(probe browser.PageProbe, chains selectors.Table, logger *zap.Logger) *AnswerExtractor {
	return &AnswerExtractor{
		probe:  probe,
		chains: chains,
		logger: logger.Named("answer_extractor"),
	}
}

// Latest walks the assistant-message chain in preference order, scanning each
// rule's MatchSet last-to-first, and returns the rendered text of the first
// visible match. The empty string means no rule had a visible match; that is
// a legitimate soft outcome, not an error — the record still gets written.
func (e *AnswerExtractor) Latest(ctx context.Context) string {
	for _, rule := range e.chains.AssistantMessage {
		count, err := e.probe.Count(ctx, rule)
		if err != nil || count == 0 {
			continue
		}
		for i := count - 1; i >= 0; i-- {
			visible, err := e.probe.IsVisible(ctx, rule, i)
			if err != nil || !visible {
				continue
			}
			text, err := e.probe.Text(ctx, rule, i)
			if err != nil {
				continue
			}
			return text
		}
	}
	e.logger.Debug("No visible assistant message found at extraction time.")
	return ""
}
