// File: internal/interact/extractor_test.go
package interact

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/probeworks/gptprobe/internal/selectors"
)

func TestAnswerExtractorLatest(t *testing.T) {
	chains := selectors.Default()
	markerRule := chains.AssistantMessage[0]
	fallbackRule := chains.AssistantMessage[2]

	t.Run("BottomMostVisibleMessageWins", func(t *testing.T) {
		probe := newFakeProbe()
		probe.set(markerRule,
			fakeElement{visible: true, text: "first reply"},
			fakeElement{visible: true, text: "latest reply"},
		)

		extractor := NewAnswerExtractor(probe, chains, zap.NewNop())
		assert.Equal(t, "latest reply", extractor.Latest(context.Background()))
	})

	t.Run("HiddenTailIsSkipped", func(t *testing.T) {
		probe := newFakeProbe()
		probe.set(markerRule,
			fakeElement{visible: true, text: "visible reply"},
			fakeElement{visible: false, text: "collapsed reply"},
		)

		extractor := NewAnswerExtractor(probe, chains, zap.NewNop())
		assert.Equal(t, "visible reply", extractor.Latest(context.Background()))
	})

	t.Run("FallsThroughToLaterRules", func(t *testing.T) {
		probe := newFakeProbe()
		// Explicit markers match nothing visible; a structural rule does.
		probe.set(markerRule, fakeElement{visible: false, text: "ghost"})
		probe.set(fallbackRule, fakeElement{visible: true, text: "structural reply"})

		extractor := NewAnswerExtractor(probe, chains, zap.NewNop())
		assert.Equal(t, "structural reply", extractor.Latest(context.Background()))
	})

	t.Run("NothingVisibleIsEmptyNotError", func(t *testing.T) {
		probe := newFakeProbe()
		extractor := NewAnswerExtractor(probe, chains, zap.NewNop())
		assert.Empty(t, extractor.Latest(context.Background()))
	})
}
