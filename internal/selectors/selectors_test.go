// File: internal/selectors/selectors_test.go
package selectors

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/probeworks/gptprobe/internal/config"
)

func TestDefault(t *testing.T) {
	table := Default()

	t.Run("EveryRoleHasAChain", func(t *testing.T) {
		require.NotEmpty(t, table.Composer)
		require.NotEmpty(t, table.Send)
		require.NotEmpty(t, table.AssistantMessage)
		require.NotEmpty(t, table.AnyMessage)
		require.NotEmpty(t, table.BusyIndicator)
		require.NotEmpty(t, table.NewChat)
		require.NotEmpty(t, table.MainCTA)
		require.NotEmpty(t, table.SuggestionChip)
	})

	t.Run("ComposerPrefersFooterTextarea", func(t *testing.T) {
		assert.Equal(t, Rule{Query: "footer textarea"}, table.Composer[0])
	})

	t.Run("AssistantChainLeadsWithExplicitMarker", func(t *testing.T) {
		assert.Equal(t, "[data-message-author='assistant']", table.AssistantMessage[0].Query)
	})

	t.Run("SendChainCarriesTextFilteredButton", func(t *testing.T) {
		found := false
		for _, rule := range table.Send {
			if rule.TextContains == "Send" {
				found = true
			}
		}
		assert.True(t, found)
	})
}

func TestFromConfig(t *testing.T) {
	t.Run("EmptyConfigKeepsDefaults", func(t *testing.T) {
		got := FromConfig(config.SelectorConfig{})
		if diff := cmp.Diff(Default(), got); diff != "" {
			t.Fatalf("table mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("OverrideReplacesOnlyItsChain", func(t *testing.T) {
		got := FromConfig(config.SelectorConfig{
			Composer: []string{"#my-composer", "", "textarea.editor"},
		})

		assert.Equal(t, Chain{
			{Query: "#my-composer"},
			{Query: "textarea.editor"},
		}, got.Composer, "blank queries are dropped")
		assert.Equal(t, Default().Send, got.Send)
		assert.Equal(t, Default().AssistantMessage, got.AssistantMessage)
	})
}
