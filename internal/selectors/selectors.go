// File: internal/selectors/selectors.go

// Package selectors defines the fallback element-matching rules the
// interaction pipeline relies on. Chat UIs rarely expose stable markup, so
// every logical role (composer, send button, assistant message, ...) carries
// an ordered chain of candidate rules: explicit data-testid style markers
// first, generic structural guesses last. The table is plain configuration —
// it holds no page state and is safe to share.
package selectors

import "github.com/probeworks/gptprobe/internal/config"

// Rule is one candidate match expression for a role. Query is a CSS selector
// handed to querySelectorAll; TextContains, when set, additionally filters
// matches by rendered text (the portable replacement for Playwright-style
// ":has-text()" pseudo-selectors).
type Rule struct {
	Query        string
	TextContains string
}

// Chain is an ordered list of rules for one role. Order encodes preference.
type Chain []Rule

// Table holds the chains for every role the pipeline queries.
type Table struct {
	// Composer matches the editable control where outgoing text is entered.
	Composer Chain
	// Send matches the primary submit control.
	Send Chain
	// AssistantMessage matches reply containers, most explicit markers first.
	AssistantMessage Chain
	// AnyMessage is the loose fallback used only for message counting when no
	// explicit assistant marker matches.
	AnyMessage Chain
	// BusyIndicator matches the transient streaming/generation spinner.
	BusyIndicator Chain
	// NewChat, MainCTA and SuggestionChip are entry-point controls clicked as
	// recovery nudges when no composer is visible.
	NewChat        Chain
	MainCTA        Chain
	SuggestionChip Chain
}

// Default returns the built-in selector table.
func Default() Table {
	return Table{
		Composer: Chain{
			{Query: "footer textarea"},
			{Query: "form textarea"},
			{Query: "textarea, div[contenteditable='true'], div[role='textbox']"},
			{Query: "div._prosemirror-parent, div[role='textbox'], textarea._fallbackTextarea"},
		},
		Send: Chain{
			{Query: "[data-testid='send-button'], button[data-testid='send-button']"},
			{Query: "button", TextContains: "Send"},
			{Query: "button[aria-label*='Send']"},
			{Query: "[data-testid='send']"},
		},
		AssistantMessage: Chain{
			{Query: "[data-message-author='assistant']"},
			{Query: "[data-testid='assistant-message']"},
			{Query: "div.text-message"},
			{Query: "div.markdown.prose"},
			{Query: "div.markdown"},
			{Query: ".prose"},
		},
		AnyMessage: Chain{
			{Query: ".text-message, [data-message-author], [data-testid*='message']"},
		},
		BusyIndicator: Chain{
			{Query: "[data-testid='spinner'], .result-streaming, .busy"},
		},
		NewChat: Chain{
			{Query: "a[href*='new']"},
			{Query: "button", TextContains: "New Chat"},
		},
		MainCTA: Chain{
			{Query: "button", TextContains: "Try"},
			{Query: "button", TextContains: "Start"},
		},
		SuggestionChip: Chain{
			{Query: "button[role='button'][data-testid*='chip'], .suggestion-chip"},
		},
	}
}

// FromConfig builds a table from the defaults, replacing any chain for which
// the configuration supplies a non-empty override. Overrides are plain query
// strings without text filters.
func FromConfig(sc config.SelectorConfig) Table {
	t := Default()
	if len(sc.Composer) > 0 {
		t.Composer = chainFromQueries(sc.Composer)
	}
	if len(sc.Send) > 0 {
		t.Send = chainFromQueries(sc.Send)
	}
	if len(sc.AssistantMessage) > 0 {
		t.AssistantMessage = chainFromQueries(sc.AssistantMessage)
	}
	if len(sc.AnyMessage) > 0 {
		t.AnyMessage = chainFromQueries(sc.AnyMessage)
	}
	if len(sc.BusyIndicator) > 0 {
		t.BusyIndicator = chainFromQueries(sc.BusyIndicator)
	}
	return t
}

func chainFromQueries(queries []string) Chain {
	chain := make(Chain, 0, len(queries))
	for _, q := range queries {
		if q == "" {
			continue
		}
		chain = append(chain, Rule{Query: q})
	}
	return chain
}
