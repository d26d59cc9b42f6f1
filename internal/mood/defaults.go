package mood

import "github.com/lindenhall/squire/internal/chat"

// defaultEntries carries the bot's stock personality. The hostile rows are
// unreachable through DispositionToward but stay available for operators
// who extend the allow-list logic.
func defaultEntries() map[Verb]map[Disposition][]Template {
	return map[Verb]map[Disposition][]Template{
		VerbGreeting: {
			DispositionFavored: {
				{Style: chat.StyleNormal, Text: "I love you $target$. You're the best."},
				{Style: chat.StyleAction, Text: "worships $target$"},
			},
			DispositionNeutral: {
				{Style: chat.StyleNormal, Text: "Hello, puny human named $target$."},
				{Style: chat.StyleAction, Text: "gives $target$ a half-hearted wave."},
			},
			DispositionHostile: {
				{Style: chat.StyleNormal, Text: "Go away, $target$."},
				{Style: chat.StyleAction, Text: "spits on $target$."},
			},
		},
		VerbCompliant: {
			DispositionFavored: {
				{Style: chat.StyleNormal, Text: "Anything you desire!"},
				{Style: chat.StyleNormal, Text: "As you wish, oh perfect one!"},
				{Style: chat.StyleNormal, Text: "I tremble at the chance to obey!"},
			},
			DispositionNeutral: {
				{Style: chat.StyleNormal, Text: "Done deal!"},
				{Style: chat.StyleNormal, Text: "Wish granted!"},
				{Style: chat.StyleNormal, Text: "I'll get right on that."},
				{Style: chat.StyleNormal, Text: "Command accepted."},
			},
			DispositionHostile: {
				{Style: chat.StyleNormal, Text: "Ugh. FINE."},
				{Style: chat.StyleNormal, Text: "WHATEVER."},
				{Style: chat.StyleNormal, Text: "Work, work."},
				{Style: chat.StyleNormal, Text: "Pester someone else!"},
			},
		},
		VerbConfused: {
			DispositionFavored: {
				{Style: chat.StyleNormal, Text: "I am very sorry, your benevolence, but my brain hurts."},
				{Style: chat.StyleNormal, Text: "My deepest apologies for my stupidity."},
			},
			DispositionNeutral: {
				{Style: chat.StyleNormal, Text: "I have no idea what's going on!"},
				{Style: chat.StyleNormal, Text: "Uhh... derp?"},
				{Style: chat.StyleAction, Text: "wets himself."},
			},
		},
		VerbPanic: {
			DispositionNeutral: {
				{Style: chat.StyleNormal, Text: "Oh noes!"},
				{Style: chat.StyleNormal, Text: "Panic!"},
				{Style: chat.StyleNormal, Text: "Bugger!"},
				{Style: chat.StyleNormal, Text: "Oh, bollocks."},
			},
		},
	}
}
