package core

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"go.uber.org/zap"
)

// senderGen generates plausible sender addresses over a small alphabet so
// that generated senders sometimes collide with the rule sets.
func senderGen() gopter.Gen {
	return gopter.CombineGens(
		gen.RegexMatch("[a-z]{1,8}"),
		gen.OneConstOf("example.com", "spamhub.example", "newsletters.example", "ok.example"),
	).Map(func(parts []interface{}) string {
		return parts[0].(string) + "@" + parts[1].(string)
	})
}

func TestProperty_ClassifierDeterminism(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	classifier := NewClassifier(testRules(), zap.NewNop())

	properties.Property("same_message_always_gets_same_verdict", prop.ForAll(
		func(from, subject, body string) bool {
			msg := &Message{From: from, Subject: subject, TextBody: body}
			first := classifier.Classify(msg)
			second := classifier.Classify(msg)
			return first == second
		},
		senderGen(),
		gen.AlphaString(),
		gen.AlphaString(),
	))

	properties.Property("trusted_sender_is_never_filtered", prop.ForAll(
		func(subject, body string) bool {
			msg := &Message{From: "boss@example.com", Subject: subject, TextBody: body}
			return classifier.Classify(msg).Action == ActionTrusted
		},
		gen.AlphaString(),
		gen.AlphaString(),
	))

	properties.Property("case_of_sender_never_changes_verdict", prop.ForAll(
		func(from, subject string) bool {
			lower := classifier.Classify(&Message{From: from, Subject: subject})
			upper := classifier.Classify(&Message{From: strings.ToUpper(from), Subject: subject})
			return lower.Action == upper.Action
		},
		senderGen(),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}

func TestProperty_DomainBoundary(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	// A domain pattern only matches at a "@" or "." boundary; gluing an
	// arbitrary prefix directly onto the domain must not match.
	properties.Property("no_match_without_boundary", prop.ForAll(
		func(prefix string) bool {
			sender := "user@" + prefix + "example.com"
			return !DomainMatches(sender, "example.com")
		},
		gen.RegexMatch("[a-z]{1,6}"),
	))

	properties.Property("subdomains_always_match", prop.ForAll(
		func(sub string) bool {
			sender := "user@" + sub + ".example.com"
			return DomainMatches(sender, "example.com")
		},
		gen.RegexMatch("[a-z]{1,6}"),
	))

	properties.TestingRun(t)
}
