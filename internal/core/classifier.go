package core

import (
	"strings"

	"go.uber.org/zap"
)

// Rules holds the loaded pattern sets the classifier evaluates against.
// All patterns are lowercase; matching is case-insensitive.
type Rules struct {
	Trusted         []string
	SpamAddresses   []string
	SpamDomains     []string
	SpamKeywords    []string
	DeleteAddresses []string
	DeleteDomains   []string
	DeleteKeywords  []string
}

// Classifier evaluates one message against the rule sets in a fixed
// priority order: trusted sender, spam address, spam domain, spam keyword,
// delete address, delete domain, delete keyword. Trust always wins.
type Classifier struct {
	rules  *Rules
	logger *zap.Logger
}

// NewClassifier creates a new classifier over the given rules
func NewClassifier(rules *Rules, logger *zap.Logger) *Classifier {
	return &Classifier{
		rules:  rules,
		logger: logger,
	}
}

// Classify returns exactly one verdict for the message. It is a pure
// function of the message and the rule sets; applying the verdict is the
// coordinator's job.
func (c *Classifier) Classify(msg *Message) Verdict {
	verdict := c.classify(msg)
	if verdict.Action != ActionKeep && c.logger != nil {
		c.logger.Debug("Message classified",
			zap.Uint32("uid", msg.UID),
			zap.String("from", msg.From),
			zap.String("action", string(verdict.Action)),
			zap.String("reason", verdict.Reason))
	}
	return verdict
}

func (c *Classifier) classify(msg *Message) Verdict {
	sender := strings.ToLower(msg.From)
	haystack := strings.ToLower(msg.Subject + " " + msg.Body())

	// 1. Trusted sender: substring match, exempt from every other rule
	for _, t := range c.rules.Trusted {
		if strings.Contains(sender, t) {
			return Verdict{Action: ActionTrusted, Reason: "Trusted sender: " + t}
		}
	}

	// 2. Exact spam address
	if matched := matchAddresses(sender, c.rules.SpamAddresses); len(matched) > 0 {
		return Verdict{Action: ActionSpam, Reason: "Spam address: " + strings.Join(matched, ", ")}
	}

	// 3. Spam domain
	if matched := matchDomains(sender, c.rules.SpamDomains); len(matched) > 0 {
		return Verdict{Action: ActionSpam, Reason: "Spam domain: " + strings.Join(matched, ", ")}
	}

	// 4. Spam keyword against subject + body
	if matched := matchKeywords(haystack, c.rules.SpamKeywords); len(matched) > 0 {
		return Verdict{Action: ActionSpam, Reason: "Spam keywords: " + strings.Join(matched, ", ")}
	}

	// 5. Exact delete address
	if matched := matchAddresses(sender, c.rules.DeleteAddresses); len(matched) > 0 {
		return Verdict{Action: ActionDeleted, Reason: "Delete address: " + strings.Join(matched, ", ")}
	}

	// 6. Delete domain
	if matched := matchDomains(sender, c.rules.DeleteDomains); len(matched) > 0 {
		return Verdict{Action: ActionDeleted, Reason: "Delete domain: " + strings.Join(matched, ", ")}
	}

	// 7. Delete keyword against subject + body
	if matched := matchKeywords(haystack, c.rules.DeleteKeywords); len(matched) > 0 {
		return Verdict{Action: ActionDeleted, Reason: "Delete keywords: " + strings.Join(matched, ", ")}
	}

	// 8. No match
	return Verdict{Action: ActionKeep}
}

func matchAddresses(sender string, addresses []string) []string {
	var matched []string
	for _, addr := range addresses {
		if sender == addr {
			matched = append(matched, addr)
		}
	}
	return matched
}

func matchKeywords(haystack string, keywords []string) []string {
	var matched []string
	for _, kw := range keywords {
		if strings.Contains(haystack, kw) {
			matched = append(matched, kw)
		}
	}
	return matched
}

func matchDomains(sender string, domains []string) []string {
	var matched []string
	for _, d := range domains {
		if DomainMatches(sender, d) {
			matched = append(matched, d)
		}
	}
	return matched
}

// DomainMatches reports whether the sender address matches a domain
// pattern. A pattern of the form "*.example.com" matches the bare suffix
// and any subdomain; a bare pattern "example.com" matches the exact domain
// and any subdomain. There is no match without a "@" or "." boundary, so
// "otherexample.com" never matches "example.com".
func DomainMatches(sender, pattern string) bool {
	sender = strings.ToLower(sender)
	pattern = strings.ToLower(pattern)

	if suffix, ok := strings.CutPrefix(pattern, "*."); ok {
		return strings.HasSuffix(sender, "."+suffix) || strings.HasSuffix(sender, "@"+suffix)
	}

	// Exact domain: user@example.com matches example.com
	if strings.HasSuffix(sender, "@"+pattern) {
		return true
	}

	// Subdomain: user@sub.example.com matches example.com
	return strings.HasSuffix(sender, "."+pattern)
}
