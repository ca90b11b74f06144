// Package patterns loads line-delimited rule files into in-memory sets.
// Files are plain UTF-8 text, one pattern per line; blank lines and lines
// starting with '#' are skipped and every pattern is lowercased at load
// time. A missing file degrades to an empty set, never an error.
package patterns

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/mikey/mail-agent/internal/core"
	"go.uber.org/zap"
)

// Well-known file names inside the pattern directory
const (
	TrustedSendersFile = "trusted_senders.txt"
	SpamEmailsFile     = "spam_emails.txt"
	SpamDomainsFile    = "spam_domains.txt"
	SpamKeywordsFile   = "spam_keywords.txt"
	DeleteEmailsFile   = "delete_emails.txt"
	DeleteDomainsFile  = "delete_domains.txt"
	DeleteKeywordsFile = "delete_keywords.txt"
)

// Store loads and holds the rule sets. Reload is explicit; the sets are
// not watched or hot-reloaded mid-run.
type Store struct {
	dir    string
	rules  core.Rules
	logger *zap.Logger
}

// NewStore creates a store over the given pattern directory and performs
// the initial load.
func NewStore(dir string, logger *zap.Logger) *Store {
	s := &Store{
		dir:    dir,
		logger: logger,
	}
	s.Reload()
	return s
}

// Reload re-reads every pattern file from disk
func (s *Store) Reload() {
	s.rules = core.Rules{
		Trusted:         s.loadFile(TrustedSendersFile),
		SpamAddresses:   s.loadFile(SpamEmailsFile),
		SpamDomains:     s.loadFile(SpamDomainsFile),
		SpamKeywords:    s.loadFile(SpamKeywordsFile),
		DeleteAddresses: s.loadFile(DeleteEmailsFile),
		DeleteDomains:   s.loadFile(DeleteDomainsFile),
		DeleteKeywords:  s.loadFile(DeleteKeywordsFile),
	}

	s.logger.Info("Loaded pattern files",
		zap.String("dir", s.dir),
		zap.Int("trusted", len(s.rules.Trusted)),
		zap.Int("spam_addresses", len(s.rules.SpamAddresses)),
		zap.Int("spam_domains", len(s.rules.SpamDomains)),
		zap.Int("spam_keywords", len(s.rules.SpamKeywords)),
		zap.Int("delete_addresses", len(s.rules.DeleteAddresses)),
		zap.Int("delete_domains", len(s.rules.DeleteDomains)),
		zap.Int("delete_keywords", len(s.rules.DeleteKeywords)))
}

// Rules returns the currently loaded rule sets
func (s *Store) Rules() *core.Rules {
	return &s.rules
}

func (s *Store) loadFile(name string) []string {
	path := filepath.Join(s.dir, name)
	patterns, err := LoadPatternFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("Failed to read pattern file",
				zap.String("file", path), zap.Error(err))
		}
		return nil
	}
	return patterns
}

// LoadPatternFile reads one line-delimited pattern file. Returned patterns
// are trimmed and lowercased; comments and blank lines are excluded.
func LoadPatternFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var patterns []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, strings.ToLower(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return patterns, nil
}
