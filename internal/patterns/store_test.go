package patterns

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
}

func TestLoadPatternFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "patterns.txt", `# trusted people
Boss@Example.COM

  spaced@example.com
# another comment
plain@example.com
`)

	patterns, err := LoadPatternFile(filepath.Join(dir, "patterns.txt"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"boss@example.com", "spaced@example.com", "plain@example.com"}
	if len(patterns) != len(want) {
		t.Fatalf("patterns: got %v, want %v", patterns, want)
	}
	for i := range want {
		if patterns[i] != want[i] {
			t.Errorf("patterns[%d]: got %q, want %q", i, patterns[i], want[i])
		}
	}
}

func TestStoreMissingFilesAreEmptySets(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir(), zap.NewNop())
	rules := store.Rules()

	if len(rules.Trusted) != 0 || len(rules.SpamKeywords) != 0 {
		t.Errorf("expected empty rule sets, got %+v", rules)
	}
}

func TestStoreLoadsAllFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, TrustedSendersFile, "boss@example.com\n")
	writeFile(t, dir, SpamEmailsFile, "promo@deals.example\n")
	writeFile(t, dir, SpamDomainsFile, "spamhub.example\n*.sketchy.example\n")
	writeFile(t, dir, SpamKeywordsFile, "act now\n")
	writeFile(t, dir, DeleteEmailsFile, "noreply@social.example\n")
	writeFile(t, dir, DeleteDomainsFile, "newsletters.example\n")
	writeFile(t, dir, DeleteKeywordsFile, "unsubscribe\n")

	store := NewStore(dir, zap.NewNop())
	rules := store.Rules()

	if len(rules.Trusted) != 1 || rules.Trusted[0] != "boss@example.com" {
		t.Errorf("Trusted: got %v", rules.Trusted)
	}
	if len(rules.SpamDomains) != 2 {
		t.Errorf("SpamDomains: got %v, want 2 entries", rules.SpamDomains)
	}
	if len(rules.DeleteKeywords) != 1 {
		t.Errorf("DeleteKeywords: got %v", rules.DeleteKeywords)
	}
}

func TestStoreReloadPicksUpChanges(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store := NewStore(dir, zap.NewNop())
	if len(store.Rules().Trusted) != 0 {
		t.Fatalf("expected no trusted senders before reload")
	}

	writeFile(t, dir, TrustedSendersFile, "new@example.com\n")
	store.Reload()

	if got := store.Rules().Trusted; len(got) != 1 || got[0] != "new@example.com" {
		t.Errorf("Trusted after reload: got %v", got)
	}
}
