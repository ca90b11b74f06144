package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/mail-agent/internal/config"
	"github.com/mikey/mail-agent/internal/core"
)

type fakeReporter struct {
	sent []*core.RunReport
}

func (f *fakeReporter) Send(ctx context.Context, report *core.RunReport) error {
	f.sent = append(f.sent, report)
	return nil
}

type fakeStore struct {
	prunes int
}

func (f *fakeStore) Save(ctx context.Context, entry *core.SummaryEntry) error { return nil }

func (f *fakeStore) Prune(ctx context.Context, olderThan time.Time) (int64, error) {
	f.prunes++
	return 0, nil
}

func (f *fakeStore) Close() error { return nil }

func TestTickDiscardsPartialReportOnCancellation(t *testing.T) {
	t.Parallel()

	reporter := &fakeReporter{}
	summaryStore := &fakeStore{}

	// The run outlives its watchdog: it returns a partial report only
	// after the context has already expired.
	run := func(ctx context.Context) *core.RunReport {
		<-ctx.Done()
		return &core.RunReport{Timestamp: time.Now(), SummarizedCount: 2, AllScanned: 40}
	}

	tick := newTick(run, summaryStore, reporter, config.ReportConfig{}, 30, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := tick(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("error: got %v, want context.DeadlineExceeded", err)
	}
	if len(reporter.sent) != 0 {
		t.Errorf("partial report was delivered: %+v", reporter.sent)
	}
	if summaryStore.prunes != 0 {
		t.Errorf("store was pruned %d times after cancellation, want 0", summaryStore.prunes)
	}
}

func TestTickSendsWhenSummarized(t *testing.T) {
	t.Parallel()

	reporter := &fakeReporter{}
	summaryStore := &fakeStore{}
	run := func(ctx context.Context) *core.RunReport {
		return &core.RunReport{Timestamp: time.Now(), SummarizedCount: 1}
	}

	tick := newTick(run, summaryStore, reporter, config.ReportConfig{}, 30, zap.NewNop())

	if err := tick(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(reporter.sent) != 1 {
		t.Fatalf("sent reports: got %d, want 1", len(reporter.sent))
	}
	if summaryStore.prunes != 1 {
		t.Errorf("prunes: got %d, want 1", summaryStore.prunes)
	}
}

func TestTickSkipsReportWithoutSummaries(t *testing.T) {
	t.Parallel()

	reporter := &fakeReporter{}
	// Filter hits alone do not warrant a report
	run := func(ctx context.Context) *core.RunReport {
		return &core.RunReport{Timestamp: time.Now(), AllSpam: 3, SpamCount: 1, DeletedCount: 2}
	}

	tick := newTick(run, &fakeStore{}, reporter, config.ReportConfig{}, 30, zap.NewNop())

	if err := tick(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(reporter.sent) != 0 {
		t.Errorf("report sent without summaries: %+v", reporter.sent)
	}
}

func TestTickAlwaysSendDeliversEmptyReport(t *testing.T) {
	t.Parallel()

	reporter := &fakeReporter{}
	run := func(ctx context.Context) *core.RunReport {
		return &core.RunReport{Timestamp: time.Now()}
	}

	tick := newTick(run, &fakeStore{}, reporter, config.ReportConfig{AlwaysSend: true}, 30, zap.NewNop())

	if err := tick(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(reporter.sent) != 1 {
		t.Errorf("sent reports: got %d, want 1", len(reporter.sent))
	}
}
