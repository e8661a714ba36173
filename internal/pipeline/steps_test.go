package pipeline

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/sitecrawl/internal/model"
)

type fakeRunner struct {
	result *model.CrawlRun
	err    error
}

func (f *fakeRunner) Run(context.Context) (*model.CrawlRun, error) {
	return f.result, f.err
}

type fakeStore struct {
	saved []*model.CrawlRun
	err   error
}

func (f *fakeStore) SaveRun(_ context.Context, run *model.CrawlRun) error {
	if f.err != nil {
		return f.err
	}
	run.ID = int64(len(f.saved) + 1)
	copied := *run
	f.saved = append(f.saved, &copied)
	return nil
}

func finishedRun(status model.RunStatus) *model.CrawlRun {
	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	run := model.NewCrawlRun("https://example.com", "example.com", model.FormatStructured, started)
	run.Expanded = 1234
	run.Discovered = 2500
	run.Saved = 2400
	run.Checkpoints = 124
	run.OutputPath = "out/example.com.json"
	run.Finish(status, started.Add(90*time.Second), nil)
	return run
}

func TestCrawlStep(t *testing.T) {
	t.Parallel()

	t.Run("copies the engine summary and keeps the id", func(t *testing.T) {
		t.Parallel()

		step := NewCrawlStep(&fakeRunner{result: finishedRun(model.RunCompleted)})
		run := newRun()
		run.ID = 7

		if err := step.Do(context.Background(), run); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if run.Expanded != 1234 || run.Status != model.RunCompleted {
			t.Errorf("summary not copied: %+v", run)
		}
		if run.ID != 7 {
			t.Errorf("expected id 7, got %d", run.ID)
		}
		if step.Name() != "crawl" {
			t.Errorf("unexpected name %q", step.Name())
		}
	})

	t.Run("cancelled crawl fills the run and returns the error", func(t *testing.T) {
		t.Parallel()

		step := NewCrawlStep(&fakeRunner{result: finishedRun(model.RunCancelled), err: context.Canceled})
		run := newRun()

		if err := step.Do(context.Background(), run); !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		if run.Status != model.RunCancelled {
			t.Errorf("expected cancelled, got %s", run.Status)
		}
	})
}

func TestRecordRunStep(t *testing.T) {
	t.Parallel()

	t.Run("saves the run", func(t *testing.T) {
		t.Parallel()

		store := &fakeStore{}
		step := NewRecordRunStep(store, WithRecordLogger(slog.New(slog.DiscardHandler)))
		run := finishedRun(model.RunCompleted)

		if err := step.Do(context.Background(), run); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(store.saved) != 1 || run.ID != 1 {
			t.Errorf("expected run saved with id 1, got %d saves, id %d", len(store.saved), run.ID)
		}
	})

	t.Run("unfinished run is recorded as failed", func(t *testing.T) {
		t.Parallel()

		store := &fakeStore{}
		run := newRun()

		if err := NewRecordRunStep(store).Do(context.Background(), run); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if store.saved[0].Status != model.RunFailed {
			t.Errorf("expected failed, got %s", store.saved[0].Status)
		}
	})

	t.Run("store error is wrapped", func(t *testing.T) {
		t.Parallel()

		storeErr := errors.New("disk I/O error")
		err := NewRecordRunStep(&fakeStore{err: storeErr}).Do(context.Background(), finishedRun(model.RunCompleted))
		if !errors.Is(err, storeErr) {
			t.Errorf("expected wrapped store error, got %v", err)
		}
	})
}

func TestSummaryStep(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := NewSummaryStep(&buf).Do(context.Background(), finishedRun(model.RunCompleted)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"Crawl summary for example.com", "1,234", "Completed", "out/example.com.json"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestMarkdownReportStep(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "reports", "run.md")
	if err := NewMarkdownReportStep(path).Do(context.Background(), finishedRun(model.RunCompleted)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read report: %v", err)
	}
	if !strings.Contains(string(data), "# Crawl Report: example.com") {
		t.Errorf("unexpected report content:\n%s", data)
	}
}

func TestPipelineWithSteps(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	var summary bytes.Buffer

	p := quietPipeline()
	p.AddStep(NewCrawlStep(&fakeRunner{result: finishedRun(model.RunCancelled), err: context.Canceled}))
	p.AddFinalStep(NewRecordRunStep(store, WithRecordLogger(slog.New(slog.DiscardHandler))))
	p.AddFinalStep(NewSummaryStep(&summary))

	run := newRun()
	if err := p.Execute(context.Background(), run); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(store.saved) != 1 || store.saved[0].Status != model.RunCancelled {
		t.Errorf("expected cancelled run recorded, got %+v", store.saved)
	}
	if !strings.Contains(summary.String(), "Cancelled") {
		t.Errorf("summary should report cancellation:\n%s", summary.String())
	}
}
