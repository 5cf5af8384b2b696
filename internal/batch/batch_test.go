package batch

import (
	"errors"
	"testing"
	"time"
)

func TestJobParametersOptionalValues(t *testing.T) {
	params := NewJobParameters(map[string]any{
		"scope":               "ecommerce",
		"selected_locales":    []any{"en_US", "fr_FR"},
		"selected_properties": nil,
		"with_media":          true,
	})

	if !params.Has("scope") {
		t.Fatal("expected scope")
	}
	if params.Has("selected_properties") {
		t.Fatal("expected nil parameter to be absent")
	}
	locales, ok, err := params.Strings("selected_locales")
	if err != nil || !ok || len(locales) != 2 || locales[1] != "fr_FR" {
		t.Fatalf("unexpected locales %v ok=%v err=%v", locales, ok, err)
	}
	withMedia, ok, err := params.Bool("with_media")
	if err != nil || !ok || !withMedia {
		t.Fatalf("unexpected with_media %v ok=%v err=%v", withMedia, ok, err)
	}
	if _, ok, err := params.Strings("selected_properties"); ok || err != nil {
		t.Fatalf("expected absent list, got ok=%v err=%v", ok, err)
	}
}

func TestJobParametersTypeErrors(t *testing.T) {
	params := NewJobParameters(map[string]any{
		"scope":            42,
		"selected_locales": []any{"en_US", 3},
		"with_media":       "yes",
	})
	if _, _, err := params.String("scope"); err == nil {
		t.Fatal("expected scope type error")
	}
	if _, _, err := params.Strings("selected_locales"); err == nil {
		t.Fatal("expected list item type error")
	}
	if _, _, err := params.Bool("with_media"); err == nil {
		t.Fatal("expected boolean type error")
	}
}

func TestStepExecutionTracksWarningsAndSummary(t *testing.T) {
	job := NewJobExecution("csv_product_quick_export", "julia", NewJobParameters(nil))
	job.SetWorkingDirectory("/tmp/export")
	step := NewStepExecution("perform", job)

	start := time.Date(2024, 3, 14, 15, 9, 26, 0, time.UTC)
	step.Start(start)
	step.IncrementReadCount()
	step.IncrementReadCount()
	step.IncrementWriteCount(1)
	step.IncrementSkipCount()
	step.AddWarning("file not found", map[string]any{"from": "a/b.jpg"}, "sandal")
	step.IncrementSummaryInfo("media_errors", 1)
	step.IncrementSummaryInfo("media_errors", 2)
	step.Finish(start.Add(time.Second), nil)

	if step.WorkingDirectory() != "/tmp/export" {
		t.Fatalf("unexpected working directory %q", step.WorkingDirectory())
	}
	read, write, skip := step.Counts()
	if read != 2 || write != 1 || skip != 1 {
		t.Fatalf("unexpected counts %d/%d/%d", read, write, skip)
	}
	warnings := step.Warnings()
	if len(warnings) != 1 || warnings[0].Item != "sandal" {
		t.Fatalf("unexpected warnings %+v", warnings)
	}
	if step.SummaryInfo()["media_errors"] != 3 {
		t.Fatalf("unexpected summary %+v", step.SummaryInfo())
	}
	if step.Status() != StatusCompleted || step.Duration() != time.Second {
		t.Fatalf("unexpected status %s duration %s", step.Status(), step.Duration())
	}
}

func TestStepExecutionFailure(t *testing.T) {
	step := NewStepExecution("perform", NewJobExecution("export", "julia", NewJobParameters(nil)))
	step.Finish(time.Now(), errors.New("boom"))
	if step.Status() != StatusFailed || len(step.Failures()) != 1 {
		t.Fatalf("expected failed step, got %s", step.Status())
	}
}
