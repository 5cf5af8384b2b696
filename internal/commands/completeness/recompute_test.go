package completenesscmd

import (
	"context"
	"errors"
	"testing"

	catalogrepo "github.com/goliatone/go-pim/internal/catalog"
	"github.com/goliatone/go-pim/internal/jobs"
	"github.com/goliatone/go-pim/internal/logging"
	goerrors "github.com/goliatone/go-errors"
)

type stubRecomputer struct {
	requests []jobs.RecomputeRequest
	err      error
}

func (s *stubRecomputer) Recompute(_ context.Context, req jobs.RecomputeRequest) (*jobs.RecomputeSummary, error) {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return nil, s.err
	}
	return &jobs.RecomputeSummary{Records: len(req.ProductIdentifiers)}, nil
}

func TestRecomputeCompletenessCommandValidate(t *testing.T) {
	cases := []struct {
		name    string
		msg     RecomputeCompletenessCommand
		wantErr bool
	}{
		{name: "identifiers", msg: RecomputeCompletenessCommand{ProductIdentifiers: []string{"sandal"}}},
		{name: "all", msg: RecomputeCompletenessCommand{All: true}},
		{name: "no selection", msg: RecomputeCompletenessCommand{}, wantErr: true},
		{name: "conflicting selection", msg: RecomputeCompletenessCommand{All: true, ProductIdentifiers: []string{"sandal"}}, wantErr: true},
		{name: "blank identifier", msg: RecomputeCompletenessCommand{ProductIdentifiers: []string{"sandal", ""}}, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.msg.Validate()
			if tc.wantErr && err == nil {
				t.Fatal("expected validation error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestRecomputeCompletenessHandlerForwardsSelection(t *testing.T) {
	worker := &stubRecomputer{}
	var summary *jobs.RecomputeSummary
	handler := NewRecomputeCompletenessHandler(worker, logging.NoOp(), WithSummary(func(s *jobs.RecomputeSummary) {
		summary = s
	}))

	msg := RecomputeCompletenessCommand{ProductIdentifiers: []string{"sandal", "boot"}, ActorID: "julia"}
	if err := handler.Execute(context.Background(), msg); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(worker.requests) != 1 {
		t.Fatalf("expected one recompute, got %d", len(worker.requests))
	}
	req := worker.requests[0]
	if req.All || len(req.ProductIdentifiers) != 2 || req.ActorID != "julia" {
		t.Fatalf("unexpected request %+v", req)
	}
	if summary == nil || summary.Records != 2 {
		t.Fatalf("expected summary callback, got %+v", summary)
	}
}

func TestRecomputeCompletenessHandlerRejectsInvalidCommand(t *testing.T) {
	worker := &stubRecomputer{}
	handler := NewRecomputeCompletenessHandler(worker, nil)

	err := handler.Execute(context.Background(), RecomputeCompletenessCommand{})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
	if len(worker.requests) != 0 {
		t.Fatal("expected worker not to run")
	}
}

func TestRecomputeCompletenessHandlerWrapsWorkerError(t *testing.T) {
	worker := &stubRecomputer{err: errors.New("completeness store unavailable")}
	handler := NewRecomputeCompletenessHandler(worker, nil)

	err := handler.Execute(context.Background(), RecomputeCompletenessCommand{All: true})
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
	if !errors.Is(err, worker.err) {
		t.Fatalf("expected worker error, got %v", err)
	}
}

func TestRecomputeCompletenessHandlerStoresRecords(t *testing.T) {
	ctx := context.Background()
	doc, err := catalogrepo.LoadDocument("../../jobs/testdata/catalog.yaml")
	if err != nil {
		t.Fatalf("load fixture: %v", err)
	}
	repos := catalogrepo.NewMemoryRepositories()
	if _, err := catalogrepo.Import(ctx, catalogrepo.NewService(repos), doc); err != nil {
		t.Fatalf("import fixture: %v", err)
	}
	handler := NewRecomputeCompletenessHandler(jobs.NewWorker(repos.Products, nil, repos.Completeness), nil)

	if err := handler.Execute(ctx, RecomputeCompletenessCommand{ProductIdentifiers: []string{"sandal"}}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	sandal, err := repos.Products.GetByIdentifier(ctx, "sandal")
	if err != nil {
		t.Fatalf("get sandal: %v", err)
	}
	records, err := repos.Completeness.ListForProduct(ctx, sandal.ID)
	if err != nil {
		t.Fatalf("list completeness: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 completeness records, got %d", len(records))
	}
}
