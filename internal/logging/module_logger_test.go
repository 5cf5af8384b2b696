package logging

import (
	"context"
	"testing"

	"github.com/goliatone/go-pim/pkg/interfaces"
)

type recordingLogger struct {
	fields   []map[string]any
	contexts []context.Context
}

func (r *recordingLogger) Trace(string, ...any) {}
func (r *recordingLogger) Debug(string, ...any) {}
func (r *recordingLogger) Info(string, ...any)  {}
func (r *recordingLogger) Warn(string, ...any)  {}
func (r *recordingLogger) Error(string, ...any) {}
func (r *recordingLogger) Fatal(string, ...any) {}

func (r *recordingLogger) WithFields(fields map[string]any) interfaces.Logger {
	r.fields = append(r.fields, fields)
	return r
}

func (r *recordingLogger) WithContext(ctx context.Context) interfaces.Logger {
	r.contexts = append(r.contexts, ctx)
	return r
}

type stubProvider struct {
	requested []string
	logger    interfaces.Logger
}

func (s *stubProvider) GetLogger(name string) interfaces.Logger {
	s.requested = append(s.requested, name)
	return s.logger
}

func TestModuleLoggerWithoutProviderIsNoOp(t *testing.T) {
	logger := ModuleLogger(nil, completenessModule)
	if _, ok := logger.(noopLogger); !ok {
		t.Fatalf("expected noop logger, got %T", logger)
	}
	logger.WithContext(context.Background()).Info("dropped")
}

func TestModuleLoggerTagsModule(t *testing.T) {
	cases := []struct {
		name   string
		build  func(interfaces.LoggerProvider) interfaces.Logger
		module string
	}{
		{"catalog", CatalogLogger, catalogModule},
		{"completeness", CompletenessLogger, completenessModule},
		{"export", ExportLogger, exportModule},
		{"media", MediaLogger, mediaModule},
		{"jobs", JobsLogger, jobsModule},
		{"commands", CommandsLogger, commandsModule},
		{"default", func(p interfaces.LoggerProvider) interfaces.Logger { return ModuleLogger(p, "  ") }, rootModule},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := &recordingLogger{}
			provider := &stubProvider{logger: rec}

			tc.build(provider)

			if len(provider.requested) != 1 || provider.requested[0] != tc.module {
				t.Fatalf("expected %s to be requested, got %v", tc.module, provider.requested)
			}
			if len(rec.fields) != 1 || rec.fields[0]["module"] != tc.module {
				t.Fatalf("expected module field %s, got %v", tc.module, rec.fields)
			}
		})
	}
}

func TestWithJobContextSkipsBlankValues(t *testing.T) {
	rec := &recordingLogger{}

	WithJobContext(rec, "csv_product_quick_export", " ", "julia")

	if len(rec.fields) != 1 {
		t.Fatalf("expected one WithFields call, got %d", len(rec.fields))
	}
	fields := rec.fields[0]
	if fields[fieldJobCode] != "csv_product_quick_export" || fields[fieldJobUser] != "julia" {
		t.Fatalf("unexpected fields %v", fields)
	}
	if _, ok := fields[fieldStepName]; ok {
		t.Fatalf("expected blank step to be skipped, got %v", fields)
	}
}

func TestContextFieldsMerge(t *testing.T) {
	ctx := ContextWithFields(context.Background(), map[string]any{"job_id": "1", "step": "export"})
	ctx = ContextWithFields(ctx, map[string]any{"step": "media"})

	fields := ContextFields(ctx)
	if fields["job_id"] != "1" || fields["step"] != "media" {
		t.Fatalf("unexpected merged fields %v", fields)
	}

	fields["job_id"] = "mutated"
	if ContextFields(ctx)["job_id"] != "1" {
		t.Fatal("expected ContextFields to return a copy")
	}
}
