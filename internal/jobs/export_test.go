package jobs_test

import (
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goliatone/go-pim/internal/batch"
	catalogrepo "github.com/goliatone/go-pim/internal/catalog"
	"github.com/goliatone/go-pim/internal/export"
	"github.com/goliatone/go-pim/internal/jobs"
	"github.com/goliatone/go-pim/internal/media"
	"github.com/goliatone/go-pim/internal/security"
	"github.com/google/go-cmp/cmp"
)

func exportDependencies(t *testing.T, repos catalogrepo.Repositories) export.Dependencies {
	t.Helper()
	source := t.TempDir()
	if err := os.MkdirAll(filepath.Join(source, "a", "b"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(source, "a", "b", "sandal.jpg"), []byte("jpeg"), 0o644); err != nil {
		t.Fatalf("write media: %v", err)
	}
	storages := media.NewStorages()
	storages.Register("local", media.NewLocalStorage(source))

	return export.Dependencies{
		Channels:   repos.Channels,
		Attributes: repos.Attributes,
		Normalizer: export.NewStandardNormalizer(repos.Attributes),
		Users:      security.NewMemoryUserProvider(&security.User{Username: "julia", Roles: []string{"ROLE_ADMINISTRATOR"}}),
		Media:      media.NewBulkMediaFetcher(repos.Attributes, repos.FileInfos, storages),
	}
}

func TestExportRunnerWritesSelectedProperties(t *testing.T) {
	repos := loadCatalog(t)
	audit := jobs.NewInMemoryAuditRecorder()
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	runner := jobs.NewExportRunner(repos.Products, repos.ProductModels, exportDependencies(t, repos),
		jobs.WithExportAuditRecorder(audit),
		jobs.WithExportClock(func() time.Time { return now }),
	)

	workdir := t.TempDir()
	result, err := runner.Run(context.Background(), jobs.QuickExportRequest{
		Username: "julia",
		Parameters: map[string]any{
			"scope":               "ecommerce",
			"selected_locales":    []any{"en_US"},
			"selected_properties": []any{"identifier", "name-en_US", "price-USD", "picture"},
			"with_media":          true,
		},
		WorkingDirectory: workdir,
		Format:           export.FormatCSV,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Step.Status() != batch.StatusCompleted || result.Job.Status != batch.StatusCompleted {
		t.Fatalf("expected completed step, got %s/%s", result.Step.Status(), result.Job.Status)
	}
	if result.Path != filepath.Join(workdir, "csv_product_quick_export_2024-05-01_10-00-00.csv") {
		t.Fatalf("unexpected path %q", result.Path)
	}

	file, err := os.Open(result.Path)
	if err != nil {
		t.Fatalf("open export: %v", err)
	}
	defer file.Close()
	reader := csv.NewReader(file)
	reader.Comma = ';'
	records, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	want := [][]string{
		{"sku", "name-en_US", "picture", "price-USD", "code"},
		{"boot", "Boot", "z/boot.jpg", "", ""},
		{"pebble", "", "", "", ""},
		{"sandal", "Sandal", "", "10", ""},
		{"", "", "a/b/sandal.jpg", "", "sandal_model"},
	}
	if diff := cmp.Diff(want, records); diff != "" {
		t.Fatalf("export mismatch (-want +got):\n%s", diff)
	}

	read, written, skipped := result.Step.Counts()
	if read != 4 || written != 4 || skipped != 0 {
		t.Fatalf("unexpected counts read=%d written=%d skipped=%d", read, written, skipped)
	}
	if diff := cmp.Diff(map[string]int{"read_products": 3, "read_product_models": 1}, result.Step.SummaryInfo()); diff != "" {
		t.Fatalf("summary mismatch (-want +got):\n%s", diff)
	}

	warnings := result.Step.Warnings()
	if len(warnings) != 1 || warnings[0].Item != "boot" || warnings[0].Parameters["from"] != "z/boot.jpg" {
		t.Fatalf("expected missing boot media warning, got %+v", warnings)
	}
	copied, err := filepath.Glob(filepath.Join(workdir, media.FilesDirectory, "*", "picture", "sandal.jpg"))
	if err != nil || len(copied) != 1 {
		t.Fatalf("expected copied model media, got %v err=%v", copied, err)
	}

	events := audit.Events()
	if len(events) != 1 || events[0].Action != "quick_export" || events[0].Metadata["written"] != 4 {
		t.Fatalf("unexpected audit events %+v", events)
	}
}

func TestExportRunnerSelectedEntitiesAsJSONLines(t *testing.T) {
	repos := loadCatalog(t)
	runner := jobs.NewExportRunner(repos.Products, repos.ProductModels, exportDependencies(t, repos))

	result, err := runner.Run(context.Background(), jobs.QuickExportRequest{
		Username:           "julia",
		Parameters:         map[string]any{"scope": "print"},
		ProductIdentifiers: []string{"sandal"},
		WorkingDirectory:   t.TempDir(),
		Format:             export.FormatJSON,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	data, err := os.ReadFile(result.Path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	line := `{"sku":"sandal","family":"shoes","parent":"sandal_model","groups":"","categories":"","enabled":true,"name-en_US":"Sandal","price-USD":"10","price-EUR":"9.50"}` + "\n"
	if string(data) != line {
		t.Fatalf("unexpected export %s", data)
	}
	if diff := cmp.Diff(map[string]int{"read_products": 1}, result.Step.SummaryInfo()); diff != "" {
		t.Fatalf("summary mismatch (-want +got):\n%s", diff)
	}
}

func TestExportRunnerFailsWithoutScope(t *testing.T) {
	repos := loadCatalog(t)
	runner := jobs.NewExportRunner(repos.Products, repos.ProductModels, exportDependencies(t, repos))
	workdir := t.TempDir()

	result, err := runner.Run(context.Background(), jobs.QuickExportRequest{
		Username:         "julia",
		Parameters:       map[string]any{"with_media": true},
		WorkingDirectory: workdir,
	})
	if !errors.Is(err, export.ErrInvalidConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if result.Step.Status() != batch.StatusFailed || len(result.Step.Failures()) != 1 {
		t.Fatalf("expected failed step, got %s", result.Step.Status())
	}
	if _, written, _ := result.Step.Counts(); written != 0 {
		t.Fatalf("expected nothing written, got %d", written)
	}
	if entries, _ := os.ReadDir(workdir); len(entries) != 0 {
		t.Fatalf("expected empty working directory, got %d entries", len(entries))
	}
}

func TestExportRunnerSkipsInvalidItems(t *testing.T) {
	repos := loadCatalog(t)
	ctx := context.Background()
	svc := catalogrepo.NewService(repos)
	if _, err := svc.SaveProduct(ctx, catalogrepo.SaveProductRequest{
		Identifier: "broken",
		Values:     catalogrepo.Values{{Attribute: "price", Data: "ten dollars"}},
	}); err != nil {
		t.Fatalf("save product: %v", err)
	}
	runner := jobs.NewExportRunner(repos.Products, nil, exportDependencies(t, repos))

	result, err := runner.Run(ctx, jobs.QuickExportRequest{
		Username:           "julia",
		Parameters:         map[string]any{"scope": "ecommerce"},
		ProductIdentifiers: []string{"broken", "boot"},
		WorkingDirectory:   t.TempDir(),
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	read, written, skipped := result.Step.Counts()
	if read != 2 || written != 1 || skipped != 1 {
		t.Fatalf("unexpected counts read=%d written=%d skipped=%d", read, written, skipped)
	}
	warnings := result.Step.Warnings()
	if len(warnings) != 1 || warnings[0].Item != "broken" {
		t.Fatalf("unexpected warnings %+v", warnings)
	}
}

func TestExportRunnerUnknownUser(t *testing.T) {
	repos := loadCatalog(t)
	runner := jobs.NewExportRunner(repos.Products, repos.ProductModels, exportDependencies(t, repos))

	_, err := runner.Run(context.Background(), jobs.QuickExportRequest{
		Username:         "mallory",
		Parameters:       map[string]any{"scope": "ecommerce"},
		WorkingDirectory: t.TempDir(),
	})
	if !errors.Is(err, security.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
