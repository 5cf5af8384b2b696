package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/goliatone/go-pim/catalog"
	"github.com/goliatone/go-pim/internal/logging"
	"github.com/goliatone/go-pim/pkg/interfaces"
	"github.com/goliatone/go-slug"
)

// FilesDirectory is the folder created in the working directory for media.
const FilesDirectory = "files"

const messageMediaUnavailable = "The media has not been found or is not currently available"

// AttributeLookup resolves attribute definitions.
type AttributeLookup interface {
	GetByCode(ctx context.Context, code string) (*catalog.Attribute, error)
}

// FileInfoLookup resolves media file keys.
type FileInfoLookup interface {
	GetByKey(ctx context.Context, key string) (*catalog.FileInfo, error)
}

// FetchError describes a media file that could not be copied.
type FetchError struct {
	Message string
	From    string
	To      string
	Storage string
	Err     error
}

func (e FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (%s): %v", e.Message, e.From, e.Err)
	}
	return fmt.Sprintf("%s (%s)", e.Message, e.From)
}

func (e FetchError) Unwrap() error {
	return e.Err
}

// Fetcher copies the files referenced by a value collection.
type Fetcher interface {
	FetchAll(ctx context.Context, values catalog.Values, directory, identifier string)
	GetErrors() []FetchError
}

// FetcherOption customises the fetcher.
type FetcherOption func(*BulkMediaFetcher)

// WithFetcherLogger sets the logger used to report failed copies.
func WithFetcherLogger(logger interfaces.Logger) FetcherOption {
	return func(f *BulkMediaFetcher) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// BulkMediaFetcher copies media values into a job working directory. Errors
// are collected per FetchAll call and never abort the copy of other files.
type BulkMediaFetcher struct {
	attributes AttributeLookup
	files      FileInfoLookup
	storages   *Storages
	logger     interfaces.Logger

	mu     sync.Mutex
	errors []FetchError
}

// NewBulkMediaFetcher wires the fetcher.
func NewBulkMediaFetcher(attributes AttributeLookup, files FileInfoLookup, storages *Storages, opts ...FetcherOption) *BulkMediaFetcher {
	f := &BulkMediaFetcher{
		attributes: attributes,
		files:      files,
		storages:   storages,
		logger:     logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f
}

// FetchAll copies every media value to
// <directory>/files/<identifier>/<property name>/<original filename>.
func (f *BulkMediaFetcher) FetchAll(ctx context.Context, values catalog.Values, directory, identifier string) {
	f.mu.Lock()
	f.errors = nil
	f.mu.Unlock()

	types := map[string]bool{}
	for _, value := range values {
		if value == nil || value.IsEmpty() {
			continue
		}
		isMedia, ok := types[value.Attribute]
		if !ok {
			attribute, err := f.attributes.GetByCode(ctx, value.Attribute)
			isMedia = err == nil && attribute.Type.IsMedia()
			types[value.Attribute] = isMedia
		}
		if !isMedia {
			continue
		}
		key, ok := value.Data.(string)
		if !ok {
			f.addError(FetchError{
				Message: messageMediaUnavailable,
				From:    fmt.Sprint(value.Data),
				Err:     fmt.Errorf("%w: %T", ErrInvalidKey, value.Data),
			})
			continue
		}
		target := filepath.Join(directory, FilesDirectory, pathSegment(identifier), sanitizeSegment(value.PropertyName()))
		if err := f.fetch(ctx, key, target); err != nil {
			f.addError(*err)
		}
	}
}

// GetErrors returns the errors of the last FetchAll call.
func (f *BulkMediaFetcher) GetErrors() []FetchError {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]FetchError, len(f.errors))
	copy(out, f.errors)
	return out
}

func (f *BulkMediaFetcher) fetch(ctx context.Context, key, targetDir string) *FetchError {
	info, err := f.files.GetByKey(ctx, key)
	if err != nil {
		return &FetchError{Message: messageMediaUnavailable, From: key, To: targetDir, Err: err}
	}
	name, ok := fileName(info.OriginalFilename)
	if !ok {
		return &FetchError{
			Message: messageMediaUnavailable,
			From:    key,
			To:      targetDir,
			Storage: info.Storage,
			Err:     fmt.Errorf("%w: %q", ErrInvalidFilename, info.OriginalFilename),
		}
	}
	to := filepath.Join(targetDir, name)
	failure := func(err error) *FetchError {
		return &FetchError{Message: messageMediaUnavailable, From: key, To: to, Storage: info.Storage, Err: err}
	}

	storage, err := f.storages.Get(info.Storage)
	if err != nil {
		return failure(err)
	}
	reader, err := storage.Open(ctx, info.Key)
	if err != nil {
		return failure(err)
	}
	defer reader.Close()

	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return failure(err)
	}
	file, err := os.Create(to)
	if err != nil {
		return failure(err)
	}
	if _, err := io.Copy(file, reader); err != nil {
		_ = file.Close()
		_ = os.Remove(to)
		return failure(err)
	}
	if err := file.Close(); err != nil {
		return failure(err)
	}
	return nil
}

// fileName returns the last element of the original filename, rejecting
// names that would resolve to the target directory or its parent.
func fileName(original string) (string, bool) {
	name := filepath.Base(filepath.FromSlash(strings.TrimSpace(original)))
	switch name {
	case ".", "..", string(filepath.Separator):
		return "", false
	}
	return name, true
}

func (f *BulkMediaFetcher) addError(err FetchError) {
	f.logger.Warn("export.media.failed", "from", err.From, "to", err.To, "storage", err.Storage, "error", errorText(err.Err))
	f.mu.Lock()
	f.errors = append(f.errors, err)
	f.mu.Unlock()
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrFileNotFound) {
		return "file not found"
	}
	return err.Error()
}

// pathSegment turns an identifier into a single safe directory name.
func pathSegment(value string) string {
	if normalized, err := slug.Normalize(value); err == nil && normalized != "" {
		return normalized
	}
	return sanitizeSegment(value)
}

func sanitizeSegment(value string) string {
	replaced := strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(strings.TrimSpace(value))
	if replaced == "" {
		return "_"
	}
	return replaced
}
