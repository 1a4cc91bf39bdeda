// Package upload stores form files in object storage with bounded retry.
package upload

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"regexp"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"site-crm-backend/internal/models"
)

const (
	DefaultMaxBytes   = 10 * 1024 * 1024
	DefaultMaxRetries = 3
	DefaultTimeout    = 30 * time.Second
	DefaultBaseDelay  = time.Second
	DefaultMaxDelay   = 10 * time.Second

	maxBaseNameLength = 100
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Storage is the object-storage side of an upload.
type Storage interface {
	Upload(ctx context.Context, path string, data []byte, contentType string) (models.ObjectRef, error)
}

type File struct {
	Name        string
	ContentType string
	Data        []byte
}

func (f File) Size() int64 {
	return int64(len(f.Data))
}

type Options struct {
	MaxBytes   int64
	MaxRetries int
	Timeout    time.Duration
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

// ProgressFunc receives a cumulative percentage in [0, 100].
type ProgressFunc func(percent int)

type Kind string

const (
	KindTooLarge    Kind = "too_large"
	KindInvalidName Kind = "invalid_name"
	KindPermission  Kind = "permission_denied"
	KindFailed      Kind = "failed"
)

// Error is the terminal failure of an upload.
type Error struct {
	Kind     Kind
	File     string
	Attempts int
	Message  string
	Err      error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StorageError is what a Storage returns when the backend failed to store
// Path. Message is the backend's own text; StatusCode is zero when the
// backend gave none.
type StorageError struct {
	Path       string
	StatusCode int
	Message    string
	Err        error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("upload of %s failed: %s", e.Path, e.Message)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

type Uploader struct {
	storage Storage
	opts    Options
	now     func() time.Time
	sleep   func(ctx context.Context, d time.Duration) error
}

func NewUploader(storage Storage, opts Options) *Uploader {
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = DefaultMaxBytes
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = DefaultMaxRetries
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = DefaultBaseDelay
	}
	if opts.MaxDelay <= 0 {
		opts.MaxDelay = DefaultMaxDelay
	}
	return &Uploader{
		storage: storage,
		opts:    opts,
		now:     time.Now,
		sleep:   sleepContext,
	}
}

// WithClock replaces the time source and the backoff sleeper.
func (u *Uploader) WithClock(now func() time.Time, sleep func(ctx context.Context, d time.Duration) error) *Uploader {
	u.now = now
	u.sleep = sleep
	return u
}

// Validate checks the size limit. Exactly MaxBytes is accepted.
func (u *Uploader) Validate(file File) error {
	if file.Size() > u.opts.MaxBytes {
		return &Error{
			Kind:    KindTooLarge,
			File:    file.Name,
			Message: fmt.Sprintf("file %q is too large: the maximum size is %s", file.Name, formatBytes(u.opts.MaxBytes)),
		}
	}
	return nil
}

// Upload stores file under folder/<millis>_<sanitized name>, retrying with
// exponential backoff.
func (u *Uploader) Upload(ctx context.Context, file File, folder string, progress ProgressFunc) (models.ObjectRef, error) {
	if progress == nil {
		progress = func(int) {}
	}
	if err := u.Validate(file); err != nil {
		return "", err
	}

	path := UniqueName(file.Name, u.now())
	if folder != "" {
		path = strings.TrimSuffix(folder, "/") + "/" + path
	}

	progress(0)
	var lastErr error
	timedOut := false
	for attempt := 0; attempt < u.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := Backoff(attempt-1, u.opts.BaseDelay, u.opts.MaxDelay)
			log.Printf("[Upload] Retrying %s in %s (attempt %d/%d): %v", path, delay, attempt+1, u.opts.MaxRetries, lastErr)
			if err := u.sleep(ctx, delay); err != nil {
				lastErr = err
				break
			}
			progress(attempt * 100 / u.opts.MaxRetries)
		}

		ref, err := u.attempt(ctx, path, file)
		if err == nil {
			progress(100)
			return ref, nil
		}
		// An attempt that timed out may still have finished in the background.
		if timedOut && isDuplicate(err, path) {
			log.Printf("[Upload] %s was stored by an earlier attempt", path)
			progress(100)
			return models.ObjectRef(path), nil
		}
		if errors.Is(err, context.DeadlineExceeded) {
			timedOut = true
		}
		lastErr = err
	}

	return "", classify(file.Name, path, u.opts.MaxRetries, lastErr)
}

func (u *Uploader) attempt(ctx context.Context, path string, file File) (models.ObjectRef, error) {
	ctx, cancel := context.WithTimeout(ctx, u.opts.Timeout)
	defer cancel()
	return u.storage.Upload(ctx, path, file.Data, file.ContentType)
}

// Backoff returns the delay before retry n (0-based): base doubled n times,
// capped at ceiling.
func Backoff(n int, base, ceiling time.Duration) time.Duration {
	d := base
	for i := 0; i < n; i++ {
		d *= 2
		if d >= ceiling {
			return ceiling
		}
	}
	if d > ceiling {
		return ceiling
	}
	return d
}

// SanitizeFilename strips diacritics, lowercases, collapses every run of
// non-alphanumerics into one underscore and truncates the base name to 100
// characters. The extension is kept. The result is a fixed point.
func SanitizeFilename(name string) string {
	ext := filepath.Ext(name)
	base := slug(strings.TrimSuffix(name, ext))
	if len(base) > maxBaseNameLength {
		base = strings.TrimRight(base[:maxBaseNameLength], "_")
	}
	if base == "" {
		base = "arquivo"
	}

	if ext = slug(strings.TrimPrefix(ext, ".")); ext != "" {
		ext = "." + ext
	}
	return base + ext
}

// UniqueName prefixes the sanitized name with a millisecond timestamp.
func UniqueName(name string, at time.Time) string {
	return fmt.Sprintf("%d_%s", at.UnixMilli(), SanitizeFilename(name))
}

func slug(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if stripped, _, err := transform.String(t, s); err == nil {
		s = stripped
	}
	s = strings.ToLower(s)
	s = nonAlnum.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

// failureText is the part of err that says what went wrong, with the object
// path removed so a user's file name can never decide the kind.
func failureText(err error, path string) (string, int) {
	text, code := err.Error(), 0
	var serr *StorageError
	if errors.As(err, &serr) {
		text, code = serr.Message, serr.StatusCode
	}
	text = strings.ReplaceAll(text, path, "")
	text = strings.ReplaceAll(text, filepath.Base(path), "")
	return strings.ToLower(text), code
}

func isDuplicate(err error, path string) bool {
	text, code := failureText(err, path)
	return code == 409 ||
		strings.Contains(text, "already exists") ||
		strings.Contains(text, "duplicate")
}

func classify(name, path string, attempts int, err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return failed(name, attempts, err)
	}

	text, code := failureText(err, path)
	switch {
	case strings.Contains(text, "invalid key"),
		strings.Contains(text, "invalid filename"),
		strings.Contains(text, "invalid file name"):
		return &Error{
			Kind:     KindInvalidName,
			File:     name,
			Attempts: attempts,
			Message:  fmt.Sprintf("invalid file name %q: rename the file using only letters and numbers and try again", name),
			Err:      err,
		}
	case code == 401, code == 403,
		strings.Contains(text, "permission"),
		strings.Contains(text, "row-level security"),
		strings.Contains(text, "unauthorized"),
		strings.Contains(text, "forbidden"):
		return &Error{
			Kind:     KindPermission,
			File:     name,
			Attempts: attempts,
			Message:  fmt.Sprintf("permission denied while uploading %q: the storage bucket rejected the file", name),
			Err:      err,
		}
	}
	return failed(name, attempts, err)
}

func failed(name string, attempts int, err error) *Error {
	return &Error{
		Kind:     KindFailed,
		File:     name,
		Attempts: attempts,
		Message:  fmt.Sprintf("failed to upload %q after %d attempts: %v", name, attempts, err),
		Err:      err,
	}
}

func formatBytes(n int64) string {
	const mb = 1024 * 1024
	if n%mb == 0 {
		return fmt.Sprintf("%dMB", n/mb)
	}
	return fmt.Sprintf("%d bytes", n)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// IsKind reports whether err is an upload Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var uerr *Error
	return errors.As(err, &uerr) && uerr.Kind == kind
}
