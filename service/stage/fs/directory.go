package fs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/viant/afs/file"
	"github.com/viant/afs/storage"
	"github.com/viant/afs/url"
	"github.com/viant/vaultflow/internal/idgen"
	"github.com/viant/vaultflow/model"
	"github.com/viant/vaultflow/service/stage"
)

// Directory is a stage directory backed by afs.
type Directory struct {
	store    *Store
	location stage.Location
}

// Location returns the directory location.
func (d *Directory) Location() stage.Location {
	return d.location
}

// List reads every record file. Records that vanish or fail to download
// mid-scan are skipped so one bad file never blocks the listing.
func (d *Directory) List(ctx context.Context) ([]*stage.Entry, error) {
	objects, err := d.objects(ctx)
	if err != nil {
		return nil, err
	}
	entries := make([]*stage.Entry, 0, len(objects))
	for _, object := range objects {
		data, err := d.store.fs.Download(ctx, object)
		if err != nil {
			d.store.logger.Warn().Err(err).Str("url", object.URL()).Msg("skipping unreadable record")
			continue
		}
		entries = append(entries, &stage.Entry{
			Name:    object.Name(),
			URL:     object.URL(),
			Data:    data,
			ModTime: object.ModTime(),
		})
	}
	return entries, nil
}

// Count returns the number of record files.
func (d *Directory) Count(ctx context.Context) (int, error) {
	objects, err := d.objects(ctx)
	if err != nil {
		if errors.Is(err, stage.ErrDirectoryUnavailable) {
			return 0, nil
		}
		return 0, err
	}
	return len(objects), nil
}

// Read loads one record by file name.
func (d *Directory) Read(ctx context.Context, name string) (*stage.Entry, error) {
	if !validName(name) {
		return nil, fmt.Errorf("%w: invalid name %q", stage.ErrNotFound, name)
	}
	if !d.store.contains(d.location.URL) {
		return nil, fmt.Errorf("%w: %s is outside the vault", stage.ErrNotFound, d.location.URL)
	}
	URL := url.Join(d.location.URL, name)
	exists, err := d.store.fs.Exists(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to check record %s: %w", URL, err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", stage.ErrNotFound, URL)
	}
	object, err := d.store.fs.Object(ctx, URL)
	if err != nil {
		return nil, d.vanished(ctx, URL, err)
	}
	data, err := d.store.fs.Download(ctx, object)
	if err != nil {
		return nil, d.vanished(ctx, URL, err)
	}
	return &stage.Entry{Name: name, URL: URL, Data: data, ModTime: object.ModTime()}, nil
}

// MoveTo relocates a record. The source check, collision check and rename run
// under the store lock; between processes on a local vault the link based
// rename never replaces a target and the loser observes ErrNotFound or
// ErrCollisionAtTarget.
func (d *Directory) MoveTo(ctx context.Context, name string, target stage.Directory) error {
	if !validName(name) {
		return fmt.Errorf("%w: invalid name %q", stage.ErrNotFound, name)
	}
	targetDir := target.Location().URL
	if !d.store.contains(d.location.URL) {
		return fmt.Errorf("%w: %s is outside the vault", stage.ErrNotFound, d.location.URL)
	}
	if !d.store.contains(targetDir) {
		return fmt.Errorf("%w: %s is outside the vault", stage.ErrTargetUnavailable, targetDir)
	}
	d.store.mu.Lock()
	defer d.store.mu.Unlock()

	sourceURL := url.Join(d.location.URL, name)
	exists, err := d.store.fs.Exists(ctx, sourceURL)
	if err != nil {
		return fmt.Errorf("failed to check record %s: %w", sourceURL, err)
	}
	if !exists {
		return fmt.Errorf("%w: %s", stage.ErrNotFound, sourceURL)
	}
	if err := d.store.ensureDir(ctx, targetDir); err != nil {
		return fmt.Errorf("%w: %s: %v", stage.ErrTargetUnavailable, targetDir, err)
	}
	destURL := url.Join(targetDir, name)
	if taken, err := d.store.fs.Exists(ctx, destURL); err != nil {
		return fmt.Errorf("failed to check target %s: %w", destURL, err)
	} else if taken {
		return fmt.Errorf("%w: %s", stage.ErrCollisionAtTarget, destURL)
	}
	if err := d.store.relocate(ctx, sourceURL, destURL); err != nil {
		if errors.Is(err, stage.ErrCollisionAtTarget) || errors.Is(err, stage.ErrNotFound) {
			return err
		}
		return d.vanished(ctx, sourceURL, fmt.Errorf("failed to move %s to %s: %w", sourceURL, destURL, err))
	}
	return nil
}

// Write stores a new record through a hidden temporary file and a rename so
// readers never observe a partial record.
func (d *Directory) Write(ctx context.Context, name string, data []byte) error {
	if !validName(name) || !strings.HasSuffix(name, model.RecordExt) {
		return fmt.Errorf("invalid record name %q", name)
	}
	if !d.store.contains(d.location.URL) {
		return fmt.Errorf("%w: %s is outside the vault", stage.ErrTargetUnavailable, d.location.URL)
	}
	d.store.mu.Lock()
	defer d.store.mu.Unlock()

	if err := d.store.ensureDir(ctx, d.location.URL); err != nil {
		return fmt.Errorf("%w: %s: %v", stage.ErrTargetUnavailable, d.location.URL, err)
	}
	destURL := url.Join(d.location.URL, name)
	if taken, err := d.store.fs.Exists(ctx, destURL); err != nil {
		return fmt.Errorf("failed to check target %s: %w", destURL, err)
	} else if taken {
		return fmt.Errorf("%w: %s", stage.ErrCollisionAtTarget, destURL)
	}
	tempURL := url.Join(d.location.URL, "."+name+"."+idgen.Short()+".tmp")
	if err := d.store.fs.Upload(ctx, tempURL, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write %s: %w", tempURL, err)
	}
	if err := d.store.fs.Move(ctx, tempURL, destURL); err != nil {
		_ = d.store.fs.Delete(ctx, tempURL)
		return fmt.Errorf("failed to publish %s: %w", destURL, err)
	}
	return nil
}

func (d *Directory) objects(ctx context.Context) ([]storage.Object, error) {
	URL := d.location.URL
	if !d.store.contains(URL) {
		return nil, fmt.Errorf("%w: %s is outside the vault", stage.ErrDirectoryUnavailable, URL)
	}
	exists, err := d.store.fs.Exists(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to check directory %s: %w", URL, err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", stage.ErrDirectoryUnavailable, URL)
	}
	objects, err := d.store.fs.List(ctx, URL)
	if err != nil {
		if ok, _ := d.store.fs.Exists(ctx, URL); !ok {
			return nil, fmt.Errorf("%w: %s", stage.ErrDirectoryUnavailable, URL)
		}
		return nil, fmt.Errorf("failed to list %s: %w", URL, err)
	}
	var records []storage.Object
	for _, object := range objects {
		if object.IsDir() || !isRecord(object.Name()) {
			continue
		}
		records = append(records, object)
	}
	return records, nil
}

// vanished maps a failure on a record that no longer exists to ErrNotFound.
func (d *Directory) vanished(ctx context.Context, URL string, err error) error {
	if ok, checkErr := d.store.fs.Exists(ctx, URL); checkErr == nil && !ok {
		return fmt.Errorf("%w: %s", stage.ErrNotFound, URL)
	}
	return err
}

func isRecord(name string) bool {
	return strings.HasSuffix(name, model.RecordExt) && !strings.HasPrefix(name, ".")
}

func validName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`)
}

var _ stage.Directory = (*Directory)(nil)
