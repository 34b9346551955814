package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/gofrs/flock"
)

const lockRetryDelay = 10 * time.Millisecond

// FileStore keeps secrets in a JSON file of tag to value, written with mode 0600.
//
// Writes go to a temp file that is renamed over the target while holding an exclusive lock on
// a sibling .lock file, so concurrent processes never observe a partial file.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path is the location of the secrets file.
func (f *FileStore) Path() string {
	return f.path
}

func (f *FileStore) Get(ctx context.Context, tag Tag) (string, error) {
	unlock, err := f.lock(ctx)
	if err != nil {
		return "", err
	}
	defer unlock()

	all, err := f.load()
	if err != nil {
		return "", err
	}

	v, ok := all[tag]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (f *FileStore) Set(ctx context.Context, tag Tag, value string) error {
	return f.update(ctx, func(all map[Tag]string) bool {
		all[tag] = value
		return true
	})
}

func (f *FileStore) Clear(ctx context.Context, tag Tag) error {
	return f.update(ctx, func(all map[Tag]string) bool {
		if _, ok := all[tag]; !ok {
			return false
		}
		delete(all, tag)
		return true
	})
}

// update applies fn under the lock and writes the result back when fn reports a change.
func (f *FileStore) update(ctx context.Context, fn func(map[Tag]string) bool) error {
	unlock, err := f.lock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	all, err := f.load()
	if err != nil {
		return err
	}
	if !fn(all) {
		return nil
	}
	return f.save(all)
}

func (f *FileStore) lock(ctx context.Context) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(f.path), 0700); err != nil {
		return nil, unavailable("create directory", err)
	}

	fl := flock.New(f.path + ".lock")
	locked, err := fl.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, unavailable("lock", err)
	}
	if !locked {
		return nil, unavailable("lock", errors.New("lock not acquired"))
	}
	return func() { _ = fl.Unlock() }, nil
}

// load reads the file without locking. A missing file is an empty map.
func (f *FileStore) load() (map[Tag]string, error) {
	all := make(map[Tag]string)

	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return all, nil
	}
	if err != nil {
		return nil, unavailable("read", err)
	}

	if err := json.Unmarshal(data, &all); err != nil {
		return nil, unavailable("decode", err)
	}
	return all, nil
}

// save writes all atomically without locking.
func (f *FileStore) save(all map[Tag]string) error {
	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return unavailable("encode", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), "credentials-*.json.tmp")
	if err != nil {
		return unavailable("create temp", err)
	}
	tmpPath := tmp.Name()

	cleanup := func(err error) error {
		tmp.Close()
		os.Remove(tmpPath)
		return unavailable("write", err)
	}

	if _, err := tmp.Write(data); err != nil {
		return cleanup(err)
	}
	if err := tmp.Chmod(0600); err != nil {
		return cleanup(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return unavailable("write", err)
	}

	if err := os.Rename(tmpPath, f.path); err != nil {
		// Windows refuses to rename over an existing file.
		if runtime.GOOS == "windows" {
			_ = os.Remove(f.path)
			if err := os.Rename(tmpPath, f.path); err == nil {
				return nil
			}
		}
		os.Remove(tmpPath)
		return unavailable("rename", err)
	}
	return nil
}
