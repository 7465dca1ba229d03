// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/GermanBionicSystems/boron/ds1307"
)

// Dir stores every stamp in its own file, and the log in DataLog, in one
// directory.
type Dir struct {
	path string
}

// NewDir returns a Store in path, creating the directory if needed.
func NewDir(path string) (*Dir, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	return &Dir{path: path}, nil
}

func (d *Dir) String() string {
	return "Dir{" + d.path + "}"
}

// ReadStamp implements Store.
func (d *Dir) ReadStamp(name string) (ds1307.DateTime, bool, error) {
	b, err := os.ReadFile(filepath.Join(d.path, name))
	if errors.Is(err, fs.ErrNotExist) {
		return ds1307.DateTime{}, false, nil
	}
	if err != nil {
		return ds1307.DateTime{}, false, fmt.Errorf("store: %w", err)
	}
	dt, err := ds1307.ParseStamp(strings.TrimSpace(string(b)))
	if err != nil {
		return ds1307.DateTime{}, false, fmt.Errorf("store: %s: %w", name, err)
	}
	return dt, true, nil
}

// WriteStamp implements Store.
func (d *Dir) WriteStamp(name string, dt ds1307.DateTime) error {
	if err := os.WriteFile(filepath.Join(d.path, name), []byte(dt.String()), 0o644); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	return nil
}

// AppendLog implements Store.
func (d *Dir) AppendLog(text string) error {
	f, err := os.OpenFile(filepath.Join(d.path, DataLog), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}
	_, err = f.WriteString(text)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}
	return nil
}

var _ Store = &Dir{}
