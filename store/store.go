// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package store

import (
	"fmt"

	"github.com/GermanBionicSystems/boron/ds1307"
)

const (
	// TimeStamp names the last known time.
	TimeStamp = "time.txt"
	// StartStamp names the start of the experiment.
	StartStamp = "StartTime.txt"
	// DataLog names the data log.
	DataLog = "dataLog.txt"
)

// Store persists time stamps and log records.
type Store interface {
	// ReadStamp returns the stamp called name. ok is false when it was never
	// written.
	ReadStamp(name string) (dt ds1307.DateTime, ok bool, err error)
	// WriteStamp replaces the stamp called name.
	WriteStamp(name string, dt ds1307.DateTime) error
	// AppendLog appends text to the data log as is.
	AppendLog(text string) error
}

// Record formats one data log record: the time of the reading, the geiger
// counts per minute and the last servo increment, -1 before the first.
func Record(dt ds1307.DateTime, cpm, motor int) string {
	return fmt.Sprintf("\nTime,%s,CPM,%d,Motor,%d\t", dt, cpm, motor)
}

// LoadOrInit returns the stamp called name, writing def to it first if it
// does not exist yet.
func LoadOrInit(s Store, name string, def ds1307.DateTime) (ds1307.DateTime, error) {
	dt, ok, err := s.ReadStamp(name)
	if err != nil {
		return ds1307.DateTime{}, err
	}
	if ok {
		return dt, nil
	}
	if err := s.WriteStamp(name, def); err != nil {
		return ds1307.DateTime{}, err
	}
	return def, nil
}
