// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ds1307

import (
	"fmt"
	"time"

	"github.com/GermanBionicSystems/boron/common"
)

// century is added to the two digit year; the device has no century bit.
const century = 2000

// StampLayout is the time.Time layout of DateTime.String.
const StampLayout = "2006-01-02 15:04:05"

// DateTime is the content of the time keeping registers, decoded.
type DateTime struct {
	Second  uint8 // 0-59
	Minute  uint8 // 0-59
	Hour    uint8 // 0-23
	Weekday uint8 // 0-6, 0 is Sunday
	Day     uint8 // 1-31
	Month   uint8 // 1-12
	Year    uint8 // 0-99
}

// Validate returns a *RangeError for the first field out of range.
func (dt DateTime) Validate() error {
	var fields = []struct {
		name     string
		v        uint8
		min, max uint8
	}{
		{"second", dt.Second, 0, 59},
		{"minute", dt.Minute, 0, 59},
		{"hour", dt.Hour, 0, 23},
		{"weekday", dt.Weekday, 0, 6},
		{"day", dt.Day, 1, 31},
		{"month", dt.Month, 1, 12},
		{"year", dt.Year, 0, 99},
	}
	for _, f := range fields {
		if f.v < f.min || f.v > f.max {
			return &RangeError{Field: f.name, Value: f.v}
		}
	}
	return nil
}

// Time returns dt as a UTC time in the 21st century.
func (dt DateTime) Time() time.Time {
	return time.Date(century+int(dt.Year), time.Month(dt.Month), int(dt.Day),
		int(dt.Hour), int(dt.Minute), int(dt.Second), 0, time.UTC)
}

// String returns the time stamp of dt in StampLayout.
func (dt DateTime) String() string {
	return dt.Time().Format(StampLayout)
}

// FromTime converts t, truncated to the second, to a DateTime. The year must
// be within 2000-2099.
func FromTime(t time.Time) (DateTime, error) {
	if t.Year() < century || t.Year() >= century+100 {
		return DateTime{}, fmt.Errorf("ds1307: year %d out of range", t.Year())
	}
	return DateTime{
		Second:  uint8(t.Second()),
		Minute:  uint8(t.Minute()),
		Hour:    uint8(t.Hour()),
		Weekday: uint8(t.Weekday()),
		Day:     uint8(t.Day()),
		Month:   uint8(t.Month()),
		Year:    uint8(t.Year() - century),
	}, nil
}

// ParseStamp parses a time stamp produced by DateTime.String. The weekday is
// derived from the date.
func ParseStamp(s string) (DateTime, error) {
	t, err := time.Parse(StampLayout, s)
	if err != nil {
		return DateTime{}, fmt.Errorf("ds1307: invalid time stamp %q: %w", s, err)
	}
	return FromTime(t)
}

// encode returns the register content for dt, in register order.
func (dt DateTime) encode() [numRegisters]byte {
	return [numRegisters]byte{
		common.ToBCD(dt.Second),
		common.ToBCD(dt.Minute),
		common.ToBCD(dt.Hour),
		common.ToBCD(dt.Weekday),
		common.ToBCD(dt.Day),
		common.ToBCD(dt.Month),
		common.ToBCD(dt.Year),
	}
}

// decode converts the register content to a DateTime.
func decode(raw [numRegisters]byte) (DateTime, error) {
	dt := DateTime{
		Second:  common.ToDecimal(raw[0] & 0x7F), // bit 7 is clock halt
		Minute:  common.ToDecimal(raw[1]),
		Hour:    decodeHour(raw[2]),
		Weekday: common.ToDecimal(raw[3]),
		Day:     common.ToDecimal(raw[4]),
		Month:   common.ToDecimal(raw[5]),
		Year:    common.ToDecimal(raw[6]),
	}
	if err := dt.Validate(); err != nil {
		return DateTime{}, err
	}
	return dt, nil
}

// decodeHour handles both the 24 hour and the 12 hour register modes.
func decodeHour(b byte) uint8 {
	if b&hour12 == 0 {
		return common.ToDecimal(b & 0x3F)
	}
	h := common.ToDecimal(b&0x1F) % 12
	if b&hourPM != 0 {
		h += 12
	}
	return h
}
