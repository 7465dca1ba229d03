// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/GermanBionicSystems/boron/ds1307"
	"github.com/GermanBionicSystems/boron/store"
)

// clock is the part of *ds1307.Dev the commands use.
type clock interface {
	GetTime() (ds1307.DateTime, error)
}

// softClock reads the real-time clock and keeps running on the host clock
// while it is unavailable.
//
// Every successful read reseeds it. Before the first one the last known time
// stamp is the seed, initialized from the host time if missing.
type softClock struct {
	rtc clock
	st  store.Store
	now func() time.Time

	seeded bool
	seed   time.Time // time of day kept by the clock
	seedAt time.Time // host instant of seed
}

func newSoftClock(rtc clock, st store.Store, now func() time.Time) *softClock {
	if now == nil {
		now = time.Now
	}
	return &softClock{rtc: rtc, st: st, now: now}
}

// Time returns the current time.
func (c *softClock) Time() (ds1307.DateTime, error) {
	dt, err := c.rtc.GetTime()
	if err == nil {
		c.seeded = true
		c.seed = dt.Time()
		c.seedAt = c.now()
		return dt, nil
	}
	var rerr *ds1307.RangeError
	if !errors.Is(err, ds1307.ErrNoResponse) && !errors.As(err, &rerr) {
		return ds1307.DateTime{}, err
	}
	log.WithError(err).Warn("clock unavailable, using the soft clock")
	if !c.seeded {
		def, ferr := ds1307.FromTime(c.now().UTC())
		if ferr != nil {
			return ds1307.DateTime{}, errors.Join(err, ferr)
		}
		last, lerr := store.LoadOrInit(c.st, store.TimeStamp, def)
		if lerr != nil {
			return ds1307.DateTime{}, errors.Join(err, lerr)
		}
		c.seeded = true
		c.seed = last.Time()
		c.seedAt = c.now()
		log.WithFields(logrus.Fields{"seed": last, "store": c.st}).Info("soft clock seeded from the last time stamp")
	}
	return ds1307.FromTime(c.seed.Add(c.now().Sub(c.seedAt)))
}
