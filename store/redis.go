// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/GermanBionicSystems/boron/ds1307"
)

// Redis stores stamps as string keys and the log as a list, all under a
// common key prefix.
type Redis struct {
	db     *redis.Client
	ctx    context.Context
	prefix string
}

// NewRedis returns a Store on the server at addr. Keys are prefixed with
// prefix, e.g. "boron:".
func NewRedis(ctx context.Context, addr, prefix string) (*Redis, error) {
	db := redis.NewClient(&redis.Options{Addr: addr})
	if err := db.Ping(ctx).Err(); err != nil {
		return nil, errors.Join(fmt.Errorf("store: could not reach %s", addr), err, db.Close())
	}
	return &Redis{db: db, ctx: ctx, prefix: prefix}, nil
}

func (r *Redis) String() string {
	return fmt.Sprintf("Redis{%s, %q}", r.db.Options().Addr, r.prefix)
}

// Close closes the connection to the server.
func (r *Redis) Close() error {
	return r.db.Close()
}

// ReadStamp implements Store.
func (r *Redis) ReadStamp(name string) (ds1307.DateTime, bool, error) {
	s, err := r.db.Get(r.ctx, r.prefix+name).Result()
	if errors.Is(err, redis.Nil) {
		return ds1307.DateTime{}, false, nil
	}
	if err != nil {
		return ds1307.DateTime{}, false, fmt.Errorf("store: %w", err)
	}
	dt, err := ds1307.ParseStamp(s)
	if err != nil {
		return ds1307.DateTime{}, false, fmt.Errorf("store: %s: %w", name, err)
	}
	return dt, true, nil
}

// WriteStamp implements Store.
func (r *Redis) WriteStamp(name string, dt ds1307.DateTime) error {
	if err := r.db.Set(r.ctx, r.prefix+name, dt.String(), 0).Err(); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	return nil
}

// AppendLog implements Store. Every call adds one list element.
func (r *Redis) AppendLog(text string) error {
	if err := r.db.RPush(r.ctx, r.prefix+DataLog, text).Err(); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	return nil
}

// Log returns the log records in order.
func (r *Redis) Log() ([]string, error) {
	l, err := r.db.LRange(r.ctx, r.prefix+DataLog, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	return l, nil
}

var _ Store = &Redis{}
