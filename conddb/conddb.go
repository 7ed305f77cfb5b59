// Copyright 2026 The rp-scope Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package conddb holds types to describe the conditions and
// configuration database for the scope acquisition setups.
package conddb // import "github.com/lharnaldi/rp-scope/conddb"

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

const (
	host = "localhost"
)

var (
	usr = "username"
	pwd = "s3cr3t"

	drvName = "mysql"
)

// DB exposes convenience methods to easily retrieve conditions data
// and acquisition settings from the scope database.
type DB struct {
	db   *sql.DB
	name string // name of the scope database
}

// Open opens a connection to the scope database dbname.
func Open(dbname string) (*DB, error) {
	db, err := sql.Open(drvName, dsn(dbname))
	if err != nil {
		return nil, fmt.Errorf("conddb: could not open %q db: %w", dbname, err)
	}

	err = ping(db, dbname)
	if err != nil {
		return nil, fmt.Errorf("conddb: could not ping %q db: %w", dbname, err)
	}

	return &DB{db: db, name: dbname}, nil
}

func dsn(db string) string {
	return fmt.Sprintf("%s:%s@tcp(%s)/%s", usr, pwd, host, db)
}

func ping(db *sql.DB, dbname string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("conddb: could not ping %q db: %w", dbname, err)
	}

	return nil
}

func (db *DB) Close() error {
	return db.db.Close()
}

func (db *DB) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return db.db.QueryContext(ctx, query, args...)
}

// LastSetup returns the name of the most recently registered
// acquisition setup.
func (db *DB) LastSetup(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	setup := ""
	rows, err := db.db.QueryContext(
		ctx,
		"SELECT name FROM setups ORDER BY datetime DESC LIMIT 1",
	)
	if err != nil {
		return setup, fmt.Errorf("conddb: could not query setup: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		err = rows.Scan(&setup)
		if err != nil {
			return setup, fmt.Errorf("conddb: could not get setup value: %w", err)
		}
	}

	if err := rows.Err(); err != nil {
		return setup, fmt.Errorf("conddb: could not scan db for setup: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return setup, fmt.Errorf("conddb: context error while retrieving setup: %w", err)
	}

	return setup, nil
}

// LastDeviceID returns the identifier of the most recently registered
// acquisition device.
func (db *DB) LastDeviceID(ctx context.Context) (uint32, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var devid uint32
	rows, err := db.db.QueryContext(
		ctx,
		"SELECT identifier FROM devices ORDER BY datetime DESC LIMIT 1",
	)
	if err != nil {
		return devid, fmt.Errorf("conddb: could not query device-id: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		err = rows.Scan(&devid)
		if err != nil {
			return devid, fmt.Errorf("conddb: could not get device-id value: %w", err)
		}
	}

	if err := rows.Err(); err != nil {
		return devid, fmt.Errorf("conddb: could not scan db for device-id: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return devid, fmt.Errorf("conddb: context error while retrieving device-id: %w", err)
	}

	return devid, nil
}

// ScopeSettings returns the acquisition settings bound to the named
// setup for the given device.
func (db *DB) ScopeSettings(ctx context.Context, setup string, devID uint32) ([]Settings, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var (
		cfg = make([]Settings, 0, 2)
		err error
	)

	rows, err := db.db.QueryContext(
		ctx,
		`
SELECT settings.* FROM settings
JOIN setup_settings ON settings.identifier=setup_settings.settings
JOIN setups         ON setups.identifier=setup_settings.setup
WHERE (
	setups.name=? AND settings.device_id=?
)
`,
		setup, devID,
	)
	if err != nil {
		return cfg, fmt.Errorf("conddb: could not run scope settings query: %w", err)
	}
	defer rows.Close()

	i := 0
	for rows.Next() {
		var set Settings
		err = rows.Scan(
			&set.PrimaryID, &set.DeviceID, &set.Chan,
			&set.TrigSrc, &set.Thresh, &set.Hyst,
			&set.TrigDly, &set.DecRate, &set.AvgEn,
			&set.DebLen, &set.Keep,
			&set.FiltAA, &set.FiltBB, &set.FiltKK, &set.FiltPP,
			&set.StreamStart, &set.StreamStop, &set.StreamDly, &set.StreamEn,
		)
		if err != nil {
			return cfg, fmt.Errorf("conddb: could not scan row %d for scope settings: %w", i, err)
		}
		i++

		cfg = append(cfg, set)
	}

	if err := rows.Err(); err != nil {
		return cfg, fmt.Errorf("conddb: could not scan db for scope settings: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return cfg, fmt.Errorf("conddb: context error while retrieving scope settings: %w", err)
	}

	return cfg, nil
}

// DAQStates returns the set of registered acquisition states.
func (db *DB) DAQStates(ctx context.Context) ([]DAQState, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var cfg []DAQState
	rows, err := db.db.QueryContext(ctx, "SELECT * FROM daqstates")
	if err != nil {
		return cfg, fmt.Errorf(
			"conddb: could not run daqstates query: %w",
			err,
		)
	}
	defer rows.Close()

	for rows.Next() {
		var daq DAQState
		err = rows.Scan(&daq.ID, &daq.Setup, &daq.RunType, &daq.TriggerMode)
		if err != nil {
			return cfg, fmt.Errorf(
				"conddb: could not scan daqstates: %w",
				err,
			)
		}
		cfg = append(cfg, daq)
	}

	if err := rows.Err(); err != nil {
		return cfg, fmt.Errorf(
			"conddb: could not scan db for daqstates: %w",
			err,
		)
	}

	if err := ctx.Err(); err != nil {
		return cfg, fmt.Errorf(
			"conddb: context error while retrieving daqstates: %w",
			err,
		)
	}

	return cfg, nil
}
