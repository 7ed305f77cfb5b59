// Copyright 2026 The rp-scope Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command scope-sql inspects the scope conditions database.
package main // import "github.com/lharnaldi/rp-scope/cmd/scope-sql"

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/lharnaldi/rp-scope/conddb"
)

const (
	dbname = "rpscope"
)

func main() {
	log.SetPrefix("scope-sql: ")
	log.SetFlags(0)

	var (
		setup = flag.String("setup", "", "acquisition setup to inspect")
		dev   = flag.Int("dev", 0, "device ID to inspect")
	)

	flag.Parse()

	log.Printf("dev:   %03d", *dev)
	log.Printf("setup: %q", *setup)

	db, err := conddb.Open(dbname)
	if err != nil {
		log.Fatalf("could not open scope db: %+v", err)
	}
	defer db.Close()

	err = doQuery(db, *setup, uint32(*dev))
	if err != nil {
		log.Fatalf("could not do query: %+v", err)
	}
}

func doQuery(db *conddb.DB, setup string, devID uint32) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if setup == "" {
		v, err := db.LastSetup(ctx)
		if err != nil {
			return fmt.Errorf("could not get last setup value: %w", err)
		}
		setup = v
		log.Printf("setup: %q", setup)
	}

	if devID == 0 {
		v, err := db.LastDeviceID(ctx)
		if err != nil {
			return fmt.Errorf("could not get last device-id: %w", err)
		}
		devID = v
		log.Printf("dev-id: %d", devID)
	}

	settings, err := db.ScopeSettings(ctx, setup, devID)
	if err != nil {
		return fmt.Errorf("could not get scope settings (setup=%q, id=%d): %w",
			setup, devID, err,
		)
	}
	log.Printf("settings: %d", len(settings))
	for i, set := range settings {
		log.Printf("row[%d]: chan=%d src=%d thresh=%d hyst=%d dly=%d dec=%d",
			i, set.Chan, set.TrigSrc, set.Thresh, set.Hyst, set.TrigDly, set.DecRate,
		)
	}

	daqstates, err := db.DAQStates(ctx)
	if err != nil {
		return fmt.Errorf("could not retrieve daqstates: %w", err)
	}
	log.Printf("daqstates: %d", len(daqstates))
	for i, daq := range daqstates {
		log.Printf("row[%d]: %#v", i, daq)
	}

	return nil
}
