// Copyright 2026 The rp-scope Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command scope-sh is an interactive shell to a scope control server.
//
// Example:
//
//  $> scope-sh -addr localhost:9999
//  scope> status
//  {"msg":"ok","data":{"writing":false,...}}
//  scope> set 0x10 4096
//  scope> arm
//  scope> quit
package main // import "github.com/lharnaldi/rp-scope/cmd/scope-sh"

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net"
	"strconv"
	"strings"

	"github.com/peterh/liner"
)

func main() {
	addr := flag.String("addr", "localhost:9999", "scope-svc [addr]:port to dial")

	log.SetPrefix("scope-sh: ")
	log.SetFlags(0)

	flag.Parse()

	conn, err := net.Dial("tcp", *addr)
	if err != nil {
		log.Fatalf("could not dial scope-svc %q: %+v", *addr, err)
	}
	defer conn.Close()

	term := liner.NewLiner()
	defer term.Close()
	term.SetCtrlCAborts(true)

	sh := shell{
		conn: conn,
		r:    bufio.NewReader(conn),
	}

loop:
	for {
		line, err := term.Prompt("scope> ")
		if err != nil {
			break loop
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		term.AppendHistory(line)

		quit, err := sh.exec(line)
		if err != nil {
			log.Printf("%+v", err)
			continue
		}
		if quit {
			break loop
		}
	}
}

type shell struct {
	conn net.Conn
	r    *bufio.Reader
}

type request struct {
	Name string      `json:"name"`
	Args interface{} `json:"args,omitempty"`
}

type regOp struct {
	Addr  uint32 `json:"addr"`
	Value uint32 `json:"value"`
}

func (sh *shell) exec(line string) (bool, error) {
	toks := strings.Fields(line)
	name := strings.ToLower(toks[0])

	switch name {
	case "arm", "reset", "trigger", "status":
		return false, sh.send(request{Name: name})

	case "set":
		if len(toks) != 3 {
			return false, fmt.Errorf("usage: set ADDR VALUE")
		}
		addr, err := parseU32(toks[1])
		if err != nil {
			return false, fmt.Errorf("invalid address %q: %w", toks[1], err)
		}
		v, err := parseU32(toks[2])
		if err != nil {
			return false, fmt.Errorf("invalid value %q: %w", toks[2], err)
		}
		return false, sh.send(request{Name: "set", Args: []regOp{{Addr: addr, Value: v}}})

	case "get":
		if len(toks) != 2 {
			return false, fmt.Errorf("usage: get ADDR")
		}
		addr, err := parseU32(toks[1])
		if err != nil {
			return false, fmt.Errorf("invalid address %q: %w", toks[1], err)
		}
		return false, sh.send(request{Name: "get", Args: []regOp{{Addr: addr}}})

	case "read":
		if len(toks) != 4 {
			return false, fmt.Errorf("usage: read CHAN START COUNT")
		}
		ch, err := strconv.Atoi(toks[1])
		if err != nil {
			return false, fmt.Errorf("invalid channel %q: %w", toks[1], err)
		}
		beg, err := parseU32(toks[2])
		if err != nil {
			return false, fmt.Errorf("invalid start %q: %w", toks[2], err)
		}
		n, err := parseU32(toks[3])
		if err != nil {
			return false, fmt.Errorf("invalid count %q: %w", toks[3], err)
		}
		args := struct {
			Chan  int    `json:"chan"`
			Start uint32 `json:"start"`
			Count uint32 `json:"count"`
		}{Chan: ch, Start: beg, Count: n}
		return false, sh.send(request{Name: "read", Args: args})

	case "quit":
		return true, sh.send(request{Name: "quit"})

	default:
		return false, fmt.Errorf("unknown command %q", name)
	}
}

func (sh *shell) send(req request) error {
	err := json.NewEncoder(sh.conn).Encode(req)
	if err != nil {
		return fmt.Errorf("could not send command %q: %w", req.Name, err)
	}

	rep, err := sh.r.ReadString('\n')
	if err != nil {
		return fmt.Errorf("could not read reply to %q: %w", req.Name, err)
	}
	fmt.Print(rep)
	return nil
}

func parseU32(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 0, 32)
	return uint32(v), err
}
