// Copyright 2026 The rp-scope Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scope

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"strings"
	"sync"
)

// server exposes a Scope over a TCP control link. Commands are JSON
// objects {"name": ..., "args": ...}; every command is answered with
// a JSON reply. While a connection is served, the engine is advanced
// tick by tick from the server's sample source, so armed episodes run
// to completion behind the commands.
type server struct {
	ctl net.Listener
	msg *log.Logger
	src Source

	mu  sync.Mutex // serializes host access against the tick loop
	dev *Scope

	newScope func(opts ...Option) (*Scope, error)
	opts     []Option
}

// Serve runs a scope control server on addr, feeding the engine from
// src. A nil src selects a synthetic two-channel source.
func Serve(addr string, src Source, opts ...Option) error {
	srv, err := newServer(addr, src, opts...)
	if err != nil {
		return fmt.Errorf("scope: could not create control server: %w", err)
	}
	return srv.serve()
}

func newServer(addr string, src Source, opts ...Option) (*server, error) {
	ctl, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("scope: could not listen on %q: %w", addr, err)
	}
	if src == nil {
		src = &SineSource{Amp: 4000, Period: 1000}
	}
	return &server{
		ctl:      ctl,
		msg:      log.New(os.Stdout, "scope-svc: ", 0),
		src:      src,
		newScope: New,
		opts:     opts,
	}, nil
}

func (srv *server) serve() error {
	defer srv.close()

	for {
		conn, err := srv.ctl.Accept()
		if err != nil {
			return fmt.Errorf("scope: could not accept connection: %w", err)
		}

		err = srv.handle(conn)
		if err != nil {
			srv.msg.Printf("could not serve scope: %+v", err)
			continue
		}
	}
}

func (srv *server) handle(conn net.Conn) error {
	defer conn.Close()
	srv.msg.Printf("serving %v...", conn.RemoteAddr())
	defer srv.msg.Printf("serving %v... [done]", conn.RemoteAddr())

	dev, err := srv.newScope(srv.opts...)
	if err != nil {
		return fmt.Errorf("scope: could not create device: %w", err)
	}
	srv.mu.Lock()
	srv.dev = dev
	srv.mu.Unlock()

	stop := make(chan struct{})
	defer close(stop)
	go srv.tickLoop(dev, stop)

loop:
	for {
		var req struct {
			Name string           `json:"name"`
			Args *json.RawMessage `json:"args"`
		}

		err = json.NewDecoder(conn).Decode(&req)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break loop
			}
			srv.msg.Printf("could not decode command request: %+v", err)
			srv.reply(conn, nil, err)
			continue
		}

		switch strings.ToLower(req.Name) {
		case "arm":
			srv.withDev(func(dev *Scope) { dev.Arm() })
			srv.reply(conn, nil, nil)

		case "reset":
			srv.withDev(func(dev *Scope) { dev.Reset() })
			srv.reply(conn, nil, nil)

		case "trigger":
			srv.withDev(func(dev *Scope) { dev.SoftTrigger() })
			srv.reply(conn, nil, nil)

		case "set":
			var args []RegOp
			err = json.Unmarshal(*req.Args, &args)
			if err != nil {
				srv.msg.Printf("could not decode %q payload: %+v", req.Name, err)
				srv.reply(conn, nil, err)
				continue
			}
			srv.withDev(func(dev *Scope) {
				for _, op := range args {
					dev.BusWrite(op.Addr, op.Value)
				}
			})
			srv.reply(conn, nil, nil)

		case "get":
			var args []RegOp
			err = json.Unmarshal(*req.Args, &args)
			if err != nil {
				srv.msg.Printf("could not decode %q payload: %+v", req.Name, err)
				srv.reply(conn, nil, err)
				continue
			}
			srv.withDev(func(dev *Scope) {
				for i := range args {
					args[i].Value = dev.BusRead(args[i].Addr)
				}
			})
			srv.reply(conn, args, nil)

		case "status":
			var sta StatusReply
			srv.withDev(func(dev *Scope) {
				sta = StatusReply{
					Writing:   dev.WriteInProgress(),
					Triggered: dev.Triggered(),
					WritePtr:  dev.WritePtr(),
					TrigPtr:   dev.TrigPtr(),
					PreCount:  dev.PreTrigCount(),
				}
			})
			srv.reply(conn, sta, nil)

		case "read":
			var args ReadReq
			err = json.Unmarshal(*req.Args, &args)
			if err != nil {
				srv.msg.Printf("could not decode %q payload: %+v", req.Name, err)
				srv.reply(conn, nil, err)
				continue
			}
			var data []int32
			srv.withDev(func(dev *Scope) {
				data = make([]int32, args.Count)
				for i := range data {
					data[i] = dev.Sample(Channel(args.Chan), args.Start+uint32(i))
				}
			})
			srv.reply(conn, data, nil)

		case "quit":
			srv.reply(conn, nil, nil)
			break loop

		default:
			srv.msg.Printf("unknown command name=%q", req.Name)
			srv.reply(conn, nil, fmt.Errorf("unknown command %q", req.Name))
			continue
		}
	}

	return nil
}

// RegOp is one register access in a "set" or "get" command.
type RegOp struct {
	Addr  uint32 `json:"addr"`
	Value uint32 `json:"value"`
}

// ReadReq asks for a slice of a capture buffer.
type ReadReq struct {
	Chan  int    `json:"chan"`
	Start uint32 `json:"start"`
	Count uint32 `json:"count"`
}

// StatusReply reports the capture bookkeeping.
type StatusReply struct {
	Writing   bool   `json:"writing"`
	Triggered bool   `json:"triggered"`
	WritePtr  uint32 `json:"write_ptr"`
	TrigPtr   uint32 `json:"trig_ptr"`
	PreCount  uint32 `json:"pre_count"`
}

// tickLoop advances the served engine from the sample source until the
// connection ends or the source is exhausted. Host commands interleave
// with ticks through the server mutex.
func (srv *server) tickLoop(dev *Scope, stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		default:
		}

		in, ok := srv.src.Next()
		if !ok {
			srv.msg.Printf("sample source exhausted")
			return
		}
		srv.mu.Lock()
		dev.Tick(in)
		srv.mu.Unlock()
	}
}

func (srv *server) withDev(f func(dev *Scope)) {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	f(srv.dev)
}

func (srv *server) reply(conn net.Conn, data interface{}, err error) {
	rep := struct {
		Msg  string      `json:"msg"`
		Data interface{} `json:"data,omitempty"`
	}{Msg: "ok", Data: data}
	if err != nil {
		rep.Msg = fmt.Sprintf("%+v", err)
	}

	_ = json.NewEncoder(conn).Encode(rep)
}

func (srv *server) close() {
	_ = srv.ctl.Close()
}
