// Copyright 2026 The rp-scope Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package scope

import (
	"encoding/json"
	"io"
	"log"
	"net"
	"testing"
	"time"

	"github.com/lharnaldi/rp-scope/internal/regs"
)

func TestServer(t *testing.T) {
	srv, err := newServer("127.0.0.1:0", nil, WithDepth(16), WithLogger(log.New(io.Discard, "", 0)))
	if err != nil {
		t.Fatalf("could not create server: %+v", err)
	}
	srv.msg = log.New(io.Discard, "", 0)
	defer srv.close()

	go func() { _ = srv.serve() }()

	conn, err := net.Dial("tcp", srv.ctl.Addr().String())
	if err != nil {
		t.Fatalf("could not dial server: %+v", err)
	}
	defer conn.Close()

	var (
		enc = json.NewEncoder(conn)
		dec = json.NewDecoder(conn)
	)

	type reply struct {
		Msg  string          `json:"msg"`
		Data json.RawMessage `json:"data,omitempty"`
	}

	send := func(name string, args interface{}) reply {
		t.Helper()
		req := struct {
			Name string      `json:"name"`
			Args interface{} `json:"args,omitempty"`
		}{Name: name, Args: args}
		err := enc.Encode(req)
		if err != nil {
			t.Fatalf("could not send %q: %+v", name, err)
		}
		var rep reply
		err = dec.Decode(&rep)
		if err != nil {
			t.Fatalf("could not read reply to %q: %+v", name, err)
		}
		return rep
	}

	if rep := send("set", []RegOp{
		{Addr: regs.SCOPE_TRG_DLY, Value: 4},
		{Addr: regs.SCOPE_CHA_THRES, Value: 100},
	}); rep.Msg != "ok" {
		t.Fatalf("could not set registers: %q", rep.Msg)
	}

	rep := send("get", []RegOp{{Addr: regs.SCOPE_TRG_DLY}})
	if rep.Msg != "ok" {
		t.Fatalf("could not get registers: %q", rep.Msg)
	}
	var ops []RegOp
	if err := json.Unmarshal(rep.Data, &ops); err != nil {
		t.Fatalf("could not decode get reply: %+v", err)
	}
	if len(ops) != 1 || ops[0].Value != 4 {
		t.Fatalf("invalid get reply: %#v", ops)
	}

	if rep := send("arm", nil); rep.Msg != "ok" {
		t.Fatalf("could not arm: %q", rep.Msg)
	}

	rep = send("status", nil)
	if rep.Msg != "ok" {
		t.Fatalf("could not get status: %q", rep.Msg)
	}
	var sta StatusReply
	if err := json.Unmarshal(rep.Data, &sta); err != nil {
		t.Fatalf("could not decode status reply: %+v", err)
	}
	if sta.Triggered {
		t.Fatalf("invalid status: %#v", sta)
	}

	rep = send("read", ReadReq{Chan: 0, Start: 0, Count: 4})
	if rep.Msg != "ok" {
		t.Fatalf("could not read buffer: %q", rep.Msg)
	}
	var data []int32
	if err := json.Unmarshal(rep.Data, &data); err != nil {
		t.Fatalf("could not decode read reply: %+v", err)
	}
	if len(data) != 4 {
		t.Fatalf("invalid read reply length: %d", len(data))
	}

	if rep := send("bogus", nil); rep.Msg == "ok" {
		t.Fatalf("unknown command accepted")
	}

	if rep := send("quit", nil); rep.Msg != "ok" {
		t.Fatalf("could not quit: %q", rep.Msg)
	}
}

// TestServerEpisode runs a full capture episode over the control link:
// the server's tick loop must advance the armed engine until the
// post-trigger delay completes.
func TestServerEpisode(t *testing.T) {
	src := &SineSource{Amp: 4000, Period: 100}
	srv, err := newServer("127.0.0.1:0", src, WithDepth(16), WithLogger(log.New(io.Discard, "", 0)))
	if err != nil {
		t.Fatalf("could not create server: %+v", err)
	}
	srv.msg = log.New(io.Discard, "", 0)
	defer srv.close()

	go func() { _ = srv.serve() }()

	conn, err := net.Dial("tcp", srv.ctl.Addr().String())
	if err != nil {
		t.Fatalf("could not dial server: %+v", err)
	}
	defer conn.Close()

	var (
		enc = json.NewEncoder(conn)
		dec = json.NewDecoder(conn)
	)

	send := func(name string, args interface{}) json.RawMessage {
		t.Helper()
		req := struct {
			Name string      `json:"name"`
			Args interface{} `json:"args,omitempty"`
		}{Name: name, Args: args}
		if err := enc.Encode(req); err != nil {
			t.Fatalf("could not send %q: %+v", name, err)
		}
		var rep struct {
			Msg  string          `json:"msg"`
			Data json.RawMessage `json:"data,omitempty"`
		}
		if err := dec.Decode(&rep); err != nil {
			t.Fatalf("could not read reply to %q: %+v", name, err)
		}
		if rep.Msg != "ok" {
			t.Fatalf("command %q failed: %q", name, rep.Msg)
		}
		return rep.Data
	}

	status := func() StatusReply {
		t.Helper()
		var sta StatusReply
		if err := json.Unmarshal(send("status", nil), &sta); err != nil {
			t.Fatalf("could not decode status reply: %+v", err)
		}
		return sta
	}

	wait := func(cond func(StatusReply) bool, what string) StatusReply {
		t.Helper()
		for i := 0; i < 1000; i++ {
			if sta := status(); cond(sta) {
				return sta
			}
			time.Sleep(time.Millisecond)
		}
		t.Fatalf("%s never happened", what)
		panic("unreachable")
	}

	send("set", []RegOp{{Addr: regs.SCOPE_TRG_DLY, Value: 4}})
	send("arm", nil)
	wait(func(sta StatusReply) bool { return sta.Writing }, "capture start")

	// selects the manual source and fires the pulse.
	send("set", []RegOp{{Addr: regs.SCOPE_TRG_SRC, Value: 1}})
	sta := wait(func(sta StatusReply) bool { return !sta.Writing }, "capture completion")

	if got, want := (sta.WritePtr-sta.TrigPtr)&15, uint32(4); got != want {
		t.Fatalf("invalid post-trigger window: wp=%d tp=%d got=%d, want=%d",
			sta.WritePtr, sta.TrigPtr, got, want,
		)
	}

	send("quit", nil)
}
