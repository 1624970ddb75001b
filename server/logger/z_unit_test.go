// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package logger_test

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/zintix-labs/collectlab/server/logger"
)

func TestParseMode(t *testing.T) {
	cases := map[string]logger.LogMode{
		"ModeDev":     logger.ModeDev,
		"ModeProd":    logger.ModeProd,
		"modesilence": logger.ModeSilence,
		"prod":        logger.ModeProd,
		"":            logger.ModeDev,
		"whatever":    logger.ModeDev,
	}
	for in, want := range cases {
		if got := logger.ParseMode(in); got != want {
			t.Fatalf("ParseMode(%q)=%v want %v", in, got, want)
		}
	}
}

func TestProdWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewLoggerTo(logger.ModeProd, &buf)
	log.Debug("hidden")
	log.Info("curve evaluated", slog.Int("draw_counts", 63))
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("prod mode must drop debug logs: %s", out)
	}
	if !strings.Contains(out, `"draw_counts":63`) {
		t.Fatalf("expected json record, got %s", out)
	}
}

func TestAsyncHandlerDrainsOnClose(t *testing.T) {
	var buf bytes.Buffer
	ah := logger.NewAsyncHandler(slog.NewTextHandler(&buf, nil), 64)
	log := logger.NewLogger(ah).With(slog.String("svc", "collectlab"))
	for i := 0; i < 10; i++ {
		log.Info("tick", slog.Int("i", i))
	}
	ah.Close()
	ah.Close()
	out := buf.String()
	if got := strings.Count(out, "msg=tick"); got+int(ah.Dropped()) != 10 {
		t.Fatalf("records lost: wrote %d dropped %d", got, ah.Dropped())
	}
	if !strings.Contains(out, "svc=collectlab") {
		t.Fatalf("attrs must be kept: %s", out)
	}
	log.Info("after close")
	if strings.Contains(buf.String(), "after close") {
		t.Fatalf("closed handler must not write")
	}
}

func TestNewAsyncReady(t *testing.T) {
	log, ah := logger.NewAsync(8, logger.ModeSilence)
	defer ah.Close()
	if !ah.Ready() || log == nil {
		t.Fatalf("async logger not ready")
	}
}
