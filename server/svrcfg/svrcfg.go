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

package svrcfg

import (
	"log/slog"
	"runtime"
	"time"

	"github.com/zintix-labs/collectlab"
	"github.com/zintix-labs/collectlab/errs"
	"github.com/zintix-labs/collectlab/server/logger"
)

// 伺服器端的資源保護上限（不屬於領域檢查，只避免單一請求吃光資源）
const (
	DefaultMaxItems      = 512
	DefaultMaxDrawCounts = 100_000
	DefaultMaxDraw       = 10_000_000

	DefaultRequestTimeout = 30 * time.Second
)

type SvrCfg struct {
	Log     *slog.Logger
	Lab     *collectlab.Lab
	Addr    string
	Workers int // 每個請求計算曲線時的併發數

	MaxItems      int
	MaxDrawCounts int
	MaxDraw       int

	RequestTimeout time.Duration // 單一請求的計算期限；< 0 不設限
}

func (sc *SvrCfg) Valid() error {
	if sc.Log != nil {
		if ah, ok := sc.Log.Handler().(*logger.AsyncHandler); ok && !ah.Ready() {
			return errs.NewFatal("nil default log handler: async handler is nil")
		}
	} else {
		sc.Log, _ = logger.NewAsync(1024, logger.ModeDev)
	}
	if sc.Lab == nil {
		return errs.NewFatal("lab is required")
	}

	// 1 <= Workers <= NumCPU
	sc.Workers = max(1, sc.Workers)
	sc.Workers = min(runtime.NumCPU(), sc.Workers)

	if sc.MaxItems <= 0 {
		sc.MaxItems = DefaultMaxItems
	}
	if sc.MaxDrawCounts <= 0 {
		sc.MaxDrawCounts = DefaultMaxDrawCounts
	}
	if sc.MaxDraw <= 0 {
		sc.MaxDraw = DefaultMaxDraw
	}
	if sc.RequestTimeout == 0 {
		sc.RequestTimeout = DefaultRequestTimeout
	}
	return nil
}
