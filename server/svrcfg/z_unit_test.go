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

package svrcfg_test

import (
	"runtime"
	"testing"

	"github.com/zintix-labs/collectlab"
	"github.com/zintix-labs/collectlab/presets"
	"github.com/zintix-labs/collectlab/server/logger"
	"github.com/zintix-labs/collectlab/server/svrcfg"
)

func TestValidDefaults(t *testing.T) {
	lab, err := collectlab.NewAuto(collectlab.Configs(presets.FS))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sc := &svrcfg.SvrCfg{Log: logger.NewDefaultLogger(logger.ModeSilence), Lab: lab, Workers: 1 << 20}
	if err := sc.Valid(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sc.Workers != runtime.NumCPU() {
		t.Fatalf("workers must be clamped to NumCPU, got %d", sc.Workers)
	}
	if sc.MaxItems != svrcfg.DefaultMaxItems || sc.MaxDrawCounts != svrcfg.DefaultMaxDrawCounts || sc.MaxDraw != svrcfg.DefaultMaxDraw {
		t.Fatalf("unexpected limits: %+v", sc)
	}
}

func TestValidRequiresLab(t *testing.T) {
	sc := &svrcfg.SvrCfg{Log: logger.NewDefaultLogger(logger.ModeSilence)}
	if err := sc.Valid(); err == nil {
		t.Fatalf("expected error without lab")
	}
}
