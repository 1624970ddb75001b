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

// Package perf 以 runtime/pprof 包裝一段執行，輸出 cpu/heap/allocs profile。
package perf

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
)

const DefaultDir = "build/profiling" // pprof檔案寫入路徑

// Run 依 mode 決定要不要做 profiling：
//
//	""      直接執行
//	cpu     CPU profile（可拿來做 PGO 的 default.pgo）
//	heap    執行完後寫出 in-use heap 快照
//	allocs  執行完後寫出累積配置
//
// exe 的錯誤原樣回傳；profile 本身的錯誤會被包裝後回傳。
func Run(exe func() error, mode string, dir string) error {
	if mode == "" {
		return exe()
	}
	if dir == "" {
		dir = DefaultDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create pprof dir: %w", err)
	}
	switch mode {
	case "cpu":
		return cpu(exe, filepath.Join(dir, "cpu.pprof"))
	case "heap":
		if err := exe(); err != nil {
			return err
		}
		// 讓快照貼近最新狀態
		runtime.GC()
		return writeProfile("heap", filepath.Join(dir, "heap.pprof"))
	case "allocs":
		if err := exe(); err != nil {
			return err
		}
		return writeProfile("allocs", filepath.Join(dir, "allocs.pprof"))
	default:
		return fmt.Errorf("unknown pprof mode %q (want cpu|heap|allocs)", mode)
	}
}

func cpu(exe func() error, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create cpu.pprof: %w", err)
	}
	defer f.Close()
	if err := pprof.StartCPUProfile(f); err != nil {
		return fmt.Errorf("start cpu profile: %w", err)
	}
	defer pprof.StopCPUProfile()
	return exe()
}

func writeProfile(name, path string) error {
	prof := pprof.Lookup(name)
	if prof == nil {
		return fmt.Errorf("profile %q not found", name)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(path), err)
	}
	defer f.Close()
	return prof.WriteTo(f, 0)
}
