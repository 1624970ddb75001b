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

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/zintix-labs/collectlab"
	"github.com/zintix-labs/collectlab/presets"
	"github.com/zintix-labs/collectlab/server"
	"github.com/zintix-labs/collectlab/server/logger"
	"github.com/zintix-labs/collectlab/server/svrcfg"
)

func main() {
	sCfg, closeLog, err := loadConfigFromFlags()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer closeLog()
	if err := server.Run(context.Background(), sCfg); err != nil {
		os.Exit(1)
	}
}

type config struct {
	LogMode string
	Addr    string
	Workers int
	Presets string
	Timeout time.Duration
}

func loadConfigFromFlags() (*svrcfg.SvrCfg, func(), error) {
	cfg := new(config)
	flag.StringVar(&cfg.LogMode, "log-mode", "ModeDev", "log mode: ModeDev|ModeProd|ModeSilence")
	flag.StringVar(&cfg.Addr, "addr", ":5808", "listen address")
	flag.IntVar(&cfg.Workers, "workers", runtime.NumCPU(), "workers per curve request")
	flag.DurationVar(&cfg.Timeout, "timeout", 30*time.Second, "per-request compute deadline (negative disables)")
	flag.StringVar(&cfg.Presets, "presets", "", "extra preset directory (flat, .yaml/.yml/.json)")
	flag.Parse()

	log, ah := logger.NewAsync(4096, logger.ParseMode(cfg.LogMode))

	cfgs := collectlab.Configs(presets.FS)
	if cfg.Presets != "" {
		cfgs = append(cfgs, os.DirFS(cfg.Presets))
	}
	lab, err := collectlab.NewAuto(cfgs)
	if err != nil {
		ah.Close()
		return nil, nil, err
	}
	sCfg := &svrcfg.SvrCfg{
		Log:     log,
		Lab:     lab,
		Addr:    cfg.Addr,
		Workers: cfg.Workers,

		RequestTimeout: cfg.Timeout,
	}
	return sCfg, ah.Close, nil
}
