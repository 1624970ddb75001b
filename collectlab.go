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

// Package collectlab 提供收集機率引擎的「組裝入口（assembler）」與「運行入口（runtime entry）」。
//
// 它把兩件事組裝在一起：
//  1. Catalog：具名 preset 目錄，設定檔來源一律以 fs.FS 注入（go:embed 或 os.DirFS）。
//  2. Evaluator：對單一 CollectSetting 建立 Chain 與 Estimator，計算整條完成機率曲線。
//
// 使用流程通常分成兩階段：
//   - 註冊階段：New() 建立 catalog，RegisterAll() 掃描並註冊所有 preset，Freeze() 後進入執行階段。
//   - 執行階段：依名稱或直接以 CollectSetting 建立 Evaluator，計算曲線/單點機率。
//
// 範例：
//
//	lab, _ := collectlab.NewAuto(collectlab.Configs(presets.FS))
//	ev, _ := lab.NewEvaluator("sixteen_four", nil)
//	rep, used, _ := ev.Report(ctx, 4, false)
package collectlab

import (
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"sync"

	"github.com/zintix-labs/collectlab/catalog"
	"github.com/zintix-labs/collectlab/errs"
	"github.com/zintix-labs/collectlab/setting"
)

// Configs 用來把一或多個設定檔來源（fs.FS）打包成 New() 需要的參數。
func Configs(cfgs ...fs.FS) []fs.FS {
	return cfgs
}

type Lab struct {
	cat *catalog.Catalog

	sumOnce sync.Once
	sum     []catalog.Summary
	sumErr  error
}

// New 建立一個 Lab instance（註冊階段）。cfgs 至少一個。
func New(cfgs []fs.FS) (*Lab, error) {
	if len(cfgs) == 0 {
		return nil, errs.NewFatal("configs required")
	}
	cata, err := catalog.New(cfgs...)
	if err != nil {
		return nil, err
	}
	return &Lab{cat: cata}, nil
}

// NewAuto 建立一個直接進入執行階段的 Lab instance。
func NewAuto(cfgs []fs.FS) (*Lab, error) {
	lab, err := New(cfgs)
	if err != nil {
		return nil, err
	}
	if err := lab.RegisterAll(); err != nil {
		return nil, err
	}
	lab.Freeze()
	return lab, nil
}

func (l *Lab) Register(ents ...catalog.Entry) error {
	return l.cat.Register(ents...)
}

// RegisterAll
//
// 解析 catalog 內所有設定檔，以設定檔內的 name（缺省時用檔名去掉副檔名）註冊。
//   - Fail-fast：任何一個檔案讀取/解析/檢查失敗，立刻回傳 error。
//   - 原子性：全部檔案都通過才一次性 Register，不會留下半完成的 catalog。
//   - 依檔名排序處理，行為可重現。
func (l *Lab) RegisterAll() error {
	files := l.cat.Cfg().Files()
	if len(files) == 0 {
		return errs.NewFatal("no config files found to register")
	}
	entries := make([]catalog.Entry, 0, len(files))
	for _, base := range files {
		src, _ := l.cat.Cfg().GetFS(base)
		raw, err := fs.ReadFile(src, base)
		if err != nil {
			return errs.NewFatal(fmt.Sprintf("read config failed: %s", base))
		}
		cs, err := setting.GetSettingByExt(base, raw)
		if err != nil {
			return errs.WrapWithExtra(err, "parse collect setting failed", base)
		}
		name := strings.TrimSpace(cs.Name)
		if name == "" {
			name = strings.TrimSuffix(base, ext(base))
		}
		entries = append(entries, catalog.Entry{Name: name, ConfigName: base})
	}
	return l.cat.Register(entries...)
}

func (l *Lab) Freeze() {
	l.cat.Freeze()
}

func (l *Lab) Names() []string {
	return l.cat.Names()
}

// Setting 回傳 preset 的全新拷貝。
func (l *Lab) Setting(name string) (*setting.CollectSetting, error) {
	if !l.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	return l.cat.SettingByName(name)
}

// Summary 回傳所有 preset 的摘要；凍結後只計算一次，可並行呼叫。
func (l *Lab) Summary() ([]catalog.Summary, error) {
	if !l.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	l.sumOnce.Do(func() {
		l.sum, l.sumErr = l.summarize()
	})
	return l.sum, l.sumErr
}

func (l *Lab) summarize() ([]catalog.Summary, error) {
	names := l.cat.Names()
	cs := make([]catalog.Summary, 0, len(names))
	for _, name := range names {
		st, err := l.cat.SettingByName(name)
		if err != nil {
			return nil, err
		}
		cs = append(cs, catalog.Summary{
			Name:            name,
			Items:           st.Items,
			ExchangeRate:    st.ExchangeRate,
			StartUnique:     st.StartUnique,
			StartDuplicates: st.StartDuplicates,
		})
	}
	return cs, nil
}

// NewEvaluator 依 preset 名稱建立 Evaluator。log 可為 nil。
func (l *Lab) NewEvaluator(name string, log *slog.Logger) (*Evaluator, error) {
	cs, err := l.Setting(name)
	if err != nil {
		return nil, err
	}
	return NewEvaluator(cs, log)
}

func ext(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i:]
	}
	return ""
}
