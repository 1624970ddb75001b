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

// Package setting 定義一次收集機率計算所需的設定（CollectSetting），並負責解析與基本檢查。
//
// 設定在建立後視為唯讀：Builder 與 Estimator 只讀取它，不會修改。
package setting

import (
	"fmt"
	"math"

	"github.com/zintix-labs/collectlab/errs"
)

// CollectSetting 對應一次「收集 d 種不重複物品，每 c 個重複品可兌換 1 個新物品」的計算。
type CollectSetting struct {
	Name            string     `yaml:"name"              json:"name"`
	Items           int        `yaml:"items"             json:"items"`            // d：需要收集的不重複物品數
	ExchangeRate    int        `yaml:"exchange_rate"     json:"exchange_rate"`    // c：幾個重複品換一個新物品（0 = 不可兌換）
	StartUnique     int        `yaml:"start_unique"      json:"start_unique"`     // k0：起始持有的不重複物品數
	StartDuplicates int        `yaml:"start_duplicates"  json:"start_duplicates"` // dup0：起始持有的重複品數
	Draws           []int      `yaml:"draws,omitempty"      json:"draws,omitempty"`
	DrawRange       *DrawRange `yaml:"draw_range,omitempty" json:"draw_range,omitempty"`
}

// DrawRange 以 [From, To] 閉區間與 Step 描述抽取次數序列。
type DrawRange struct {
	From int `yaml:"from" json:"from"`
	To   int `yaml:"to"   json:"to"`
	Step int `yaml:"step" json:"step"`
}

// Valid 檢查設定本身（d, c, k0, dup0）與抽取次數序列。
// 所有檢查都在計算開始前完成：任何一項不合法就整筆拒絕。
func (cs *CollectSetting) Valid() error {
	if cs == nil {
		return errs.InvalidConfig("nil collect setting")
	}
	if err := ValidParams(cs.Items, cs.ExchangeRate, cs.StartUnique, cs.StartDuplicates); err != nil {
		return err
	}
	_, err := cs.DrawCounts()
	return err
}

// ValidParams 檢查 chain 與 estimator 共用的四個參數。
func ValidParams(d, c, k0, dup0 int) error {
	if d < 1 {
		return errs.InvalidConfig("items must >= 1, got %d", d)
	}
	if c < 0 {
		return errs.InvalidConfig("exchange_rate must >= 0, got %d", c)
	}
	if k0 < 0 || k0 > d {
		return errs.InvalidConfig("start_unique must be in [0,%d], got %d", d, k0)
	}
	if dup0 < 0 {
		return errs.InvalidConfig("start_duplicates must >= 0, got %d", dup0)
	}
	return nil
}

// DrawCounts 回傳要計算的抽取次數序列（依輸入順序）。
//
// 優先序：Draws（明確列表） > DrawRange > 預設區間。
// 預設區間：c > 0 時為 1 .. c*d-1；c == 0 時為 1 .. ceil(2*d*H_d)（古典收集期望次數的兩倍）。
func (cs *CollectSetting) DrawCounts() ([]int, error) {
	if len(cs.Draws) > 0 {
		out := make([]int, len(cs.Draws))
		for i, n := range cs.Draws {
			if n < 0 {
				return nil, errs.InvalidInput("draws[%d] must >= 0, got %d", i, n)
			}
			out[i] = n
		}
		return out, nil
	}
	if cs.DrawRange != nil {
		return cs.DrawRange.Expand()
	}
	return DefaultRange(cs.Items, cs.ExchangeRate).Expand()
}

// MaxDrawCounts 是單一設定可展開的抽取次數上限。
const MaxDrawCounts = 10_000_000

// Count 回傳區間展開後的數量，不配置任何記憶體。Step 為 0 時視為 1。
// 超過 MaxDrawCounts 時回傳 InvalidInput。
func (dr *DrawRange) Count() (int, error) {
	step := dr.Step
	if step == 0 {
		step = 1
	}
	switch {
	case dr.From < 0:
		return 0, errs.InvalidInput("draw_range.from must >= 0, got %d", dr.From)
	case dr.To < dr.From:
		return 0, errs.InvalidInput("draw_range.to must >= from (%d), got %d", dr.From, dr.To)
	case step < 0:
		return 0, errs.InvalidInput("draw_range.step must > 0, got %d", dr.Step)
	}
	// From >= 0 且 To >= From，所以 To-From 不會溢位；先比較商再 +1
	if (dr.To-dr.From)/step >= MaxDrawCounts {
		return 0, errs.InvalidInput("draw_range expands to more than %d draw counts", MaxDrawCounts)
	}
	return (dr.To-dr.From)/step + 1, nil
}

// Expand 展開成抽取次數列表。Step 為 0 時視為 1。
func (dr *DrawRange) Expand() ([]int, error) {
	size, err := dr.Count()
	if err != nil {
		return nil, err
	}
	step := max(1, dr.Step)
	out := make([]int, 0, size)
	// n > To-step 時停止，避免 n += step 溢位
	for n := dr.From; ; n += step {
		out = append(out, n)
		if n > dr.To-step {
			break
		}
	}
	return out, nil
}

// DefaultRange 回傳未指定抽取次數時使用的區間。
func DefaultRange(d, c int) *DrawRange {
	if c > 0 {
		// c*d 溢位時飽和到 MaxInt，交給 Count 拒絕
		to := 1
		if d > 0 {
			to = math.MaxInt
			if c <= math.MaxInt/d {
				to = max(1, c*d-1)
			}
		}
		return &DrawRange{From: 1, To: to, Step: 1}
	}
	h := 0.0
	for i := 1; i <= d; i++ {
		h += 1.0 / float64(i)
	}
	return &DrawRange{From: 1, To: max(1, int(math.Ceil(2*float64(d)*h))), Step: 1}
}

// Title 給報表/日誌使用的簡短描述。
func (cs *CollectSetting) Title() string {
	base := fmt.Sprintf("d=%d c=%d:1", cs.Items, cs.ExchangeRate)
	if cs.StartUnique != 0 || cs.StartDuplicates != 0 {
		base += fmt.Sprintf(" start=%d unique/%d dup", cs.StartUnique, cs.StartDuplicates)
	}
	if cs.Name != "" {
		return cs.Name + " (" + base + ")"
	}
	return base
}

// Clone 回傳深拷貝，避免呼叫端持有的 slice/指標被共用修改。
func (cs *CollectSetting) Clone() *CollectSetting {
	out := *cs
	if cs.Draws != nil {
		out.Draws = append([]int(nil), cs.Draws...)
	}
	if cs.DrawRange != nil {
		dr := *cs.DrawRange
		out.DrawRange = &dr
	}
	return &out
}
