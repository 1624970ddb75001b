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

package stats

import (
	"github.com/zintix-labs/collectlab/estimator"
)

// ============================================================
// ** 曲線分析 **
// ============================================================

// 顯示區間預設門檻：第一個 p > 1% 與第一個 p > 99% 的抽取次數
const (
	DefaultLowThreshold  = 1e-2
	DefaultHighThreshold = 1 - 1e-2
)

// Bounds 描述曲線值得顯示的抽取次數範圍。
//
// Lower：第一個 p > lo 的抽取次數；Upper：第一個 p > hi 的抽取次數。
// XMin/XMax 為長條圖用的邊界（各自外擴 0.5）。找不到時對應的 OK 為 false。
type Bounds struct {
	Lower   int     `json:"lower"    yaml:"lower"`
	Upper   int     `json:"upper"    yaml:"upper"`
	LowerOK bool    `json:"lower_ok" yaml:"lower_ok"`
	UpperOK bool    `json:"upper_ok" yaml:"upper_ok"`
	XMin    float64 `json:"x_min"    yaml:"x_min"`
	XMax    float64 `json:"x_max"    yaml:"x_max"`
}

// FindBounds 依輸入順序掃描 points，回傳顯示區間。
func FindBounds(points []estimator.Point, lo, hi float64) Bounds {
	b := Bounds{}
	for _, pt := range points {
		if !b.LowerOK && pt.Prob > lo {
			b.Lower, b.LowerOK = pt.Draws, true
			b.XMin = float64(pt.Draws) - 0.5
		}
		if !b.UpperOK && pt.Prob > hi {
			b.Upper, b.UpperOK = pt.Draws, true
			b.XMax = float64(pt.Draws) + 0.5
		}
		if b.LowerOK && b.UpperOK {
			break
		}
	}
	return b
}

// Quantile 回傳第一個 p >= q 的抽取次數（points 需依抽取次數遞增）。
func Quantile(points []estimator.Point, q float64) (int, bool) {
	for _, pt := range points {
		if pt.Prob >= q {
			return pt.Draws, true
		}
	}
	return 0, false
}

// Mass 回傳相鄰兩點的機率差 p(n_i) - p(n_{i-1})；第一點以 p(n_0) 本身表示。
// 當 points 為連續抽取次數時，即為「恰好在第 n 次完成」的機率。
func Mass(points []estimator.Point) []float64 {
	out := make([]float64, len(points))
	prev := 0.0
	for i, pt := range points {
		out[i] = pt.Prob - prev
		prev = pt.Prob
	}
	return out
}

// Violations 回傳抽取次數增加但機率下降超過 tol 的點（用於檢查單調性）。
func Violations(points []estimator.Point, tol float64) []int {
	var out []int
	for i := 1; i < len(points); i++ {
		prev, cur := points[i-1], points[i]
		if cur.Draws > prev.Draws && cur.Prob < prev.Prob-tol {
			out = append(out, cur.Draws)
		}
	}
	return out
}
