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

// Package estimator 計算「n 次抽取後完成收集」的機率（Completion Estimator）。
//
// 計算流程（每個 n 各自獨立）：
//  1. p_n = M^n · p_0（chain.Propagate）。
//  2. 將每個原始狀態 j 換算成兌換後的有效數量 EffectiveCount(j, n, ...)。
//  3. 有效數量 < d 的狀態機率加總為失敗質量，完成機率 = 1 - 失敗質量。
//
// Estimator 建立後唯讀，可被多個 goroutine 同時使用。
package estimator

import (
	"context"

	"github.com/zintix-labs/collectlab/chain"
	"github.com/zintix-labs/collectlab/errs"
	"github.com/zintix-labs/collectlab/setting"
	"gonum.org/v1/gonum/mat"
)

// Point 是曲線上的一點：抽 Draws 次後完成收集的機率。
type Point struct {
	Draws int     `json:"draws" yaml:"draws"`
	Prob  float64 `json:"prob"  yaml:"prob"`
}

type Estimator struct {
	d    int
	c    int
	k0   int
	dup0 int
	ch   *chain.Chain
}

// New 依設定建立 Estimator；只檢查 d/c/k0/dup0，抽取次數在各次呼叫時檢查。
func New(cs *setting.CollectSetting) (*Estimator, error) {
	if cs == nil {
		return nil, errs.InvalidConfig("nil collect setting")
	}
	return NewWithParams(cs.Items, cs.ExchangeRate, cs.StartUnique, cs.StartDuplicates)
}

func NewWithParams(d, c, k0, dup0 int) (*Estimator, error) {
	if err := setting.ValidParams(d, c, k0, dup0); err != nil {
		return nil, err
	}
	ch, err := chain.Build(d, k0)
	if err != nil {
		return nil, err
	}
	return &Estimator{d: d, c: c, k0: k0, dup0: dup0, ch: ch}, nil
}

// Items 回傳 d。
func (e *Estimator) Items() int { return e.d }

// Completion 回傳抽 n 次後完成收集的機率，範圍 [0,1]。
// 失敗質量對所有狀態 j 完整加總，不依賴有效數量對 j 的單調性。
func (e *Estimator) Completion(n int) (float64, error) {
	return e.CompletionContext(context.Background(), n)
}

// CompletionContext 與 Completion 相同；ctx 取消或逾時時中斷矩陣冪並回傳 ctx 的錯誤。
func (e *Estimator) CompletionContext(ctx context.Context, n int) (float64, error) {
	p, err := e.propagate(ctx, n)
	if err != nil {
		return 0, err
	}
	return e.completionOf(p, n, false), nil
}

// CompletionEarlyBreak 與 Completion 相同，但在遇到第一個有效數量 >= d 的狀態時停止加總。
// 只有在有效數量對 j 非遞減時兩者一致；保留此版本用於比對（見 Divergence）。
func (e *Estimator) CompletionEarlyBreak(n int) (float64, error) {
	p, err := e.propagate(context.Background(), n)
	if err != nil {
		return 0, err
	}
	return e.completionOf(p, n, true), nil
}

// Distribution 回傳 p_n 的拷貝（長度 d+1）。
func (e *Estimator) Distribution(n int) ([]float64, error) {
	p, err := e.propagate(context.Background(), n)
	if err != nil {
		return nil, err
	}
	out := make([]float64, p.Len())
	for j := range out {
		out[j] = p.AtVec(j)
	}
	return out, nil
}

// Curve 依輸入順序逐一計算每個抽取次數的完成機率。
// 任何一個抽取次數不合法時，直接回傳錯誤且不計算任何結果。
func (e *Estimator) Curve(draws []int) ([]Point, error) {
	if err := ValidDraws(draws); err != nil {
		return nil, err
	}
	out := make([]Point, len(draws))
	for i, n := range draws {
		prob, err := e.Completion(n)
		if err != nil {
			return nil, err
		}
		out[i] = Point{Draws: n, Prob: prob}
	}
	return out, nil
}

// ValidDraws 檢查抽取次數皆 >= 0。
func ValidDraws(draws []int) error {
	for i, n := range draws {
		if n < 0 {
			return errs.InvalidInput("draws[%d] must >= 0, got %d", i, n)
		}
	}
	return nil
}

func (e *Estimator) propagate(ctx context.Context, n int) (*mat.VecDense, error) {
	if n < 0 {
		return nil, errs.InvalidInput("draw count must >= 0, got %d", n)
	}
	return e.ch.PropagateContext(ctx, n)
}

// completionOf 把 p_n 化約成完成機率。
func (e *Estimator) completionOf(p *mat.VecDense, n int, earlyBreak bool) float64 {
	failure := 0.0
	for j := 0; j <= e.d; j++ {
		if EffectiveCount(j, n, e.k0, e.dup0, e.c) < e.d {
			failure += p.AtVec(j)
		} else if earlyBreak {
			break
		}
	}
	return clamp01(1.0 - failure)
}

// 浮點捨入可能讓結果超出 [0,1] 幾個 ulp
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
