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

// Package chain 建立收集過程的 Markov chain（Chain Builder）。
//
// 狀態 i（0..d）代表「目前持有 i 種不重複物品」。每抽一次：
//   - 以 i/d 的機率抽到已持有物品（重複品），停留在 i。
//   - 以 (d-i)/d 的機率抽到新物品，前進到 i+1。
//
// 轉移矩陣 M 以「欄」為出發狀態（column-stochastic），所以 p_n = M^n · p_0。
// 狀態 d 的對角線為 d/d = 1，是吸收態（收集完成後只會再抽到重複品）。
package chain

import (
	"context"

	"github.com/zintix-labs/collectlab/errs"
	"gonum.org/v1/gonum/mat"
)

// Chain 持有一次計算所需的轉移矩陣與初始分布。
// 建立後唯讀；Propagate 等操作都不會修改它。
type Chain struct {
	D  int
	M  *mat.Dense
	P0 *mat.VecDense
}

// Build 建立 d 種物品、起始持有 start 種的 Chain。
func Build(d int, start int) (*Chain, error) {
	m, err := Transition(d)
	if err != nil {
		return nil, err
	}
	p0, err := Initial(d, start)
	if err != nil {
		return nil, err
	}
	return &Chain{D: d, M: m, P0: p0}, nil
}

// Transition 建立 (d+1)×(d+1) 轉移矩陣：
//
//	M[i][i]   = i/d       (i = 0..d)
//	M[i+1][i] = (d-i)/d   (i = 0..d-1)
//
// 其他元素皆為 0。d < 1 回傳 InvalidConfiguration。
func Transition(d int) (*mat.Dense, error) {
	if d < 1 {
		return nil, errs.InvalidConfig("items must >= 1, got %d", d)
	}
	fd := float64(d)
	m := mat.NewDense(d+1, d+1, nil)
	for i := 0; i <= d; i++ {
		m.Set(i, i, float64(i)/fd)
	}
	for i := 0; i < d; i++ {
		m.Set(i+1, i, float64(d-i)/fd)
	}
	return m, nil
}

// Initial 建立長度 d+1、所有機率集中在 start 的初始分布。
func Initial(d int, start int) (*mat.VecDense, error) {
	if d < 1 {
		return nil, errs.InvalidConfig("items must >= 1, got %d", d)
	}
	if start < 0 || start > d {
		return nil, errs.InvalidConfig("start index must be in [0,%d], got %d", d, start)
	}
	p0 := mat.NewVecDense(d+1, nil)
	p0.SetVec(start, 1.0)
	return p0, nil
}

// Propagate 回傳 c.M^n · c.P0。
func (c *Chain) Propagate(n int) (*mat.VecDense, error) {
	return PropagateContext(context.Background(), c.M, c.P0, n)
}

// PropagateContext 與 Propagate 相同，但在矩陣乘法之間檢查 ctx。
func (c *Chain) PropagateContext(ctx context.Context, n int) (*mat.VecDense, error) {
	return PropagateContext(ctx, c.M, c.P0, n)
}

// Step 做一次轉移：dst = M · src。dst 與 src 不可為同一個向量。
func (c *Chain) Step(dst, src *mat.VecDense) {
	dst.MulVec(c.M, src)
}
