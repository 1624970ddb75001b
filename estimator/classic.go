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

package estimator

import (
	"context"
	"math"

	"github.com/zintix-labs/collectlab/errs"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/combin"
)

// Classic 以排容原理計算不可兌換（c == 0）時的完成機率：
//
//	P = Σ_{i=0}^{m} (-1)^i · C(m,i) · (1 - i/d)^n,   m = d - k0
//
// m 較大時交錯級數會有抵銷誤差，適合 d 在數十以內的交叉驗證。
func Classic(d, k0, n int) (float64, error) {
	if d < 1 {
		return 0, errs.InvalidConfig("items must >= 1, got %d", d)
	}
	if k0 < 0 || k0 > d {
		return 0, errs.InvalidConfig("start_unique must be in [0,%d], got %d", d, k0)
	}
	if n < 0 {
		return 0, errs.InvalidInput("draw count must >= 0, got %d", n)
	}
	m := d - k0
	sum := 0.0
	for i := 0; i <= m; i++ {
		term := combin.GeneralizedBinomial(float64(m), float64(i)) * math.Pow(1-float64(i)/float64(d), float64(n))
		if i%2 == 1 {
			sum -= term
		} else {
			sum += term
		}
	}
	return clamp01(sum), nil
}

const checkEvery = 256

// ExpectedDraws 以 E[N] = Σ_{n>=0} (1 - p(n)) 估計完成收集所需的期望抽取次數。
//
// 從 p_0 逐步推進，直到 1 - p(n) < tol 為止；回傳期望值與最後計算到的 n。
// 超過 maxDraws 仍未收斂時回傳 Warn 錯誤；每 checkEvery 步檢查一次 ctx。
func (e *Estimator) ExpectedDraws(ctx context.Context, tol float64, maxDraws int) (float64, int, error) {
	if tol <= 0 || tol >= 1 {
		return 0, 0, errs.InvalidInput("tol must be in (0,1), got %g", tol)
	}
	if maxDraws < 1 {
		return 0, 0, errs.InvalidInput("max draws must >= 1, got %d", maxDraws)
	}
	size := e.d + 1
	cur := mat.NewVecDense(size, nil)
	cur.CopyVec(e.ch.P0)
	next := mat.NewVecDense(size, nil)

	sum := 0.0
	for n := 0; n <= maxDraws; n++ {
		tail := 1 - e.completionOf(cur, n, false)
		if tail < tol {
			return sum, n, nil
		}
		sum += tail
		if n%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return 0, n, err
			}
		}
		e.ch.Step(next, cur)
		cur, next = next, cur
	}
	return sum, maxDraws, errs.Warnf("expected draws not converged within %d draws (tol=%g)", maxDraws, tol)
}

// Divergence 列出「完整加總」與「提早中斷」兩種失敗質量加總方式結果不同的抽取次數。
//
// c >= 1 時 EffectiveCount(j+1) >= EffectiveCount(j)（floor 項每次最多減 1，j 加 1），
// 所以正常情況下回傳空列表；不為空代表單調性假設被打破。
func (e *Estimator) Divergence(draws []int) ([]int, error) {
	if err := ValidDraws(draws); err != nil {
		return nil, err
	}
	var out []int
	for _, n := range draws {
		p, err := e.propagate(context.Background(), n)
		if err != nil {
			return nil, err
		}
		if e.completionOf(p, n, false) != e.completionOf(p, n, true) {
			out = append(out, n)
		}
	}
	return out, nil
}
