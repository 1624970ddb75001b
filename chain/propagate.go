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

package chain

import (
	"context"
	"math"

	"github.com/zintix-labs/collectlab/errs"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Propagate 計算 p_n = m^n · p0，等同 PropagateContext(context.Background(), ...)。
func Propagate(m mat.Matrix, p0 mat.Vector, n int) (*mat.VecDense, error) {
	return PropagateContext(context.Background(), m, p0, n)
}

// PropagateContext 以二進位冪（平方乘冪）計算 p_n = m^n · p0。
//
// 只對矩陣做平方；n 的某個位元為 1 時把目前的平方乘到向量上，所以最多 log2(n) 次矩陣乘法。
// 每次矩陣乘法之前檢查 ctx，取消或逾時時回傳 ctx 的錯誤。
// n == 0 時回傳 p0 的拷貝。純函數：不修改 m 與 p0，也不做任何快取。
func PropagateContext(ctx context.Context, m mat.Matrix, p0 mat.Vector, n int) (*mat.VecDense, error) {
	size, err := checkShape(m, p0)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, errs.InvalidInput("draw count must >= 0, got %d", n)
	}
	out := mat.NewVecDense(size, nil)
	out.CopyVec(p0)
	if n == 0 {
		return out, nil
	}
	tmp := mat.NewVecDense(size, nil)
	sq := mat.DenseCopyOf(m)
	next := mat.NewDense(size, size, nil)
	for {
		if n&1 == 1 {
			tmp.MulVec(sq, out)
			out, tmp = tmp, out
		}
		n >>= 1
		if n == 0 {
			return out, nil
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		next.Mul(sq, sq)
		sq, next = next, sq
	}
}

// PropagateIter 與 Propagate 相同，但以 n 次矩陣-向量乘法逐步推進。
// 成本 O(n·d²)，主要用於交叉驗證與需要逐步結果的情境。
func PropagateIter(m mat.Matrix, p0 mat.Vector, n int) (*mat.VecDense, error) {
	size, err := checkShape(m, p0)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, errs.InvalidInput("draw count must >= 0, got %d", n)
	}
	cur := mat.NewVecDense(size, nil)
	cur.CopyVec(p0)
	next := mat.NewVecDense(size, nil)
	for i := 0; i < n; i++ {
		next.MulVec(m, cur)
		cur, next = next, cur
	}
	return cur, nil
}

// Stochastic 檢查 m 是否為 column-stochastic：元素非負且每欄總和在 tol 內等於 1。
func Stochastic(m mat.Matrix, tol float64) error {
	r, c := m.Dims()
	if r != c {
		return errs.InvalidConfig("transition matrix must be square, got %dx%d", r, c)
	}
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, m)
		if floats.Min(col) < 0 {
			return errs.InvalidConfig("column %d has negative entry", j)
		}
		if s := floats.Sum(col); math.Abs(s-1) > tol {
			return errs.InvalidConfig("column %d sums to %g", j, s)
		}
	}
	return nil
}

func checkShape(m mat.Matrix, p0 mat.Vector) (int, error) {
	if m == nil || p0 == nil {
		return 0, errs.InvalidConfig("nil transition matrix or initial vector")
	}
	r, c := m.Dims()
	if r != c {
		return 0, errs.InvalidConfig("transition matrix must be square, got %dx%d", r, c)
	}
	if p0.Len() != r {
		return 0, errs.InvalidConfig("initial vector length %d != matrix size %d", p0.Len(), r)
	}
	return r, nil
}
