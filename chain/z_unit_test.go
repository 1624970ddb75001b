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

package chain_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/zintix-labs/collectlab/chain"
	"github.com/zintix-labs/collectlab/errs"
	"gonum.org/v1/gonum/mat"
)

func TestTransitionEntries(t *testing.T) {
	const d = 4
	m, err := chain.Transition(d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r, c := m.Dims()
	if r != d+1 || c != d+1 {
		t.Fatalf("unexpected dims %dx%d", r, c)
	}
	for i := 0; i <= d; i++ {
		for j := 0; j <= d; j++ {
			want := 0.0
			switch {
			case i == j:
				want = float64(j) / d
			case i == j+1:
				want = float64(d-j) / d
			}
			if got := m.At(i, j); got != want {
				t.Fatalf("M[%d][%d]=%v want %v", i, j, got, want)
			}
		}
	}
	if m.At(d, d) != 1 {
		t.Fatalf("full collection must be absorbing")
	}
	if err := chain.Stochastic(m, 1e-12); err != nil {
		t.Fatalf("transition must be column-stochastic: %v", err)
	}
}

func TestTransitionInvalid(t *testing.T) {
	if _, err := chain.Transition(0); !errors.Is(err, errs.ErrInvalidConfiguration) {
		t.Fatalf("expected invalid configuration, got %v", err)
	}
	if _, err := chain.Initial(3, 4); !errors.Is(err, errs.ErrInvalidConfiguration) {
		t.Fatalf("expected invalid configuration, got %v", err)
	}
	if _, err := chain.Build(3, -1); err == nil {
		t.Fatalf("expected error for negative start")
	}
}

func TestInitial(t *testing.T) {
	p0, err := chain.Initial(5, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < p0.Len(); i++ {
		want := 0.0
		if i == 2 {
			want = 1
		}
		if p0.AtVec(i) != want {
			t.Fatalf("p0[%d]=%v want %v", i, p0.AtVec(i), want)
		}
	}
}

func TestPropagateZeroIsCopy(t *testing.T) {
	ch, _ := chain.Build(6, 3)
	p, err := ch.Propagate(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !mat.Equal(p, ch.P0) {
		t.Fatalf("p_0 must equal the initial vector")
	}
	p.SetVec(3, 0)
	if ch.P0.AtVec(3) != 1 {
		t.Fatalf("propagate must not alias the initial vector")
	}
}

func TestPropagateMatchesIteration(t *testing.T) {
	ch, _ := chain.Build(16, 0)
	for _, n := range []int{1, 2, 7, 16, 33, 64} {
		pw, err := ch.Propagate(n)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		it, err := chain.PropagateIter(ch.M, ch.P0, n)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !mat.EqualApprox(pw, it, 1e-12) {
			t.Fatalf("n=%d: pow and iteration disagree", n)
		}
		if s := mat.Sum(pw); math.Abs(s-1) > 1e-12 {
			t.Fatalf("n=%d: distribution sums to %v", n, s)
		}
	}
}

func TestPropagateUnreachableStates(t *testing.T) {
	// 抽 3 次最多持有 3 種
	ch, _ := chain.Build(8, 0)
	p, _ := ch.Propagate(3)
	for j := 4; j <= 8; j++ {
		if p.AtVec(j) != 0 {
			t.Fatalf("state %d must be unreachable, got %v", j, p.AtVec(j))
		}
	}
}

func TestStepMatchesPropagate(t *testing.T) {
	ch, _ := chain.Build(5, 1)
	src := mat.VecDenseCopyOf(ch.P0)
	dst := mat.NewVecDense(6, nil)
	ch.Step(dst, src)
	one, _ := ch.Propagate(1)
	if !mat.EqualApprox(dst, one, 1e-15) {
		t.Fatalf("single step must equal M·p0")
	}
}

func TestPropagateErrors(t *testing.T) {
	ch, _ := chain.Build(4, 0)
	if _, err := ch.Propagate(-1); !errors.Is(err, errs.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if _, err := chain.PropagateIter(ch.M, ch.P0, -3); !errors.Is(err, errs.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	short := mat.NewVecDense(3, nil)
	if _, err := chain.Propagate(ch.M, short, 1); !errors.Is(err, errs.ErrInvalidConfiguration) {
		t.Fatalf("expected invalid configuration, got %v", err)
	}
	rect := mat.NewDense(2, 3, nil)
	if _, err := chain.Propagate(rect, short, 1); !errors.Is(err, errs.ErrInvalidConfiguration) {
		t.Fatalf("expected invalid configuration, got %v", err)
	}
}

func TestStochasticRejects(t *testing.T) {
	m := mat.NewDense(2, 2, []float64{0.5, 0, 0.4, 1})
	if err := chain.Stochastic(m, 1e-12); err == nil {
		t.Fatalf("expected column sum error")
	}
	neg := mat.NewDense(2, 2, []float64{1.5, 0, -0.5, 1})
	if err := chain.Stochastic(neg, 1e-12); err == nil {
		t.Fatalf("expected negative entry error")
	}
}

func TestPropagateContextCanceled(t *testing.T) {
	ch, _ := chain.Build(32, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := ch.PropagateContext(ctx, 1<<20); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context canceled, got %v", err)
	}
	// 單一步不需要平方
	p, err := ch.PropagateContext(ctx, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	one, _ := chain.PropagateIter(ch.M, ch.P0, 1)
	if !mat.EqualApprox(p, one, 1e-15) {
		t.Fatalf("single step mismatch")
	}
}

func TestPropagateLargeDrawCount(t *testing.T) {
	// 非 2 的冪次的 n 需要把多個平方乘到向量上
	ch, _ := chain.Build(6, 2)
	for _, n := range []int{3, 5, 6, 11, 100, 1023} {
		pw, err := ch.Propagate(n)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		it, _ := chain.PropagateIter(ch.M, ch.P0, n)
		if !mat.EqualApprox(pw, it, 1e-12) {
			t.Fatalf("n=%d: squaring and iteration disagree", n)
		}
	}
	p, _ := ch.Propagate(10_000_000)
	if math.Abs(p.AtVec(6)-1) > 1e-12 {
		t.Fatalf("long runs must end in the absorbing state, got %v", p.AtVec(6))
	}
}
