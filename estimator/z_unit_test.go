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

package estimator_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/zintix-labs/collectlab/errs"
	"github.com/zintix-labs/collectlab/estimator"
	"github.com/zintix-labs/collectlab/setting"
)

func mustNew(t *testing.T, d, c, k0, dup0 int) *estimator.Estimator {
	t.Helper()
	e, err := estimator.NewWithParams(d, c, k0, dup0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return e
}

func mustCompletion(t *testing.T, e *estimator.Estimator, n int) float64 {
	t.Helper()
	p, err := e.Completion(n)
	if err != nil {
		t.Fatalf("n=%d: unexpected error: %v", n, err)
	}
	return p
}

func TestEffectiveCount(t *testing.T) {
	cases := []struct {
		j, n, k0, dup0, c int
		want              int
	}{
		{j: 3, n: 9, c: 0, want: 3},
		{j: 4, n: 12, c: 4, want: 6},
		{j: 10, n: 0, k0: 10, dup0: 6, c: 4, want: 11},
		// 不可達狀態：分子為負，floor 取向負無窮
		{j: 5, n: 0, c: 4, want: 3},
		{j: 4, n: 0, c: 4, want: 3},
	}
	for _, tc := range cases {
		if got := estimator.EffectiveCount(tc.j, tc.n, tc.k0, tc.dup0, tc.c); got != tc.want {
			t.Fatalf("EffectiveCount(%+v)=%d want %d", tc, got, tc.want)
		}
	}
}

func TestSmallCases(t *testing.T) {
	cases := []struct {
		name          string
		d, c, k0, dup int
		n             int
		want          float64
	}{
		{"nothing drawn", 16, 4, 0, 0, 0, 0},
		{"already complete", 5, 0, 5, 0, 0, 1},
		{"duplicates cover the gap", 4, 1, 0, 4, 0, 1},
		{"single item one draw", 1, 0, 0, 0, 1, 1},
		{"two items two draws", 2, 0, 0, 0, 2, 0.5},
		{"two items three draws", 2, 0, 0, 0, 3, 0.75},
		{"one for one exchange", 2, 1, 0, 0, 1, 0},
		{"one for one exchange two draws", 2, 1, 0, 0, 2, 1},
		{"resume before drawing", 16, 4, 10, 6, 0, 0},
	}
	for _, tc := range cases {
		e := mustNew(t, tc.d, tc.c, tc.k0, tc.dup)
		if got := mustCompletion(t, e, tc.n); math.Abs(got-tc.want) > 1e-15 {
			t.Fatalf("%s: got %v want %v", tc.name, got, tc.want)
		}
	}
}

func TestSixteenFourFactorial(t *testing.T) {
	e := mustNew(t, 16, 4, 0, 0)
	// n=16 只有抽滿 16 種才能完成：16!/16^16
	want := 1.0
	for i := 0; i < 16; i++ {
		want *= float64(16-i) / 16
	}
	got := mustCompletion(t, e, 16)
	if math.Abs(got-want)/want > 1e-6 {
		t.Fatalf("got %v want %v", got, want)
	}
	if got := mustCompletion(t, e, 64); got != 1 {
		t.Fatalf("64 draws always exchange into a full set, got %v", got)
	}
}

func TestBoundedAndMonotone(t *testing.T) {
	cases := [][4]int{{16, 4, 0, 0}, {16, 0, 0, 0}, {16, 4, 10, 6}, {6, 3, 0, 0}, {9, 2, 3, 1}}
	for _, cs := range cases {
		e := mustNew(t, cs[0], cs[1], cs[2], cs[3])
		prev := -1.0
		for n := 0; n <= 120; n++ {
			p := mustCompletion(t, e, n)
			if p < 0 || p > 1 {
				t.Fatalf("%v n=%d: out of range %v", cs, n, p)
			}
			if p < prev-1e-12 {
				t.Fatalf("%v n=%d: decreased from %v to %v", cs, n, prev, p)
			}
			prev = p
		}
	}
}

func TestMatchesClassicWithoutExchange(t *testing.T) {
	for _, k0 := range []int{0, 5} {
		e := mustNew(t, 16, 0, k0, 3)
		for n := 0; n <= 150; n += 3 {
			got := mustCompletion(t, e, n)
			want, err := estimator.Classic(16, k0, n)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if math.Abs(got-want) > 1e-8 {
				t.Fatalf("k0=%d n=%d: chain %v classic %v", k0, n, got, want)
			}
		}
	}
}

func TestDeterministic(t *testing.T) {
	a := mustNew(t, 32, 5, 3, 2)
	b := mustNew(t, 32, 5, 3, 2)
	for _, n := range []int{0, 17, 40, 91, 159} {
		if x, y := mustCompletion(t, a, n), mustCompletion(t, b, n); math.Float64bits(x) != math.Float64bits(y) {
			t.Fatalf("n=%d: %v != %v", n, x, y)
		}
	}
}

func TestEarlyBreakAgrees(t *testing.T) {
	cases := [][4]int{{16, 4, 0, 0}, {16, 4, 10, 6}, {6, 3, 0, 0}, {12, 1, 0, 0}, {20, 7, 4, 9}, {16, 0, 0, 0}}
	draws := make([]int, 0, 200)
	for n := 0; n < 200; n++ {
		draws = append(draws, n)
	}
	for _, cs := range cases {
		e := mustNew(t, cs[0], cs[1], cs[2], cs[3])
		div, err := e.Divergence(draws)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(div) != 0 {
			t.Fatalf("%v: full sum and early break differ at %v", cs, div)
		}
		full, _ := e.Completion(37)
		early, _ := e.CompletionEarlyBreak(37)
		if full != early {
			t.Fatalf("%v: %v != %v", cs, full, early)
		}
	}
}

func TestCurveKeepsOrder(t *testing.T) {
	e := mustNew(t, 6, 3, 0, 0)
	pts, err := e.Curve([]int{10, 0, 5, 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pts) != 4 || pts[0].Draws != 10 || pts[1].Draws != 0 || pts[2].Draws != 5 || pts[3].Draws != 10 {
		t.Fatalf("unexpected order: %+v", pts)
	}
	if pts[0].Prob != pts[3].Prob {
		t.Fatalf("duplicate draw counts must give identical results")
	}
}

func TestCurveRejectsNegative(t *testing.T) {
	e := mustNew(t, 6, 3, 0, 0)
	if _, err := e.Curve([]int{1, 2, -1}); !errors.Is(err, errs.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if _, err := e.Completion(-1); !errors.Is(err, errs.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if _, err := estimator.Classic(6, 0, -1); !errors.Is(err, errs.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestNewRejectsConfiguration(t *testing.T) {
	if _, err := estimator.NewWithParams(4, -1, 0, 0); !errors.Is(err, errs.ErrInvalidConfiguration) {
		t.Fatalf("expected invalid configuration, got %v", err)
	}
	if _, err := estimator.New(nil); !errors.Is(err, errs.ErrInvalidConfiguration) {
		t.Fatalf("expected invalid configuration, got %v", err)
	}
	e, err := estimator.New(&setting.CollectSetting{Items: 5, ExchangeRate: 2})
	if err != nil || e.Items() != 5 {
		t.Fatalf("unexpected estimator: %v %v", e, err)
	}
}

func TestDistribution(t *testing.T) {
	e := mustNew(t, 10, 2, 1, 0)
	dist, err := e.Distribution(12)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dist) != 11 {
		t.Fatalf("unexpected length %d", len(dist))
	}
	sum := 0.0
	for _, v := range dist {
		sum += v
	}
	if math.Abs(sum-1) > 1e-12 {
		t.Fatalf("distribution sums to %v", sum)
	}
	if dist[0] != 0 {
		t.Fatalf("cannot lose items already held")
	}
}

func TestExpectedDraws(t *testing.T) {
	e := mustNew(t, 16, 0, 0, 0)
	got, _, err := e.ExpectedDraws(context.Background(), 1e-12, 1_000_000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	h := 0.0
	for i := 1; i <= 16; i++ {
		h += 1 / float64(i)
	}
	if want := 16 * h; math.Abs(got-want) > 1e-6 {
		t.Fatalf("got %v want %v", got, want)
	}

	e = mustNew(t, 2, 1, 0, 0)
	got, n, err := e.ExpectedDraws(context.Background(), 1e-12, 100)
	if err != nil || got != 2 || n != 2 {
		t.Fatalf("unexpected expected draws: %v %d %v", got, n, err)
	}

	e = mustNew(t, 64, 0, 0, 0)
	if _, _, err := e.ExpectedDraws(context.Background(), 1e-12, 10); err == nil {
		t.Fatalf("expected not converged warning")
	}
	if _, _, err := e.ExpectedDraws(context.Background(), 0, 10); !errors.Is(err, errs.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestClassicEdges(t *testing.T) {
	if p, _ := estimator.Classic(4, 4, 0); p != 1 {
		t.Fatalf("complete start must be 1, got %v", p)
	}
	if p, _ := estimator.Classic(4, 0, 3); p > 1e-12 {
		t.Fatalf("fewer draws than items must be 0, got %v", p)
	}
	if _, err := estimator.Classic(4, 5, 1); !errors.Is(err, errs.ErrInvalidConfiguration) {
		t.Fatalf("expected invalid configuration, got %v", err)
	}
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	e := mustNew(t, 64, 0, 0, 0)
	if _, err := e.CompletionContext(ctx, 1_000_000); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context canceled, got %v", err)
	}
	if _, _, err := e.ExpectedDraws(ctx, 1e-12, 1_000_000); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context canceled, got %v", err)
	}
	// n = 0 不需要任何矩陣乘法
	if p, err := e.CompletionContext(ctx, 0); err != nil || p != 0 {
		t.Fatalf("unexpected result: %v %v", p, err)
	}
}
