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

package collectlab

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/zintix-labs/collectlab/errs"
	"github.com/zintix-labs/collectlab/estimator"
	"github.com/zintix-labs/collectlab/setting"
	"github.com/zintix-labs/collectlab/stats"
	"golang.org/x/sync/errgroup"
)

const (
	expectedTol      = 1e-12
	expectedMaxDraws = 1_000_000
	// 超過此物品數不計算期望抽取次數（逐步推進成本 O(steps·d²)）
	expectedMaxItems = 256
)

// Evaluator 對單一 CollectSetting 計算完成機率曲線。
//
// 建立時就完成所有檢查（設定 + 抽取次數），之後的計算不會再因輸入而失敗。
// Estimator 建立後唯讀，每個抽取次數彼此獨立，可以併發計算。
type Evaluator struct {
	Setting *setting.CollectSetting
	draws   []int
	est     *estimator.Estimator
	log     *slog.Logger
}

func NewEvaluator(cs *setting.CollectSetting, log *slog.Logger) (*Evaluator, error) {
	if cs == nil {
		return nil, errs.InvalidConfig("nil collect setting")
	}
	cs = cs.Clone()
	if err := cs.Valid(); err != nil {
		return nil, err
	}
	draws, err := cs.DrawCounts()
	if err != nil {
		return nil, err
	}
	est, err := estimator.New(cs)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Evaluator{Setting: cs, draws: draws, est: est, log: log}, nil
}

// Draws 回傳要計算的抽取次數（拷貝）。
func (ev *Evaluator) Draws() []int {
	return append([]int(nil), ev.draws...)
}

func (ev *Evaluator) Estimator() *estimator.Estimator {
	return ev.est
}

// Completion 計算單一抽取次數的完成機率。
func (ev *Evaluator) Completion(n int) (float64, error) {
	return ev.est.Completion(n)
}

// Curve 以 workers 個 goroutine 併發計算整條曲線，結果順序與輸入的抽取次數一致。
// 回傳曲線與用時；ctx 取消時回傳 ctx 的錯誤且不回傳部分結果。
func (ev *Evaluator) Curve(ctx context.Context, workers int, showpb bool) ([]estimator.Point, time.Duration, error) {
	if workers < 1 {
		return nil, 0, errs.NewWarn("workers must > 0")
	}
	out := make([]estimator.Point, len(ev.draws))

	bar := pb.StartNew(len(ev.draws))
	if !showpb {
		bar.SetWriter(io.Discard)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, n := range ev.draws {
		i, n := i, n
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			prob, err := ev.est.CompletionContext(gctx, n)
			if err != nil {
				return err
			}
			out[i] = estimator.Point{Draws: n, Prob: prob}
			bar.Increment()
			return nil
		})
	}
	err := g.Wait()
	used := time.Since(bar.StartTime())
	bar.Finish()
	if err != nil {
		return nil, used, errs.Wrap(err, "evaluate curve err")
	}

	ev.log.Debug("curve evaluated",
		slog.String("setting", ev.Setting.Title()),
		slog.Int("draw_counts", len(out)),
		slog.Int("workers", workers),
		slog.Duration("used", used),
	)
	return out, used, nil
}

// Report 計算曲線並組成報表（顯示區間、中位數；d 不大時附上期望抽取次數）。
func (ev *Evaluator) Report(ctx context.Context, workers int, showpb bool) (*stats.Report, time.Duration, error) {
	points, used, err := ev.Curve(ctx, workers, showpb)
	if err != nil {
		return nil, used, err
	}
	rep := stats.NewReport(ev.Setting, points)
	if ev.Setting.Items <= expectedMaxItems {
		e, _, err := ev.est.ExpectedDraws(ctx, expectedTol, expectedMaxDraws)
		switch {
		case ctx.Err() != nil:
			return nil, used, errs.Wrap(ctx.Err(), "evaluate expected draws err")
		case err != nil:
			ev.log.Warn("expected draws skipped", slog.Any("err", err))
		default:
			rep.SetExpected(e)
		}
	}
	if v := stats.Violations(points, 1e-12); len(v) > 0 {
		ev.log.Warn("completion curve not monotone", slog.Any("draws", v))
	}
	return rep, used, nil
}
