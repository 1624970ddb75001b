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

package v1

import (
	"encoding/json"
	"net/http"

	"github.com/zintix-labs/collectlab"
	"github.com/zintix-labs/collectlab/dto"
	"github.com/zintix-labs/collectlab/errs"
	"github.com/zintix-labs/collectlab/server/httperr"
	"github.com/zintix-labs/collectlab/server/svrcfg"
	"github.com/zintix-labs/collectlab/setting"
)

type CurveHandler struct {
	cfg *svrcfg.SvrCfg
}

func NewCurveHandler(sCfg *svrcfg.SvrCfg) *CurveHandler {
	return &CurveHandler{cfg: sCfg}
}

// Presets GET /v1/presets：列出內建 preset。
func (h *CurveHandler) Presets(w http.ResponseWriter, r *http.Request) {
	sum, err := h.cfg.Lab.Summary()
	if err != nil {
		httperr.Log(h.cfg.Log, "presets err", err)
		httperr.Errs(w, err)
		return
	}
	writeJSON(w, sum)
}

// Curve GET/POST /v1/curve：計算整條完成機率曲線。
func (h *CurveHandler) Curve(w http.ResponseWriter, r *http.Request) {
	q, err := dto.DecodeCurveRequest(r)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	cs := q.Setting
	if q.Preset != "" {
		if cs, err = h.cfg.Lab.Setting(q.Preset); err != nil {
			httperr.Errs(w, err)
			return
		}
	}
	if err := h.guard(cs); err != nil {
		httperr.Errs(w, err)
		return
	}
	ev, err := collectlab.NewEvaluator(cs, h.cfg.Log)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	rep, used, err := ev.Report(r.Context(), h.cfg.Workers, false)
	if err != nil {
		httperr.Log(h.cfg.Log, "curve err", err)
		httperr.Errs(w, err)
		return
	}
	writeJSON(w, dto.NewCurveResponse(rep, used.Milliseconds()))
}

// Completion POST /v1/completion：單一抽取次數的完成機率與狀態分布。
func (h *CurveHandler) Completion(w http.ResponseWriter, r *http.Request) {
	req, err := dto.DecodeCompletionRequest(r)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	// 只計算一個點：抽取次數以 draw 為準
	cs := req.Setting.Clone()
	cs.Draws = []int{*req.Draw}
	cs.DrawRange = nil
	if err := h.guard(cs); err != nil {
		httperr.Errs(w, err)
		return
	}
	ev, err := collectlab.NewEvaluator(cs, h.cfg.Log)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	prob, err := ev.Completion(*req.Draw)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	dist, err := ev.Estimator().Distribution(*req.Draw)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	writeJSON(w, dto.CompletionResponse{Draws: *req.Draw, Prob: prob, StateDist: dist})
}

// guard 為資源保護：領域檢查交給 Evaluator，這裡只擋過大的請求。
func (h *CurveHandler) guard(cs *setting.CollectSetting) error {
	if cs == nil {
		return errs.InvalidConfig("setting is required")
	}
	if cs.Items > h.cfg.MaxItems {
		return errs.Warnf("items must <= %d", h.cfg.MaxItems)
	}
	// 展開前先估算數量，避免過大的區間先被配置
	dr := cs.DrawRange
	if len(cs.Draws) == 0 && dr == nil {
		dr = setting.DefaultRange(cs.Items, cs.ExchangeRate)
	}
	if dr != nil {
		if dr.To > h.cfg.MaxDraw {
			return errs.Warnf("draw count must <= %d, got %d", h.cfg.MaxDraw, dr.To)
		}
		n, err := dr.Count()
		if err != nil {
			return err
		}
		if n > h.cfg.MaxDrawCounts {
			return errs.Warnf("at most %d draw counts per request", h.cfg.MaxDrawCounts)
		}
	}
	draws, err := cs.DrawCounts()
	if err != nil {
		return err
	}
	if len(draws) > h.cfg.MaxDrawCounts {
		return errs.Warnf("at most %d draw counts per request", h.cfg.MaxDrawCounts)
	}
	for _, n := range draws {
		if n > h.cfg.MaxDraw {
			return errs.Warnf("draw count must <= %d, got %d", h.cfg.MaxDraw, n)
		}
	}
	return nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		httperr.Errs(w, errs.Wrap(err, "encode response failed"))
	}
}
