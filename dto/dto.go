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

package dto

import (
	"github.com/zintix-labs/collectlab/estimator"
	"github.com/zintix-labs/collectlab/setting"
	"github.com/zintix-labs/collectlab/stats"
)

// CurveResponse 為 /v1/curve 的回應：依輸入順序的 (draws, prob) 列表與衍生統計。
type CurveResponse struct {
	Title    string                  `json:"title"`
	Setting  *setting.CollectSetting `json:"setting"`
	Points   []estimator.Point       `json:"points"`
	Bounds   stats.Bounds            `json:"bounds"`
	Median   *int                    `json:"median,omitempty"`
	Expected *float64                `json:"expected,omitempty"`
	UsedMs   int64                   `json:"used_ms"`
}

func NewCurveResponse(r *stats.Report, usedMs int64) CurveResponse {
	return CurveResponse{
		Title:    r.Title,
		Setting:  r.Setting,
		Points:   r.Points,
		Bounds:   r.Bounds,
		Median:   r.Median,
		Expected: r.Expected,
		UsedMs:   usedMs,
	}
}

// CompletionRequest 為 /v1/completion 的請求：單一抽取次數的完成機率。
type CompletionRequest struct {
	Setting *setting.CollectSetting `json:"setting"`
	Draw    *int                    `json:"draw"`
}

type CompletionResponse struct {
	Draws     int       `json:"draws"`
	Prob      float64   `json:"prob"`
	StateDist []float64 `json:"state_dist,omitempty"` // p_n，依原始不重複數量 0..d
}
