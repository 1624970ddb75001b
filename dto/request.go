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
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/zintix-labs/collectlab/errs"
	"github.com/zintix-labs/collectlab/setting"
)

const maxBodyBytes = 1 << 20

// CurveQuery 是 GET /v1/curve 的解碼結果：Preset 與 Setting 二擇一。
type CurveQuery struct {
	Preset  string
	Setting *setting.CollectSetting
}

// DecodeCurveRequest 會把 HTTP 請求解碼成 CurveQuery。
//
// 支援：
//   - GET：?preset=<name>，或以 query 直接描述設定：items/exchange_rate/start_unique/start_duplicates/from/to/step。
//   - POST：JSON body 即為 CollectSetting（未知欄位拒絕，body 上限 1MiB）。
//
// 這裡只負責解碼與型別轉換，不做設定合法性檢查（交給 Evaluator）。
func DecodeCurveRequest(r *http.Request) (*CurveQuery, error) {
	if r == nil {
		return nil, errs.NewWarn("nil request")
	}
	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		if name := q.Get("preset"); name != "" {
			return &CurveQuery{Preset: name}, nil
		}
		cs := &setting.CollectSetting{}
		var err error
		if cs.Items, err = queryInt(q.Get("items"), "items", true); err != nil {
			return nil, err
		}
		if cs.ExchangeRate, err = queryInt(q.Get("exchange_rate"), "exchange_rate", false); err != nil {
			return nil, err
		}
		if cs.StartUnique, err = queryInt(q.Get("start_unique"), "start_unique", false); err != nil {
			return nil, err
		}
		if cs.StartDuplicates, err = queryInt(q.Get("start_duplicates"), "start_duplicates", false); err != nil {
			return nil, err
		}
		if q.Has("from") || q.Has("to") {
			dr := &setting.DrawRange{}
			if dr.From, err = queryInt(q.Get("from"), "from", true); err != nil {
				return nil, err
			}
			if dr.To, err = queryInt(q.Get("to"), "to", true); err != nil {
				return nil, err
			}
			if dr.Step, err = queryInt(q.Get("step"), "step", false); err != nil {
				return nil, err
			}
			cs.DrawRange = dr
		}
		return &CurveQuery{Setting: cs}, nil
	case http.MethodPost:
		cs := &setting.CollectSetting{}
		if err := decodeJSON(r, cs); err != nil {
			return nil, err
		}
		return &CurveQuery{Setting: cs}, nil
	default:
		return nil, errs.NewWarn("method not allowed")
	}
}

// DecodeCompletionRequest 解碼 POST /v1/completion。
func DecodeCompletionRequest(r *http.Request) (*CompletionRequest, error) {
	if r == nil {
		return nil, errs.NewWarn("nil request")
	}
	if r.Method != http.MethodPost {
		return nil, errs.NewWarn("method not allowed")
	}
	req := new(CompletionRequest)
	if err := decodeJSON(r, req); err != nil {
		return nil, err
	}
	if req.Setting == nil {
		return nil, errs.InvalidConfig("setting is required")
	}
	if req.Draw == nil {
		return nil, errs.InvalidInput("draw is required")
	}
	return req, nil
}

func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return errs.NewWarn("empty body")
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errs.NewWarn("invalid json: " + err.Error())
	}
	return nil
}

func queryInt(s string, field string, required bool) (int, error) {
	if s == "" {
		if required {
			return 0, errs.NewWarn(fmt.Sprintf("%s is required", field))
		}
		return 0, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, errs.NewWarn(fmt.Sprintf("%s must be integer", field))
	}
	return v, nil
}
