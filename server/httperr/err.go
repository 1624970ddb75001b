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

package httperr

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/zintix-labs/collectlab/errs"
)

// StatusCode 將錯誤映射成 HTTP status code。
//
// 規則（邊界層最小映射）：
//   - ctx timeout/cancel                  → 504/408
//   - InvalidConfiguration / InvalidInput → 422（語法正確但參數不合法）
//   - errs.Warn                           → 400
//   - errs.Fatal                          → 500
//
// 本函數屬於 HTTP 邊界層，所以放在 server/*，核心 errs 不依賴 net/http。
func StatusCode(err error) int {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout
	case errors.Is(err, errs.ErrInvalidConfiguration), errors.Is(err, errs.ErrInvalidInput):
		return http.StatusUnprocessableEntity
	}

	var e *errs.E
	if errors.As(err, &e) && e.ErrLv == errs.Warn {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

type errBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// Errs 寫回 JSON 錯誤：{"error": "...", "kind": "invalid input"}。
func Errs(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	body := errBody{Error: err.Error()}
	if e, ok := errs.AsErr(err); ok {
		body.Kind = e.Kind.String()
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(StatusCode(err))
	_ = json.NewEncoder(w).Encode(body)
}

// Log 只記錄伺服器端需要關心的錯誤：5xx 記 Error，408/504 記 Warn，其餘（呼叫端問題）不記。
func Log(log *slog.Logger, msg string, err error) {
	if err == nil || log == nil {
		return
	}
	status := StatusCode(err)
	switch {
	case status >= 500 && status != http.StatusGatewayTimeout:
		log.Error(msg, slog.Any("err", err))
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		log.Warn(msg, slog.Any("err", err))
	}
}
