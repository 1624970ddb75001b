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
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/zintix-labs/collectlab/errs"
)

func TestDecodeCurveRequestPreset(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/v1/curve?preset=sixteen_four", nil)
	q, err := DecodeCurveRequest(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Preset != "sixteen_four" || q.Setting != nil {
		t.Fatalf("unexpected query: %+v", q)
	}
}

func TestDecodeCurveRequestGET(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/v1/curve?items=16&exchange_rate=4&start_unique=2&start_duplicates=1&from=5&to=30&step=5", nil)
	q, err := DecodeCurveRequest(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cs := q.Setting
	if cs.Items != 16 || cs.ExchangeRate != 4 || cs.StartUnique != 2 || cs.StartDuplicates != 1 {
		t.Fatalf("unexpected setting: %+v", cs)
	}
	if cs.DrawRange == nil || cs.DrawRange.From != 5 || cs.DrawRange.To != 30 || cs.DrawRange.Step != 5 {
		t.Fatalf("unexpected range: %+v", cs.DrawRange)
	}
}

func TestDecodeCurveRequestGETErrors(t *testing.T) {
	for _, target := range []string{
		"/v1/curve",
		"/v1/curve?items=abc",
		"/v1/curve?items=4&from=1",
	} {
		r := httptest.NewRequest(http.MethodGet, target, nil)
		if _, err := DecodeCurveRequest(r); err == nil {
			t.Fatalf("%s: expected error", target)
		}
	}
}

func TestDecodeCurveRequestPOST(t *testing.T) {
	body := []byte(`{"items":6,"exchange_rate":3,"draws":[4,2]}`)
	r := httptest.NewRequest(http.MethodPost, "/v1/curve", bytes.NewReader(body))
	q, err := DecodeCurveRequest(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Setting.Items != 6 || len(q.Setting.Draws) != 2 {
		t.Fatalf("unexpected setting: %+v", q.Setting)
	}
}

func TestDecodeCurveRequestRejectsUnknownFields(t *testing.T) {
	body := []byte(`{"items":6,"unknown":true}`)
	r := httptest.NewRequest(http.MethodPost, "/v1/curve", bytes.NewReader(body))
	if _, err := DecodeCurveRequest(r); err == nil {
		t.Fatalf("expected error for unknown field")
	}
}

func TestDecodeCompletionRequest(t *testing.T) {
	body := []byte(`{"setting":{"items":16,"exchange_rate":4},"draw":16}`)
	r := httptest.NewRequest(http.MethodPost, "/v1/completion", bytes.NewReader(body))
	req, err := DecodeCompletionRequest(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Setting.Items != 16 || *req.Draw != 16 {
		t.Fatalf("unexpected request: %+v", req)
	}

	r = httptest.NewRequest(http.MethodPost, "/v1/completion", bytes.NewReader([]byte(`{"setting":{"items":16}}`)))
	if _, err := DecodeCompletionRequest(r); !errors.Is(err, errs.ErrInvalidInput) {
		t.Fatalf("expected invalid input for missing draw, got %v", err)
	}
	r = httptest.NewRequest(http.MethodPost, "/v1/completion", bytes.NewReader([]byte(`{"draw":3}`)))
	if _, err := DecodeCompletionRequest(r); !errors.Is(err, errs.ErrInvalidConfiguration) {
		t.Fatalf("expected invalid configuration for missing setting, got %v", err)
	}
	r = httptest.NewRequest(http.MethodGet, "/v1/completion", nil)
	if _, err := DecodeCompletionRequest(r); err == nil {
		t.Fatalf("expected method error")
	}
}
