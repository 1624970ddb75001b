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

package setting

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/zintix-labs/collectlab/errs"
	"gopkg.in/yaml.v3"
)

// GetSettingByYAML
// 會讀取 YAML 設定並執行基本檢查後回傳；未知欄位視為錯誤。
func GetSettingByYAML(data []byte) (*CollectSetting, error) {
	cs := &CollectSetting{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cs); err != nil {
		return nil, errs.Wrap(errs.InvalidConfig("%v", err), "failed to unmarshall yaml")
	}
	if err := cs.Valid(); err != nil {
		return nil, errs.Wrap(err, "collect setting invalid")
	}
	return cs, nil
}

// GetSettingByJSON
// 會讀取 Json 設定並執行基本檢查後回傳；未知欄位視為錯誤。
func GetSettingByJSON(data []byte) (*CollectSetting, error) {
	cs := &CollectSetting{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cs); err != nil {
		return nil, errs.Wrap(errs.InvalidConfig("%v", err), "can not unmarshall json byte")
	}
	if err := cs.Valid(); err != nil {
		return nil, errs.Wrap(err, "collect setting invalid")
	}
	return cs, nil
}

// GetSettingByExt 依副檔名選擇解析器（.yaml/.yml/.json）。
func GetSettingByExt(filename string, raw []byte) (*CollectSetting, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		return GetSettingByYAML(raw)
	case ".json":
		return GetSettingByJSON(raw)
	default:
		return nil, errs.NewFatal(fmt.Sprintf("unsupported config format: %q", filename))
	}
}
