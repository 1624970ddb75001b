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

package stats

import (
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"
)

type ReportRender interface {
	Write(w io.Writer, r *Report) error
}

// Json渲染
type JsonReportRender struct{}

func (jr *JsonReportRender) Write(w io.Writer, r *Report) error {
	return json.NewEncoder(w).Encode(r)
}

// YAML渲染
type YAMLReportRender struct{}

func (yr *YAMLReportRender) Write(w io.Writer, r *Report) error {
	return forceReadableList(w, r)
}

// Table渲染：與 StdOut 相同的表格，但寫到指定的 io.Writer。
type TableReportRender struct{}

func (tr *TableReportRender) Write(w io.Writer, r *Report) error {
	sk, sm := r.fmtBasic()
	if _, err := io.WriteString(w, fmtTable(r.Title, sk, sm)+"\n"); err != nil {
		return err
	}
	_, err := io.WriteString(w, r.fmtCurve())
	return err
}

func (r *Report) WriteWith(w io.Writer, rep ReportRender) error {
	return rep.Write(w, r)
}

// YAML 內層方法
func forceReadableList[T any](w io.Writer, t *T) error {
	var node yaml.Node
	if err := node.Encode(t); err != nil {
		return err
	}
	// 最內層一維 sequence 改成 flow style：[...]，外層維度保持展開
	styleReadableSequences(&node)

	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(&node)
}

func styleReadableSequences(n *yaml.Node) {
	if n == nil {
		return
	}
	switch n.Kind {
	case yaml.DocumentNode, yaml.MappingNode:
		for _, c := range n.Content {
			styleReadableSequences(c)
		}
	case yaml.SequenceNode:
		hasChildSeq := false
		nested := false
		for _, c := range n.Content {
			if c == nil {
				continue
			}
			switch c.Kind {
			case yaml.SequenceNode:
				hasChildSeq = true
			case yaml.MappingNode:
				nested = true
			}
			styleReadableSequences(c)
		}
		// 點列表（mapping 組成的 sequence）每點一行：{draws: 1, prob: 0}
		if nested {
			for _, c := range n.Content {
				if c != nil && c.Kind == yaml.MappingNode {
					c.Style = yaml.FlowStyle
				}
			}
			return
		}
		if !hasChildSeq {
			n.Style = yaml.FlowStyle
		}
	}
}
