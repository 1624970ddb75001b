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
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/zintix-labs/collectlab/estimator"
	"github.com/zintix-labs/collectlab/setting"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var lang language.Tag = language.English

// 長條圖寬度（字元）
const barWidth = 40

// Report 是一條完成機率曲線的完整報表。
type Report struct {
	Title    string                  `json:"title"              yaml:"title"`
	Setting  *setting.CollectSetting `json:"setting"            yaml:"setting"`
	Points   []estimator.Point       `json:"points"             yaml:"points"`
	Bounds   Bounds                  `json:"bounds"             yaml:"bounds"`
	Median   *int                    `json:"median,omitempty"   yaml:"median,omitempty"`
	Expected *float64                `json:"expected,omitempty" yaml:"expected,omitempty"`
}

// NewReport 依曲線建立報表並計算顯示區間與中位數。
func NewReport(cs *setting.CollectSetting, points []estimator.Point) *Report {
	r := &Report{
		Title:   cs.Title(),
		Setting: cs,
		Points:  points,
		Bounds:  FindBounds(points, DefaultLowThreshold, DefaultHighThreshold),
	}
	if n, ok := Quantile(points, 0.5); ok {
		r.Median = &n
	}
	return r
}

// SetExpected 附加期望抽取次數
func (r *Report) SetExpected(v float64) {
	r.Expected = &v
}

// StdOut 將摘要表與曲線印到標準輸出。
func (r *Report) StdOut(ut time.Duration) {
	formatDuration(ut, len(r.Points))
	sk, sm := r.fmtBasic()
	fmt.Println(fmtTable(r.Title, sk, sm))
	fmt.Println(r.fmtCurve())
}

// ============================================================
// ** 內部方法 **
// ============================================================

func formatDuration(d time.Duration, evals int) {
	p := message.NewPrinter(lang)
	if d < 0 {
		d = -d
	}
	sec := d.Seconds()
	if sec <= 0 {
		sec = 1e-9
	}
	eps := int(float64(evals) / sec)
	if sec < 60.0 {
		p.Printf("used: %.3f seconds\neps : %d evals/sec\n", sec, eps)
		return
	}
	s := int(d.Seconds()) % 60
	m := int(d.Minutes()) % 60
	h := int(d.Hours())
	if h == 0 {
		p.Printf("used: %dm %ds\neps : %d evals/sec\n", m, s, eps)
		return
	}
	p.Printf("used: %dh:%dm:%ds\neps : %d evals/sec\n", h, m, s, eps)
}

func (r *Report) fmtBasic() ([]string, map[string]string) {
	p := message.NewPrinter(lang)
	cs := r.Setting
	basic := map[string]string{
		"Items (d)":        p.Sprintf("%d", cs.Items),
		"Exchange Rate":    p.Sprintf("%d:1", cs.ExchangeRate),
		"Start Unique":     p.Sprintf("%d", cs.StartUnique),
		"Start Duplicates": p.Sprintf("%d", cs.StartDuplicates),
		"Draw Counts":      p.Sprintf("%d", len(r.Points)),
		"Display Range":    "-",
		"Median Draws":     "-",
		"Expected Draws":   "-",
	}
	if r.Bounds.LowerOK && r.Bounds.UpperOK {
		basic["Display Range"] = p.Sprintf("[%.1f, %.1f]", r.Bounds.XMin, r.Bounds.XMax)
	}
	if r.Median != nil {
		basic["Median Draws"] = p.Sprintf("%d", *r.Median)
	}
	if r.Expected != nil {
		basic["Expected Draws"] = p.Sprintf("%.3f", *r.Expected)
	}
	keys := []string{"Items (d)", "Exchange Rate", "Start Unique", "Start Duplicates", "Draw Counts", "Display Range", "Median Draws", "Expected Draws"}
	return keys, basic
}

// fmtCurve 只輸出顯示區間內的點；找不到區間時輸出全部。
func (r *Report) fmtCurve() string {
	p := message.NewPrinter(lang)
	var sb strings.Builder
	head := p.Sprintf("%8s  %-12s  %s\n", "n", "p(d|n)", "")
	sb.WriteString(head)
	sb.WriteString(strings.Repeat("-", runewidth.StringWidth(head)+barWidth) + "\n")
	for _, pt := range r.Points {
		if r.Bounds.LowerOK && float64(pt.Draws) < r.Bounds.XMin {
			continue
		}
		if r.Bounds.UpperOK && float64(pt.Draws) > r.Bounds.XMax {
			continue
		}
		sb.WriteString(p.Sprintf("%8d  %-12.6f  %s\n", pt.Draws, pt.Prob, bar(pt.Prob)))
	}
	return sb.String()
}

func bar(prob float64) string {
	w := int(prob*barWidth + 0.5)
	w = max(0, min(barWidth, w))
	return runewidth.FillRight(strings.Repeat("█", w), barWidth) + "|"
}

func fmtTable(title string, keys []string, msg map[string]string) string {
	p := message.NewPrinter(lang)
	maxKeyLen := 0
	maxValLen := 0
	for k, m := range msg {
		if w := runewidth.StringWidth(k); w > maxKeyLen {
			maxKeyLen = w
		}
		if w := runewidth.StringWidth(m); w > maxValLen {
			maxValLen = w
		}
	}
	maxKeyLen += 2
	maxValLen += 2

	totalInner := maxKeyLen + maxValLen + 1
	titleW := runewidth.StringWidth(title)
	if titleW > totalInner {
		maxValLen += titleW - totalInner
		totalInner = titleW
	}

	divider := "+" + strings.Repeat("-", maxKeyLen) + "+" + strings.Repeat("-", maxValLen) + "+\n"
	top := "+" + strings.Repeat("-", totalInner) + "+\n"

	left := (totalInner - titleW) / 2
	right := totalInner - titleW - left

	fmtStr := top
	fmtStr += p.Sprintf("|%s%s%s|\n", blank(left), title, blank(right))
	fmtStr += divider
	for _, k := range keys {
		fmtStr += p.Sprintf("| %s%s | %s%s |\n", k, blank(maxKeyLen-2-runewidth.StringWidth(k)), msg[k], blank(maxValLen-2-runewidth.StringWidth(msg[k])))
	}
	fmtStr += divider

	return fmtStr
}

func blank(w int) string {
	if w < 1 {
		return ""
	}
	return strings.Repeat(" ", w)
}
