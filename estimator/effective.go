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

package estimator

// EffectiveCount 回傳原始狀態 j 在抽 n 次後，把重複品兌換掉之後的有效不重複數量：
//
//	j + floor((n + k0 + dup0 - j) / c)   (c > 0)
//	j                                    (c == 0)
//
// n + k0 + dup0 是總持有物品數，扣掉 j 種不重複即為重複品數。
// 對不可達的狀態（j > k0+n）分子可能為負，floor 取向負無窮。
func EffectiveCount(j, n, k0, dup0, c int) int {
	if c <= 0 {
		return j
	}
	return j + floorDiv(n+k0+dup0-j, c)
}

// floorDiv 要求 b > 0
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && (a < 0) {
		q--
	}
	return q
}
