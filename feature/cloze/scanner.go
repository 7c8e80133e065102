package cloze

import (
	"regexp"
	"strconv"
)

// markerPattern matches one marker span: ((c<N>::<payload>)) with the payload
// matched non-greedily up to the first closing parens. The payload may be
// empty, so ((c1::)) counts.
var markerPattern = regexp.MustCompile(`\(\(c(\d+)::.*?\)\)`)

// ScanNums searches content for cloze references and returns them as a set.
//
// For example, for the content
//
//	((c1::I)) ((c2::am)) hungry.
//
// this returns {1, 2}. Duplicate references collapse and content without
// markers yields an empty set; malformed-looking input never errors.
func ScanNums(content string) map[int]struct{} {
	nums := make(map[int]struct{})
	for _, m := range markerPattern.FindAllStringSubmatch(content, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 1 {
			continue
		}
		nums[n] = struct{}{}
	}
	return nums
}
