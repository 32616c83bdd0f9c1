package services

import (
	"regexp"
	"strconv"
	"strings"
)

// VersionComparator orders free-text BOM version labels so that "v10" sorts after "v9"
type VersionComparator struct {
	segmentPattern *regexp.Regexp
}

// NewVersionComparator creates a comparator splitting labels into digit and non-digit runs
func NewVersionComparator() *VersionComparator {
	return &VersionComparator{
		segmentPattern: regexp.MustCompile(`\d+|\D+`),
	}
}

// CompareVersions compares two labels segment by segment, numerically where both segments are numbers.
// Returns: -1 if v1 < v2, 0 if equal, 1 if v1 > v2
func (vc *VersionComparator) CompareVersions(v1, v2 string) int {
	if v1 == v2 {
		return 0
	}

	segs1 := vc.segmentPattern.FindAllString(strings.ToLower(v1), -1)
	segs2 := vc.segmentPattern.FindAllString(strings.ToLower(v2), -1)

	for i := 0; i < len(segs1) && i < len(segs2); i++ {
		if c := vc.compareSegment(segs1[i], segs2[i]); c != 0 {
			return c
		}
	}

	switch {
	case len(segs1) < len(segs2):
		return -1
	case len(segs1) > len(segs2):
		return 1
	}
	return strings.Compare(v1, v2)
}

func (vc *VersionComparator) compareSegment(a, b string) int {
	n1, err1 := strconv.ParseUint(a, 10, 64)
	n2, err2 := strconv.ParseUint(b, 10, 64)
	if err1 != nil || err2 != nil {
		return strings.Compare(a, b)
	}
	if n1 < n2 {
		return -1
	} else if n1 > n2 {
		return 1
	}
	return 0
}
