// Package version provides the forge release version and the dotted
// numeric comparison used for upgrade detection.
package version

import (
	"strconv"
	"strings"
)

// Current is the forge release version. New state documents record it
// as project.forge_version; init compares it against the recorded value
// to decide between fresh install, upgrade and downgrade refusal.
const Current = "3.0.0"

// Compare orders two dotted numeric versions, returning -1, 0 or 1.
// Missing parts count as zero, so "3.0" equals "3.0.0". A version that
// does not parse sorts older than anything that does; two unparseable
// versions compare equal.
func Compare(a, b string) int {
	aParts, aOK := parse(a)
	bParts, bOK := parse(b)

	switch {
	case !aOK && !bOK:
		return 0
	case !aOK:
		return -1
	case !bOK:
		return 1
	}

	n := len(aParts)
	if len(bParts) > n {
		n = len(bParts)
	}
	for i := 0; i < n; i++ {
		pa, pb := 0, 0
		if i < len(aParts) {
			pa = aParts[i]
		}
		if i < len(bParts) {
			pb = bParts[i]
		}
		if pa < pb {
			return -1
		}
		if pa > pb {
			return 1
		}
	}
	return 0
}

// LessThan reports whether a is an older version than b. Unparseable
// recorded versions read as older, so a corrupt state document always
// takes the upgrade path.
func LessThan(a, b string) bool {
	return Compare(a, b) < 0
}

func parse(v string) ([]int, bool) {
	parts := strings.Split(strings.TrimSpace(v), ".")
	nums := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, false
		}
		nums = append(nums, n)
	}
	return nums, true
}
