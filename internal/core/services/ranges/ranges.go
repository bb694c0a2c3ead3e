// Package ranges condenses interface ID sets into the minimal contiguous
// range notation used by reports ("Ethernet1/5-9").
package ranges

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/nxfleet/profilesync/internal/core/domain"
)

// Condense turns a set of interface IDs into minimal range strings with the
// given canonical prefix (e.g. "Ethernet1/"). Parsed port numbers sort
// ascending; maximal runs of consecutive ports render as "<first>-<last>",
// single ports as plain IDs. IDs whose suffix does not parse pass through
// unmodified, each as its own singleton, after the numeric ranges.
//
// Condense is idempotent over expansion: condensing the expansion of its
// own output yields the same ranges.
func Condense(ids []string, prefix string) []string {
	var ports []int
	var passthrough []string
	for _, id := range ids {
		if n, ok := domain.InterfaceNumber(id); ok {
			ports = append(ports, n)
		} else {
			passthrough = append(passthrough, id)
		}
	}
	sort.Ints(ports)
	ports = dedupe(ports)

	var out []string
	for i := 0; i < len(ports); {
		j := i
		for j+1 < len(ports) && ports[j+1] == ports[j]+1 {
			j++
		}
		if i == j {
			out = append(out, fmt.Sprintf("%s%d", prefix, ports[i]))
		} else {
			out = append(out, fmt.Sprintf("%s%d-%d", prefix, ports[i], ports[j]))
		}
		i = j + 1
	}
	return append(out, passthrough...)
}

// Expand reverses range notation back to explicit interface IDs. Strings
// that are not in range form come back unchanged.
func Expand(condensed []string, prefix string) []string {
	var out []string
	for _, r := range condensed {
		first, last, ok := parseRange(r, prefix)
		if !ok {
			out = append(out, r)
			continue
		}
		for n := first; n <= last; n++ {
			out = append(out, fmt.Sprintf("%s%d", prefix, n))
		}
	}
	return out
}

func parseRange(r, prefix string) (first, last int, ok bool) {
	if !strings.HasPrefix(r, prefix) {
		return 0, 0, false
	}
	suffix := r[len(prefix):]
	if n, err := strconv.Atoi(suffix); err == nil {
		return n, n, true
	}
	parts := strings.SplitN(suffix, "-", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	first, err1 := strconv.Atoi(parts[0])
	last, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || last < first {
		return 0, 0, false
	}
	return first, last, true
}

func dedupe(sorted []int) []int {
	out := sorted[:0]
	for i, n := range sorted {
		if i == 0 || n != sorted[i-1] {
			out = append(out, n)
		}
	}
	return out
}
