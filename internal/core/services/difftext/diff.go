package difftext

import (
	"fmt"
	"strings"

	"github.com/nxfleet/profilesync/internal/core/domain"
)

// contextLines is the number of unchanged lines shown around each change.
const contextLines = 3

type editKind int

const (
	editEqual editKind = iota
	editDelete
	editInsert
)

type edit struct {
	kind editKind
	text string
}

// Diff compares two already-filtered text blocks and renders a unified diff
// with the given file labels.
//
// Identical input short-circuits to IsEmpty without computing a line diff.
// Lines are split keeping their endings, so the two inputs can be
// reconstructed losslessly from the diff.
func Diff(before, after, labelBefore, labelAfter string) domain.DiffResult {
	if before == after {
		return domain.DiffResult{IsEmpty: true}
	}

	edits := diffEdits(splitKeepEnds(before), splitKeepEnds(after))

	var added, removed []string
	for _, e := range edits {
		switch e.kind {
		case editInsert:
			added = append(added, strings.TrimRight(e.text, "\n"))
		case editDelete:
			removed = append(removed, strings.TrimRight(e.text, "\n"))
		}
	}

	return domain.DiffResult{
		Added:       added,
		Removed:     removed,
		UnifiedText: renderUnified(edits, labelBefore, labelAfter),
	}
}

// DiffTables applies the same algorithm to two raw table dumps (MAC address
// tables are compared unfiltered). When either side is empty there is no
// meaningful comparison to make; diffing against an empty table would report
// every existing entry as added, so the result is empty instead.
func DiffTables(before, after, labelBefore, labelAfter string) domain.DiffResult {
	if strings.TrimSpace(before) == "" || strings.TrimSpace(after) == "" {
		return domain.DiffResult{IsEmpty: true}
	}
	return Diff(before, after, labelBefore, labelAfter)
}

// splitKeepEnds splits on newline boundaries, each line retaining its
// trailing "\n" if it had one.
func splitKeepEnds(s string) []string {
	if s == "" {
		return nil
	}
	var lines []string
	for s != "" {
		i := strings.IndexByte(s, '\n')
		if i < 0 {
			lines = append(lines, s)
			break
		}
		lines = append(lines, s[:i+1])
		s = s[i+1:]
	}
	return lines
}

// diffEdits computes a minimal line edit script via longest common
// subsequence. Inputs here are interface configs and MAC tables, small
// enough that the quadratic table is not a concern.
func diffEdits(a, b []string) []edit {
	n, m := len(a), len(b)
	lcs := make([][]int, n+1)
	for i := range lcs {
		lcs[i] = make([]int, m+1)
	}
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			if a[i] == b[j] {
				lcs[i][j] = lcs[i+1][j+1] + 1
			} else if lcs[i+1][j] >= lcs[i][j+1] {
				lcs[i][j] = lcs[i+1][j]
			} else {
				lcs[i][j] = lcs[i][j+1]
			}
		}
	}

	edits := make([]edit, 0, n+m)
	i, j := 0, 0
	for i < n && j < m {
		switch {
		case a[i] == b[j]:
			edits = append(edits, edit{editEqual, a[i]})
			i++
			j++
		case lcs[i+1][j] >= lcs[i][j+1]:
			edits = append(edits, edit{editDelete, a[i]})
			i++
		default:
			edits = append(edits, edit{editInsert, b[j]})
			j++
		}
	}
	for ; i < n; i++ {
		edits = append(edits, edit{editDelete, a[i]})
	}
	for ; j < m; j++ {
		edits = append(edits, edit{editInsert, b[j]})
	}
	return edits
}

// renderUnified formats the edit script as a conventional unified diff:
// ---/+++ label headers and @@ hunks with surrounding context.
func renderUnified(edits []edit, labelBefore, labelAfter string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "--- %s\n", labelBefore)
	fmt.Fprintf(&sb, "+++ %s\n", labelAfter)

	for _, h := range groupHunks(edits) {
		aStart, aCount, bStart, bCount := h.spans(edits)
		fmt.Fprintf(&sb, "@@ -%d,%d +%d,%d @@\n", aStart, aCount, bStart, bCount)
		for _, e := range edits[h.lo:h.hi] {
			switch e.kind {
			case editEqual:
				sb.WriteString(" ")
			case editDelete:
				sb.WriteString("-")
			case editInsert:
				sb.WriteString("+")
			}
			sb.WriteString(e.text)
			if !strings.HasSuffix(e.text, "\n") {
				sb.WriteString("\n")
			}
		}
	}
	return sb.String()
}

// hunk is a half-open range [lo, hi) into the edit script, preceded by
// aLine/bLine counts of lines consumed before lo on each side.
type hunk struct {
	lo, hi       int
	aLine, bLine int
}

func (h hunk) spans(edits []edit) (aStart, aCount, bStart, bCount int) {
	aStart, bStart = h.aLine+1, h.bLine+1
	for _, e := range edits[h.lo:h.hi] {
		switch e.kind {
		case editEqual:
			aCount++
			bCount++
		case editDelete:
			aCount++
		case editInsert:
			bCount++
		}
	}
	if aCount == 0 {
		aStart--
	}
	if bCount == 0 {
		bStart--
	}
	return aStart, aCount, bStart, bCount
}

// groupHunks clusters changed edits into hunks, merging changes separated by
// at most 2*contextLines unchanged lines.
func groupHunks(edits []edit) []hunk {
	// Prefix line offsets per side, so hunk start positions are O(1).
	aOff := make([]int, len(edits)+1)
	bOff := make([]int, len(edits)+1)
	for i, e := range edits {
		aOff[i+1] = aOff[i]
		bOff[i+1] = bOff[i]
		switch e.kind {
		case editEqual:
			aOff[i+1]++
			bOff[i+1]++
		case editDelete:
			aOff[i+1]++
		case editInsert:
			bOff[i+1]++
		}
	}

	var hunks []hunk
	i := 0
	for i < len(edits) {
		if edits[i].kind == editEqual {
			i++
			continue
		}

		lo := max(i-contextLines, 0)

		// Absorb subsequent changes separated by short equal runs.
		hi := i + 1
		equalRun := 0
		for k := i + 1; k < len(edits); k++ {
			if edits[k].kind == editEqual {
				equalRun++
				if equalRun > 2*contextLines {
					break
				}
			} else {
				equalRun = 0
				hi = k + 1
			}
		}

		end := min(hi+contextLines, len(edits))
		hunks = append(hunks, hunk{lo: lo, hi: end, aLine: aOff[lo], bLine: bOff[lo]})
		i = end
	}
	return hunks
}
