package difftext

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiffIdenticalInputShortCircuits(t *testing.T) {
	text := "interface Ethernet1/2\n  mtu 9000\n"

	result := Diff(text, text, "before", "after")

	assert.True(t, result.IsEmpty)
	assert.Empty(t, result.UnifiedText)
	assert.Empty(t, result.Added)
	assert.Empty(t, result.Removed)
}

func TestDiffFilteredIdentityProperty(t *testing.T) {
	// For all T: diff(filter(T), filter(T)).IsEmpty.
	texts := []string{
		"",
		"!only a comment\n",
		"interface Ethernet1/2\n  switchport\n!Time: now\n",
	}
	for _, text := range texts {
		result := Diff(FilterComments(text), FilterComments(text), "a", "b")
		assert.True(t, result.IsEmpty)
	}
}

func TestDiffCommentOnlyChangeIsEmpty(t *testing.T) {
	before := "!Time: Mon Aug 24 10:00:00 2026\ninterface Ethernet1/2\n  switchport\n"
	after := "!Time: Mon Aug 24 11:30:00 2026\ninterface Ethernet1/2\n  switchport\n"

	result := Diff(FilterComments(before), FilterComments(after), "pre", "post")

	assert.True(t, result.IsEmpty)
}

func TestDiffSingleLineChange(t *testing.T) {
	before := "interface Ethernet1/2\n  switchport\n  mtu 1500\n"
	after := "interface Ethernet1/2\n  switchport\n  mtu 9000\n"

	result := Diff(before, after, "pre", "post")

	require.False(t, result.IsEmpty)
	assert.Equal(t, []string{"  mtu 9000"}, result.Added)
	assert.Equal(t, []string{"  mtu 1500"}, result.Removed)

	assert.True(t, strings.HasPrefix(result.UnifiedText, "--- pre\n+++ post\n"))
	assert.Contains(t, result.UnifiedText, "-  mtu 1500\n")
	assert.Contains(t, result.UnifiedText, "+  mtu 9000\n")
	assert.Contains(t, result.UnifiedText, " interface Ethernet1/2\n")
}

func TestDiffAddedBlock(t *testing.T) {
	before := "interface Ethernet1/2\n"
	after := "interface Ethernet1/2\n  inherit port-profile BAREMETAL\n"

	result := Diff(before, after, "pre", "post")

	require.False(t, result.IsEmpty)
	assert.Equal(t, []string{"  inherit port-profile BAREMETAL"}, result.Added)
	assert.Empty(t, result.Removed)
}

func TestDiffDistantChangesProduceSeparateHunks(t *testing.T) {
	var beforeLines, afterLines []string
	for i := 0; i < 20; i++ {
		line := "line"
		beforeLines = append(beforeLines, line)
		afterLines = append(afterLines, line)
	}
	beforeLines[1] = "old-top"
	afterLines[1] = "new-top"
	beforeLines[18] = "old-bottom"
	afterLines[18] = "new-bottom"

	result := Diff(
		strings.Join(beforeLines, "\n")+"\n",
		strings.Join(afterLines, "\n")+"\n",
		"pre", "post",
	)

	require.False(t, result.IsEmpty)
	assert.Equal(t, 2, strings.Count(result.UnifiedText, "@@ -"))
	assert.Contains(t, result.Added, "new-top")
	assert.Contains(t, result.Added, "new-bottom")
	assert.Contains(t, result.Removed, "old-top")
	assert.Contains(t, result.Removed, "old-bottom")
}

func TestDiffPreservesMissingTrailingNewline(t *testing.T) {
	result := Diff("a\nb", "a\nc", "pre", "post")

	require.False(t, result.IsEmpty)
	assert.Equal(t, []string{"c"}, result.Added)
	assert.Equal(t, []string{"b"}, result.Removed)
	// Rendered output is still newline-terminated.
	assert.True(t, strings.HasSuffix(result.UnifiedText, "\n"))
}

func TestDiffTablesEmptySideIsNoDiff(t *testing.T) {
	table := "VLAN  MAC               Port\n10    aabb.ccdd.eeff    Eth1/2\n"

	assert.True(t, DiffTables("", table, "pre", "post").IsEmpty)
	assert.True(t, DiffTables(table, "", "pre", "post").IsEmpty)
	assert.True(t, DiffTables("  \n", table, "pre", "post").IsEmpty)
}

func TestDiffTablesBothSidesPresent(t *testing.T) {
	before := "VLAN  MAC               Port\n10    aabb.ccdd.eeff    Eth1/2\n"
	after := "VLAN  MAC               Port\n10    aabb.ccdd.eeff    Eth1/3\n"

	result := DiffTables(before, after, "pre", "post")

	require.False(t, result.IsEmpty)
	assert.Len(t, result.Added, 1)
	assert.Len(t, result.Removed, 1)
}

func TestSplitKeepEnds(t *testing.T) {
	assert.Nil(t, splitKeepEnds(""))
	assert.Equal(t, []string{"a\n", "b\n"}, splitKeepEnds("a\nb\n"))
	assert.Equal(t, []string{"a\n", "b"}, splitKeepEnds("a\nb"))
	assert.Equal(t, []string{"\n"}, splitKeepEnds("\n"))
	// Reconstruction is lossless.
	src := "one\n\ntwo\r\nthree"
	assert.Equal(t, src, strings.Join(splitKeepEnds(src), ""))
}
