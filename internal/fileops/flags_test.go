package fileops

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var dispositions = []OpenFlags{CreateNew, CreateAlways, OpenExisting, OpenAlways, TruncateExisting}

func Test_OpenFlags_Valid_Combinations(t *testing.T) {
	for _, d := range dispositions {
		for _, a := range []OpenFlags{AccessRead, AccessWrite, AccessReadWrite} {
			assert.True(t, (d | a).IsValid(), "%v", d|a)
			assert.True(t, (d | a | ShareRead | ShareWrite | ShareDelete | Direct).IsValid())
		}
	}
}

func Test_OpenFlags_Invalid_Combinations(t *testing.T) {
	assert.False(t, OpenFlags(0).IsValid())
	assert.False(t, AccessReadWrite.IsValid(), "no disposition")
	assert.False(t, (ShareRead | AccessRead).IsValid())
	assert.False(t, (Direct | AccessRead).IsValid())

	for _, d := range dispositions {
		assert.False(t, d.IsValid(), "no access: %v", d)
		for _, d2 := range dispositions {
			if d == d2 { continue }
			assert.False(t, (d | d2 | AccessRead).IsValid(), "two dispositions: %v", d|d2)
		}
	}
}

func Test_OpenFlags_String(t *testing.T) {
	assert.Equal(t, "0", OpenFlags(0).String())
	assert.Equal(t, "OpenExisting|AccessRead", (OpenExisting | AccessRead).String())
	assert.Equal(t, "CreateNew|AccessRead|AccessWrite|ShareDelete", (CreateNew | AccessReadWrite | ShareDelete).String())
	assert.Equal(t, "OpenAlways|AccessWrite|Direct", (OpenAlways | AccessWrite | Direct).String())
	assert.Equal(t, "CreateAlways|0x800", (CreateAlways | 1<<11).String())
}

func Test_Combine_Perms(t *testing.T) {
	cur := OwnerRead | OwnerWrite | GroupRead

	assert.Equal(t, OwnerRead, combinePerms(cur, OwnerRead, PermsReplace))
	assert.Equal(t, cur|OthersRead, combinePerms(cur, OthersRead, PermsAdd))
	assert.Equal(t, OwnerRead|OwnerWrite, combinePerms(cur, GroupRead|GroupWrite, PermsRemove))
	// anything past the mask is dropped
	assert.Equal(t, OwnerRead, combinePerms(0, OwnerRead|0o10000, PermsReplace))
}

func Test_Combine_Attrs(t *testing.T) {
	cur := AttrHidden | AttrArchive

	assert.Equal(t, AttrSystem, combineAttrs(cur, AttrSystem, AttrsReplace))
	assert.Equal(t, cur|AttrSystem, combineAttrs(cur, AttrSystem, AttrsAdd))
	assert.Equal(t, AttrArchive, combineAttrs(cur, AttrHidden, AttrsRemove))
	assert.Equal(t, AttrNone, combineAttrs(cur, AttrNone, AttrsReplace))
}
