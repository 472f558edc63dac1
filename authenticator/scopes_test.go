package authenticator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseScopes(t *testing.T) {
	assert.Nil(t, ParseScopes(""))
	assert.Nil(t, ParseScopes(" , ,"))
	assert.Equal(t, []string{"Files.Read"}, ParseScopes("Files.Read"))
	assert.Equal(t, []string{"Files.Read", "Contacts.Read"}, ParseScopes(" Files.Read , Contacts.Read,"))
}

func TestMergeScopes(t *testing.T) {
	defaults := []string{"wl.basic", "wl.emails"}

	assert.Equal(t, defaults, MergeScopes(defaults, nil))
	assert.Equal(t,
		[]string{"wl.basic", "wl.emails", "Files.Read"},
		MergeScopes(defaults, []string{"wl.emails", "Files.Read", "Files.Read"}),
	)
	// defaults are not mutated
	assert.Equal(t, []string{"wl.basic", "wl.emails"}, defaults)
}
