package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParent(t *testing.T) {
	const root = "/mnt/SDCARD/MOFLEX/"
	cases := []struct {
		current, want string
	}{
		{root, root},
		{"/mnt/SDCARD/MOFLEX/Action/", root},
		{"/mnt/SDCARD/MOFLEX/Action/Heist/", "/mnt/SDCARD/MOFLEX/Action/"},
		{"/mnt/SDCARD/MOFLEX/A/B/C/", "/mnt/SDCARD/MOFLEX/A/B/"},
		{"nowhere/", root},
		{"", root},
		{"/", root},
		{"/mnt/SDCARD/", root},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Parent(tc.current, root), tc.current)
	}
}

func TestParentAtRootIsFixedPoint(t *testing.T) {
	for _, root := range []string{"/mnt/SDCARD/MOFLEX/", "/mnt/SDCARD/MOFLEX", "mock_sdcard/MOFLEX/"} {
		r := WithSeparator(root)
		assert.Equal(t, r, Parent(r, root))
		assert.Equal(t, r, Parent(Parent(r, root), root))
	}
}

func TestWithSeparator(t *testing.T) {
	assert.Equal(t, "/a/", WithSeparator("/a"))
	assert.Equal(t, "/a/", WithSeparator("/a/"))
}
