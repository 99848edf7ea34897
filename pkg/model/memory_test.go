package model_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/kioku/pkg/model"
)

func TestNormalizeCategory(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"Preferences", "preferences"},
		{" preferences ", "preferences"},
		{"PROJECTS", "projects"},
		{"  ", ""},
		{"", ""},
	}

	for _, tc := range testCases {
		gt.Equal(t, model.NormalizeCategory(tc.input), tc.expected)
	}
}

func TestIdentityValid(t *testing.T) {
	gt.True(t, model.Identity{UserKey: "u1"}.Valid())
	gt.Equal(t, model.Identity{}.Valid(), false)
}
