// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package adfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_trimBaseURL(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		want string
	}{
		{"https://adfs.example.com/adfs", "https://adfs.example.com/adfs"},
		{"https://adfs.example.com/adfs/", "https://adfs.example.com/adfs"},
		{" https://adfs.example.com/adfs//\n", "https://adfs.example.com/adfs"},
		{"\t/\x00", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equalf(t, tt.want, trimBaseURL(tt.in), "trimBaseURL(%q)", tt.in)
	}
}

func Test_appendQuery(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		base  string
		query string
		want  string
	}{
		{"no-existing-query", "https://adfs/oauth2/logout", "a=1", "https://adfs/oauth2/logout?a=1"},
		{"existing-query", "https://adfs/oauth2/logout?x=1", "a=1", "https://adfs/oauth2/logout?x=1&a=1"},
		{"empty-query", "https://adfs/oauth2/logout", "", "https://adfs/oauth2/logout"},
		{"leading-separators", "https://adfs/oauth2/logout", "?&a=1", "https://adfs/oauth2/logout?a=1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, appendQuery(tt.base, tt.query))
		})
	}
}
