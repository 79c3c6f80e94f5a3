// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package adfs

import "strings"

const (
	authorizePath = "/oauth2/authorize/"
	tokenPath     = "/oauth2/token/"
	logoutPath    = "/oauth2/logout"
)

// trimBaseURL strips surrounding whitespace, NUL and slashes from the
// configured auth server URL.
func trimBaseURL(s string) string {
	return strings.Trim(s, " \t\n\r\x00\x0B/")
}

// appendQuery appends query to base, using "&" when base already carries a
// query and "?" otherwise.
func appendQuery(base, query string) string {
	query = strings.TrimLeft(query, "?&")
	if query == "" {
		return base
	}
	glue := "?"
	if strings.Contains(base, "?") {
		glue = "&"
	}
	return base + glue + query
}
