// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// adfscap provides packages which enable OAuth2/OIDC login against Active
// Directory Federation Services (ADFS): building the authorize, token and
// logout URLs, exchanging grants and resolving the resource owner from the
// claims ADFS issues.
//
// See README.md
package adfscap
