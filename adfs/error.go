// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package adfs

import (
	"errors"
)

var (
	ErrInvalidParameter     = errors.New("invalid parameter")
	ErrNilParameter         = errors.New("nil parameter")
	ErrInvalidCACert        = errors.New("invalid CA certificate")
	ErrInvalidAuthServerURL = errors.New("invalid auth server URL")
	ErrIdGeneratorFailed    = errors.New("id generation failed")
	ErrExpiredState         = errors.New("state is expired")
	ErrResponseStateInvalid = errors.New("response state is invalid")
	ErrUnsupportedGrant     = errors.New("unsupported grant")
	ErrExchangeFailed       = errors.New("token exchange failed")
	ErrNotFound             = errors.New("not found")
	ErrLoginFailed          = errors.New("login failed")
)
