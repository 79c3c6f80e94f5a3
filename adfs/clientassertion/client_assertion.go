// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package clientassertion

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
	"github.com/hashicorp/go-uuid"
)

// JWTTypeParam is the client_assertion_type sent with a JWT assertion.
// See: https://www.rfc-editor.org/rfc/rfc7523.html#section-2.2
const JWTTypeParam = "urn:ietf:params:oauth:client-assertion-type:jwt-bearer"

// lifetime is how long a signed assertion is valid.
const lifetime = 5 * time.Minute

// JWT signs client assertions for a single relying party.
type JWT struct {
	clientID string
	audience []string
	headers  map[string]string

	alg    jose.SignatureAlgorithm
	key    *rsa.PrivateKey
	secret string

	genID func() (string, error)
	now   func() time.Time
}

// NewJWT creates a JWT for the client id and audience (the ADFS token
// endpoint).
//
// Supported options: WithClientSecret, WithRSAKey, WithKeyID, WithHeaders
//
// Exactly one of WithRSAKey or WithClientSecret must be used.
func NewJWT(clientID string, audience []string, opt ...Option) (*JWT, error) {
	const op = "NewJWT"
	j := &JWT{
		clientID: clientID,
		audience: audience,
		headers:  make(map[string]string),
		genID:    uuid.GenerateUUID,
		now:      time.Now,
	}
	var errs []error
	for _, o := range opt {
		if o == nil {
			continue
		}
		if err := o(j); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%s: %w", op, errors.Join(errs...))
	}
	if err := j.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	// not everything can be checked up front
	if _, err := j.Serialize(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return j, nil
}

// Serialize signs a new assertion and returns it in compact form.
func (j *JWT) Serialize() (string, error) {
	const op = "JWT.Serialize"
	if err := j.validate(); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	signer, err := j.signer()
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	id, err := j.genID()
	if err != nil {
		return "", fmt.Errorf("%s: unable to generate jti: %w", op, err)
	}
	token, err := jwt.Signed(signer).Claims(j.claims(id)).Serialize()
	if err != nil {
		return "", fmt.Errorf("%s: unable to serialize: %w", op, err)
	}
	return token, nil
}

func (j *JWT) validate() error {
	var errs []error
	if j.genID == nil {
		errs = append(errs, ErrMissingFuncIDGenerator)
	}
	if j.now == nil {
		errs = append(errs, ErrMissingFuncNow)
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	if j.clientID == "" {
		errs = append(errs, ErrMissingClientID)
	}
	if len(j.audience) == 0 {
		errs = append(errs, ErrMissingAudience)
	}
	if j.alg == "" {
		errs = append(errs, ErrMissingAlgorithm)
	}
	switch {
	case j.key == nil && j.secret == "":
		errs = append(errs, ErrMissingKeyOrSecret)
	case j.key != nil && j.secret != "":
		errs = append(errs, ErrBothKeyAndSecret)
	}
	return errors.Join(errs...)
}

func (j *JWT) signer() (jose.Signer, error) {
	const op = "JWT.signer"
	sk := jose.SigningKey{Algorithm: j.alg}
	switch {
	case j.key != nil:
		sk.Key = j.key
	default:
		sk.Key = []byte(j.secret)
	}
	so := &jose.SignerOptions{}
	for k, v := range j.headers {
		so = so.WithHeader(jose.HeaderKey(k), v)
	}
	signer, err := jose.NewSigner(sk, so.WithType("JWT"))
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrCreatingSigner, err)
	}
	return signer, nil
}

func (j *JWT) claims(id string) *jwt.Claims {
	now := j.now().UTC()
	return &jwt.Claims{
		Issuer:    j.clientID,
		Subject:   j.clientID,
		Audience:  j.audience,
		Expiry:    jwt.NewNumericDate(now.Add(lifetime)),
		NotBefore: jwt.NewNumericDate(now.Add(-1 * time.Second)),
		IssuedAt:  jwt.NewNumericDate(now),
		ID:        id,
	}
}
