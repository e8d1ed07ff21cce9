// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import (
	"context"
	"errors"
	"net/http"

	"github.com/taibuivan/yomira-harvester/internal/platform/apperr"
)

// Authenticator exchanges account credentials for a session token.
// It shares the transport settings of [Client] but needs no credential itself.
type Authenticator struct {
	transport *transport
}

// NewAuthenticator builds an [Authenticator].
func NewAuthenticator(options Options) (*Authenticator, error) {
	t, err := newTransport(options)
	if err != nil {
		return nil, err
	}
	return &Authenticator{transport: t}, nil
}

// SignIn returns a fresh session token for the given account.
func (authenticator *Authenticator) SignIn(ctx context.Context, email, password string) (string, error) {
	var data signInData
	body := signInRequest{Email: email, Password: password}

	err := authenticator.transport.call(ctx, EndpointSignIn, http.MethodPost, "auth/sign-in", nil, body, "", &data)
	if err != nil {
		return "", err
	}

	if data.Token == "" {
		return "", apperr.Transport(EndpointSignIn, errors.New("response carried no token"))
	}

	return data.Token, nil
}
