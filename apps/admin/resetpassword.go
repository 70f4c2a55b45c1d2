package main

import (
	"context"

	"github.com/pkg/errors"

	"github.com/edulink/backend/core"
	"github.com/edulink/backend/core/user"
)

func (cli *commandLine) resetPassword(email, pwd string) error {
	ctx := context.Background()
	email = core.CleanString(email, true /* lower */)

	// resolve through the identity service, not the profile directory, so a
	// credential whose profile record is missing or was deleted can still be
	// reset
	ident, err := cli.idSvc.GetIdentityByEmail(ctx, email)
	if err != nil {
		if errors.Cause(err) == core.ErrIdentityNotFound {
			return user.ErrNotFound
		}
		return err
	}
	return cli.idSvc.UpdatePassword(ctx, ident.UID, pwd)
}
