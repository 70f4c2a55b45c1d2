package main

import (
	"context"
	"fmt"

	"github.com/edulink/backend/core/user"
)

// addUser provisions an identity+profile pair with a generated credential.
// The credential is printed exactly once and never stored.
func (cli *commandLine) addUser(name, email, role string) error {
	data := user.NewUser{Name: name, Email: email, Role: role}
	if err := data.Validate(cli.validate); err != nil {
		return err
	}

	usr, pwd, err := cli.usrSvc.Provision(context.Background(), data)
	if err != nil {
		return err
	}

	fmt.Printf("Account created: %s <%s> (%s)\n", usr.Name, usr.Email, usr.Role)
	fmt.Printf("Generated password (shown once): %s\n", pwd)
	return nil
}
