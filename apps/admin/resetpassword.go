package main

import (
	"context"
)

func (cli *commandLine) resetPassword(uname, pwd string) error {
	return cli.state.SetUserPassword(context.Background(), uname, pwd)
}
