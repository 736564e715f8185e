package main

func (cli *commandLine) resetPassword(email, pwd string) error {
	return cli.svc.ResetPassword(email, pwd)
}
