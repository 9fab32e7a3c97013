package shell

import (
	"github.com/abiosoft/ishell"

	"siginspect/version"
)

func versionCmd(ctx *ShellCtxt) *ishell.Cmd {
	return &ishell.Cmd{
		Name: "version",
		Help: "print version",
		Func: func(c *ishell.Context) {
			c.Println(version.Version)
		},
	}
}
