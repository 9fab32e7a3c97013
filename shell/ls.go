package shell

import (
	"github.com/abiosoft/ishell"

	"siginspect/model"
)

func displaySigner(c *ishell.Context, signer *model.Signer) {
	genuine, forged := 0, 0
	for _, s := range signer.Signatures {
		switch s.Authenticity {
		case model.AuthenticityGenuine:
			genuine++
		case model.AuthenticityForged:
			forged++
		}
	}
	c.Printf("%s\t%d signature(s) (%d genuine, %d forged)\n", signer.Name, len(signer.Signatures), genuine, forged)
}

func lsCmd(ctx *ShellCtxt) *ishell.Cmd {
	return &ishell.Cmd{
		Name: "ls",
		Help: "list imported signers",
		Func: func(c *ishell.Context) {
			for _, signer := range ctx.signers {
				displaySigner(c, signer)
			}
		},
	}
}
