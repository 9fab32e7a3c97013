package shell

import (
	"errors"

	"github.com/abiosoft/ishell"
)

func showCmd(ctx *ShellCtxt) *ishell.Cmd {
	return &ishell.Cmd{
		Name:      "show",
		Help:      "show a signer's signatures, usage: show <signer>",
		Completer: createSignerCompleter(ctx),
		Func: func(c *ishell.Context) {
			if len(c.Args) == 0 {
				c.Err(errors.New("missing signer name"))
				return
			}

			signer := ctx.signerByName(c.Args[0])
			if signer == nil {
				c.Err(errors.New("signer doesn't exist"))
				return
			}

			for i, signature := range signer.Signatures {
				c.Printf("%d\t%s\t%s\t%s\t%d points\t[%s]\n",
					i, signature.Name, signature.Authenticity, signature.Origin,
					len(signature.DataPoints), signature.VerificationStatus)
			}
		},
	}
}
