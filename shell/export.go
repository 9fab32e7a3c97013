package shell

import (
	"errors"
	"strconv"

	"github.com/abiosoft/ishell"

	"siginspect/model"
	"siginspect/report"
)

func exportCmd(ctx *ShellCtxt) *ishell.Cmd {
	return &ishell.Cmd{
		Name:      "export",
		Help:      "render signatures to pdf, usage: export <signer> <output.pdf> [index]",
		Completer: createSignerCompleter(ctx),
		Func: func(c *ishell.Context) {
			if len(c.Args) < 2 {
				c.Err(errors.New("usage: export <signer> <output.pdf> [index]"))
				return
			}

			signer := ctx.signerByName(c.Args[0])
			if signer == nil {
				c.Err(errors.New("signer doesn't exist"))
				return
			}

			signatures := signer.Signatures
			if len(c.Args) > 2 {
				index, err := strconv.Atoi(c.Args[2])
				if err != nil || index < 0 || index >= len(signer.Signatures) {
					c.Err(errors.New("invalid signature index"))
					return
				}
				signatures = []*model.Signature{signer.Signatures[index]}
			}

			if err := report.NewGenerator(c.Args[1]).Generate(signatures); err != nil {
				c.Err(err)
				return
			}
			c.Printf("wrote %s (%d signature(s))\n", c.Args[1], len(signatures))
		},
	}
}
