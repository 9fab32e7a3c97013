package shell

import (
	"errors"
	"strconv"

	"github.com/abiosoft/ishell"
)

func testCmd(ctx *ShellCtxt) *ishell.Cmd {
	return &ishell.Cmd{
		Name:      "test",
		Help:      "test a signature against the trained model, usage: test <signer> <index>",
		Completer: createSignerCompleter(ctx),
		Func: func(c *ishell.Context) {
			if len(c.Args) < 2 {
				c.Err(errors.New("usage: test <signer> <index>"))
				return
			}

			signer := ctx.signerByName(c.Args[0])
			if signer == nil {
				c.Err(errors.New("signer doesn't exist"))
				return
			}

			index, err := strconv.Atoi(c.Args[1])
			if err != nil || index < 0 || index >= len(signer.Signatures) {
				c.Err(errors.New("invalid signature index"))
				return
			}

			signature := signer.Signatures[index]
			status, err := ctx.sessionVerifier().TestSignature(signature)
			if err != nil {
				c.Err(err)
				return
			}

			signature.VerificationStatus = status
			c.Printf("%s %s: %s (ground truth: %s)\n", signer.Name, signature.Name, status, signature.Authenticity)
		},
	}
}
