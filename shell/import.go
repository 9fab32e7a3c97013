package shell

import (
	"errors"
	"fmt"
	"io/ioutil"

	"github.com/abiosoft/ishell"

	"siginspect/decoder"
)

func importCmd(ctx *ShellCtxt) *ishell.Cmd {
	return &ishell.Cmd{
		Name: "import",
		Help: "import a signature file, usage: import <file> [signerId...]",
		Func: func(c *ishell.Context) {
			if len(c.Args) == 0 {
				c.Err(errors.New("missing source file"))
				return
			}

			fileName := c.Args[0]
			signerIDs := c.Args[1:]

			data, err := ioutil.ReadFile(fileName)
			if err != nil {
				c.Err(err)
				return
			}

			d, err := decoder.ForFile(fileName, ctx.config.BatchSize)
			if err != nil {
				c.Err(err)
				return
			}
			defer d.Dispose()

			c.Println(fmt.Sprintf("importing %s ...", fileName))

			result, err := d.Parse(decoder.File{Name: fileName, Data: data}, ctx.signers, signerIDs)
			if err != nil {
				c.Err(err)
				return
			}

			// Augmented signers are already in the roster; only the new
			// ones need folding in.
			ctx.signers = append(ctx.signers, result.NewSigners...)

			c.Printf("%d new signer(s), %d existing signer(s) gained signatures\n",
				len(result.NewSigners), len(result.SignersWithNewSignatures))
			c.SetPrompt(ctx.prompt())
		},
	}
}
