package shell

import (
	"errors"
	"strconv"

	"github.com/abiosoft/ishell"

	"siginspect/model"
)

func trainCmd(ctx *ShellCtxt) *ishell.Cmd {
	return &ishell.Cmd{
		Name:      "train",
		Help:      "train the verifier on a signer's genuine signatures, usage: train <signer> [count]",
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

			count := len(signer.Signatures)
			if len(c.Args) > 1 {
				n, err := strconv.Atoi(c.Args[1])
				if err != nil {
					c.Err(errors.New("count must be a number"))
					return
				}
				count = n
			}

			var training []*model.Signature
			for _, signature := range signer.Signatures {
				if len(training) == count {
					break
				}
				if signature.Authenticity != model.AuthenticityGenuine {
					continue
				}
				training = append(training, signature)
			}

			c.Printf("training %s on %d genuine signature(s) ...\n", ctx.config.ClassifierID, len(training))

			if err := ctx.sessionVerifier().TrainUsingSignatures(training); err != nil {
				c.Err(err)
				return
			}

			for _, signature := range training {
				signature.VerificationStatus = model.StatusTraining
			}
			c.Println("done")
		},
	}
}
