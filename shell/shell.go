package shell

import (
	"fmt"

	"github.com/abiosoft/ishell"

	"siginspect/config"
	"siginspect/model"
	"siginspect/verifier"
	"siginspect/version"
)

type ShellCtxt struct {
	signers  []*model.Signer
	verifier *verifier.Verifier
	config   config.Config
}

func (ctx *ShellCtxt) signerByName(name string) *model.Signer {
	for _, signer := range ctx.signers {
		if signer.Name == name {
			return signer
		}
	}
	return nil
}

// sessionVerifier hands out the lazily created verifier owned by this
// shell session.
func (ctx *ShellCtxt) sessionVerifier() *verifier.Verifier {
	if ctx.verifier == nil {
		ctx.verifier = verifier.New(ctx.config.ClassifierID)
	}
	return ctx.verifier
}

func (ctx *ShellCtxt) prompt() string {
	return fmt.Sprintf("[%d signers]>", len(ctx.signers))
}

func createSignerCompleter(ctx *ShellCtxt) func(args []string) []string {
	return func(args []string) []string {
		names := make([]string, 0, len(ctx.signers))
		for _, signer := range ctx.signers {
			names = append(names, signer.Name)
		}
		return names
	}
}

// RunShell starts the interactive shell, or executes args as a single
// command when given.
func RunShell(cfg config.Config, args []string) error {
	shell := ishell.New()
	ctx := &ShellCtxt{config: cfg}

	shell.Println("siginspect version", version.Version)
	shell.SetPrompt(ctx.prompt())

	shell.AddCmd(importCmd(ctx))
	shell.AddCmd(lsCmd(ctx))
	shell.AddCmd(showCmd(ctx))
	shell.AddCmd(trainCmd(ctx))
	shell.AddCmd(testCmd(ctx))
	shell.AddCmd(exportCmd(ctx))
	shell.AddCmd(versionCmd(ctx))

	defer func() {
		if ctx.verifier != nil {
			ctx.verifier.Dispose()
		}
	}()

	if len(args) > 0 {
		return shell.Process(args...)
	}

	shell.Run()
	return nil
}
