package main

import (
	"flag"
	"fmt"
	"os"

	"siginspect/config"
	"siginspect/log"
	"siginspect/shell"
	"siginspect/version"
)

func main() {
	trace := flag.Bool("trace", false, "enable trace logging")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Version)
		return
	}

	cfg := config.Load()
	log.InitLog(*trace || cfg.Trace)

	if err := shell.RunShell(cfg, flag.Args()); err != nil {
		log.Error.Println(err)
		os.Exit(1)
	}
}
