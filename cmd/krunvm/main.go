// Package main is the entry point for krunvm.
package main

import (
	"fmt"
	"os"

	"github.com/javanstorm/krunvm/internal/cli"
	"github.com/javanstorm/krunvm/pkg/hypervisor"
	"github.com/javanstorm/krunvm/pkg/hypervisor/libkrun"
)

func openLibkrun() (hypervisor.Runtime, error) {
	rt, err := libkrun.New()
	if err != nil {
		return nil, err
	}
	return rt, nil
}

func main() {
	if err := cli.Execute(openLibkrun); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
