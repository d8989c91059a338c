package main

import (
	"fmt"

	"github.com/SpikedPunchVictim/gaia/dom"
	"github.com/SpikedPunchVictim/gaia/dom/domtest"
)

func status(args []string) error {
	f, err := domtest.New()
	if err != nil {
		return err
	}
	mf, err := dom.Manifest(nil).Update(f.Project)
	if err != nil {
		return err
	}
	for _, v := range mf {
		name := v.Name
		if name == "" {
			name = "(root)"
		}
		fmt.Printf("%-24s v%-3d %s\n", name, v.Vers, v.Hash[:12])
	}
	return nil
}
