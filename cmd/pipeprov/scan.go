package main

import (
	"context"

	"github.com/GriffinCanCode/AgentOS/pipeprov/internal/pipes"
)

type scanCmd struct {
	Root  string `arg:"" help:"Directory to search." type:"existingdir"`
	Match string `help:"Only list pipes whose path relative to ROOT matches this glob (supports **)." placeholder:"GLOB"`
}

func (c *scanCmd) Run(rt *runtime) error {
	nodes, err := pipes.Scan(context.Background(), c.Root, c.Match)
	if err != nil {
		return err
	}
	if nodes == nil {
		nodes = []pipes.Node{}
	}
	return render(rt.Out, rt.Output, nodes)
}
