package main

import (
	"fmt"

	"github.com/GriffinCanCode/AgentOS/pipeprov/internal/manifest"
)

type manifestCmd struct {
	Specs  []string `arg:"" help:"Pipes as PATH[:MODE]." name:"spec"`
	Format string   `default:"yaml" enum:"yaml,toml,json" help:"Manifest format (${enum})." short:"f"`
}

func (c *manifestCmd) Run(rt *runtime) error {
	reqs, err := manifest.ParseSpecs(c.Specs)
	if err != nil {
		return err
	}
	data, err := manifest.FromRequests(reqs).Encode(manifest.Format(c.Format))
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if len(data) > 0 && data[len(data)-1] != '\n' {
		data = append(data, '\n')
	}
	_, err = rt.Out.Write(data)
	return err
}
