package cmd

import (
	"os"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func NewResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve AXIS=SIZE ...",
		Short: "Resolve a tensor's logical axes against the mesh",
		Args:  cobra.MinimumNArgs(1),
		RunE:  resolveHandler,
	}
}

func resolveHandler(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	axes, err := parseTensorAxes(args)
	if err != nil {
		return err
	}

	assignment, err := cfg.Resolver().Resolve(axes)
	if err != nil {
		return err
	}

	var data [][]string
	for _, shard := range assignment {
		physical := strings.Join(shard.Physical, ", ")
		if shard.Replicated() {
			physical = "(replicated)"
		}
		data = append(data, []string{
			shard.Logical,
			physical,
			strconv.Itoa(shard.Factor),
			strconv.Itoa(shard.LocalSize),
		})
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"LOGICAL AXIS", "MESH AXES", "SHARDS", "LOCAL SIZE"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.AppendBulk(data)
	table.Render()

	return nil
}
