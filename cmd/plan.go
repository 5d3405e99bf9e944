package cmd

import (
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/Edwinhr716/maxtext/format"
	"github.com/Edwinhr716/maxtext/planner"
)

func NewPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Build a sharding plan and memory estimate for a model shape",
		RunE:  planHandler,
	}

	cmd.Flags().Int("layers", 32, "Number of transformer layers")
	cmd.Flags().Int("heads", 32, "Number of attention heads")
	cmd.Flags().Int("kv-heads", 8, "Number of key/value heads")
	cmd.Flags().Int("head-dim", 128, "Attention head dimension")
	cmd.Flags().Int("embed", 4096, "Embedding dimension")
	cmd.Flags().Int("vocab", 32000, "Vocabulary size")
	cmd.Flags().Int("seq-len", 2048, "Sequence length")
	cmd.Flags().Int("bytes-per-element", 2, "Bytes per tensor element")
	cmd.Flags().Int("batch-size", 0, "Batch size (default from the configuration document)")

	return cmd
}

func planHandler(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	shape := planner.ModelShape{}
	for flag, dst := range map[string]*int{
		"layers":            &shape.Layers,
		"heads":             &shape.Heads,
		"kv-heads":          &shape.KVHeads,
		"head-dim":          &shape.HeadDim,
		"embed":             &shape.Embed,
		"vocab":             &shape.Vocab,
		"seq-len":           &shape.SeqLen,
		"bytes-per-element": &shape.BytesPerElement,
	} {
		if *dst, err = cmd.Flags().GetInt(flag); err != nil {
			return err
		}
	}

	batch, err := cmd.Flags().GetInt("batch-size")
	if err != nil {
		return err
	}

	plan, err := planner.Build(cmd.Context(), cfg, shape, batch)
	if err != nil {
		return err
	}

	var data [][]string
	for _, tp := range plan.Tensors {
		data = append(data, []string{
			tp.Name,
			tp.Assignment.String(),
			format.HumanNumber(tp.Elements),
			format.HumanBytes2(tp.Bytes),
			format.HumanBytes2(tp.LocalBytes),
		})
	}
	data = append(data, []string{
		"total",
		"devices=" + strconv.Itoa(plan.Devices),
		format.HumanNumber(plan.TotalElements),
		format.HumanBytes2(plan.TotalBytes),
		format.HumanBytes2(plan.TotalLocalBytes),
	})

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"TENSOR", "ASSIGNMENT", "ELEMENTS", "GLOBAL", "PER DEVICE"})
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
