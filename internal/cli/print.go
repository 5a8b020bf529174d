package cli

import (
	"fmt"

	lgtree "github.com/charmbracelet/lipgloss/tree"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/matzehuels/stacktree/pkg/errors"
	"github.com/matzehuels/stacktree/pkg/pipeline"
	"github.com/matzehuels/stacktree/pkg/render/nodelink"
	"github.com/matzehuels/stacktree/pkg/tree"
)

// printOpts holds the command-line flags for the print command.
type printOpts struct {
	selection
	depth  int
	order  string
	locale string
}

// printCommand creates the print command, which draws the aggregated tree
// in the terminal.
func (c *CLI) printCommand() *cobra.Command {
	var opts printOpts

	cmd := &cobra.Command{
		Use:     "print [table]",
		Short:   "Print the aggregated tree in the terminal",
		Example: `  stacktree print population.csv -d continent,country -m pop --order value --depth 1`,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPrint(cmd, args, &opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().IntVar(&opts.depth, "depth", 0, "levels to show below the root (0 = all)")
	cmd.Flags().StringVar(&opts.order, "order", "", "sibling order: first-seen (default), value, name")
	cmd.Flags().StringVar(&opts.locale, "locale", "en", "locale for number formatting (BCP 47)")

	return cmd
}

func (c *CLI) runPrint(cmd *cobra.Command, args []string, opts *printOpts) error {
	ctx := cmd.Context()
	tag, err := language.Parse(opts.locale)
	if err != nil {
		return errors.New(errors.ErrCodeInvalidInput, "invalid locale: %q", opts.locale)
	}
	if opts.order != "" {
		if err := pipeline.ValidateOrder(opts.order); err != nil {
			return err
		}
	}

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer runner.Close()

	var popts pipeline.Options
	opts.apply(cmd, cfg, &popts)

	t, err := c.loadTable(ctx, runner, cfg, args)
	if err != nil {
		return err
	}
	root, err := runner.Aggregate(ctx, t, popts)
	if err != nil {
		return err
	}
	if root.IsEmpty() {
		printWarning("Nothing to aggregate: set --dimension and --measure")
	}

	fmt.Fprintln(c.out, terminalTree(root, opts.depth, tree.Order(opts.order), tag))
	return nil
}

// terminalTree draws root with rounded branches. Each node shows its name
// and its locale-formatted value; the root shows the total.
func terminalTree(root *tree.Root, depth int, order tree.Order, tag language.Tag) string {
	nodes := tree.Prune(tree.Sort(root.Children, order), depth)
	label := StyleTitle.Render(root.Name)
	if !root.IsEmpty() {
		label += "  " + StyleNumber.Render(nodelink.FormatValue(root.Total(), tag))
	}
	t := lgtree.Root(label).
		Enumerator(lgtree.RoundedEnumerator).
		EnumeratorStyle(StyleDim)
	for _, n := range nodes {
		t.Child(terminalNode(n, tag))
	}
	return t.String()
}

func terminalNode(n *tree.Node, tag language.Tag) any {
	label := StyleValue.Render(n.Name) + "  " + StyleNumber.Render(nodelink.FormatValue(n.Value, tag))
	if n.IsLeaf() {
		return label
	}
	t := lgtree.New().Root(label).
		Enumerator(lgtree.RoundedEnumerator).
		EnumeratorStyle(StyleDim)
	for _, c := range n.Children {
		t.Child(terminalNode(c, tag))
	}
	return t
}
