package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/chartviz/engine/internal/editor"
	"github.com/chartviz/engine/internal/square"
	"github.com/chartviz/engine/internal/theme"
)

func newClassesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classes [tree.json]",
		Short: "List every square with its class, depth and detailings link",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := readTree(cmd, argOrStdin(args))
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tDEPTH\tCLASS\tPARENT\tLABEL\tDETAILINGS")
			tree.Walk(func(id square.NodeID, n *square.Node, depth int) bool {
				link, err := editor.DetailingsLink(editor.ContextFor(tree, id))
				if err != nil {
					link = "-"
				}
				fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\t%s\n",
					id, depth, tree.Class(id), tree.ParentText(id), n.Name, link)
				return true
			})
			return tw.Flush()
		},
	}
}

func newThemesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "themes",
		Short: "List the available palettes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range theme.Names() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}
