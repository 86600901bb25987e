package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"akreditasi-jurnal/internal/models"
	"akreditasi-jurnal/internal/service"
)

// cliActor attributes CLI mutations in the audit trail
var cliActor = models.Actor{IPAddress: "local", UserAgent: "evalctl"}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return uint(id), nil
}

func newTreeCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "tree <template-id>",
		Short: "Print the category tree of a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			tree, err := service.NewTreeAssembler(e.store, e.cfg.Evaluation).BuildTree(cmd.Context(), id)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), tree)
			}
			printTree(cmd, tree, 0)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the tree as JSON")
	return cmd
}

func printTree(cmd *cobra.Command, nodes []models.TreeNode, depth int) {
	for _, n := range nodes {
		line := fmt.Sprintf("%s%s %s", strings.Repeat("  ", depth), n.Code, n.Title)
		if n.Weight != nil {
			line += fmt.Sprintf(" [%g]", *n.Weight)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", line, n.ID)
		printTree(cmd, n.Children, depth+1)
	}
}

func newWeightsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "weights <template-id>",
		Short: "Print the category weight summary of a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			summary, err := service.NewWeightAccountant(e.store, e.cfg.Evaluation).Summary(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), summary)
		},
	}
}

func newCloneCmd() *cobra.Command {
	var (
		name     string
		activate bool
	)

	cmd := &cobra.Command{
		Use:   "clone <template-id>",
		Short: "Deep-copy a template under a new name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			req := models.CloneRequest{Name: name}
			if cmd.Flags().Changed("activate") {
				req.Activate = &activate
			}
			clone, err := service.NewHierarchyCloner(e.store, e.cfg.Evaluation).CloneTemplate(cmd.Context(), id, req, cliActor)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cloned template %d as %q (id %d, active %t)\n", id, clone.Name, clone.ID, clone.IsActive)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Name of the new template (required)")
	cmd.Flags().BoolVar(&activate, "activate", false, "Activate the clone")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newCheckDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check-delete <kind> <id> | check-delete <node-id>",
		Short: "Report whether a template node may be deleted",
		Long:  "kind is template, category, subcategory, indicator or essay. A tree node id such as indicator-12 is accepted as a single argument.",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				kind models.EntityKind
				id   uint
				err  error
			)
			if len(args) == 1 {
				kind, id, err = models.ParseNodeID(args[0])
			} else {
				kind = models.EntityKind(args[0])
				id, err = parseID(args[1])
			}
			if err != nil {
				return err
			}

			e, err := openEnv()
			if err != nil {
				return err
			}
			defer e.Close()

			verdict, err := service.NewDeletionGuard(e.store).Check(cmd.Context(), kind, id)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), verdict)
		},
	}
}
