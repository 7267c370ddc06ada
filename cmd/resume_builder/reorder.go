package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/resume-builder/internal/ordering"
)

var (
	reorderKind   string
	reorderParent string
	reorderIDs    []string
	reorderNorm   bool
)

var reorderCmd = &cobra.Command{
	Use:   "reorder",
	Short: "Reorder the children of a resume, section or item",
	Long: "Sets the order of every child of the parent in one atomic batch. --ids must list each current " +
		"child exactly once. --kind names the parent: resume (sections), section (items) or item (sub-items). " +
		"--normalize instead compacts the existing order to 0..n-1.",
	RunE: runReorder,
}

func init() {
	reorderCmd.Flags().StringVar(&reorderKind, "kind", "", "Parent kind: resume, section or item (required)")
	reorderCmd.Flags().StringVar(&reorderParent, "parent", "", "Parent ID (required)")
	reorderCmd.Flags().StringSliceVar(&reorderIDs, "ids", nil, "Child IDs in the desired order")
	reorderCmd.Flags().BoolVar(&reorderNorm, "normalize", false, "Compact the current order instead of applying --ids")
	_ = reorderCmd.MarkFlagRequired("kind")
	_ = reorderCmd.MarkFlagRequired("parent")
	reorderCmd.MarkFlagsOneRequired("ids", "normalize")
	reorderCmd.MarkFlagsMutuallyExclusive("ids", "normalize")
	rootCmd.AddCommand(reorderCmd)
}

func runReorder(cmd *cobra.Command, _ []string) error {
	kind, err := ordering.ParseKind(reorderKind)
	if err != nil {
		return err
	}
	parentID, err := uuid.Parse(reorderParent)
	if err != nil {
		return fmt.Errorf("invalid parent id %q: %w", reorderParent, err)
	}
	ids, err := parseIDs(reorderIDs)
	if err != nil {
		return err
	}

	a, err := newApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	database, err := a.requireDatabase(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	engine := ordering.NewEngine(database, a.log("ordering"), nil)
	if reorderNorm {
		if err := engine.Normalize(ctx, kind, parentID); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Normalized children of %s %s\n", kind, parentID)
		return nil
	}
	if err := engine.Reorder(ctx, kind, parentID, ids); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Reordered %d children of %s %s\n", len(ids), kind, parentID)
	return nil
}

func parseIDs(raw []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	for i, r := range raw {
		id, err := uuid.Parse(r)
		if err != nil {
			return nil, fmt.Errorf("invalid id at position %d %q: %w", i, r, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
