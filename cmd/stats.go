package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show storage and configuration summary",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	owners := map[string]int{}
	vectors, err := a.store.All(ctx)
	if err != nil {
		return fmt.Errorf("reading encodings: %w", err)
	}
	for _, v := range vectors {
		owners[v.OwnerID]++
	}

	fmt.Printf("Encoder model:      %s (dim %d)\n", a.cfg.Encoder.Model, a.cfg.Recognition.EmbeddingDim)
	fmt.Printf("Match tolerance:    %.2f\n", a.cfg.Recognition.Tolerance)
	fmt.Printf("Quota per user:     %d\n", a.cfg.Recognition.MaxImagesPerUser)
	fmt.Printf("Stored encodings:   %d\n", len(vectors))
	fmt.Printf("Enrolled users:     %d\n", len(owners))
	fmt.Printf("Index size:         %d\n", a.index.Len())
	return nil
}
