package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var facesCmd = &cobra.Command{
	Use:   "faces",
	Short: "Manage stored face encodings",
}

var facesListCmd = &cobra.Command{
	Use:   "list <user-id>",
	Short: "List a user's stored encodings, oldest first",
	Args:  cobra.ExactArgs(1),
	RunE:  runFacesList,
}

var facesRemoveCmd = &cobra.Command{
	Use:   "remove <user-id> <record-id>",
	Short: "Remove a single stored encoding",
	Args:  cobra.ExactArgs(2),
	RunE:  runFacesRemove,
}

func init() {
	rootCmd.AddCommand(facesCmd)
	facesCmd.AddCommand(facesListCmd)
	facesCmd.AddCommand(facesRemoveCmd)
}

func runFacesList(cmd *cobra.Command, args []string) error {
	userID := args[0]

	ctx := context.Background()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	vectors, err := a.store.GetAll(ctx, userID)
	if err != nil {
		return fmt.Errorf("listing encodings: %w", err)
	}

	if len(vectors) == 0 {
		fmt.Printf("No encodings stored for user %s\n", userID)
		return nil
	}

	fmt.Printf("User %s has %d/%d encodings:\n", userID, len(vectors), a.cfg.Recognition.MaxImagesPerUser)
	for _, v := range vectors {
		fmt.Printf("  %s  %s  %s\n", v.ID, v.CreatedAt.Format(time.RFC3339), v.SourceRef)
	}
	return nil
}

func runFacesRemove(cmd *cobra.Command, args []string) error {
	userID, recordID := args[0], args[1]

	ctx := context.Background()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	removed, err := a.manager.Remove(ctx, userID, recordID)
	if err != nil {
		return fmt.Errorf("removing encoding: %w", err)
	}
	if !removed {
		fmt.Printf("No encoding %s found for user %s\n", recordID, userID)
		return nil
	}

	fmt.Printf("Removed encoding %s for user %s\n", recordID, userID)
	return nil
}
