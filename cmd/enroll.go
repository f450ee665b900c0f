package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kozaktomas/faceid/internal/face"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var enrollCmd = &cobra.Command{
	Use:   "enroll <user-id> <image>...",
	Short: "Enroll face images for a user",
	Long: `Enroll one or more face images for a user. Each image must contain
exactly one face. A directory argument enrolls every image file inside it.
When the user's quota is full, the oldest encodings are replaced.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runEnroll,
}

func init() {
	rootCmd.AddCommand(enrollCmd)
}

// collectImagePaths expands directory arguments into their image files.
func collectImagePaths(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", arg, err)
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot read directory %s: %w", arg, err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			switch strings.ToLower(filepath.Ext(entry.Name())) {
			case ".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp":
				paths = append(paths, filepath.Join(arg, entry.Name()))
			}
		}
	}
	if len(paths) == 0 {
		return nil, errors.New("no image files found")
	}
	return paths, nil
}

func runEnroll(cmd *cobra.Command, args []string) error {
	userID := args[0]

	paths, err := collectImagePaths(args[1:])
	if err != nil {
		return err
	}

	ctx := context.Background()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	bar := progressbar.Default(int64(len(paths)), "enrolling")

	var enrolled, failed int
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Printf("\n%s: %v\n", path, err)
			failed++
			bar.Add(1)
			continue
		}

		_, err = a.manager.Enroll(ctx, userID, data)
		if err != nil {
			switch {
			case errors.Is(err, face.ErrNoFaceDetected):
				fmt.Printf("\n%s: no face detected, skipped\n", path)
			case errors.Is(err, face.ErrMultipleFacesDetected):
				fmt.Printf("\n%s: multiple faces detected, skipped\n", path)
			default:
				fmt.Printf("\n%s: %v\n", path, err)
			}
			failed++
			bar.Add(1)
			continue
		}

		enrolled++
		bar.Add(1)
	}

	fmt.Printf("\nEnrolled %d image(s) for user %s", enrolled, userID)
	if failed > 0 {
		fmt.Printf(" (%d failed)", failed)
	}
	fmt.Println()

	count, err := a.store.Count(ctx, userID)
	if err == nil {
		fmt.Printf("User now has %d/%d stored encodings\n", count, a.cfg.Recognition.MaxImagesPerUser)
	}
	return nil
}
