package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/alghazaly/partsync/internal/core/domain"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect the local collection cache",
	RunE:  runCacheList,
}

var cacheShowCmd = &cobra.Command{
	Use:   "show [collection]",
	Short: "Print the cached records of a collection",
	Args:  cobra.ExactArgs(1),
	RunE:  runCacheShow,
}

func init() {
	cacheCmd.AddCommand(cacheShowCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runCacheList(cmd *cobra.Command, _ []string) error {
	if catalogService == nil {
		return errNotConfigured("catalog")
	}

	infos, err := catalogService.Collections(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}

	return render(cmd, infos, func(w io.Writer) {
		if len(infos) == 0 {
			fprintf(w, "Cache is empty.\n")
			return
		}
		fprintf(w, "%-16s  %7s  %s\n", "COLLECTION", "RECORDS", "FETCHED")
		for _, info := range infos {
			fprintf(w, "%-16s  %7d  %s\n", info.Collection, info.Count, formatWhen(info.Cursor))
		}
	})
}

func runCacheShow(cmd *cobra.Command, args []string) error {
	if catalogService == nil {
		return errNotConfigured("catalog")
	}

	collection := domain.Collection(args[0])
	records, err := catalogService.Records(commandContext(cmd), collection)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", collection, err)
	}

	return render(cmd, records, func(w io.Writer) {
		if len(records) == 0 {
			fprintf(w, "No cached %s.\n", collection)
			return
		}
		for _, r := range records {
			fprintf(w, "%s  %s\n", r.ID, truncate(string(r.Data), 100))
		}
	})
}
