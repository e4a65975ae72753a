package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/HaiFongPan/folio-cli/internal/r2"
	"github.com/HaiFongPan/folio-cli/internal/utils"
)

var (
	archiveLimit int32
	showSize     bool
	showDate     bool
	showURL      bool
)

// archiveCmd represents the archive command
var archiveCmd = &cobra.Command{
	Use:   "archive [sub-prefix]",
	Short: "List numbered documents archived in the R2 bucket",
	Long: `List the processed documents copied to the bucket when output.archive
is enabled. Listing starts at output.archive_prefix; an argument narrows it.

Examples:
  folio-cli archive                  # List the archive prefix
  folio-cli archive Foliado_acta     # Documents starting with Foliado_acta
  folio-cli archive --date=false     # Hide modification dates
  folio-cli archive --url            # Add download links`,
	Args: cobra.MaximumNArgs(1),
	RunE: listArchive,
}

func init() {
	rootCmd.AddCommand(archiveCmd)

	archiveCmd.Flags().Int32VarP(&archiveLimit, "limit", "l", 1000, "maximum number of documents to list")
	archiveCmd.Flags().BoolVar(&showSize, "size", true, "show file sizes")
	archiveCmd.Flags().BoolVar(&showDate, "date", true, "show modification dates")
	archiveCmd.Flags().BoolVar(&showURL, "url", false, "show download links")
}

func listArchive(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	var sub string
	if len(args) > 0 {
		sub = args[0]
	}

	client, err := r2.NewClient(&cfg.R2)
	if err != nil {
		return fmt.Errorf("failed to create R2 client: %w", err)
	}

	logrus.Debugf("Listing archive in bucket %s under %s%s", client.GetBucketName(), cfg.Output.ArchivePrefix, sub)

	archiver := r2.NewArchiver(client.GetS3Client(), client.GetBucketName(), cfg.Output.ArchivePrefix)
	docs, err := archiver.List(cmd.Context(), sub, archiveLimit)
	if err != nil {
		return err
	}

	if len(docs) == 0 {
		fmt.Println(color.YellowString("No archived documents under %q", cfg.Output.ArchivePrefix+sub))
		return nil
	}

	var urls *utils.URLGenerator
	if showURL {
		urls = utils.NewURLGenerator(s3.NewPresignClient(client.GetS3Client()), client.GetBucketName(), cfg.Output.PublicDomain)
	}
	return outputTable(cmd.Context(), docs, urls)
}

func outputTable(ctx context.Context, docs []r2.ArchivedDocument, urls *utils.URLGenerator) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

	header := "NAME"
	if showSize {
		header += "\tSIZE"
	}
	if showDate {
		header += "\tMODIFIED"
	}
	if urls != nil {
		header += "\tURL"
	}
	fmt.Fprintln(w, header)

	for _, doc := range docs {
		line := doc.Key
		if showSize {
			line += fmt.Sprintf("\t%s", utils.FormatBytes(doc.Size))
		}
		if showDate {
			line += fmt.Sprintf("\t%s", doc.LastModified.Format(time.RFC3339))
		}
		if urls != nil {
			link, err := urls.GetPreferredURL(ctx, doc.Key)
			if err != nil {
				link = color.RedString("unavailable")
			}
			line += "\t" + link
		}
		fmt.Fprintln(w, line)
	}

	return w.Flush()
}
