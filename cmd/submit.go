package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/HaiFongPan/folio-cli/internal/config"
	"github.com/HaiFongPan/folio-cli/internal/foliator"
	"github.com/HaiFongPan/folio-cli/internal/form"
	"github.com/HaiFongPan/folio-cli/internal/intake"
	"github.com/HaiFongPan/folio-cli/internal/r2"
	"github.com/HaiFongPan/folio-cli/internal/upload"
	"github.com/HaiFongPan/folio-cli/internal/utils"
)

// fieldFlags holds the form fields given on the command line
type fieldFlags struct {
	values map[string]*string
}

var fieldFlagNames = map[string]string{
	form.FieldStartNumber: "start-number",
	form.FieldStartPage:   "start-page",
	form.FieldEndPage:     "end-page",
	form.FieldFontSize:    "font-size",
	form.FieldOffset:      "offset",
	form.FieldCorner:      "corner",
	form.FieldOrientation: "orientation",
}

func bindFieldFlags(cmd *cobra.Command) *fieldFlags {
	f := &fieldFlags{values: make(map[string]*string)}
	for _, field := range form.New(nil).Fields() {
		usage := field.Label
		if field.Kind == form.KindSelect {
			usage = fmt.Sprintf("%s (%v)", field.Label, field.Options)
		}
		f.values[field.Name] = cmd.Flags().String(fieldFlagNames[field.Name], "", usage)
	}
	return f
}

// configuration starts from the configured defaults and applies the flags that were set
func (f *fieldFlags) configuration(cmd *cobra.Command, cfg *config.Config) (*form.Configuration, error) {
	conf := form.New(cfg.Form.Values())
	for name, value := range f.values {
		if !cmd.Flags().Changed(fieldFlagNames[name]) {
			continue
		}
		if err := conf.Set(name, *value); err != nil {
			return nil, fmt.Errorf("--%s: %w", fieldFlagNames[name], err)
		}
	}
	return conf, nil
}

var (
	submitNoProgress bool
	submitFields     *fieldFlags
)

// submitCmd represents the submit command
var submitCmd = &cobra.Command{
	Use:   "submit <file.pdf>",
	Short: "Number the pages of a PDF and save the result",
	Long: `Upload a PDF to the foliation service and save the numbered document
as Foliado_<name> in the output directory.

Examples:
  folio-cli submit acta.pdf
  folio-cli submit acta.pdf --start-number 120 --corner top-right
  folio-cli submit acta.pdf --start-page 3 --end-page 10 --no-progress`,
	Args: cobra.ExactArgs(1),
	RunE: submitFile,
}

func init() {
	rootCmd.AddCommand(submitCmd)

	submitCmd.Flags().BoolVar(&submitNoProgress, "no-progress", false, "disable progress bar")
	submitFields = bindFieldFlags(submitCmd)
}

func submitFile(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	conf, err := submitFields.configuration(cmd, cfg)
	if err != nil {
		return err
	}

	sel, err := intake.Stat(args[0], intake.SourcePicker)
	if err != nil {
		return fmt.Errorf("failed to open document: %w", err)
	}
	policy := newPolicy(cfg)
	if err := policy.ValidateHardLimit(sel); err != nil {
		return err
	}
	if !policy.SubmitEnabled(sel) {
		return fmt.Errorf("%s is empty", sel.Name)
	}

	client, err := foliator.NewClient(&cfg.Service)
	if err != nil {
		return fmt.Errorf("failed to create foliation client: %w", err)
	}
	sink, err := newSink(cfg)
	if err != nil {
		return err
	}

	var onProgress foliator.ProgressFunc
	if !submitNoProgress && !quiet && term.IsTerminal(int(os.Stderr.Fd())) {
		bar := utils.NewTransferBar(os.Stderr, sel.Size, fmt.Sprintf("Numbering %s", sel.Name))
		defer bar.Finish()
		onProgress = bar.Update

		if archive, ok := sink.(*r2.ArchiveSink); ok {
			archive.OnProgress(archiveProgress(sel.Name))
		}
	}

	logrus.WithFields(logrus.Fields{"file": sel.Name, "size": sel.Size}).Info("Submitting document")
	started := time.Now()

	res, err := client.Submit(cmd.Context(), sel, conf.Snapshot(), onProgress)
	if err != nil {
		return fmt.Errorf("failed to number %s: %w", sel.Name, err)
	}
	defer res.Body.Close()

	path, err := sink.Save(cmd.Context(), upload.ResultName(cfg.Output.Prefix, sel.Name), res.Body)
	if err != nil {
		return fmt.Errorf("failed to save result: %w", err)
	}

	fmt.Printf("%s %s (first folio %s, %s)\n",
		color.GreenString("✓ saved"),
		path,
		form.FolioLabel(conf.Get(form.FieldStartNumber)),
		time.Since(started).Round(time.Millisecond))
	return nil
}

// archiveProgress draws a second bar for the copy into the bucket; the
// result size is known only once the archive upload starts
func archiveProgress(name string) r2.ProgressCallback {
	var bar *utils.TransferBar
	return func(uploaded, total int64, _ float64) {
		if bar == nil {
			bar = utils.NewTransferBar(os.Stderr, total, fmt.Sprintf("Archiving %s", name))
		}
		bar.Update(uploaded, total)
	}
}
