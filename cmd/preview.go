package cmd

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os"
	"time"

	"github.com/disintegration/imaging"
	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/HaiFongPan/folio-cli/internal/foliator"
	"github.com/HaiFongPan/folio-cli/internal/intake"
	"github.com/HaiFongPan/folio-cli/internal/preview"
	img "github.com/HaiFongPan/folio-cli/internal/tui/image"
)

var (
	previewOutput string
	previewMethod string
	previewFields *fieldFlags
)

// previewCmd represents the preview command
var previewCmd = &cobra.Command{
	Use:   "preview <file.pdf>",
	Short: "Preview the first numbered page of a PDF",
	Long: `Ask the foliation service for the first page with the folio applied and
either save it as an image or draw it in the terminal.

Examples:
  folio-cli preview acta.pdf                       # Draw in the terminal
  folio-cli preview acta.pdf -o first.png          # Save as PNG
  folio-cli preview acta.pdf --corner top-left --method ansi`,
	Args: cobra.ExactArgs(1),
	RunE: previewFile,
}

func init() {
	rootCmd.AddCommand(previewCmd)

	previewCmd.Flags().StringVarP(&previewOutput, "output", "o", "", "write the preview to this image file")
	previewCmd.Flags().StringVar(&previewMethod, "method", "", "terminal image method (overrides ui.image_preview_method)")
	previewFields = bindFieldFlags(previewCmd)
}

func previewFile(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	conf, err := previewFields.configuration(cmd, cfg)
	if err != nil {
		return err
	}

	sel, err := intake.Stat(args[0], intake.SourcePicker)
	if err != nil {
		return fmt.Errorf("failed to open document: %w", err)
	}
	switch newPolicy(cfg).PreviewEligibility(sel) {
	case intake.NoDocument:
		return fmt.Errorf("%s is not a PDF", sel.Name)
	case intake.TooLarge:
		return fmt.Errorf("%s is %.1f MB, above the %.0f MB preview limit",
			sel.Name, sel.SizeMB(), newPolicy(cfg).SoftLimitMB())
	}

	client, err := foliator.NewClient(&cfg.Service)
	if err != nil {
		return fmt.Errorf("failed to create foliation client: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Duration(cfg.Service.Timeout)*time.Second*time.Duration(cfg.Service.MaxRetries+1))
	defer cancel()

	data, err := client.Preview(ctx, sel, conf.Snapshot())
	if err != nil {
		return fmt.Errorf("failed to preview %s: %w", sel.Name, err)
	}

	page, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("failed to decode preview: %w", err)
	}
	logrus.WithFields(logrus.Fields{"width": page.Bounds().Dx(), "height": page.Bounds().Dy()}).Debug("Preview received")

	if previewOutput != "" {
		if err := imaging.Save(page, previewOutput); err != nil {
			return fmt.Errorf("failed to save preview: %w", err)
		}
		fmt.Printf("%s %s\n", color.GreenString("✓ preview saved to"), previewOutput)
		return nil
	}

	return drawPreview(page, sel.Name)
}

// drawPreview renders the page in the terminal through a temporary preview store
func drawPreview(page image.Image, name string) error {
	method := previewMethod
	if method == "" {
		method = GetConfig().UI.ImagePreviewMethod
	}
	renderer := img.NewRenderer(method)
	if renderer.Protocol() == img.ProtocolNone {
		return fmt.Errorf("image preview is disabled (method %q)", method)
	}

	cols, rows := 80, 24
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		cols, rows = w, h-2
	}

	store, err := preview.NewStore("")
	if err != nil {
		return fmt.Errorf("failed to create preview store: %w", err)
	}
	defer store.Close()

	handle, err := store.Create(page)
	if err != nil {
		return err
	}

	out, err := renderer.Render(handle.Path, handle.ID, cols, rows)
	if err != nil {
		return err
	}

	fmt.Println(color.CyanString("📄 %s · %dx%d px", name, handle.Width, handle.Height))
	fmt.Println(out.Data)
	return nil
}
