package intake

import (
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// PageCounter returns the number of pages of a local PDF
type PageCounter func(path string) (int, error)

// CountPages reads the page count with pdfcpu
func CountPages(path string) (int, error) {
	n, err := api.PageCountFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to count pages: %w", err)
	}
	return n, nil
}
