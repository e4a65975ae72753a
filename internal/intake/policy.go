package intake

import "fmt"

// Default thresholds
const (
	DefaultHardLimit int64 = 2 * 1024 * 1024 * 1024
	DefaultSoftLimit int64 = 30 * 1024 * 1024
)

// Policy is the two-tier size policy: the hard limit bounds uploads,
// the soft limit only bounds previews.
type Policy struct {
	HardLimit int64
	SoftLimit int64
}

// DefaultPolicy returns the 2 GiB / 30 MiB policy
func DefaultPolicy() Policy {
	return Policy{HardLimit: DefaultHardLimit, SoftLimit: DefaultSoftLimit}
}

// ValidationError is returned when a file exceeds the hard limit
type ValidationError struct {
	Size  int64
	Limit int64
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("ERROR: the file exceeds the maximum allowed size of %s. Your file is %.2f MB.",
		formatLimit(e.Limit), float64(e.Size)/(1024*1024))
}

// ValidateHardLimit rejects selections larger than the hard limit
func (p Policy) ValidateHardLimit(sel *FileSelection) error {
	if sel == nil || sel.Size <= p.HardLimit {
		return nil
	}
	return &ValidationError{Size: sel.Size, Limit: p.HardLimit}
}

// SubmitEnabled reports whether a selection may be uploaded
func (p Policy) SubmitEnabled(sel *FileSelection) bool {
	return sel != nil && sel.Size > 0 && sel.Size <= p.HardLimit
}

// Eligibility is the outcome of the preview gate
type Eligibility int

const (
	NoDocument Eligibility = iota // no file, or not a PDF
	TooLarge
	Eligible
)

// PreviewEligibility decides whether a preview may be requested for sel
func (p Policy) PreviewEligibility(sel *FileSelection) Eligibility {
	switch {
	case sel == nil || !sel.IsPDF():
		return NoDocument
	case sel.Size > p.SoftLimit:
		return TooLarge
	default:
		return Eligible
	}
}

// SoftLimitMB is the soft limit in MiB for messages
func (p Policy) SoftLimitMB() float64 {
	return float64(p.SoftLimit) / (1024 * 1024)
}

func formatLimit(n int64) string {
	const gib = 1024 * 1024 * 1024
	if n >= gib && n%gib == 0 {
		return fmt.Sprintf("%d GB", n/gib)
	}
	return fmt.Sprintf("%.0f MB", float64(n)/(1024*1024))
}
