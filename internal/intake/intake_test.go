package intake

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	mib = int64(1024 * 1024)
	gib = 1024 * mib
)

// sparseFile creates a file of the given size without writing its content
func sparseFile(t *testing.T, name string, size int64) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, f.Truncate(size))
	require.NoError(t, f.Close())
	return path
}

func TestPolicy_SubmitEnabled(t *testing.T) {
	p := DefaultPolicy()

	tests := []struct {
		name string
		sel  *FileSelection
		want bool
	}{
		{"no selection", nil, false},
		{"empty file", &FileSelection{Size: 0}, false},
		{"one byte", &FileSelection{Size: 1}, true},
		{"exactly hard limit", &FileSelection{Size: 2 * gib}, true},
		{"one byte over", &FileSelection{Size: 2*gib + 1}, false},
		{"above soft limit", &FileSelection{Size: 50 * mib}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.SubmitEnabled(tt.sel))
		})
	}
}

func TestPolicy_ValidateHardLimit(t *testing.T) {
	p := DefaultPolicy()

	assert.NoError(t, p.ValidateHardLimit(nil))
	assert.NoError(t, p.ValidateHardLimit(&FileSelection{Size: 2 * gib}))

	err := p.ValidateHardLimit(&FileSelection{Size: 2*gib + gib/2})
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, 2*gib+gib/2, verr.Size)
	assert.Contains(t, err.Error(), "2560.00 MB")
	assert.Contains(t, err.Error(), "2 GB")
}

func TestPolicy_PreviewEligibility(t *testing.T) {
	p := DefaultPolicy()

	assert.Equal(t, NoDocument, p.PreviewEligibility(nil))
	assert.Equal(t, NoDocument, p.PreviewEligibility(&FileSelection{Size: mib, MIMEType: "image/png"}))
	assert.Equal(t, Eligible, p.PreviewEligibility(&FileSelection{Size: 30 * mib, MIMEType: "application/pdf"}))
	assert.Equal(t, TooLarge, p.PreviewEligibility(&FileSelection{Size: 30*mib + 1, MIMEType: "application/pdf"}))
	assert.Equal(t, 30.0, p.SoftLimitMB())
}

func TestController_Adopt(t *testing.T) {
	first := sparseFile(t, "first.pdf", 10*mib)
	second := sparseFile(t, "second.pdf", 20*mib)

	c := NewController(DefaultPolicy())

	sel, err := c.Adopt(SourcePicker, []string{first})
	require.NoError(t, err)
	assert.Equal(t, "first.pdf", sel.Name)
	assert.Equal(t, 10*mib, sel.Size)
	assert.True(t, sel.IsPDF())
	assert.Equal(t, SourcePicker, sel.Source)
	assert.True(t, c.SubmitEnabled())

	// a new selection fully replaces the previous one
	sel2, err := c.Adopt(SourceDrop, []string{second, first})
	require.NoError(t, err)
	assert.Same(t, sel2, c.Selection())
	assert.Equal(t, "second.pdf", c.Selection().Name)
	assert.Greater(t, sel2.ID, sel.ID)
	assert.Equal(t, sel2.Path, c.Input())
}

func TestController_Adopt_EmptyListIgnored(t *testing.T) {
	c := NewController(DefaultPolicy())
	sel, err := c.Adopt(SourcePicker, nil)
	assert.NoError(t, err)
	assert.Nil(t, sel)
	assert.Nil(t, c.Selection())
	assert.False(t, c.SubmitEnabled())
}

func TestController_Adopt_MissingFileKeepsSelection(t *testing.T) {
	path := sparseFile(t, "kept.pdf", mib)
	c := NewController(DefaultPolicy())
	_, err := c.Adopt(SourcePicker, []string{path})
	require.NoError(t, err)

	_, err = c.Adopt(SourceDrop, []string{"/nonexistent/gone.pdf"})
	assert.Error(t, err)
	assert.Equal(t, "kept.pdf", c.Selection().Name)
}

func TestController_HardLimitAndClear(t *testing.T) {
	path := sparseFile(t, "huge.pdf", 2*gib+gib/2)
	c := NewController(DefaultPolicy())

	_, err := c.AdoptDropped("'" + path + "'")
	require.NoError(t, err)
	assert.False(t, c.SubmitEnabled())
	assert.ErrorContains(t, c.ValidateHardLimit(), "2560.00 MB")

	c.Clear()
	assert.Nil(t, c.Selection())
	assert.Empty(t, c.Input())
	assert.NoError(t, c.ValidateHardLimit())
}

func TestController_AdoptDropped_Nothing(t *testing.T) {
	c := NewController(DefaultPolicy())
	_, err := c.AdoptDropped("   ")
	assert.ErrorIs(t, err, ErrNoFile)
}

func TestStat_RejectsDirectory(t *testing.T) {
	_, err := Stat(t.TempDir(), SourcePicker)
	assert.ErrorContains(t, err, "not a regular file")
}

func TestParseDropped(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"plain", "/tmp/a.pdf", []string{"/tmp/a.pdf"}},
		{"escaped spaces", `/tmp/my\ file.pdf`, []string{"/tmp/my file.pdf"}},
		{"single quoted", `'/tmp/my file.pdf'`, []string{"/tmp/my file.pdf"}},
		{"double quoted", `"/tmp/it's.pdf"`, []string{"/tmp/it's.pdf"}},
		{"file uri", "file:///tmp/Acta%20final.pdf", []string{"/tmp/Acta final.pdf"}},
		{"several", "/tmp/a.pdf /tmp/b.pdf\n/tmp/c.pdf", []string{"/tmp/a.pdf", "/tmp/b.pdf", "/tmp/c.pdf"}},
		{"trailing newline", "/tmp/a.pdf\n", []string{"/tmp/a.pdf"}},
		{"empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseDropped(tt.in))
		})
	}
}

func TestCountPages_NotAPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.pdf")
	require.NoError(t, os.WriteFile(path, []byte("not a pdf"), 0644))

	_, err := CountPages(path)
	assert.Error(t, err)
}
