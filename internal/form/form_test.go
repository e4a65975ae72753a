package form

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFolioLabel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"7", "#0007"},
		{"12345", "#12345"},
		{"1", "#0001"},
		{"", "#0001"},
		{"abc", "#0001"},
		{"0", "#0001"},
		{"-5", "#0001"},
		{"42abc", "#0042"},
		{" 9", "#0009"},
		{"3.7", "#0003"},
		{"12345678901", "#12345678901"},
		{"+25", "#0025"},
		// 超出 int64 时回退到 1
		{"99999999999999999999", "#0001"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, FolioLabel(tt.in))
		})
	}
}

func TestConfiguration_Defaults(t *testing.T) {
	c := New(nil)

	names := make([]string, 0)
	for _, f := range c.Fields() {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"start_number", "start_page", "end_page", "font_size", "offset", "corner", "orientation"}, names)
	assert.Equal(t, "1", c.Get(FieldStartNumber))
	assert.Equal(t, "", c.Get(FieldEndPage))
	assert.Equal(t, "bottom-right", c.Get(FieldCorner))
}

func TestConfiguration_Overrides(t *testing.T) {
	c := New(map[string]string{FieldStartNumber: "250", FieldCorner: "top-left", FieldOrientation: "sideways"})

	assert.Equal(t, "250", c.Get(FieldStartNumber))
	assert.Equal(t, "top-left", c.Get(FieldCorner))
	// invalid override is ignored
	assert.Equal(t, "horizontal", c.Get(FieldOrientation))

	require.NoError(t, c.Set(FieldStartNumber, "9"))
	c.Reset()
	assert.Equal(t, "250", c.Get(FieldStartNumber))
}

func TestConfiguration_Set(t *testing.T) {
	c := New(nil)

	assert.NoError(t, c.Set(FieldStartNumber, ""))
	assert.NoError(t, c.Set(FieldOffset, "1.5"))
	assert.Error(t, c.Set(FieldFontSize, "1.5"))
	assert.Error(t, c.Set(FieldStartNumber, "12a"))
	assert.Error(t, c.Set(FieldCorner, "center"))
	assert.Error(t, c.Set("watermark", "x"))
}

func TestConfiguration_Cycle(t *testing.T) {
	c := New(nil)

	require.NoError(t, c.Cycle(FieldOrientation, 1))
	assert.Equal(t, "vertical", c.Get(FieldOrientation))
	require.NoError(t, c.Cycle(FieldOrientation, 1))
	assert.Equal(t, "horizontal", c.Get(FieldOrientation))
	require.NoError(t, c.Cycle(FieldCorner, -1))
	assert.Equal(t, "top-left", c.Get(FieldCorner))
	assert.Error(t, c.Cycle(FieldFontSize, 1))
}

func TestSnapshot_IsIsolatedFromLaterEdits(t *testing.T) {
	c := New(nil)
	snap := c.Snapshot()

	require.NoError(t, c.Set(FieldStartNumber, "77"))

	assert.Equal(t, "1", snap.Get(FieldStartNumber))
	assert.Equal(t, "77", c.Snapshot().Get(FieldStartNumber))
}

func TestSnapshot_PreviewValues(t *testing.T) {
	snap := New(nil).Snapshot()

	prev := snap.PreviewValues("_prev")
	require.Len(t, prev, 7)
	assert.Equal(t, Value{Name: "start_number_prev", Value: "1"}, prev[0])
	assert.Equal(t, Value{Name: "orientation_prev", Value: "horizontal"}, prev[6])

	// submission uses the plain names
	assert.Equal(t, "start_number", snap.Values()[0].Name)
}
