package kernels

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestElementwiseMultiply(t *testing.T) {
	src := ElementwiseMultiply()

	assert.Equal(t, DefaultEntryPoint, src.EntryPoint)
	assert.Contains(t, src.Text, "cl_khr_fp64")
	assert.Contains(t, src.Text, "get_global_size(0)")
	require.NoError(t, src.Validate())
	assert.Equal(t, []string{"dot_product"}, src.KernelNames())
}

func TestKernelNames(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "single kernel",
			text: "__kernel void dot_product(__global double *x) { }",
			want: []string{"dot_product"},
		},
		{
			name: "multiple kernels in order",
			text: "__kernel void scale(__global double *x) { }\n" +
				"__kernel void shift(__global double *x) { }\n",
			want: []string{"scale", "shift"},
		},
		{
			name: "extra whitespace",
			text: "__kernel   void\n  oddly_spaced  (__global double *x) { }",
			want: []string{"oddly_spaced"},
		},
		{
			name: "no kernel",
			text: "double helper(double v) { return v * 2.0; }",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := Source{Text: tt.text}
			assert.Equal(t, tt.want, src.KernelNames())
		})
	}
}

func TestValidate(t *testing.T) {
	t.Run("empty text", func(t *testing.T) {
		err := Source{EntryPoint: "f", Text: "   \n"}.Validate()
		assert.ErrorIs(t, err, ErrEmptySource)
	})

	t.Run("no kernel declaration", func(t *testing.T) {
		err := Source{EntryPoint: "f", Text: "int main() { return 0; }"}.Validate()
		assert.ErrorIs(t, err, ErrNoKernel)
	})

	t.Run("entry point not declared", func(t *testing.T) {
		src := Source{
			EntryPoint: "missing",
			Text:       "__kernel void dot_product(__global double *x) { }",
		}
		err := src.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), `"missing"`)
	})

	t.Run("empty entry point accepted", func(t *testing.T) {
		src := Source{Text: "__kernel void dot_product(__global double *x) { }"}
		assert.NoError(t, src.Validate())
	})
}

func TestFromFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("entry point from first declaration", func(t *testing.T) {
		path := filepath.Join(dir, "custom.cl")
		text := "__kernel void first(__global double *x) { }\n" +
			"__kernel void second(__global double *x) { }\n"
		require.NoError(t, os.WriteFile(path, []byte(text), 0o644))

		src, err := FromFile(path, "")
		require.NoError(t, err)
		assert.Equal(t, "first", src.EntryPoint)
		assert.Equal(t, text, src.Text)
	})

	t.Run("explicit entry point override", func(t *testing.T) {
		path := filepath.Join(dir, "override.cl")
		text := "__kernel void first(__global double *x) { }\n" +
			"__kernel void second(__global double *x) { }\n"
		require.NoError(t, os.WriteFile(path, []byte(text), 0o644))

		src, err := FromFile(path, "second")
		require.NoError(t, err)
		assert.Equal(t, "second", src.EntryPoint)
	})

	t.Run("no kernel in file", func(t *testing.T) {
		path := filepath.Join(dir, "empty.cl")
		require.NoError(t, os.WriteFile(path, []byte("// nothing here\n"), 0o644))

		_, err := FromFile(path, "")
		assert.ErrorIs(t, err, ErrNoKernel)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := FromFile(filepath.Join(dir, "does-not-exist.cl"), "")
		assert.Error(t, err)
	})
}

func TestBuildError(t *testing.T) {
	be := &BuildError{
		Device: "Test Device",
		Log:    "error: expected ';'\nerror: unexpected token",
		Source: "__kernel void broken( { }",
	}

	msg := be.Error()
	assert.Contains(t, msg, "Test Device")
	assert.Contains(t, msg, "expected ';'")
	assert.NotContains(t, msg, "unexpected token", "Error() should keep only the first log line")
}
