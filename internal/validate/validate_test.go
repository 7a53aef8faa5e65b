package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckMeta(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		mimeType string
		size     int64
		wantKind Kind
		wantCode int
	}{
		{
			name:     "valid pdf",
			filename: "report.pdf",
			mimeType: "application/pdf",
			size:     1024,
		},
		{
			name:     "uppercase extension ok",
			filename: "REPORT.PDF",
			mimeType: "application/pdf",
			size:     1024,
		},
		{
			name:     "exactly at limit ok",
			filename: "big.pdf",
			mimeType: "application/pdf",
			size:     MaxSizeBytes,
		},
		{
			name:     "over size limit",
			filename: "big.pdf",
			mimeType: "application/pdf",
			size:     MaxSizeBytes + 1,
			wantKind: KindFileTooLarge,
			wantCode: 413,
		},
		{
			name:     "wrong mime type",
			filename: "report.pdf",
			mimeType: "image/png",
			size:     1024,
			wantKind: KindUnsupportedType,
			wantCode: 415,
		},
		{
			name:     "wrong extension",
			filename: "report.docx",
			mimeType: "application/pdf",
			size:     1024,
			wantKind: KindUnsupportedType,
			wantCode: 415,
		},
		{
			name:     "no extension",
			filename: "report",
			mimeType: "application/pdf",
			size:     1024,
			wantKind: KindUnsupportedType,
			wantCode: 415,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckMeta(tt.filename, tt.mimeType, tt.size)
			if tt.wantKind == "" {
				assert.Nil(t, err)
				return
			}
			require.NotNil(t, err)
			assert.Equal(t, tt.wantKind, err.Kind)
			assert.Equal(t, tt.wantCode, err.Status)
		})
	}
}

func TestCheckContent(t *testing.T) {
	assert.Nil(t, CheckContent([]byte("%PDF-1.7\n...")))

	// Declared metadata can lie; the signature check is the backstop.
	err := CheckContent([]byte("MZ\x90\x00 not a pdf"))
	require.NotNil(t, err)
	assert.Equal(t, KindUnsupportedType, err.Kind)
	assert.Equal(t, 415, err.Status)

	require.NotNil(t, CheckContent([]byte("%PD")))
	require.NotNil(t, CheckContent(nil))
}
