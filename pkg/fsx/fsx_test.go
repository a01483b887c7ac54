package fsx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClean(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "resume.pdf", want: "resume.pdf"},
		{in: "docs/./resume.pdf", want: "docs/resume.pdf"},
		{in: "/resume.pdf", want: "resume.pdf"},
		{in: `docs\resume.pdf`, want: "docs/resume.pdf"},
		{in: "../etc/passwd", wantErr: true},
		{in: "docs/../../x", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Clean(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetectContentType(t *testing.T) {
	assert.Equal(t, "application/pdf", DetectContentType("Resume.PDF"))
	assert.Equal(t, "application/octet-stream", DetectContentType("blob"))
}
