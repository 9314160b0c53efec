package analysis

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blopez6567/Clashsense/internal/common"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func TestAnalyzeImage(t *testing.T) {
	fake := &fakeMessages{replies: []string{"Duct clashes with beam. Lower the duct 150mm."}}
	client := NewClientWithMessages(fake, Config{Model: "test-model", Retry: fastRetry()})

	result, err := client.AnalyzeImage(context.Background(), "image/png", pngHeader)
	require.NoError(t, err)
	assert.Equal(t, "Duct clashes with beam. Lower the duct 150mm.", result.Analysis)

	require.Len(t, fake.params, 1)
	p := fake.params[0]
	assert.Equal(t, int64(500), p.MaxTokens)
	require.Len(t, p.System, 1)
	assert.Contains(t, p.System[0].Text, "clash image")

	require.Len(t, p.Messages, 1)
	content := p.Messages[0].Content
	require.Len(t, content, 2)
	require.NotNil(t, content[0].OfImage)
	require.NotNil(t, content[1].OfText)
	assert.Contains(t, content[1].OfText.Text, "resolution suggestions")
}

func TestAnalyzeImageRateLimit(t *testing.T) {
	limited := errors.New("status code: 429")
	fake := &fakeMessages{errs: []error{limited, limited, limited}}
	client := NewClientWithMessages(fake, Config{Retry: fastRetry()})

	_, err := client.AnalyzeImage(context.Background(), "image/png", pngHeader)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrRateLimit)
	assert.ErrorIs(t, err, common.ErrAnalysisFailed)
	assert.Equal(t, 3, fake.calls)
}

func TestAnalyzeImageRejectsInput(t *testing.T) {
	tests := []struct {
		name      string
		mediaType string
		data      []byte
	}{
		{name: "empty", mediaType: "image/png"},
		{name: "not an image", mediaType: "text/plain", data: []byte("hello")},
		{name: "too large", mediaType: "image/png", data: bytes.Repeat([]byte{0}, MaxImageBytes+1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeMessages{}
			client := NewClientWithMessages(fake, Config{})

			_, err := client.AnalyzeImage(context.Background(), tt.mediaType, tt.data)
			assert.ErrorIs(t, err, common.ErrUnsupportedImage)
			assert.Zero(t, fake.calls)
		})
	}
}

func TestImageMediaType(t *testing.T) {
	tests := []struct {
		name     string
		declared string
		data     []byte
		want     string
		wantErr  bool
	}{
		{name: "declared jpeg", declared: "image/jpeg", data: []byte("x"), want: "image/jpeg"},
		{name: "declared with params", declared: "Image/PNG; charset=binary", data: []byte("x"), want: "image/png"},
		{name: "sniffed from octet-stream", declared: "application/octet-stream", data: pngHeader, want: "image/png"},
		{name: "sniffed when missing", data: []byte("GIF89a\x01\x00\x01\x00"), want: "image/gif"},
		{name: "unsupported", declared: "image/tiff", data: []byte("II*\x00"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ImageMediaType(tt.declared, tt.data)
			if tt.wantErr {
				assert.ErrorIs(t, err, common.ErrUnsupportedImage)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
