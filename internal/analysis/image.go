package analysis

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"

	"github.com/blopez6567/Clashsense/internal/common"
)

// MaxImageBytes caps the size of a clash screenshot sent for analysis.
const MaxImageBytes = 5 << 20

const imageSystemPrompt = "You are an expert BIM coordinator specializing in clash detection and resolution. " +
	"Analyze the provided clash image and suggest practical solutions. " +
	"Focus on providing actionable insights and specific recommendations."

const imagePrompt = "Analyze this clash image and provide detailed resolution suggestions. " +
	"Include information about the type of clash, severity, and recommended steps for resolution."

var imageMediaTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// ImageResult is the model's analysis of a clash screenshot.
type ImageResult struct {
	Analysis string `json:"analysis"`
}

// ImageMediaType resolves the media type of an uploaded image. A declared
// type is trusted when it is supported; otherwise the content is sniffed.
func ImageMediaType(declared string, data []byte) (string, error) {
	mediaType := strings.ToLower(strings.TrimSpace(strings.SplitN(declared, ";", 2)[0]))
	if !imageMediaTypes[mediaType] {
		mediaType = http.DetectContentType(data)
	}
	if !imageMediaTypes[mediaType] {
		return "", fmt.Errorf("%w: %s", common.ErrUnsupportedImage, mediaType)
	}
	return mediaType, nil
}

// AnalyzeImage asks the model for resolution suggestions for a clash
// screenshot.
func (c *Client) AnalyzeImage(ctx context.Context, mediaType string, data []byte) (*ImageResult, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty image", common.ErrUnsupportedImage)
	}
	if len(data) > MaxImageBytes {
		return nil, fmt.Errorf("%w: image is larger than %d bytes", common.ErrUnsupportedImage, MaxImageBytes)
	}
	mediaType, err := ImageMediaType(mediaType, data)
	if err != nil {
		return nil, err
	}

	text, err := c.complete(ctx, imageSystemPrompt,
		anthropic.NewImageBlockBase64(mediaType, base64.StdEncoding.EncodeToString(data)),
		anthropic.NewTextBlock(imagePrompt))
	if err != nil {
		return nil, err
	}

	slog.Info("Clash image analysis complete",
		"model", c.model,
		"media_type", mediaType,
		"bytes", len(data))

	return &ImageResult{Analysis: text}, nil
}
