package out

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"time"

	_ "golang.org/x/image/webp"

	renderout "shotwatch/internal/modules/render/port/out"
	apperrors "shotwatch/internal/platform/errors"
)

const (
	imageFetchTimeout = 120 * time.Second
	maxImageBytes     = 32 << 20
)

type HTTPImageFetcher struct {
	client *http.Client
}

func NewHTTPImageFetcher(client *http.Client) renderout.ImageFetcher {
	if client == nil {
		client = &http.Client{Timeout: imageFetchTimeout}
	}
	return &HTTPImageFetcher{client: client}
}

func (f *HTTPImageFetcher) Fetch(ctx context.Context, url string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build image request: %w", err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download image: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: image status %d", apperrors.ErrUnexpectedResponse, resp.StatusCode)
	}
	img, format, err := image.Decode(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	log.Debugf("fetched %s image %dx%d", format, img.Bounds().Dx(), img.Bounds().Dy())
	return img, nil
}
