package render

import (
	"context"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const maxImageSize = 8 << 20

// Picture is fetched image data with its gofpdf image type.
type Picture struct {
	Type string
	Data []byte
}

// ImageLoader fetches the images a layout references.
type ImageLoader interface {
	Load(ctx context.Context, src string) (*Picture, error)
}

// HTTPImages loads images over HTTP.
type HTTPImages struct {
	client *http.Client
}

// NewHTTPImages creates an HTTP image loader with traced transport.
func NewHTTPImages(timeout time.Duration, tp trace.TracerProvider, mp metric.MeterProvider) *HTTPImages {
	return &HTTPImages{
		client: &http.Client{
			Timeout: timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport,
				otelhttp.WithTracerProvider(tp),
				otelhttp.WithMeterProvider(mp),
			),
		},
	}
}

// Load implements ImageLoader.
func (h *HTTPImages) Load(ctx context.Context, src string) (*Picture, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, http.NoBody)
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "do request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageSize+1))
	if err != nil {
		return nil, errors.Wrap(err, "read body")
	}
	if len(data) > maxImageSize {
		return nil, errors.Errorf("image exceeds %d bytes", maxImageSize)
	}

	typ := imageType(resp.Header.Get("Content-Type"))
	if typ == "" {
		typ = imageType(http.DetectContentType(data))
	}
	if typ == "" {
		return nil, errors.New("unsupported image type")
	}
	return &Picture{Type: typ, Data: data}, nil
}

func imageType(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	switch mt {
	case "image/png":
		return "PNG"
	case "image/jpeg", "image/jpg":
		return "JPG"
	case "image/gif":
		return "GIF"
	default:
		return ""
	}
}
