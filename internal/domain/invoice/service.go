package invoice

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/xenking/commercial-invoice/internal/domain/record"
)

// FileName is the name the rendered document is delivered under.
const FileName = "Commercial Invoice.pdf"

// PrintPath is the path of the PDF endpoint the print action points to.
const PrintPath = "/api/commercial-invoice"

// Renderer turns a view-model into a binary document.
type Renderer interface {
	Render(ctx context.Context, vm *ViewModel) ([]byte, error)
}

// Document is a rendered commercial invoice.
type Document struct {
	Name    string
	Content []byte
}

// PrintAction describes the "Print Commercial Invoice" button of a
// fulfillment: what it is called and which URL it opens.
type PrintAction struct {
	ID    string
	Label string
	URL   string
}

// Service loads the records of one order/fulfillment pair, assembles the
// view-model and renders it.
type Service struct {
	records   record.Gateway
	assembler *Assembler
	renderer  Renderer
	baseURL   string

	tracer   trace.Tracer
	renders  metric.Int64Counter
	duration metric.Float64Histogram
}

// ServiceConfig holds the non-dependency settings of a Service.
type ServiceConfig struct {
	// BaseURL is prepended to the print action URL. When empty the URL is
	// relative.
	BaseURL        string
	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider
}

// NewService creates a Service.
func NewService(
	cfg ServiceConfig,
	records record.Gateway,
	assembler *Assembler,
	renderer Renderer,
) (*Service, error) {
	const name = "github.com/xenking/commercial-invoice/internal/domain/invoice"
	meter := cfg.MeterProvider.Meter(name)

	renders, err := meter.Int64Counter("invoice.renders",
		metric.WithDescription("Commercial invoice render attempts by outcome"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create renders counter")
	}
	duration, err := meter.Float64Histogram("invoice.render.duration",
		metric.WithDescription("Commercial invoice end-to-end render time"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create render duration histogram")
	}

	return &Service{
		records:   records,
		assembler: assembler,
		renderer:  renderer,
		baseURL:   cfg.BaseURL,
		tracer:    cfg.TracerProvider.Tracer(name),
		renders:   renders,
		duration:  duration,
	}, nil
}

// ViewModel loads the records of the pair and assembles the view-model.
func (s *Service) ViewModel(ctx context.Context, orderID, fulfillID int64) (*ViewModel, error) {
	ctx, span := s.tracer.Start(ctx, "invoice.ViewModel", trace.WithAttributes(
		attribute.Int64("invoice.order_id", orderID),
		attribute.Int64("invoice.fulfillment_id", fulfillID),
	))
	defer span.End()

	vm, err := s.viewModel(ctx, orderID, fulfillID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return vm, nil
}

func (s *Service) viewModel(ctx context.Context, orderID, fulfillID int64) (*ViewModel, error) {
	order, err := s.records.Order(ctx, orderID)
	if err != nil {
		return nil, errors.Wrap(err, "load order")
	}
	subsidiary, err := s.records.Subsidiary(ctx, order.SubsidiaryID)
	if err != nil {
		return nil, errors.Wrap(err, "load subsidiary")
	}
	fulfillment, err := s.records.Fulfillment(ctx, fulfillID)
	if err != nil {
		return nil, errors.Wrap(err, "load fulfillment")
	}
	salesperson, err := s.records.Salesperson(ctx, order.SalesRepID)
	if err != nil {
		return nil, errors.Wrap(err, "load salesperson")
	}

	vm, err := s.assembler.Assemble(ctx, order, fulfillment, subsidiary, salesperson)
	if err != nil {
		return nil, errors.Wrap(err, "assemble")
	}
	return vm, nil
}

// Render produces the commercial invoice PDF for the pair.
func (s *Service) Render(ctx context.Context, orderID, fulfillID int64) (*Document, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "invoice.Render", trace.WithAttributes(
		attribute.Int64("invoice.order_id", orderID),
		attribute.Int64("invoice.fulfillment_id", fulfillID),
	))
	defer span.End()

	doc, err := s.render(ctx, orderID, fulfillID)

	outcome := "ok"
	if err != nil {
		outcome = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	s.renders.Add(ctx, 1, attrs)
	s.duration.Record(ctx, time.Since(start).Seconds(), attrs)

	if err != nil {
		return nil, err
	}

	zctx.From(ctx).Info("Commercial invoice rendered",
		zap.Int64("order_id", orderID),
		zap.Int64("fulfillment_id", fulfillID),
		zap.Int("bytes", len(doc.Content)),
	)
	return doc, nil
}

func (s *Service) render(ctx context.Context, orderID, fulfillID int64) (*Document, error) {
	vm, err := s.viewModel(ctx, orderID, fulfillID)
	if err != nil {
		return nil, err
	}

	content, err := s.renderer.Render(ctx, vm)
	if err != nil {
		return nil, errors.Wrap(err, "render")
	}

	return &Document{Name: FileName, Content: content}, nil
}

// PrintAction returns the print button of a fulfillment. The order id is the
// fulfillment's createdfrom reference.
func (s *Service) PrintAction(ctx context.Context, fulfillID int64) (*PrintAction, error) {
	f, err := s.records.Fulfillment(ctx, fulfillID)
	if err != nil {
		return nil, errors.Wrap(err, "load fulfillment")
	}

	q := url.Values{}
	q.Set("orderId", strconv.FormatInt(f.CreatedFrom, 10))
	q.Set("fulfillId", strconv.FormatInt(f.ID, 10))

	return &PrintAction{
		ID:    "custpage_print_ci",
		Label: "Print Commercial Invoice",
		URL:   s.baseURL + PrintPath + "?" + q.Encode(),
	}, nil
}
