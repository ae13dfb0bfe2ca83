package services

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/dukex/blueprint/pkg/autofix"
	"github.com/dukex/blueprint/pkg/catalog"
	"github.com/dukex/blueprint/pkg/convert"
	"github.com/dukex/blueprint/pkg/log"
	"github.com/dukex/blueprint/pkg/models"
	"github.com/dukex/blueprint/pkg/otelhelper"
	"github.com/dukex/blueprint/pkg/platform"
	"github.com/dukex/blueprint/pkg/sanitize"
	"github.com/dukex/blueprint/pkg/validation"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// AutoFixResult is the repaired document, the audit trail of every repair and
// the validation report of the repaired document.
type AutoFixResult struct {
	Definition *models.Definition       `json:"definition"`
	Fixes      []models.Fix             `json:"fixes"`
	Validation *models.ValidationResult `json:"validation"`
}

// Option configures a Blueprint service.
type Option func(*Blueprint)

func WithTracer(tracer trace.Tracer) Option {
	return func(b *Blueprint) {
		b.tracer = tracer
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(b *Blueprint) {
		b.logger = logger
	}
}

func WithSanitizer(s *sanitize.Sanitizer) Option {
	return func(b *Blueprint) {
		b.sanitizer = s
	}
}

func WithRegistry(r *convert.Registry) Option {
	return func(b *Blueprint) {
		b.registry = r
	}
}

// Blueprint handles validation, repair, conversion and sanitization of
// workflow blueprints. It holds no per-request state.
type Blueprint struct {
	catalogs  catalog.Set
	registry  *convert.Registry
	converter *convert.Converter
	sanitizer *sanitize.Sanitizer
	tracer    trace.Tracer
	logger    *slog.Logger
}

// NewBlueprint creates a new blueprint service over catalogs.
func NewBlueprint(catalogs catalog.Set, opts ...Option) *Blueprint {
	b := &Blueprint{
		catalogs:  catalogs,
		registry:  convert.NewDefaultRegistry(),
		sanitizer: sanitize.New(),
		tracer:    otelhelper.NoopTracer(),
		logger:    log.WithModule("blueprint"),
	}

	for _, opt := range opts {
		opt(b)
	}

	b.converter = convert.New(catalogs, convert.WithRegistry(b.registry), convert.WithValidation())

	return b
}

// resolve parses a platform name and returns its catalog and profile.
func (b *Blueprint) resolve(name string) (*catalog.Catalog, platform.Profile, error) {
	p, err := platform.Parse(name)
	if err != nil {
		return nil, platform.Profile{}, err
	}

	cat, err := b.catalogs.For(p)
	if err != nil {
		return nil, platform.Profile{}, err
	}

	profile, err := platform.ProfileFor(p)
	if err != nil {
		return nil, platform.Profile{}, err
	}

	return cat, profile, nil
}

// Validate checks a definition document written for platformName. Problems
// with the document itself are reported in the result, never as an error.
func (b *Blueprint) Validate(ctx context.Context, platformName string, data []byte) (*models.ValidationResult, error) {
	const op = "Validate"

	ctx, span := otelhelper.StartSpan(ctx, b.tracer, "blueprint.validate",
		attribute.String(otelhelper.PlatformKey, platformName))
	defer span.End()

	cat, profile, err := b.resolve(platformName)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, wrapError(op, err)
	}

	result := validation.New(cat, profile).ValidateJSON(data)

	span.SetAttributes(
		attribute.Int(otelhelper.ErrorCountKey, len(result.Errors)),
		attribute.Int(otelhelper.WarningCountKey, len(result.Warnings)),
	)

	log.FromContext(ctx, b.logger).DebugContext(ctx, "Validated blueprint",
		"platform", profile.Platform,
		"valid", result.IsValid,
		"errors", len(result.Errors),
		"warnings", len(result.Warnings))

	return result, nil
}

// AutoFix repairs a definition document and validates the repaired copy.
func (b *Blueprint) AutoFix(ctx context.Context, platformName string, data []byte) (*AutoFixResult, error) {
	const op = "AutoFix"

	ctx, span := otelhelper.StartSpan(ctx, b.tracer, "blueprint.autofix",
		attribute.String(otelhelper.PlatformKey, platformName))
	defer span.End()

	cat, profile, err := b.resolve(platformName)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, wrapError(op, err)
	}

	def, err := parseDocument(data)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, wrapError(op, err)
	}

	fixed, fixes := autofix.New(cat, profile).Fix(def)
	report := validation.New(cat, profile).Validate(fixed)

	span.SetAttributes(
		attribute.Int(otelhelper.NodeCountKey, len(fixed.Nodes)),
		attribute.Int(otelhelper.FixCountKey, len(fixes)),
		attribute.Int(otelhelper.ErrorCountKey, len(report.Errors)),
	)

	log.FromContext(ctx, b.logger).InfoContext(ctx, "Auto-fixed blueprint",
		"platform", profile.Platform,
		"fixes", len(fixes),
		"remaining_errors", len(report.Errors))

	return &AutoFixResult{
		Definition: fixed,
		Fixes:      fixes,
		Validation: report,
	}, nil
}

// Convert translates a native document between two platforms and validates
// the output against the target catalog.
func (b *Blueprint) Convert(ctx context.Context, from, to string, data []byte) (*convert.Result, error) {
	const op = "Convert"

	ctx, span := otelhelper.StartSpan(ctx, b.tracer, "blueprint.convert",
		attribute.String(otelhelper.SourcePlatformKey, from),
		attribute.String(otelhelper.TargetPlatformKey, to))
	defer span.End()

	source, err := platform.Parse(from)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, wrapError(op, err)
	}

	target, err := platform.Parse(to)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, wrapError(op, err)
	}

	if len(data) == 0 {
		otelhelper.SetError(span, ErrEmptyDocument)

		return nil, wrapError(op, ErrEmptyDocument)
	}

	result, err := b.converter.Convert(source, target, data)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, wrapError(op, err)
	}

	span.SetAttributes(attribute.Int(otelhelper.DegradedCountKey, len(result.DegradedNodes)))

	logger := log.FromContext(ctx, b.logger)
	logger.InfoContext(ctx, "Converted blueprint",
		"from", source,
		"to", target,
		"degraded_nodes", len(result.DegradedNodes),
		"warnings", len(result.Warnings))

	for _, d := range result.DegradedNodes {
		logger.DebugContext(ctx, "Node degraded during conversion",
			"node", d.Key,
			"source_type", d.SourceType,
			"target_type", d.TargetType)
	}

	return result, nil
}

// Sanitize strips operator-identifying data from any JSON document.
func (b *Blueprint) Sanitize(ctx context.Context, data []byte) ([]byte, error) {
	const op = "Sanitize"

	ctx, span := otelhelper.StartSpan(ctx, b.tracer, "blueprint.sanitize")
	defer span.End()

	if len(data) == 0 {
		otelhelper.SetError(span, ErrEmptyDocument)

		return nil, wrapError(op, ErrEmptyDocument)
	}

	out, err := b.sanitizer.SanitizeJSON(data)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrInvalidDocument, err)
		otelhelper.SetError(span, err)

		return nil, wrapError(op, err)
	}

	log.FromContext(ctx, b.logger).DebugContext(ctx, "Sanitized document", "bytes", len(out))

	return out, nil
}

// Import decodes a native export of platformName into the definition model so
// it can be validated and auto-fixed.
func (b *Blueprint) Import(ctx context.Context, platformName string, data []byte) (*models.Definition, error) {
	const op = "Import"

	ctx, span := otelhelper.StartSpan(ctx, b.tracer, "blueprint.import",
		attribute.String(otelhelper.PlatformKey, platformName))
	defer span.End()

	cat, profile, err := b.resolve(platformName)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, wrapError(op, err)
	}

	codec, err := b.registry.Codec(profile.Platform)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, wrapError(op, err)
	}

	g, err := codec.Decode(data)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, wrapError(op, err)
	}

	def := convert.ToDefinition(g, profile, cat)

	span.SetAttributes(attribute.Int(otelhelper.NodeCountKey, len(def.Nodes)))
	log.FromContext(ctx, b.logger).DebugContext(ctx, "Imported blueprint",
		"platform", profile.Platform,
		"nodes", len(def.Nodes))

	return def, nil
}

// SearchModules lists the catalog entries of platformName matching keyword and,
// when category is not empty, belonging to category.
func (b *Blueprint) SearchModules(ctx context.Context, platformName, keyword, category string) ([]catalog.Entry, error) {
	const op = "SearchModules"

	_, span := otelhelper.StartSpan(ctx, b.tracer, "blueprint.modules.search",
		attribute.String(otelhelper.PlatformKey, platformName),
		attribute.String(otelhelper.KeywordKey, keyword),
		attribute.String(otelhelper.CategoryKey, category))
	defer span.End()

	cat, _, err := b.resolve(platformName)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, wrapError(op, err)
	}

	entries := []catalog.Entry{}

	for e := range cat.Search(keyword) {
		if category != "" && !strings.EqualFold(e.Category, category) {
			continue
		}

		entries = append(entries, e)
	}

	return entries, nil
}

// Categories lists the module categories of platformName.
func (b *Blueprint) Categories(ctx context.Context, platformName string) ([]string, error) {
	_, span := otelhelper.StartSpan(ctx, b.tracer, "blueprint.modules.categories",
		attribute.String(otelhelper.PlatformKey, platformName))
	defer span.End()

	cat, _, err := b.resolve(platformName)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, wrapError("Categories", err)
	}

	return cat.Categories(), nil
}

// Platforms lists the platforms that have both a catalog and a codec.
func (b *Blueprint) Platforms() []platform.Platform {
	var out []platform.Platform

	for _, p := range b.registry.Platforms() {
		if _, ok := b.catalogs[p]; ok {
			out = append(out, p)
		}
	}

	return out
}

// HealthCheck reports whether every supported platform has a non-empty
// catalog and a codec.
func (b *Blueprint) HealthCheck(_ context.Context) (string, bool) {
	ready := b.Platforms()

	var missing []string

	for _, p := range platform.All() {
		cat, ok := b.catalogs[p]
		if !ok || cat.Len() == 0 || !slices.Contains(ready, p) {
			missing = append(missing, p.String())
		}
	}

	if len(missing) > 0 {
		return "missing platforms: " + strings.Join(missing, ", "), false
	}

	return "ok", true
}

func parseDocument(data []byte) (*models.Definition, error) {
	if len(data) == 0 {
		return nil, ErrEmptyDocument
	}

	def, err := models.ParseDefinition(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	return def, nil
}
