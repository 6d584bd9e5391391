package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nkatz/stylist/internal/domain"
	"github.com/nkatz/stylist/internal/logger"
)

// PipelineService sequences intent extraction, weather resolution, outfit
// generation, and parallel product resolution into one ResultRecord per
// submitted message. Each run is stateless relative to prior runs.
type PipelineService struct {
	intents  *IntentService
	weather  *WeatherService
	outfits  *OutfitService
	products *ProductService
	log      *logger.Logger
}

// NewPipelineService creates a new pipeline orchestrator.
// Parameters:
//   - intents: intent extraction service.
//   - weather: weather resolution service.
//   - outfits: outfit generation service.
//   - products: product resolution service.
//   - log: logger instance.
//
// Returns:
//   - *PipelineService: initialized orchestrator.
func NewPipelineService(
	intents *IntentService,
	weather *WeatherService,
	outfits *OutfitService,
	products *ProductService,
	log *logger.Logger,
) *PipelineService {
	return &PipelineService{
		intents:  intents,
		weather:  weather,
		outfits:  outfits,
		products: products,
		log:      log,
	}
}

// Run executes one full pipeline pass for the message and always returns a
// terminal ResultRecord. Intent and weather failures abort the run with an
// error record; outfit generation and product resolution degrade instead.
func (p *PipelineService) Run(ctx context.Context, message string) *domain.ResultRecord {
	runID := uuid.New().String()
	if p.log != nil {
		ctx = p.log.WithContext(ctx)
	}
	ctx = logger.SetRunID(ctx, runID)
	start := time.Now()

	record := p.run(ctx, runID, message)

	logger.With(logger.Fields{
		logger.FieldStatus:     string(record.Status),
		logger.FieldDurationMs: time.Since(start).Milliseconds(),
		logger.FieldCount:      len(record.Outfits),
	}).Info(ctx, "Pipeline run completed: type=%s", record.Type)

	return record
}

func (p *PipelineService) run(ctx context.Context, runID, message string) *domain.ResultRecord {
	intent, err := p.intents.Extract(ctx, message)
	if err != nil {
		logger.CtxWarn(ctx, "Intent extraction failed: %v", err)
		return errorRecord(runID, err)
	}
	ctx = logger.WithField(ctx, logger.FieldIntent, string(intent.Kind))

	record := &domain.ResultRecord{
		ID:     runID,
		Status: domain.StatusSuccess,
		Type:   string(intent.Kind),
	}

	var sc StyleContext
	switch {
	case intent.Kind == domain.IntentTravel:
		snapshot, err := p.weather.Resolve(ctx, intent.Destination, intent.Date)
		if err != nil {
			logger.CtxWarn(ctx, "Weather resolution failed: %v", err)
			return errorRecord(runID, err)
		}
		record.Destination = intent.Destination
		record.Date = snapshot.Date
		record.Weather = snapshot
		if snapshot.Warning != "" {
			record.Status = domain.StatusWarning
			record.Warning = snapshot.Warning
		}
		sc = StyleContext{Weather: snapshot}
	case intent.Kind == domain.IntentEvent:
		record.Event = intent.Event
		sc = StyleContext{Event: intent.Event}
	default:
		record.Reference = intent.Reference
		sc = StyleContext{Kind: intent.Kind, Reference: intent.Reference}
	}

	outfits := p.outfits.Generate(ctx, sc)
	if len(outfits) == 0 {
		// An empty batch is a valid, non-error outcome.
		record.OutfitsDegraded = true
		record.Outfits = []domain.Outfit{}
		return record
	}

	p.resolveAllProducts(ctx, outfits)
	record.Outfits = outfits
	return record
}

// resolveAllProducts fans out product resolution, one goroutine per outfit.
// Each task owns its outfit and writes only to its own slot; a failure in
// one task degrades that outfit alone and never cancels its siblings.
func (p *PipelineService) resolveAllProducts(ctx context.Context, outfits []domain.Outfit) {
	var wg sync.WaitGroup
	for i := range outfits {
		wg.Add(1)
		go func(outfit *domain.Outfit) {
			defer wg.Done()
			taskCtx := logger.SetOutfitID(ctx, outfit.ID)
			outfit.Products = p.products.ResolveProducts(taskCtx, outfit)
		}(&outfits[i])
	}
	wg.Wait()
}

// errorRecord builds the terminal error record for an aborted run.
func errorRecord(runID string, err error) *domain.ResultRecord {
	return &domain.ResultRecord{
		ID:     runID,
		Status: domain.StatusError,
		Type:   "error",
		Error:  err.Error(),
	}
}
