// Package pipeline wires the GSTR-1 stages together: read the register,
// enrich it, build every enabled sheet and save the populated template.
package pipeline

import (
	"context"

	"gst-filing-service/internal/builders"
	"gst-filing-service/internal/enrich"
	"gst-filing-service/internal/jobs"
	"gst-filing-service/internal/parsers"
	"gst-filing-service/internal/rules"
	"gst-filing-service/internal/states"
	"gst-filing-service/internal/workbook"
	apperrors "gst-filing-service/pkg/errors"
	"gst-filing-service/pkg/logger"
)

// Request describes one GSTR-1 generation run.
type Request struct {
	InputPath    string
	TemplatePath string
	OutputPath   string
	Profile      *rules.Profile
}

// Result reports what the run produced. RowErrors are non-fatal per-row
// validation failures; an empty output is still a success. ErrorSummary
// aggregates the same failures by category and code for reporting.
type Result struct {
	OutputPath   string
	RecordCount  int
	RowErrors    []builders.RowError
	ErrorSummary *apperrors.ErrorSummary
}

// Pipeline runs GSTR-1 conversions.
type Pipeline struct {
	registry *states.Registry
	store    *jobs.Store
	progress *logger.ProgressTracker
	log      logger.Logger
}

// New creates a pipeline. The job store may be nil when no job tracking
// is wanted (one-shot CLI runs).
func New(registry *states.Registry, store *jobs.Store) *Pipeline {
	return &Pipeline{
		registry: registry,
		store:    store,
		progress: logger.NewProgressTracker(),
		log:      logger.GetGlobalLogger().WithComponent("pipeline"),
	}
}

// OnProgress registers a progress callback for subsequent runs.
func (p *Pipeline) OnProgress(fn logger.ProgressFunc) {
	p.progress.AddCallback(fn)
}

// RunGSTR1 executes one conversion end to end. A job record tracks the
// run when a store is configured.
func (p *Pipeline) RunGSTR1(ctx context.Context, req Request) (*Result, error) {
	profile := req.Profile
	if profile == nil {
		profile = rules.DefaultProfile()
	}

	// Each run gets its own tracker so a job callback never outlives its
	// run and later runs cannot touch earlier job records.
	tracker := logger.NewProgressTracker()
	tracker.AddCallback(p.progress.Update)

	var job *jobs.Job
	if p.store != nil {
		job = p.store.Create(req.InputPath)
		p.store.MarkProcessing(job.ID)
		jobID := job.ID
		tracker.AddCallback(func(percent int, stage string) {
			p.store.UpdateProgress(jobID, percent, stage)
		})
	}

	result, err := p.run(ctx, req, profile, tracker)
	if p.store != nil {
		if err != nil {
			p.store.MarkFailed(job.ID, err)
		} else {
			p.store.MarkCompleted(job.ID, result.OutputPath)
		}
	}
	return result, err
}

func (p *Pipeline) run(ctx context.Context, req Request, profile *rules.Profile, tracker *logger.ProgressTracker) (*Result, error) {
	tracker.Update(5, "Reading input file")
	table, err := parsers.ReadTable(req.InputPath)
	if err != nil {
		return nil, err
	}
	tracker.Update(20, "Input file loaded")

	if err := ctx.Err(); err != nil {
		return nil, apperrors.WrapIfNeeded(err, apperrors.CategoryInternal, apperrors.CodeUnexpectedError, "run cancelled")
	}

	tracker.Update(40, "Transforming data")
	records := enrich.NewEnricher(p.registry).Enrich(table)
	tracker.Update(60, "Data transformed")
	p.log.WithField("records", len(records)).Info("Register enriched")

	writer, err := workbook.NewWriter(req.TemplatePath, req.OutputPath)
	if err != nil {
		return nil, err
	}

	tracker.Update(75, "Populating GST sheets")
	rowErrors, err := writer.WriteAll(records, p.sheetBuilders(profile))
	if err != nil {
		return nil, err
	}

	tracker.Update(90, "Saving output file")
	if err := writer.Save(); err != nil {
		return nil, err
	}
	tracker.Update(100, "Completed")

	for _, rowErr := range rowErrors {
		p.log.WithFields(logger.Fields{
			"sheet": rowErr.Sheet,
			"row":   rowErr.SourceRow,
		}).Warn(rowErr.Message)
	}

	return &Result{
		OutputPath:   req.OutputPath,
		RecordCount:  len(records),
		RowErrors:    rowErrors,
		ErrorSummary: summarizeRowErrors(rowErrors),
	}, nil
}

// summarizeRowErrors folds per-row build failures into the shared error
// summary shape callers report from.
func summarizeRowErrors(rowErrors []builders.RowError) *apperrors.ErrorSummary {
	errs := make([]*apperrors.FilingError, 0, len(rowErrors))
	for _, rowErr := range rowErrors {
		errs = append(errs, apperrors.New(apperrors.CategoryValidation, apperrors.CodeInvalidData, rowErr.Message).
			WithContext("sheet", rowErr.Sheet).
			WithContext("row", rowErr.SourceRow))
	}
	return apperrors.NewErrorSummary(errs)
}

// sheetBuilders assembles the builder set for a profile, in template
// sheet order.
func (p *Pipeline) sheetBuilders(profile *rules.Profile) []builders.Builder {
	all := []builders.Builder{
		builders.NewB2BBuilder(p.registry),
		builders.NewB2CLBuilder(p.registry),
		builders.NewB2CSBuilder(p.registry),
		builders.NewCDNRBuilder(p.registry),
		builders.NewCDNURBuilder(p.registry),
		builders.NewEXPBuilder(),
		builders.NewHSNB2BBuilder(profile.DefaultUQC),
		builders.NewHSNB2CBuilder(profile.DefaultUQC),
		builders.NewECOBuilder(),
		builders.NewECOB2BBuilder(p.registry, profile.SupplierGSTIN, profile.SupplierName),
		builders.NewDOCSBuilder(),
	}

	enabled := make([]builders.Builder, 0, len(all))
	for _, b := range all {
		if profile.SheetEnabled(b.SheetName()) {
			enabled = append(enabled, b)
		}
	}
	return enabled
}
