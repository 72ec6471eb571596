// Package pipeline sequences one batch refresh of the job mart: change
// detection, cleaning, dimensional transforms, warehouse loads with the
// read-after-write key round trip, and the commit-last fingerprint
// update that makes re-runs idempotent.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"jobmart/internal/pipeline/observe"
	"jobmart/internal/source"
	"jobmart/internal/state"
	"jobmart/internal/table"
	"jobmart/internal/transform"
	"jobmart/internal/warehouse"
)

// Step names one orchestrator state. Transitions are strictly
// sequential; the only branch is the empty-delta early exit out of
// StepExtract, and StepFailed absorbs an error from any step.
type Step string

const (
	StepExtract         Step = "extract"
	StepLoadStaging     Step = "load_staging"
	StepLoadStaticDims  Step = "load_static_dims"
	StepLoadCompanyDim  Step = "load_company_dim"
	StepLoadLocationDim Step = "load_location_dim"
	StepLoadDerivedDims Step = "load_derived_dims"
	StepReloadDims      Step = "reload_dims"
	StepLoadFact        Step = "load_fact"
	StepReloadFact      Step = "reload_fact"
	StepLoadBridges     Step = "load_bridges"
	StepCommitState     Step = "commit_state"
	StepDone            Step = "done"
	StepFailed          Step = "failed"
)

// Pipeline wires the collaborators of one batch refresh. All of them
// are supplied at construction; the pipeline holds no ambient state.
type Pipeline struct {
	src     source.Reader
	state   *state.Store
	store   *warehouse.Store
	dests   Destinations
	log     *zap.Logger
	metrics observe.MetricsRecorder
}

// Options carries the optional ambient collaborators.
type Options struct {
	Logger  *zap.Logger             // defaults to zap.NewNop()
	Metrics observe.MetricsRecorder // defaults to observe.NopRecorder{}
}

// New constructs a pipeline over the given collaborators.
func New(src source.Reader, st *state.Store, store *warehouse.Store, dests Destinations, opts Options) (*Pipeline, error) {
	if err := dests.Validate(); err != nil {
		return nil, err
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	var metrics observe.MetricsRecorder = opts.Metrics
	if metrics == nil {
		metrics = observe.NopRecorder{}
	}
	return &Pipeline{src: src, state: st, store: store, dests: dests, log: log, metrics: metrics}, nil
}

// run carries the intermediate tables of one pass between steps.
type run struct {
	current state.Map
	changed []string
	raw     map[string]*table.Table

	postings      *table.Table // cleaned + standardized
	companies     *table.Table
	industries    *table.Table
	skills        *table.Table
	jobIndustries *table.Table
	jobSkills     *table.Table
	techPostings  *table.Table

	dimIndustry *table.Table
	dimSkill    *table.Table
	dimCompany  *table.Table
	dimLocation *table.Table
	dimWorkType *table.Table
	dimExpLevel *table.Table

	persisted struct {
		industry, skill                       warehouse.PersistedTable
		company, location, workType, expLevel warehouse.PersistedTable
		fact                                  warehouse.PersistedTable
	}
}

// Run executes one pass to completion or first failure. A failure at
// any load step leaves the committed fingerprint map untouched, so the
// next run re-detects the same datasets and safely reprocesses them.
func (p *Pipeline) Run(ctx context.Context) error {
	started := time.Now()
	r := &run{raw: map[string]*table.Table{}}

	if err := p.step(ctx, StepExtract, func(ctx context.Context) error { return p.extract(ctx, r) }); err != nil {
		p.finish(started, false)
		return err
	}
	if len(r.changed) == 0 {
		p.log.Info("no source changes, skipping refresh")
		p.finish(started, true)
		return nil
	}
	p.log.Info("source delta detected", zap.Strings("datasets", r.changed))

	steps := []struct {
		step Step
		fn   func(context.Context, *run) error
	}{
		{StepLoadStaging, p.loadStaging},
		{StepLoadStaticDims, p.loadStaticDims},
		{StepLoadCompanyDim, p.loadCompanyDim},
		{StepLoadLocationDim, p.loadLocationDim},
		{StepLoadDerivedDims, p.loadDerivedDims},
		{StepReloadDims, p.reloadDims},
		{StepLoadFact, p.loadFact},
		{StepReloadFact, p.reloadFact},
		{StepLoadBridges, p.loadBridges},
		{StepCommitState, p.commitState},
	}
	for _, s := range steps {
		if err := p.step(ctx, s.step, func(ctx context.Context) error { return s.fn(ctx, r) }); err != nil {
			p.finish(started, false)
			return err
		}
	}
	p.finish(started, true)
	return nil
}

func (p *Pipeline) step(ctx context.Context, s Step, fn func(context.Context) error) error {
	started := time.Now()
	err := fn(ctx)
	p.metrics.ObserveStep(string(s), err == nil, time.Since(started))
	if err != nil {
		p.log.Error("pipeline step failed",
			zap.String("step", string(s)),
			zap.String("state", string(StepFailed)),
			zap.Error(err))
		return fmt.Errorf("step %s: %w", s, err)
	}
	p.log.Debug("pipeline step complete",
		zap.String("step", string(s)),
		zap.Duration("elapsed", time.Since(started)))
	return nil
}

func (p *Pipeline) finish(started time.Time, success bool) {
	p.metrics.ObserveRun(success, time.Since(started))
}

// extract loads the committed fingerprint map, diffs it against current
// source fingerprints, and reads the datasets when anything changed.
func (p *Pipeline) extract(ctx context.Context, r *run) error {
	prev, err := p.state.Load()
	if err != nil {
		return err
	}
	changed, current, err := source.Extract(ctx, p.src, prev)
	if err != nil {
		return err
	}
	r.changed, r.current = changed, current
	if len(changed) == 0 {
		return nil
	}
	for _, name := range RequiredDatasets {
		t, err := p.src.Read(ctx, name)
		if err != nil {
			return err
		}
		r.raw[name] = t
	}
	return p.prepare(r)
}

// prepare cleans and standardizes the raw datasets and derives the
// in-memory dimensional tables. It is pure computation folded into the
// extract step so every later step is a load.
func (p *Pipeline) prepare(r *run) error {
	var err error
	if r.postings, err = transform.Clean(r.raw[DatasetPostings], transform.CleanSpec{
		Bool:     []string{"remote_allowed"},
		Text:     []string{"location", "formatted_work_type", "formatted_experience_level"},
		Numeric:  []string{"normalized_salary"},
		Required: []string{"job_id", "title", "original_listed_time"},
	}); err != nil {
		return err
	}
	if r.postings, err = transform.Standardize(r.postings,
		[]string{"original_listed_time"}, []string{"remote_allowed"}); err != nil {
		return err
	}
	if r.companies, err = transform.Clean(r.raw[DatasetCompanies], transform.CleanSpec{
		Text:     []string{"description", "url"},
		Required: []string{"company_id", "name"},
	}); err != nil {
		return err
	}
	if r.industries, err = transform.Clean(r.raw[DatasetIndustries], transform.CleanSpec{
		Text:     []string{"industry_name"},
		Required: []string{"industry_id"},
	}); err != nil {
		return err
	}
	if r.skills, err = transform.Clean(r.raw[DatasetSkills], transform.CleanSpec{
		Text:     []string{"skill_name"},
		Required: []string{"skill_abr"},
	}); err != nil {
		return err
	}
	if r.jobIndustries, err = transform.Clean(r.raw[DatasetJobIndustries], transform.CleanSpec{
		Required: []string{"job_id", "industry_id"},
	}); err != nil {
		return err
	}
	if r.jobSkills, err = transform.Clean(r.raw[DatasetJobSkills], transform.CleanSpec{
		Required: []string{"job_id", "skill_abr"},
	}); err != nil {
		return err
	}

	if r.techPostings, err = transform.FilterTechPostings(r.postings, r.industries, r.jobIndustries); err != nil {
		return err
	}
	p.log.Info("filtered tech postings",
		zap.Int("postings", r.postings.NumRows()),
		zap.Int("tech", r.techPostings.NumRows()))

	if r.dimIndustry, err = r.industries.Project("industry_id", "industry_name"); err != nil {
		return err
	}
	if r.dimSkill, err = r.skills.Project("skill_abr", "skill_name"); err != nil {
		return err
	}
	if r.dimCompany, err = transform.TransformCompanyDimension(r.companies); err != nil {
		return err
	}
	if r.dimLocation, err = transform.TransformLocationDimension(r.techPostings, "location"); err != nil {
		return err
	}
	if r.dimWorkType, err = transform.DeriveDimension(r.techPostings,
		"formatted_work_type", "work_type_id", "work_type_name"); err != nil {
		return err
	}
	if r.dimExpLevel, err = transform.DeriveDimension(r.techPostings,
		"formatted_experience_level", "experience_level_id", "experience_level_name"); err != nil {
		return err
	}
	return nil
}

// loadStaging lands the changed raw datasets into their staging tables.
func (p *Pipeline) loadStaging(ctx context.Context, r *run) error {
	for _, name := range r.changed {
		dest, ok := p.dests.Staging[name]
		if !ok {
			continue
		}
		t, ok := r.raw[name]
		if !ok {
			continue
		}
		if err := p.load(ctx, dest, t, t.Columns()); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pipeline) loadStaticDims(ctx context.Context, r *run) error {
	if err := p.load(ctx, p.dests.DimIndustry, r.dimIndustry, r.dimIndustry.Columns()); err != nil {
		return err
	}
	return p.load(ctx, p.dests.DimSkill, r.dimSkill, r.dimSkill.Columns())
}

func (p *Pipeline) loadCompanyDim(ctx context.Context, r *run) error {
	return p.load(ctx, p.dests.DimCompany, r.dimCompany, r.dimCompany.Columns())
}

func (p *Pipeline) loadLocationDim(ctx context.Context, r *run) error {
	return p.load(ctx, p.dests.DimLocation, r.dimLocation, r.dimLocation.Columns())
}

// loadDerivedDims loads only the natural value columns; the provisional
// in-memory identifiers never reach the store, which assigns its own.
func (p *Pipeline) loadDerivedDims(ctx context.Context, r *run) error {
	if err := p.load(ctx, p.dests.DimWorkType, r.dimWorkType, []string{"work_type_name"}); err != nil {
		return err
	}
	return p.load(ctx, p.dests.DimExperienceLevel, r.dimExpLevel, []string{"experience_level_name"})
}

// reloadDims reads every dimension back so downstream joins see the
// store-assigned surrogate keys, not the provisional ones.
func (p *Pipeline) reloadDims(ctx context.Context, r *run) error {
	reads := []struct {
		dest warehouse.Destination
		into *warehouse.PersistedTable
	}{
		{p.dests.DimIndustry, &r.persisted.industry},
		{p.dests.DimSkill, &r.persisted.skill},
		{p.dests.DimCompany, &r.persisted.company},
		{p.dests.DimLocation, &r.persisted.location},
		{p.dests.DimWorkType, &r.persisted.workType},
		{p.dests.DimExperienceLevel, &r.persisted.expLevel},
	}
	for _, rd := range reads {
		pt, err := p.store.ReadTable(ctx, rd.dest)
		if err != nil {
			return err
		}
		*rd.into = pt
	}
	return nil
}

func (p *Pipeline) loadFact(ctx context.Context, r *run) error {
	fact, err := transform.BuildFact(r.techPostings, transform.FactDims{
		Company:         r.persisted.company,
		Location:        r.persisted.location,
		WorkType:        r.persisted.workType,
		ExperienceLevel: r.persisted.expLevel,
	})
	if err != nil {
		return err
	}
	return p.load(ctx, p.dests.FactTechJob, fact, fact.Columns())
}

func (p *Pipeline) reloadFact(ctx context.Context, r *run) error {
	pt, err := p.store.ReadTable(ctx, p.dests.FactTechJob)
	if err != nil {
		return err
	}
	r.persisted.fact = pt
	return nil
}

func (p *Pipeline) loadBridges(ctx context.Context, r *run) error {
	industry, err := transform.BuildBridge(r.jobIndustries, &r.persisted.industry, r.persisted.fact, transform.BridgeSpec{
		DimKeyCol:        "industry_id",
		JoinKey:          "job_id",
		FactSurrogateCol: "job_sk",
		OutputFactCol:    "job_id",
	})
	if err != nil {
		return err
	}
	if err := p.load(ctx, p.dests.BridgeJobIndustry, industry, []string{"job_id", "industry_id"}); err != nil {
		return err
	}
	skill, err := transform.BuildBridge(r.jobSkills, &r.persisted.skill, r.persisted.fact, transform.BridgeSpec{
		DimKeyCol:        "skill_abr",
		JoinKey:          "job_id",
		FactSurrogateCol: "job_sk",
		OutputFactCol:    "job_id",
	})
	if err != nil {
		return err
	}
	return p.load(ctx, p.dests.BridgeJobSkill, skill, []string{"job_id", "skill_abr"})
}

// commitState persists the new fingerprint map. It is reachable only
// after every load step succeeded.
func (p *Pipeline) commitState(_ context.Context, r *run) error {
	return p.state.Save(r.current)
}

func (p *Pipeline) load(ctx context.Context, dest warehouse.Destination, t *table.Table, cols []string) error {
	if err := p.store.Load(ctx, dest, t, cols); err != nil {
		return err
	}
	p.metrics.AddRowsLoaded(dest.String(), t.NumRows())
	p.log.Info("loaded batch",
		zap.String("destination", dest.String()),
		zap.Int("rows", t.NumRows()))
	return nil
}
