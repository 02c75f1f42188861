package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"time"
	"unicode"

	"github.com/dchaplinsky/edrdr/internal/domain/entities"
	"github.com/dchaplinsky/edrdr/internal/domain/ports"
)

// MaxOwnershipDepth bounds the self-ownership chain lookup.
const MaxOwnershipDepth = 7

const homeCountry = "україна"

// SnapshotInputs are the read-only inputs shared by every company of a batch.
type SnapshotInputs struct {
	Timeline              *Timeline
	Mass                  *MassIndex
	LatestDeclarationYear int
}

// SnapshotComputer derives SnapshotFlags for one company at one revision.
type SnapshotComputer struct {
	facts     ports.FactStore
	snapshots ports.SnapshotStore
	watch     ports.WatchList
	chain     ports.OwnershipChain
	capital   ports.CapitalStore
	matcher   *Matcher
	metrics   ports.Metrics
	logger    *slog.Logger
	now       func() time.Time
}

// SnapshotOption configures a SnapshotComputer.
type SnapshotOption func(*SnapshotComputer)

// WithWatchList sets the watch-list collaborator.
func WithWatchList(w ports.WatchList) SnapshotOption {
	return func(c *SnapshotComputer) { c.watch = w }
}

// WithOwnershipChain sets the self-ownership collaborator.
func WithOwnershipChain(o ports.OwnershipChain) SnapshotOption {
	return func(c *SnapshotComputer) { c.chain = o }
}

// WithCharterCapital sets the charter capital source.
func WithCharterCapital(s ports.CapitalStore) SnapshotOption {
	return func(c *SnapshotComputer) { c.capital = s }
}

// WithMetrics sets the diagnostics sink.
func WithMetrics(m ports.Metrics) SnapshotOption {
	return func(c *SnapshotComputer) { c.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) SnapshotOption {
	return func(c *SnapshotComputer) { c.logger = l }
}

// WithClock overrides the computation timestamp source.
func WithClock(now func() time.Time) SnapshotOption {
	return func(c *SnapshotComputer) { c.now = now }
}

// NewSnapshotComputer creates a new SnapshotComputer.
func NewSnapshotComputer(
	facts ports.FactStore,
	snapshots ports.SnapshotStore,
	matcher *Matcher,
	opts ...SnapshotOption,
) *SnapshotComputer {
	c := &SnapshotComputer{
		facts:     facts,
		snapshots: snapshots,
		matcher:   matcher,
		metrics:   nopMetrics{},
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ComputeSnapshot returns the SnapshotFlags of a company at a revision.
// An existing record is returned as is unless force is set, in which case
// every field is recomputed and the record is overwritten.
func (c *SnapshotComputer) ComputeSnapshot(
	ctx context.Context,
	companyID entities.CompanyID,
	revisionID entities.RevisionID,
	force bool,
	in SnapshotInputs,
) (*entities.SnapshotFlags, error) {
	if !force {
		existing, err := c.snapshots.GetSnapshot(ctx, companyID, revisionID)
		if err != nil {
			return nil, fmt.Errorf("loading snapshot: %w", err)
		}
		if existing != nil {
			c.metrics.SnapshotSkipped()
			return existing, nil
		}
	}

	started := time.Now()
	flags, err := c.derive(ctx, companyID, revisionID, in)
	if err != nil {
		c.metrics.SnapshotFailed()
		return nil, err
	}
	flags.ComputedAt = c.now().UTC()

	if err := c.snapshots.SaveSnapshot(ctx, flags); err != nil {
		c.metrics.SnapshotFailed()
		return nil, fmt.Errorf("saving snapshot: %w", err)
	}
	c.metrics.SnapshotComputed(time.Since(started))
	return flags, nil
}

func (c *SnapshotComputer) derive(
	ctx context.Context,
	companyID entities.CompanyID,
	revisionID entities.RevisionID,
	in SnapshotInputs,
) (*entities.SnapshotFlags, error) {
	timeline, err := in.Timeline.Until(revisionID)
	if err != nil {
		return nil, err
	}

	records, err := c.facts.CompanyRecords(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("loading company records: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %d", entities.ErrCompanyNotFound, companyID)
	}
	recordsByRev := CompanyRecordsByRevision(records)
	for id := range recordsByRev {
		if err := in.Timeline.check(id); err != nil {
			return nil, fmt.Errorf("company %d: %w", companyID, err)
		}
	}

	flags := &entities.SnapshotFlags{CompanyID: companyID, RevisionID: revisionID}
	if c.capital != nil {
		if flags.CharterCapital, err = c.capital.CharterCapital(ctx, companyID); err != nil {
			return nil, fmt.Errorf("loading charter capital: %w", err)
		}
	}

	current := recordsByRev[revisionID]
	if len(current) == 0 {
		flags.NotPresentInRevision = true
		return flags, nil
	}
	record, err := ByStatusPriority(current)
	if err != nil {
		return nil, err
	}
	status, err := entities.ParseStatus(record.Status)
	if err != nil {
		return nil, err
	}
	flags.Status = status
	flags.IsActing = status == entities.StatusRegistered

	if n, ok := in.Mass.Lookup(record.Location); ok {
		flags.IsMassRegistered = true
		flags.MassRegistrations = n
	}

	persons, err := c.facts.Persons(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("loading persons: %w", err)
	}
	slices.SortFunc(persons, func(a, b entities.Person) int { return strings.Compare(a.Hash, b.Hash) })
	for _, p := range persons {
		for _, id := range p.Revisions {
			if err := in.Timeline.check(id); err != nil {
				return nil, fmt.Errorf("company %d person %s: %w", companyID, p.Hash, err)
			}
		}
	}

	names := c.partition(flags, persons, revisionID)
	c.overlaps(flags, names)

	if flags.HasBoPersons {
		if err := c.changes(flags, timeline, persons); err != nil {
			return nil, err
		}
	}

	c.similar(ctx, flags, names)

	if err := c.crossReference(ctx, flags, names[entities.RoleOwner], in.LatestDeclarationYear); err != nil {
		return nil, err
	}

	if c.chain != nil {
		depth, err := c.chain.SelfOwnershipDepth(ctx, companyID, MaxOwnershipDepth)
		if err != nil {
			return nil, fmt.Errorf("resolving ownership chain: %w", err)
		}
		flags.SelfOwned = depth == 1
		flags.SelfOwnedIndirect = depth > 1 && depth <= MaxOwnershipDepth
	}

	return flags, nil
}

// partition classifies the persons valid at the revision by role and
// returns the sorted distinct names per role.
func (c *SnapshotComputer) partition(
	flags *entities.SnapshotFlags,
	persons []entities.Person,
	revisionID entities.RevisionID,
) map[entities.Role][]string {
	names := make(map[entities.Role][]string, len(entities.AllRoles))
	countries := make(map[string]struct{})
	var geo geoHits

	for _, p := range persons {
		if !p.ObservedIn(revisionID) {
			continue
		}
		switch p.Role {
		case entities.RoleOwner:
			if p.BOIsAbsent {
				if flags.IsActing {
					flags.IsActingAndExplicitlyStatedNoBo = true
				}
				continue
			}
			flags.HasBo = true
			switch {
			case p.HasNames():
				flags.HasBoPersons = true
				names[entities.RoleOwner] = append(names[entities.RoleOwner], p.Names...)
			case p.WasDereferenced:
				flags.HasDereferencedBo = true
			default:
				flags.HasBoCompanies = true
			}
			hits := classifyAddresses(p.Addresses)
			geo.crimea = geo.crimea || hits.crimea
			geo.donetsk = geo.donetsk || hits.donetsk
			geo.luhansk = geo.luhansk || hits.luhansk
			for _, country := range p.Countries {
				if cc := cleanCountry(country); cc != "" && cc != homeCountry {
					countries[cc] = struct{}{}
				}
			}
		case entities.RoleFounder:
			if p.HasNames() {
				flags.HasFounderPersons = true
				names[entities.RoleFounder] = append(names[entities.RoleFounder], p.Names...)
			} else {
				flags.HasFounderCompanies = true
			}
		case entities.RoleHead:
			names[entities.RoleHead] = append(names[entities.RoleHead], p.Names...)
		}
	}

	for _, role := range entities.AllRoles {
		names[role] = distinctNames(names[role])
	}

	flags.HasOnlyPersonsBo = flags.HasBoPersons && !flags.HasBoCompanies
	flags.HasOnlyCompaniesBo = flags.HasBoCompanies && !flags.HasBoPersons
	flags.HasOnlyPersonsFounder = flags.HasFounderPersons && !flags.HasFounderCompanies
	flags.HasOnlyCompaniesFounder = flags.HasFounderCompanies && !flags.HasFounderPersons

	flags.HasBoInCrimea = geo.crimea
	flags.HasBoInOccupiedDonetsk = geo.donetsk
	flags.HasBoInOccupiedLuhansk = geo.luhansk
	flags.HasBoOnOccupiedSoil = geo.donetsk || geo.luhansk

	flags.AllOwnerPersons = names[entities.RoleOwner]
	flags.AllFounderPersons = names[entities.RoleFounder]
	flags.AllHeadPersons = names[entities.RoleHead]
	flags.OwnerPersonsCount = len(names[entities.RoleOwner])
	flags.FounderPersonsCount = len(names[entities.RoleFounder])
	for cc := range countries {
		flags.AllBoCountries = append(flags.AllBoCountries, cc)
	}
	slices.Sort(flags.AllBoCountries)

	return names
}

// overlaps sets the same-person flags from exact matches after ugly-strip.
func (c *SnapshotComputer) overlaps(flags *entities.SnapshotFlags, names map[entities.Role][]string) {
	owners := uglySet(names[entities.RoleOwner])
	founders := uglySet(names[entities.RoleFounder])
	heads := uglySet(names[entities.RoleHead])

	flags.HasSamePersonAsBoAndFounder = intersects(owners, founders)
	flags.HasSamePersonAsBoAndHead = intersects(owners, heads)
	flags.HasSamePersonAsFounderAndHead = intersects(founders, heads)
}

// similar runs the fuzzy cross-role comparisons. An overflowing comparison
// is logged and skipped.
func (c *SnapshotComputer) similar(ctx context.Context, flags *entities.SnapshotFlags, names map[entities.Role][]string) {
	comparisons := []struct {
		name    string
		a, b    []string
		pairs   *[]entities.NamePair
		similar *bool
		same    *bool
	}{
		{"founder_bo", names[entities.RoleFounder], names[entities.RoleOwner],
			&flags.AllSimilarFounderAndBo, &flags.HasVerySimilarPersonAsBoAndFounder, &flags.HasSamePersonAsBoAndFounder},
		{"head_bo", names[entities.RoleHead], names[entities.RoleOwner],
			&flags.AllSimilarHeadAndBo, &flags.HasVerySimilarPersonAsBoAndHead, &flags.HasSamePersonAsBoAndHead},
		{"head_founder", names[entities.RoleHead], names[entities.RoleFounder],
			&flags.AllSimilarHeadAndFounder, &flags.HasVerySimilarPersonAsFounderAndHead, &flags.HasSamePersonAsFounderAndHead},
	}

	for _, cmp := range comparisons {
		pairs, err := c.matcher.ListsMatch(cmp.a, cmp.b)
		if errors.Is(err, entities.ErrTooManyVariants) {
			c.metrics.MatchOverflow(cmp.name)
			c.logger.WarnContext(ctx, "skipping name comparison",
				"company_id", flags.CompanyID,
				"revision_id", flags.RevisionID,
				"comparison", cmp.name,
				"error", err,
			)
			continue
		}
		*cmp.pairs = pairs
		*cmp.similar = len(pairs) > 0
		for _, p := range pairs {
			if c.matcher.MatchEither(p.A, p.B) {
				*cmp.same = true
				break
			}
		}
	}
}

// changes records the first genuine change of founder and owner name sets
// between consecutive periods up to the revision.
func (c *SnapshotComputer) changes(flags *entities.SnapshotFlags, timeline *Timeline, persons []entities.Person) error {
	periods, err := Group(timeline,
		RostersByRevision(persons, entities.RoleOwner, entities.RoleFounder),
		RosterHash, SingleRoster)
	if err != nil {
		return fmt.Errorf("grouping persons: %w", err)
	}

	for i := 1; i < len(periods); i++ {
		prev, cur := periods[i-1], periods[i]
		if flags.OwnershipChange == nil {
			flags.OwnershipChange = c.change(prev.Fact.NamesByRole(entities.RoleFounder), cur.Fact.NamesByRole(entities.RoleFounder), cur.Start)
		}
		if flags.BoChange == nil {
			flags.BoChange = c.change(prev.Fact.NamesByRole(entities.RoleOwner), cur.Fact.NamesByRole(entities.RoleOwner), cur.Start)
		}
	}
	flags.HasChangesInOwnership = flags.OwnershipChange != nil
	flags.HasChangesInBo = flags.BoChange != nil
	return nil
}

// change compares two name sets. Differences whose token-set ratio reaches
// the noise threshold are not changes.
func (c *SnapshotComputer) change(before, after []string, at entities.RevisionID) *entities.Change {
	removed := difference(before, after)
	added := difference(after, before)
	if len(removed) == 0 && len(added) == 0 {
		return nil
	}
	ratio := TokenSetRatio(strings.Join(removed, " "), strings.Join(added, " "))
	if ratio >= c.matcher.cfg.NoiseRatio {
		return nil
	}
	return &entities.Change{
		Revision: at,
		Before:   distinctNames(before),
		After:    distinctNames(after),
		Ratio:    ratio,
	}
}

// crossReference checks the owners against the watch-list.
func (c *SnapshotComputer) crossReference(
	ctx context.Context,
	flags *entities.SnapshotFlags,
	owners []string,
	latestYear int,
) error {
	if c.watch == nil {
		return nil
	}
	entries, err := c.watch.WatchEntries(ctx, flags.CompanyID)
	if err != nil {
		return fmt.Errorf("loading watch-list: %w", err)
	}

	for _, e := range entries {
		if e.Role != entities.RoleOwner {
			continue
		}
		if !e.FromDeclaration {
			flags.HasUndeclaredPepOwner = true
			continue
		}
		if latestYear == 0 || !e.DeclaredIn(latestYear) {
			if len(e.Years) > 0 {
				flags.HadPepOwnerInThePast = true
			}
			continue
		}
		flags.HasPepOwner = true
		if !c.declaredAmong(e.Name, owners) {
			flags.HasDiscrepancyWithDeclarations = true
		}
	}
	return nil
}

func (c *SnapshotComputer) declaredAmong(declared string, owners []string) bool {
	for _, o := range owners {
		if c.matcher.Similarity(o, declared) > c.matcher.cfg.DeclarationCutoff {
			return true
		}
	}
	return false
}

// uglyStrip trims surrounding punctuation and quote variants and lowercases.
func uglyStrip(s string) string {
	s = strings.TrimFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func uglySet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		if s := uglyStrip(n); s != "" {
			set[s] = struct{}{}
		}
	}
	return set
}

func intersects(a, b map[string]struct{}) bool {
	for k := range a {
		if _, ok := b[k]; ok {
			return true
		}
	}
	return false
}

// distinctNames returns the sorted unique names, or nil when there are none.
func distinctNames(names []string) []string {
	var out []string
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

func difference(a, b []string) []string {
	var out []string
	for _, n := range distinctNames(a) {
		if !slices.Contains(b, n) {
			out = append(out, n)
		}
	}
	return out
}

var countryJunk = strings.NewReplacer("\"", "", "'", "", "(", "", ")", "")

func cleanCountry(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(countryJunk.Replace(s))), " ")
}

type nopMetrics struct{}

func (nopMetrics) SnapshotComputed(time.Duration) {}
func (nopMetrics) SnapshotSkipped()               {}
func (nopMetrics) SnapshotFailed()                {}
func (nopMetrics) MatchOverflow(string)           {}
