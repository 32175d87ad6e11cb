package timeline

import (
	"slices"
	"time"
)

type FilterKeyString = string
type FilterValString = string

/***** Filter *****/

type Filter struct {
	items                    []FilterItem
	occurredFrom             time.Time
	occurredUntil            time.Time
	sequenceNumberHigherThan SequenceNumberUint
}

func (f Filter) Items() []FilterItem {
	return f.items
}

func (f Filter) OccurredFrom() time.Time {
	return f.occurredFrom
}

func (f Filter) OccurredUntil() time.Time {
	return f.occurredUntil
}

func (f Filter) SequenceNumberHigherThan() SequenceNumberUint {
	return f.sequenceNumberHigherThan
}

// Matches reports whether entry is inside the bounds of the Filter and matches ANY of its FilterItem(s).
// A Filter without FilterItem(s) matches every Entry inside its bounds.
func (f Filter) Matches(entry Entry) bool {
	if entry.Sequence <= f.sequenceNumberHigherThan {
		return false
	}

	if !f.occurredFrom.IsZero() && entry.At.Before(f.occurredFrom) {
		return false
	}

	if !f.occurredUntil.IsZero() && entry.At.After(f.occurredUntil) {
		return false
	}

	if len(f.items) == 0 {
		return true
	}

	for _, item := range f.items {
		if item.Matches(entry) {
			return true
		}
	}

	return false
}

/***** FilterItem *****/

type FilterItem struct {
	kinds                  []Kind
	predicates             []FilterPredicate
	allPredicatesMustMatch bool
}

func (fi FilterItem) Kinds() []Kind {
	return fi.kinds
}

func (fi FilterItem) Predicates() []FilterPredicate {
	return fi.predicates
}

func (fi FilterItem) AllPredicatesMustMatch() bool {
	return fi.allPredicatesMustMatch
}

// Matches reports whether entry has ANY of the Kinds and ANY (or ALL) of the predicates.
// Empty Kinds or empty predicates do not restrict.
func (fi FilterItem) Matches(entry Entry) bool {
	if len(fi.kinds) > 0 && !slices.Contains(fi.kinds, entry.Kind) {
		return false
	}

	if len(fi.predicates) == 0 {
		return true
	}

	matches := func(p FilterPredicate) bool { return entry.Field(p.key) == p.val }

	if fi.allPredicatesMustMatch {
		for _, predicate := range fi.predicates {
			if !matches(predicate) {
				return false
			}
		}

		return true
	}

	return slices.ContainsFunc(fi.predicates, matches)
}

/***** FilterPredicate *****/

type FilterPredicate struct {
	key FilterKeyString
	val FilterValString
}

func P(key FilterKeyString, val FilterValString) FilterPredicate {
	return FilterPredicate{key: key, val: val}
}

func (fp FilterPredicate) Key() FilterKeyString {
	return fp.key
}

func (fp FilterPredicate) Val() FilterValString {
	return fp.val
}

/***** FilterBuilder *****/

// FilterBuilder builds a generic entry filter, used for in-memory history queries
// and translated into SQL by export sinks.
// It only allows these combinations:
//
//   - empty filter
//   - (kind)
//   - (kind OR kind...)
//   - (predicate)
//   - (predicate OR predicate...)
//   - (predicate AND predicate...)
//   - (kind AND predicate)
//   - ((kind OR kind...) AND (predicate OR predicate...))
//   - ((kind OR kind...) AND (predicate AND predicate...))
//   - ((kind AND predicate) OR (kind AND predicate)...) -> multiple FilterItem(s)
//
// Time and sequence bounds apply to the whole Filter.
type FilterBuilder interface {
	// Matching starts a new FilterItem.
	Matching() EmptyFilterItemBuilder

	// MatchingAnyEntry directly creates a Filter without FilterItem(s).
	MatchingAnyEntry() Filter

	OccurredFrom(from time.Time) FilterBuilder
	OccurredUntil(until time.Time) FilterBuilder
	WithSequenceNumberHigherThan(sequenceNumber SequenceNumberUint) FilterBuilder

	// Finalize returns a Filter without FilterItem(s), restricted only by its bounds.
	Finalize() Filter
}

type EmptyFilterItemBuilder interface {
	// AnyKindOf adds one or multiple Kinds to the current FilterItem.
	//
	// It sanitizes the input:
	//	- removing empty Kinds ("")
	//	- sorting the Kinds
	//	- removing duplicate Kinds
	AnyKindOf(kind Kind, kinds ...Kind) FilterItemBuilderLackingPredicates

	// AnyPredicateOf adds one or multiple FilterPredicate(s) to the current FilterItem.
	//
	// It sanitizes the input:
	//	- removing empty/partial FilterPredicate(s) (key or val is "")
	//	- sorting the FilterPredicate(s)
	//	- removing duplicate FilterPredicate(s)
	AnyPredicateOf(predicate FilterPredicate, predicates ...FilterPredicate) FilterItemBuilderLackingKinds

	AllPredicatesOf(predicate FilterPredicate, predicates ...FilterPredicate) FilterItemBuilderLackingKinds
}

type FilterItemBuilderLackingPredicates interface {
	AndAnyPredicateOf(predicate FilterPredicate, predicates ...FilterPredicate) CompletedFilterItemBuilder

	AndAllPredicatesOf(predicate FilterPredicate, predicates ...FilterPredicate) CompletedFilterItemBuilder

	// OrMatching finalizes the current FilterItem and starts a new one.
	OrMatching() EmptyFilterItemBuilder

	Finalize() Filter
}

type FilterItemBuilderLackingKinds interface {
	AndAnyKindOf(kind Kind, kinds ...Kind) CompletedFilterItemBuilder

	// OrMatching finalizes the current FilterItem and starts a new one.
	OrMatching() EmptyFilterItemBuilder

	Finalize() Filter
}

type CompletedFilterItemBuilder interface {
	// OrMatching finalizes the current FilterItem and starts a new one.
	OrMatching() EmptyFilterItemBuilder

	Finalize() Filter
}

// filterBuilder implements all the interfaces of FilterBuilder
type filterBuilder struct {
	filter            Filter
	currentFilterItem FilterItem
	hasCurrentItem    bool
}

// BuildEntryFilter creates a FilterBuilder which must eventually be finalized with Finalize() or MatchingAnyEntry().
func BuildEntryFilter() FilterBuilder {
	return filterBuilder{}
}

func (fb filterBuilder) Matching() EmptyFilterItemBuilder {
	fb.currentFilterItem = FilterItem{}
	fb.hasCurrentItem = true

	return fb
}

func (fb filterBuilder) OccurredFrom(from time.Time) FilterBuilder {
	fb.filter.occurredFrom = from

	return fb
}

func (fb filterBuilder) OccurredUntil(until time.Time) FilterBuilder {
	fb.filter.occurredUntil = until

	return fb
}

func (fb filterBuilder) WithSequenceNumberHigherThan(sequenceNumber SequenceNumberUint) FilterBuilder {
	fb.filter.sequenceNumberHigherThan = sequenceNumber

	return fb
}

// AnyKindOf adds one or multiple Kinds to the current FilterItem expecting ANY Kind to match.
func (fb filterBuilder) AnyKindOf(kind Kind, kinds ...Kind) FilterItemBuilderLackingPredicates {
	fb.currentFilterItem.kinds = append(
		slices.Clip(fb.currentFilterItem.kinds),
		fb.sanitizeKinds(kind, kinds...)...,
	)

	return fb
}

func (fb filterBuilder) AndAnyKindOf(kind Kind, kinds ...Kind) CompletedFilterItemBuilder {
	return fb.AnyKindOf(kind, kinds...)
}

func (fb filterBuilder) sanitizeKinds(kind Kind, kinds ...Kind) []Kind {
	allKinds := append([]Kind{kind}, kinds...)
	allKinds = slices.DeleteFunc(allKinds, func(k Kind) bool { return k == "" })
	slices.Sort(allKinds)
	allKinds = slices.Compact(allKinds)
	allKinds = slices.Clip(allKinds)

	return allKinds
}

// AnyPredicateOf adds one or multiple FilterPredicate(s) to the current FilterItem expecting ANY predicate to match.
func (fb filterBuilder) AnyPredicateOf(
	predicate FilterPredicate,
	predicates ...FilterPredicate,
) FilterItemBuilderLackingKinds {

	fb.currentFilterItem.predicates = append(
		slices.Clip(fb.currentFilterItem.predicates),
		fb.sanitizePredicates(predicate, predicates...)...,
	)

	return fb
}

func (fb filterBuilder) AndAnyPredicateOf(
	predicate FilterPredicate,
	predicates ...FilterPredicate,
) CompletedFilterItemBuilder {

	return fb.AnyPredicateOf(predicate, predicates...)
}

// AllPredicatesOf adds one or multiple FilterPredicate(s) to the current FilterItem expecting ALL predicates to match.
func (fb filterBuilder) AllPredicatesOf(
	predicate FilterPredicate,
	predicates ...FilterPredicate,
) FilterItemBuilderLackingKinds {

	fb.currentFilterItem.allPredicatesMustMatch = true

	return fb.AnyPredicateOf(predicate, predicates...)
}

func (fb filterBuilder) AndAllPredicatesOf(
	predicate FilterPredicate,
	predicates ...FilterPredicate,
) CompletedFilterItemBuilder {

	return fb.AllPredicatesOf(predicate, predicates...)
}

func (fb filterBuilder) sanitizePredicates(
	predicate FilterPredicate,
	predicates ...FilterPredicate,
) []FilterPredicate {

	allPredicates := append([]FilterPredicate{predicate}, predicates...)
	allPredicates = slices.DeleteFunc(allPredicates, func(p FilterPredicate) bool { return p.key == "" || p.val == "" })
	slices.SortFunc(
		allPredicates,
		func(a, b FilterPredicate) int {
			if a.key != b.key {
				if a.key > b.key {
					return 1
				}

				return -1
			}

			switch {
			case a.val > b.val:
				return 1
			case a.val < b.val:
				return -1
			default:
				return 0
			}
		})

	allPredicates = slices.Compact(allPredicates)
	allPredicates = slices.Clip(allPredicates)

	return allPredicates
}

func (fb filterBuilder) OrMatching() EmptyFilterItemBuilder {
	fb.filter.items = append(slices.Clip(fb.filter.items), fb.currentFilterItem)
	fb.currentFilterItem = FilterItem{}

	return fb
}

func (fb filterBuilder) MatchingAnyEntry() Filter {
	return fb.filter
}

func (fb filterBuilder) Finalize() Filter {
	if fb.hasCurrentItem {
		fb.filter.items = append(slices.Clip(fb.filter.items), fb.currentFilterItem)
	}

	return fb.filter
}
