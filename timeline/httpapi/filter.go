package httpapi

import (
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/AntonStoeckl/pubsub-timeline-go/timeline"
)

const (
	queryKind  = "kind"
	queryAfter = "after"
)

var predicateParams = []string{
	timeline.FieldPublisherID,
	timeline.FieldSubscriberID,
	timeline.FieldSubscriptionID,
	timeline.FieldNotification,
}

// filterFromQuery translates the query parameters of /history into a timeline.Filter.
// Kinds are alternatives, predicates must all match.
func filterFromQuery(query url.Values) (timeline.Filter, error) {
	builder := timeline.BuildEntryFilter()

	if after := query.Get(queryAfter); after != "" {
		sequence, err := strconv.ParseUint(after, 10, 64)
		if err != nil {
			return timeline.Filter{}, fmt.Errorf("%w: %q", ErrInvalidSequenceNumber, after)
		}

		builder = builder.WithSequenceNumberHigherThan(timeline.SequenceNumberUint(sequence))
	}

	kinds, err := kindsFromQuery(query)
	if err != nil {
		return timeline.Filter{}, err
	}

	predicates := make([]timeline.FilterPredicate, 0, len(predicateParams))
	for _, param := range predicateParams {
		if value := query.Get(param); value != "" {
			predicates = append(predicates, timeline.P(param, value))
		}
	}

	switch {
	case len(kinds) == 0 && len(predicates) == 0:
		return builder.Finalize(), nil
	case len(predicates) == 0:
		return builder.Matching().AnyKindOf(kinds[0], kinds[1:]...).Finalize(), nil
	case len(kinds) == 0:
		return builder.Matching().AllPredicatesOf(predicates[0], predicates[1:]...).Finalize(), nil
	default:
		return builder.Matching().
			AnyKindOf(kinds[0], kinds[1:]...).
			AndAllPredicatesOf(predicates[0], predicates[1:]...).
			Finalize(), nil
	}
}

func kindsFromQuery(query url.Values) ([]timeline.Kind, error) {
	known := timeline.AllKinds()
	kinds := make([]timeline.Kind, 0)

	for _, value := range query[queryKind] {
		for _, raw := range strings.Split(value, ",") {
			raw = strings.TrimSpace(raw)
			if raw == "" {
				continue
			}

			kind := timeline.Kind(raw)
			if !slices.Contains(known, kind) {
				return nil, fmt.Errorf("%w: %q", ErrUnknownKind, raw)
			}

			kinds = append(kinds, kind)
		}
	}

	return kinds, nil
}
