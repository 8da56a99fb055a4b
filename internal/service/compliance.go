package service

import (
	"context"
	"fmt"
	"log"

	"github.com/ovenlight/sms-dispatch/internal/cache"
	"github.com/ovenlight/sms-dispatch/internal/domain/optout"
)

// ComplianceFilter gates every outbound send against the opt-out
// registry, independent of all other logic.
type ComplianceFilter interface {
	IsBlocked(ctx context.Context, phone string) (bool, error)
}

type complianceFilter struct {
	optOuts optout.Repository
	cache   cache.Cache
}

// NewComplianceFilter creates a filter backed by the opt-out table with
// a Redis set in front of it. The cache is optional and best-effort:
// only positive membership is cached, so a cache miss always falls
// through to the registry.
func NewComplianceFilter(optOuts optout.Repository, c cache.Cache) ComplianceFilter {
	return &complianceFilter{
		optOuts: optOuts,
		cache:   c,
	}
}

func (f *complianceFilter) IsBlocked(ctx context.Context, phone string) (bool, error) {
	setKey := cache.OptOuts.Key("numbers")

	if f.cache != nil {
		blocked, err := f.cache.SIsMember(ctx, setKey, phone)
		if err == nil && blocked {
			return true, nil
		}
		if err != nil {
			log.Printf("[Compliance] Cache lookup failed for %s: %v", phone, err)
		}
	}

	blocked, err := f.optOuts.Exists(ctx, phone)
	if err != nil {
		return false, fmt.Errorf("opt-out lookup for %s: %w", phone, err)
	}

	if blocked && f.cache != nil {
		if err := f.cache.SAdd(ctx, setKey, phone); err != nil {
			log.Printf("[Compliance] Failed to cache opt-out for %s: %v", phone, err)
		}
	}

	return blocked, nil
}
