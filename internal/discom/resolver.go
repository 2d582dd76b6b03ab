package discom

import (
	"context"
	"time"

	"github.com/SuryaEnergia/api-ppa/internal/apperrors"
	"github.com/SuryaEnergia/api-ppa/internal/billing"
	"github.com/SuryaEnergia/api-ppa/internal/tariff"
	"go.uber.org/zap"
)

// Query scopes a dynamic tariff lookup. Consumption, when given, also
// resolves a slab-based effective rate.
type Query struct {
	DiscomCode   string
	State        string
	Category     string
	CustomerType string
	AsOf         time.Time
	Consumption  *float64
}

// Result is a resolved tariff. Source records which tier answered.
type Result struct {
	Rate          float64 `json:"rate"`
	EffectiveRate float64 `json:"effectiveRate"`
	Currency      string  `json:"currency"`
	Source        string  `json:"source"`
}

// Rule-based defaults by customer type, used when neither the API nor the
// store has an answer.
var defaultRates = map[string]float64{
	"residential":  6.5,
	"commercial":   8.0,
	"industrial":   9.5,
	"agricultural": 4.0,
}

// fallbackRate is the last-resort constant when every tier fails.
const fallbackRate = 7.0

// TariffFetcher is the live-API surface, satisfied by *Client.
type TariffFetcher interface {
	FetchTariff(ctx context.Context, d Discom) (*APITariff, error)
}

// Resolver walks the tariff source tiers. It never fails a lookup because a
// tier failed; tiers degrade until the constant fallback answers.
type Resolver struct {
	Store  Store
	Client TariffFetcher
	Logger *zap.Logger
}

func NewResolver(store Store, client TariffFetcher, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{Store: store, Client: client, Logger: logger}
}

// Resolve answers a tariff query. Tier order: live DISCOM API (cached back
// to the store on success), stored regulatory tariff, rule-based default,
// constant fallback. Only a malformed query errors.
func (r *Resolver) Resolve(ctx context.Context, q Query) (Result, error) {
	if q.DiscomCode == "" {
		return Result{}, apperrors.Validation("discomCode", "discom code is required")
	}
	if q.CustomerType == "" {
		return Result{}, apperrors.Validation("customerType", "customer type is required")
	}
	if q.AsOf.IsZero() {
		q.AsOf = time.Now().UTC()
	}

	if res, ok := r.tryAPI(ctx, q); ok {
		return res, nil
	}
	if res, ok := r.tryStored(q); ok {
		return res, nil
	}
	if rate, ok := defaultRates[q.CustomerType]; ok {
		r.Logger.Info("dynamic tariff resolved from rule-based default",
			zap.String("discom", q.DiscomCode),
			zap.String("customerType", q.CustomerType))
		return result(rate, rate, SourceDefault), nil
	}
	return result(fallbackRate, fallbackRate, SourceFallback), nil
}

func (r *Resolver) tryAPI(ctx context.Context, q Query) (Result, bool) {
	d, err := r.Store.FindDiscom(q.DiscomCode)
	if err != nil || !d.APIActive || d.APIEndpoint == "" || r.Client == nil {
		return Result{}, false
	}

	payload, err := r.Client.FetchTariff(ctx, *d)
	if err != nil {
		r.Logger.Warn("discom api fetch failed, falling through",
			zap.String("discom", q.DiscomCode), zap.Error(err))
		return Result{}, false
	}

	r.cacheBack(q, payload)

	effective := effectiveRate(payload.Rate, q, apiSlabs(payload.Slabs), apiToU(payload.TimeOfUse))
	return result(payload.Rate, effective, SourceAPI), true
}

func (r *Resolver) tryStored(q Query) (Result, bool) {
	ts, err := r.Store.FindEffectiveTariff(q.DiscomCode, q.State, q.Category, q.CustomerType, q.AsOf)
	if err != nil {
		return Result{}, false
	}

	effective := effectiveRate(ts.BaseRate, q, storedSlabs(ts.Slabs), storedToU(ts.TimeOfUse))
	return result(ts.BaseRate, effective, SourceStored), true
}

// effectiveRate refines the base rate: slab resolution when the query
// carries a consumption value, otherwise the time-of-use window covering the
// query instant, if any.
func effectiveRate(base float64, q Query, slabs []billing.Slab, tou []billing.TimeOfUseRate) float64 {
	if q.Consumption != nil && len(slabs) > 0 {
		return tariff.ResolveSlabRate(*q.Consumption, slabs)
	}
	if len(tou) > 0 {
		if rate := tariff.ResolveTimeOfUseRate(q.AsOf, tou); rate > 0 {
			return rate
		}
	}
	return base
}

// cacheBack writes an API-resolved tariff (with its slab and time-of-use
// rows) into the store so later lookups survive an API outage.
func (r *Resolver) cacheBack(q Query, payload *APITariff) {
	ts := &TariffStructure{
		DiscomCode:    q.DiscomCode,
		State:         q.State,
		Category:      q.Category,
		CustomerType:  q.CustomerType,
		BaseRate:      payload.Rate,
		Currency:      "INR",
		EffectiveFrom: payload.EffectiveFrom,
		Source:        SourceAPI,
	}
	if ts.EffectiveFrom.IsZero() {
		ts.EffectiveFrom = q.AsOf
	}
	for _, s := range payload.Slabs {
		ts.Slabs = append(ts.Slabs, TariffSlab{Min: s.Min, Max: s.Max, Rate: s.Rate, Unit: s.Unit})
	}
	for _, t := range payload.TimeOfUse {
		ts.TimeOfUse = append(ts.TimeOfUse, TimeOfUseTariff{TimeRange: t.TimeRange, Rate: t.Rate, Unit: t.Unit})
	}
	if err := r.Store.SaveTariff(ts); err != nil {
		r.Logger.Warn("could not cache api tariff", zap.String("discom", q.DiscomCode), zap.Error(err))
	}
}

func result(rate, effective float64, source string) Result {
	return Result{Rate: rate, EffectiveRate: effective, Currency: "INR", Source: source}
}

func apiSlabs(in []APISlab) []billing.Slab {
	out := make([]billing.Slab, len(in))
	for i, s := range in {
		out[i] = billing.Slab{Min: s.Min, Max: s.Max, Rate: s.Rate, Unit: s.Unit}
	}
	return out
}

func storedSlabs(in []TariffSlab) []billing.Slab {
	out := make([]billing.Slab, len(in))
	for i, s := range in {
		out[i] = billing.Slab{Min: s.Min, Max: s.Max, Rate: s.Rate, Unit: s.Unit}
	}
	return out
}

func apiToU(in []APITimeOfUse) []billing.TimeOfUseRate {
	out := make([]billing.TimeOfUseRate, len(in))
	for i, t := range in {
		out[i] = billing.TimeOfUseRate{TimeRange: t.TimeRange, Rate: t.Rate, Unit: t.Unit}
	}
	return out
}

func storedToU(in []TimeOfUseTariff) []billing.TimeOfUseRate {
	out := make([]billing.TimeOfUseRate, len(in))
	for i, t := range in {
		out[i] = billing.TimeOfUseRate{TimeRange: t.TimeRange, Rate: t.Rate, Unit: t.Unit}
	}
	return out
}
