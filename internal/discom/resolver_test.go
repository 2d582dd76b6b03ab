package discom

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SuryaEnergia/api-ppa/internal/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	discom *Discom
	tariff *TariffStructure
	saved  []*TariffStructure
}

func (f *fakeStore) FindDiscom(code string) (*Discom, error) {
	if f.discom != nil && f.discom.Code == code {
		return f.discom, nil
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeStore) SaveDiscom(d *Discom) error { return nil }

func (f *fakeStore) FindEffectiveTariff(discomCode, state, category, customerType string, asOf time.Time) (*TariffStructure, error) {
	if f.tariff == nil || f.tariff.DiscomCode != discomCode {
		return nil, apperrors.ErrNotFound
	}
	if asOf.Before(f.tariff.EffectiveFrom) {
		return nil, apperrors.ErrNotFound
	}
	if f.tariff.EffectiveUntil != nil && asOf.After(*f.tariff.EffectiveUntil) {
		return nil, apperrors.ErrNotFound
	}
	return f.tariff, nil
}

func (f *fakeStore) SaveTariff(ts *TariffStructure) error {
	f.saved = append(f.saved, ts)
	return nil
}

type fakeFetcher struct {
	payload *APITariff
	err     error
	calls   int
}

func (f *fakeFetcher) FetchTariff(ctx context.Context, d Discom) (*APITariff, error) {
	f.calls++
	return f.payload, f.err
}

func query() Query {
	return Query{
		DiscomCode:   "MSEDCL",
		State:        "Maharashtra",
		Category:     "LT-I",
		CustomerType: "residential",
		AsOf:         time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func apiDiscom() *Discom {
	return &Discom{Code: "MSEDCL", State: "Maharashtra", APIEndpoint: "https://api.msedcl.example", APIActive: true}
}

func TestResolveFromAPIAndCacheBack(t *testing.T) {
	hundred := 100.0
	store := &fakeStore{discom: apiDiscom()}
	fetcher := &fakeFetcher{payload: &APITariff{
		Rate: 7.8,
		Slabs: []APISlab{
			{Min: 0, Max: &hundred, Rate: 8.5},
			{Min: 100, Rate: 6.0},
		},
	}}
	r := NewResolver(store, fetcher, nil)

	res, err := r.Resolve(context.Background(), query())
	require.NoError(t, err)
	assert.Equal(t, SourceAPI, res.Source)
	assert.Equal(t, 7.8, res.Rate)

	// Successful fetches are written back to the store with their rows.
	require.Len(t, store.saved, 1)
	assert.Equal(t, SourceAPI, store.saved[0].Source)
	assert.Len(t, store.saved[0].Slabs, 2)
}

func TestResolveAPISlabEffectiveRate(t *testing.T) {
	hundred := 100.0
	store := &fakeStore{discom: apiDiscom()}
	fetcher := &fakeFetcher{payload: &APITariff{
		Rate: 7.8,
		Slabs: []APISlab{
			{Min: 0, Max: &hundred, Rate: 8.5},
			{Min: 100, Rate: 6.0},
		},
	}}
	r := NewResolver(store, fetcher, nil)

	q := query()
	consumption := 150.0
	q.Consumption = &consumption

	res, err := r.Resolve(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, 7.8, res.Rate)
	assert.Equal(t, 6.0, res.EffectiveRate)
}

func TestResolveFallsThroughToStoredOnAPIFailure(t *testing.T) {
	store := &fakeStore{
		discom: apiDiscom(),
		tariff: &TariffStructure{
			DiscomCode:    "MSEDCL",
			BaseRate:      7.2,
			EffectiveFrom: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		},
	}
	fetcher := &fakeFetcher{err: apperrors.External("MSEDCL", errors.New("connection refused"))}
	r := NewResolver(store, fetcher, nil)

	res, err := r.Resolve(context.Background(), query())
	require.NoError(t, err, "api failure is never fatal")
	assert.Equal(t, 1, fetcher.calls)
	assert.Equal(t, SourceStored, res.Source)
	assert.Equal(t, 7.2, res.Rate)
}

func TestResolveSkipsAPIWhenInactive(t *testing.T) {
	d := apiDiscom()
	d.APIActive = false
	store := &fakeStore{
		discom: d,
		tariff: &TariffStructure{
			DiscomCode:    "MSEDCL",
			BaseRate:      7.2,
			EffectiveFrom: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		},
	}
	fetcher := &fakeFetcher{payload: &APITariff{Rate: 9.9}}
	r := NewResolver(store, fetcher, nil)

	res, err := r.Resolve(context.Background(), query())
	require.NoError(t, err)
	assert.Zero(t, fetcher.calls)
	assert.Equal(t, SourceStored, res.Source)
}

func TestResolveStoredRespectsEffectiveWindow(t *testing.T) {
	until := time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)
	store := &fakeStore{
		tariff: &TariffStructure{
			DiscomCode:     "MSEDCL",
			BaseRate:       7.2,
			EffectiveFrom:  time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
			EffectiveUntil: &until,
		},
	}
	r := NewResolver(store, nil, nil)

	// Query date is past the window: stored tier yields nothing and the
	// rule-based default answers.
	res, err := r.Resolve(context.Background(), query())
	require.NoError(t, err)
	assert.Equal(t, SourceDefault, res.Source)
	assert.Equal(t, 6.5, res.Rate, "residential default")
}

func TestResolveRuleBasedDefaults(t *testing.T) {
	r := NewResolver(&fakeStore{}, nil, nil)

	cases := map[string]float64{
		"residential":  6.5,
		"commercial":   8.0,
		"industrial":   9.5,
		"agricultural": 4.0,
	}
	for customerType, want := range cases {
		q := query()
		q.CustomerType = customerType
		res, err := r.Resolve(context.Background(), q)
		require.NoError(t, err)
		assert.Equal(t, SourceDefault, res.Source)
		assert.Equal(t, want, res.Rate, customerType)
	}
}

func TestResolveConstantFallback(t *testing.T) {
	r := NewResolver(&fakeStore{}, nil, nil)

	q := query()
	q.CustomerType = "interstellar"
	res, err := r.Resolve(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, SourceFallback, res.Source)
	assert.Equal(t, 7.0, res.Rate)
}

func TestResolveRejectsMalformedQuery(t *testing.T) {
	r := NewResolver(&fakeStore{}, nil, nil)

	q := query()
	q.DiscomCode = ""
	_, err := r.Resolve(context.Background(), q)
	assert.True(t, apperrors.IsValidation(err))

	q = query()
	q.CustomerType = ""
	_, err = r.Resolve(context.Background(), q)
	assert.True(t, apperrors.IsValidation(err))
}
