package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMerchantService(repo *fakeMerchantRepo) (MerchantService, *fakeAuditRepo) {
	audit := &fakeAuditRepo{}
	return NewMerchantService(repo, audit, zerolog.Nop()), audit
}

func TestCreateMerchantNormalizesFreeformFields(t *testing.T) {
	repo := newFakeMerchantRepo()
	svc, audit := newMerchantService(repo)

	resp, err := svc.CreateMerchant(context.Background(), CreateMerchantRequest{
		LegalName:    "Padaria Central LTDA",
		TradeName:    "Padaria Central",
		Document:     "12.345.678/0001-90",
		OpeningDate:  "15/03/2019",
		OpeningHour:  "8h",
		ClosingHour:  "18:30",
		BusinessDays: "1111110",
	}, "user-1")
	require.NoError(t, err)

	assert.Equal(t, "12345678000190", resp.Document)
	require.NotNil(t, resp.OpeningDate)
	assert.Equal(t, time.Date(2019, time.March, 15, 0, 0, 0, 0, time.UTC), *resp.OpeningDate)
	assert.Equal(t, "08:00", resp.OpeningHour)
	assert.Equal(t, "18:30", resp.ClosingHour)
	assert.Equal(t, "1111110", resp.BusinessDays)
	assert.Equal(t, "PENDING", resp.Status)
	assert.Empty(t, resp.Warnings)
	assert.Len(t, audit.entries, 1)
}

func TestCreateMerchantDefaultsAndWarnsOnBadInput(t *testing.T) {
	repo := newFakeMerchantRepo()
	svc, _ := newMerchantService(repo)

	resp, err := svc.CreateMerchant(context.Background(), CreateMerchantRequest{
		LegalName:   "Mercado do Bairro ME",
		Document:    "98765432000110",
		OpeningDate: "sometime in 2019",
	}, "user-1")
	require.NoError(t, err)

	assert.Nil(t, resp.OpeningDate)
	require.Len(t, resp.Warnings, 1)
	assert.Contains(t, resp.Warnings[0], "sometime in 2019")

	// Empty hours and business days fall back to sensible defaults
	assert.Equal(t, "09:00", resp.OpeningHour)
	assert.Equal(t, "19:00", resp.ClosingHour)
	assert.Equal(t, "1111100", resp.BusinessDays)
}

func TestCreateMerchantRejectsDuplicateDocument(t *testing.T) {
	repo := newFakeMerchantRepo()
	svc, _ := newMerchantService(repo)

	_, err := svc.CreateMerchant(context.Background(), CreateMerchantRequest{
		LegalName: "Loja A",
		Document:  "11222333000144",
	}, "user-1")
	require.NoError(t, err)

	// Same document with different punctuation still collides
	_, err = svc.CreateMerchant(context.Background(), CreateMerchantRequest{
		LegalName: "Loja B",
		Document:  "11.222.333/0001-44",
	}, "user-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestUpdateMerchantPartialFields(t *testing.T) {
	repo := newFakeMerchantRepo()
	svc, _ := newMerchantService(repo)

	created, err := svc.CreateMerchant(context.Background(), CreateMerchantRequest{
		LegalName:   "Loja Antiga LTDA",
		Document:    "55666777000188",
		OpeningHour: "9h",
	}, "user-1")
	require.NoError(t, err)

	newStatus := "ACTIVE"
	newHour := "14h30"
	updated, err := svc.UpdateMerchant(context.Background(), created.ID, UpdateMerchantRequest{
		Status:      &newStatus,
		OpeningHour: &newHour,
	}, "user-1")
	require.NoError(t, err)

	assert.Equal(t, "ACTIVE", updated.Status)
	assert.Equal(t, "14:30", updated.OpeningHour)
	// Untouched fields survive
	assert.Equal(t, "Loja Antiga LTDA", updated.LegalName)
	assert.Equal(t, "55666777000188", updated.Document)
}

func TestUpdateMerchantNotFound(t *testing.T) {
	repo := newFakeMerchantRepo()
	svc, _ := newMerchantService(repo)

	name := "Qualquer"
	_, err := svc.UpdateMerchant(context.Background(), "3f9c86e0-33d2-4bbf-9a2b-92cf1f6f2a11", UpdateMerchantRequest{LegalName: &name}, "user-1")
	assert.ErrorIs(t, err, ErrMerchantNotFound)
}
