package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoctorByID(t *testing.T) {
	d, ok := DoctorByID("dr1")
	require.True(t, ok)
	assert.Equal(t, "Dr. Sarah Johnson", d.Name)
	assert.Equal(t, CategoryGeneral, d.Category)
	assert.Equal(t, 500, d.ConsultationFee)

	_, ok = DoctorByID("dr999")
	assert.False(t, ok)
}

func TestOffersSlot(t *testing.T) {
	d, ok := DoctorByID("dr3")
	require.True(t, ok)

	assert.True(t, d.OffersSlot("10:00 AM"))
	assert.False(t, d.OffersSlot("09:00 AM"))
	assert.False(t, d.OffersSlot(""))
}

func TestDoctorsByCategory(t *testing.T) {
	all := Doctors("")
	assert.Len(t, all, 10)

	cardio := Doctors(CategoryCardiology)
	require.Len(t, cardio, 2)
	for _, d := range cardio {
		assert.Equal(t, CategoryCardiology, d.Category)
	}

	assert.Empty(t, Doctors("Podiatry"))
}

func TestCategories(t *testing.T) {
	cats := Categories()
	require.Len(t, cats, 5)

	seen := make(map[Category]bool)
	for _, c := range cats {
		assert.NotEmpty(t, c.Title)
		assert.NotEmpty(t, c.Description)
		seen[c.ID] = true
	}
	assert.True(t, seen[CategoryGeneral])
	assert.True(t, seen[CategoryOrthopedics])
}

func TestEveryDoctorHasTimings(t *testing.T) {
	for _, d := range Doctors("") {
		assert.NotEmptyf(t, d.AvailableTimings, "doctor %s has no timings", d.ID)
		assert.Positivef(t, d.ConsultationFee, "doctor %s has no fee", d.ID)
	}
}
