package calendar

import (
	"testing"

	"clinic-console/internal/domain/entity"

	"github.com/stretchr/testify/assert"
)

func TestStripEntityFields(t *testing.T) {
	fields := &entity.EntityFields{PatientCode: "PAT-001", RoomCode: "R-2"}
	criteria := entity.FilterCriteria{
		SearchCode:   "APT",
		Status:       []entity.AppointmentStatus{entity.StatusScheduled},
		EntityFields: fields,
	}

	t.Run("restricted caller loses entity fields", func(t *testing.T) {
		out := StripEntityFields(criteria, false)
		assert.Nil(t, out.EntityFields)
		assert.Equal(t, "APT", out.SearchCode)
		assert.Equal(t, []entity.AppointmentStatus{entity.StatusScheduled}, out.Status)
	})

	t.Run("full visibility keeps entity fields", func(t *testing.T) {
		out := StripEntityFields(criteria, true)
		if assert.NotNil(t, out.EntityFields) {
			assert.Equal(t, "PAT-001", out.EntityFields.PatientCode)
			assert.Equal(t, "R-2", out.EntityFields.RoomCode)
		}
	})

	t.Run("empty entity fields are normalised to nil", func(t *testing.T) {
		out := StripEntityFields(entity.FilterCriteria{EntityFields: &entity.EntityFields{}}, true)
		assert.Nil(t, out.EntityFields)
	})

	t.Run("output does not share memory with input", func(t *testing.T) {
		out := StripEntityFields(criteria, true)
		out.EntityFields.PatientCode = "changed"
		out.Status[0] = entity.StatusCancelled

		assert.Equal(t, "PAT-001", fields.PatientCode)
		assert.Equal(t, entity.StatusScheduled, criteria.Status[0])
	})
}

func TestVisibility_Set(t *testing.T) {
	v := NewVisibility(false)
	assert.False(t, v.CanViewAll())

	assert.True(t, v.Set(true))
	assert.True(t, v.CanViewAll())

	assert.False(t, v.Set(true), "same value is not a change")
	assert.True(t, v.Set(false))
	assert.False(t, v.CanViewAll())
}
