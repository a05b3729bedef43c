package vehicle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVehicle(t *testing.T) {
	v := NewVehicle("spec-1", "loc-1", "品川300あ12-34", 150.0)
	assert.Equal(t, StatusAvailable, v.Status)
	assert.Equal(t, 100, v.FuelLevel)
	assert.Equal(t, 0, v.Version)
	assert.True(t, v.IsAvailable())
	require.NoError(t, v.Validate())
}

func TestVehicle_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Vehicle)
		errExpected error
	}{
		{"車種テンプレートID未指定", func(v *Vehicle) { v.SpecificationID = "" }, ErrSpecificationIDRequired},
		{"拠点ID未指定", func(v *Vehicle) { v.LocationID = "" }, ErrLocationIDRequired},
		{"ナンバープレート未指定", func(v *Vehicle) { v.LicensePlate = "" }, ErrLicensePlateRequired},
		{"料金ゼロ", func(v *Vehicle) { v.RentalRate = 0 }, ErrInvalidRentalRate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewVehicle("spec-1", "loc-1", "plate-1", 150.0)
			tt.mutate(v)
			assert.ErrorIs(t, v.Validate(), tt.errExpected)
		})
	}
}

func TestVehicle_HasManualStatus(t *testing.T) {
	tests := []struct {
		status Status
		want   bool
	}{
		{StatusAvailable, false},
		{StatusReserved, false},
		{StatusRented, false},
		{StatusMaintenance, false},
		{StatusOutOfService, true},
		{StatusDamaged, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			v := NewVehicle("spec-1", "loc-1", "plate-1", 150.0)
			v.Status = tt.status
			assert.Equal(t, tt.want, v.HasManualStatus())
		})
	}
}

func TestValidStatus(t *testing.T) {
	for _, s := range []Status{StatusAvailable, StatusRented, StatusMaintenance, StatusOutOfService, StatusReserved, StatusDamaged} {
		assert.True(t, ValidStatus(s))
	}
	assert.False(t, ValidStatus("flying"))
	assert.False(t, ValidStatus(""))
}

func TestNewSpecification(t *testing.T) {
	s := NewSpecification("Toyota", "Corolla", 2023, "sedan", 5, "automatic", "hybrid", []string{"gps", "bluetooth"})
	require.NoError(t, s.Validate())
	assert.Equal(t, "Toyota", s.Make)
	assert.Equal(t, 2023, s.Year)
}

func TestSpecification_Validate(t *testing.T) {
	s := NewSpecification("", "", 2023, "sedan", 5, "automatic", "petrol", nil)
	assert.ErrorIs(t, s.Validate(), ErrMakeModelRequired)

	s = NewSpecification("Toyota", "Corolla", 1899, "sedan", 5, "automatic", "petrol", nil)
	assert.ErrorIs(t, s.Validate(), ErrInvalidYear)
}
