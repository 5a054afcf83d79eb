package domain

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestPart_Payload(t *testing.T) {
	part := Part{
		ID:         "p1",
		Name:       "Brake Pad",
		PartNumber: "BP-1",
		Category:   Category{ID: "c1", Name: "Brakes"},
	}

	raw, err := json.Marshal(part.Payload())
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	body := string(raw)
	if !strings.Contains(body, `"categoryId":"c1"`) {
		t.Errorf("payload should carry categoryId, got %s", body)
	}
	if strings.Contains(body, `"category"`) {
		t.Errorf("payload should not embed category, got %s", body)
	}
}

func TestVehicleModel_DisplayName(t *testing.T) {
	year := 2019
	tests := []struct {
		name string
		vm   VehicleModel
		want string
	}{
		{"with year", VehicleModel{Manufacturer: "Fiat", Name: "Uno", Year: &year}, "Fiat Uno (2019)"},
		{"without year", VehicleModel{Manufacturer: "Fiat", Name: "Uno"}, "Fiat Uno"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.vm.DisplayName(); got != tt.want {
				t.Errorf("DisplayName() = %q; want %q", got, tt.want)
			}
		})
	}
}

func TestVehicleModel_YearOmittedWhenAbsent(t *testing.T) {
	raw, err := json.Marshal(VehicleModel{Name: "Uno", Manufacturer: "Fiat"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(raw), "year") {
		t.Errorf("year should be omitted, got %s", raw)
	}
}

func TestAlertType_Valid(t *testing.T) {
	for _, typ := range []AlertType{AlertSuccess, AlertInfo, AlertWarning, AlertDanger} {
		if !typ.Valid() {
			t.Errorf("%q should be valid", typ)
		}
	}
	if AlertType("error").Valid() {
		t.Error(`"error" should not be a valid alert type`)
	}
	if got := (Alert{Timeout: DefaultAlertTimeout}).TimeoutMillis(); got != 5000 {
		t.Errorf("TimeoutMillis() = %d; want 5000", got)
	}
}
