package admin

import (
	"strings"

	"github.com/pesio-ai/be-tbc-triage/internal/client"
	"github.com/pesio-ai/be-tbc-triage/internal/platform/errors"
)

// Validation messages shown to administrators
const (
	MsgNameRequired     = "El nombre es obligatorio"
	MsgZipCodeRequired  = "El código postal es obligatorio"
	MsgProvinceRequired = "Selecciona una provincia"
	MsgLabOutOfProvince = "El laboratorio no pertenece a la provincia"
)

// ValidateProvince checks a province before it is sent
func ValidateProvince(p *client.Province) error {
	if p == nil || strings.TrimSpace(p.Name) == "" {
		return errors.InvalidInput("name", MsgNameRequired)
	}
	return nil
}

// ValidateLaboratory checks a laboratory before it is sent
func ValidateLaboratory(l *client.LaboratoryInput) error {
	if l == nil || strings.TrimSpace(l.Name) == "" {
		return errors.InvalidInput("name", MsgNameRequired)
	}
	if l.ProvinceID <= 0 {
		return errors.InvalidInput("provinceId", MsgProvinceRequired)
	}
	return nil
}

// CityForm is the editable state of a city. A zero LaboratorioID means
// no laboratory.
type CityForm struct {
	ID            int    `json:"id,omitempty"`
	Name          string `json:"name"`
	ZipCode       string `json:"zipCode"`
	ProvinceID    int    `json:"provinceId"`
	LaboratorioID int    `json:"laboratorioId"`
}

// CityFormFrom starts editing an existing city
func CityFormFrom(c client.City) CityForm {
	f := CityForm{ID: c.ID, Name: c.Name, ZipCode: c.ZipCode, ProvinceID: c.ProvinceID}
	if c.LaboratorioID != nil {
		f.LaboratorioID = *c.LaboratorioID
	}
	return f
}

// SetProvince changes the province. The chosen laboratory is dropped
// unless it belongs to the new province.
func (f *CityForm) SetProvince(provinceID int, labs []client.Laboratory) {
	f.ProvinceID = provinceID
	if f.LaboratorioID == 0 {
		return
	}
	for _, l := range LabChoices(labs, provinceID) {
		if l.ID == f.LaboratorioID {
			return
		}
	}
	f.LaboratorioID = 0
}

// LabChoices returns the laboratories of a province. Without a province
// there is nothing to choose from.
func LabChoices(labs []client.Laboratory, provinceID int) []client.Laboratory {
	out := []client.Laboratory{}
	if provinceID <= 0 {
		return out
	}
	for _, l := range labs {
		if l.ProvinceID == provinceID {
			out = append(out, l)
		}
	}
	return out
}

// Validate checks the form. labs is used to reject a laboratory from
// another province; pass nil to skip that check.
func (f CityForm) Validate(labs []client.Laboratory) error {
	if strings.TrimSpace(f.Name) == "" {
		return errors.InvalidInput("name", MsgNameRequired)
	}
	if strings.TrimSpace(f.ZipCode) == "" {
		return errors.InvalidInput("zipCode", MsgZipCodeRequired)
	}
	if f.ProvinceID <= 0 {
		return errors.InvalidInput("provinceId", MsgProvinceRequired)
	}
	if f.LaboratorioID > 0 && labs != nil {
		for _, l := range labs {
			if l.ID == f.LaboratorioID && l.ProvinceID != f.ProvinceID {
				return errors.InvalidInput("laboratorioId", MsgLabOutOfProvince)
			}
		}
	}
	return nil
}

// Payload is the request body for the form; no laboratory is sent as null
func (f CityForm) Payload() *client.CityInput {
	in := &client.CityInput{
		Name:       strings.TrimSpace(f.Name),
		ZipCode:    strings.TrimSpace(f.ZipCode),
		ProvinceID: f.ProvinceID,
	}
	if f.LaboratorioID > 0 {
		id := f.LaboratorioID
		in.LaboratorioID = &id
	}
	return in
}
