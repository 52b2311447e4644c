package model

// Patient holds the profile fields printed in the report facts block. Missing
// profile fields are empty strings.
type Patient struct {
	ID               string
	FullName         string
	Email            string
	PhoneNumber      string
	EmergencyContact string
	GloveID          string
}

// PatientFromMap decodes a patients/{id} document
func PatientFromMap(id string, data map[string]any) *Patient {
	p := &Patient{ID: id}
	p.FullName, _ = data["fullName"].(string)
	p.Email, _ = data["email"].(string)
	p.PhoneNumber, _ = data["phonenumber"].(string)
	p.EmergencyContact, _ = data["emergencyContact"].(string)
	p.GloveID, _ = data["gloveId"].(string)
	return p
}
