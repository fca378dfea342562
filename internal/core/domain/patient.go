package domain

import "time"

// Patient is the identity record that payments and results are keyed to.
// PatientID is the public 4-digit identifier and never changes once assigned.
type Patient struct {
	ID                    int64     `json:"id"`
	PatientID             string    `json:"patientId"`
	FirstName             string    `json:"firstName"`
	LastName              string    `json:"lastName"`
	OtherNames            string    `json:"otherNames,omitempty"`
	Email                 string    `json:"email,omitempty"`
	Phone                 string    `json:"phone,omitempty"`
	Address               string    `json:"address,omitempty"`
	NextOfKinName         string    `json:"nextOfKinName,omitempty"`
	NextOfKinPhone        string    `json:"nextOfKinPhone,omitempty"`
	NextOfKinRelationship string    `json:"nextOfKinRelationship,omitempty"`
	CreatedAt             time.Time `json:"createdAt"`
	UpdatedAt             time.Time `json:"updatedAt"`
}

func (p *Patient) FullName() string {
	if p.OtherNames != "" {
		return p.FirstName + " " + p.OtherNames + " " + p.LastName
	}
	return p.FirstName + " " + p.LastName
}
