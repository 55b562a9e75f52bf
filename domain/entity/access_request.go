package entity

import (
	"time"
)

// AccessRequestHeader is the column order of the access request log.
var AccessRequestHeader = []string{"timestamp", "fullname", "email", "idNumber", "idType", "requestType"}

// TimestampLayout matches the millisecond precision UTC form used in the log.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

type AccessRequest struct {
	Timestamp   time.Time `json:"timestamp"`
	FullName    string    `json:"fullname"`
	Email       string    `json:"email"`
	IDNumber    string    `json:"idNumber"`
	IDType      string    `json:"idType"`
	RequestType string    `json:"requestType"`
}

func NewAccessRequest(at time.Time, fullName, email, idNumber, idType, requestType string) *AccessRequest {
	return &AccessRequest{
		Timestamp:   at,
		FullName:    fullName,
		Email:       email,
		IDNumber:    idNumber,
		IDType:      idType,
		RequestType: requestType,
	}
}

// Record returns the row fields in AccessRequestHeader order.
func (r *AccessRequest) Record() []string {
	return []string{
		r.Timestamp.UTC().Format(TimestampLayout),
		r.FullName,
		r.Email,
		r.IDNumber,
		r.IDType,
		r.RequestType,
	}
}
