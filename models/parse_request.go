package models

type ParseRequest struct {
	URL  string
	HTML string

	Mode ExtractMode `json:"mode,omitempty"`
}
