// Package validation provides struct tag validation for apiq configuration.
//
// It wraps the validator library and reports field names by their json tags:
//
//	type Config struct {
//	    BaseURL string `json:"base_url" validate:"required,url"`
//	}
//	err := validation.Validate(cfg)
package validation
