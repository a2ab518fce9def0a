// Package validation checks request input.
//
// Request DTOs use struct tags, with json names in the messages:
//
//	type youtubeRequest struct {
//	    URL string `json:"url" validate:"required,youtube_url"`
//	}
//	err := validation.Validate(req)
//
// Path parameters go through the chainable Validator:
//
//	err := validation.New().RequiredUUID("task_id", id).Validate()
package validation
