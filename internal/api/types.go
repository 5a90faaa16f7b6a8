package api

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/satriahrh/voicebridge/domain/entities"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// QueryRequest is the text assistant payload
type QueryRequest struct {
	Text     string `json:"text" form:"text"`
	Language string `json:"language" form:"language"`
	Category string `json:"category" form:"category"`
}

// QueryResponse is returned by both REST assistant routes
type QueryResponse struct {
	Query                 string                `json:"query"`
	Response              string                `json:"response"`
	Language              entities.LanguageCode `json:"language"`
	AudioURL              *string               `json:"audio_url"`
	UploadedInputAudioURL *string               `json:"uploaded_input_audio_url,omitempty"`
}

// LessonPage is one page of the lesson catalog
type LessonPage struct {
	Count    int                `json:"count"`
	Next     *string            `json:"next"`
	Previous *string            `json:"previous"`
	Results  []*entities.Lesson `json:"results"`
}

// ProfileRequest updates the caller's preferences
type ProfileRequest struct {
	Phone      string `json:"phone" validate:"omitempty,max=50"`
	Language   string `json:"language" validate:"omitempty,oneof=en yo ig ha"`
	DeviceType string `json:"device_type" validate:"omitempty,max=50"`
}

// requestValidator adapts validator/v10 to echo.Validator
type requestValidator struct {
	validate *validator.Validate
}

// NewValidator returns the echo validator used for request payloads
func NewValidator() echo.Validator {
	return &requestValidator{validate: validator.New()}
}

func (v *requestValidator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
