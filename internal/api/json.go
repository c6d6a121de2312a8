package api

import (
	"encoding/json"
	"fmt"
	"github.com/gin-gonic/gin"
	"github.com/mitchellh/mapstructure"
)

const (
	Success string = "success" //The request ended successfully
	Error   string = "error"   //The request ended with error - check the message field
)

type GenericRequest struct {
	Data map[string]interface{} `json:"data"`
}

func NewGenericResponse(status string, message string, data interface{}) gin.H {
	return gin.H{
		"status":  status,
		"message": message,
		"data":    data,
	}
}

func NewErrorResponse(message string) gin.H {
	return gin.H{
		"status":  Error,
		"message": message,
		"data":    gin.H{},
	}
}

func NewErrorResponsef(format string, a ...interface{}) gin.H {
	return gin.H{
		"status":  Error,
		"message": fmt.Sprintf(format, a...),
		"data":    gin.H{},
	}
}

// NewFieldErrorsResponse is the body of a rejected form submission: only the failing fields are present.
func NewFieldErrorsResponse(errors map[string]string) gin.H {
	return gin.H{
		"errors": errors,
	}
}

// DecodeDataTo decodes the data map of the request into output, which must be a pointer.
func (genericRequest *GenericRequest) DecodeDataTo(output interface{}) error {
	return mapstructure.Decode(genericRequest.Data, output)
}

func (genericRequest *GenericRequest) Load(input []byte) error {
	return json.Unmarshal(input, genericRequest)
}

type RestJsonResponse struct {
	Status  string      `json:"status" example:"success"`
	Message string      `json:"message" example:"The request was sent successfully"`
	Data    interface{} `json:"data"`
}

type RestJsonErrorResponse struct {
	Status  string      `json:"status" example:"error"`
	Message string      `json:"message" example:"Post hello-world not found"`
	Data    interface{} `json:"data"`
}

type FieldErrorsResponse struct {
	Errors map[string]string `json:"errors"`
}
