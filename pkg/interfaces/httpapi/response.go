package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vsinha/divmrp/pkg/domain/entities"
)

// Response is the envelope of every API reply
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Error codes carry the HTTP status in their first three digits
const (
	CodeOK                = 0
	CodeBadRequest        = 40000
	CodeInvalidTransition = 40001
	CodeInsufficientStock = 40002
	CodeNoCostsDefined    = 40003
	CodeNoBaseCurrency    = 40004
	CodeUnauthorized      = 40100
	CodeInvalidToken      = 40102
	CodeNotFound          = 40400
	CodeInternal          = 50000
)

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Code: CodeOK, Message: "success", Data: data})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Code: CodeOK, Message: "success", Data: data})
}

// Error writes an error reply; the status is derived from the code
func Error(c *gin.Context, code int, message string) {
	status := code / 100
	if status < 100 || status > 599 {
		status = http.StatusInternalServerError
	}
	c.AbortWithStatusJSON(status, Response{Code: code, Message: message})
}

func BadRequest(c *gin.Context, message string) {
	Error(c, CodeBadRequest, message)
}

// codeFor maps a domain error kind to its API code
func codeFor(err error) int {
	switch entities.KindOf(err) {
	case entities.KindNotFound:
		return CodeNotFound
	case entities.KindValidation:
		return CodeBadRequest
	case entities.KindInvalidTransition:
		return CodeInvalidTransition
	case entities.KindInsufficientStock:
		return CodeInsufficientStock
	case entities.KindNoCostsDefined:
		return CodeNoCostsDefined
	case entities.KindNoBaseCurrency:
		return CodeNoBaseCurrency
	default:
		return CodeInternal
	}
}

// Fail reports a service error. Internal errors are logged by the request logger and hidden from
// the client.
func Fail(c *gin.Context, err error) {
	code := codeFor(err)
	_ = c.Error(err)
	if code == CodeInternal {
		Error(c, code, "internal server error")
		return
	}
	Error(c, code, err.Error())
}
