package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Коды ошибок в теле ответа
const (
	codeOK            = 0
	codeBadRequest    = 40001
	codeInvalidValue  = 40002
	codeNotFound      = 40401
	codeSuperseded    = 40901
	codeInternal      = 50001
	codeTaskFailed    = 50002
	codeReinitFailed  = 50003
	codeExportFailed  = 50004
	messageSuccess    = "success"
	messageInternal   = "internal server error"
	messageSuperseded = "scheduler was reinitialized during the run"
)

// Response - единый формат ответа API
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Details string      `json:"details,omitempty"`
}

// OK 200
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    codeOK,
		Message: messageSuccess,
		Data:    data,
	})
}

// Error - ответ с ошибкой без данных
func Error(c *gin.Context, httpStatus int, code int, message string) {
	c.JSON(httpStatus, Response{
		Code:    code,
		Message: message,
	})
}

// ErrorWithData - ответ с ошибкой, к которому приложен частичный результат
func ErrorWithData(c *gin.Context, httpStatus int, code int, message string, data interface{}, details string) {
	c.JSON(httpStatus, Response{
		Code:    code,
		Message: message,
		Data:    data,
		Details: details,
	})
}

// BadRequest 400
func BadRequest(c *gin.Context, code int, message string) {
	Error(c, http.StatusBadRequest, code, message)
}

// NotFound 404
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, codeNotFound, message)
}

// InternalError 500
func InternalError(c *gin.Context, err error) {
	_ = c.Error(err)
	Error(c, http.StatusInternalServerError, codeInternal, messageInternal)
}
