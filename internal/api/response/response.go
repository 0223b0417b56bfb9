package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the envelope every route answers with. Extras holds the
// payload on success and {"message": ...} on failure.
type Response struct {
	Success bool `json:"success"`
	Code    int  `json:"code"`
	Extras  any  `json:"extras"`
}

// OK answers 200 with extras.
func OK(c *gin.Context, extras any) {
	c.JSON(http.StatusOK, Response{Success: true, Code: http.StatusOK, Extras: extras})
}

// Fail answers code with message.
func Fail(c *gin.Context, code int, message string) {
	c.JSON(code, Response{Success: false, Code: code, Extras: gin.H{"message": message}})
}

// AbortWithError answers with the status err carries, 500 when it carries
// none, and stops the handler chain. Unknown errors are not echoed.
func AbortWithError(c *gin.Context, err error) {
	status := StatusOf(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		message = http.StatusText(status)
	}
	Fail(c, status, message)
	c.Abort()
}
