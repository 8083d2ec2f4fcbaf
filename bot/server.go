package bot

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// newServer builds the HTTP server hosting the webhook route and health check
func newServer(port int, router *gin.Engine) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
}
