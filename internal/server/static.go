package server

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var mimeTypes = map[string]string{
	".html": "text/html",
	".js":   "text/javascript",
	".css":  "text/css",
	".json": "application/json",
	".png":  "image/png",
	".jpg":  "image/jpg",
	".gif":  "image/gif",
	".svg":  "image/svg+xml",
	".wav":  "audio/wav",
	".mp4":  "video/mp4",
	".woff": "application/font-woff",
	".ttf":  "application/font-ttf",
	".eot":  "application/vnd.ms-fontobject",
	".otf":  "application/font-otf",
	".wasm": "application/wasm",
}

const (
	notFoundPage    = "<h1>404 - File Not Found</h1>"
	serverErrorPage = "<h1>500 - Internal Server Error</h1>"
)

func contentType(name string) string {
	if ct, ok := mimeTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return ct
	}
	return "application/octet-stream"
}

// staticHandler serves the preview build from dir. "/" maps to index.html.
func staticHandler(dir string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.Data(http.StatusNotFound, "text/html", []byte(notFoundPage))
			return
		}

		name := path.Clean("/" + c.Request.URL.Path)
		if name == "/" {
			name = "/index.html"
		}

		content, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(name)))
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				c.Data(http.StatusNotFound, "text/html", []byte(notFoundPage))
				return
			}
			logger.Error("Failed to read preview file", zap.String("path", name), zap.Error(err))
			c.Data(http.StatusInternalServerError, "text/html", []byte(serverErrorPage))
			return
		}

		c.Data(http.StatusOK, contentType(name), content)
	}
}
