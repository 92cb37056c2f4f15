package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
)

type gzipWriter struct {
	gin.ResponseWriter
	writer *gzip.Writer
}

func (g *gzipWriter) WriteString(s string) (int, error) {
	return g.writer.Write([]byte(s))
}

func (g *gzipWriter) Write(data []byte) (int, error) {
	return g.writer.Write(data)
}

func (g *gzipWriter) WriteHeader(code int) {
	g.Header().Del("Content-Length")
	g.ResponseWriter.WriteHeader(code)
}

// Compression gzips JSON responses for clients that accept it.
// Socket.IO upgrade requests are passed through untouched.
func Compression(level int) gin.HandlerFunc {
	pool := sync.Pool{
		New: func() interface{} {
			gz, err := gzip.NewWriterLevel(io.Discard, level)
			if err != nil {
				gz = gzip.NewWriter(io.Discard)
			}
			return gz
		},
	}

	return func(c *gin.Context) {
		if !acceptsGzip(c.Request) {
			c.Next()
			return
		}

		gz := pool.Get().(*gzip.Writer)
		gz.Reset(c.Writer)
		defer func() {
			_ = gz.Close()
			pool.Put(gz)
		}()

		c.Header("Content-Encoding", "gzip")
		c.Header("Vary", "Accept-Encoding")
		c.Writer = &gzipWriter{ResponseWriter: c.Writer, writer: gz}

		c.Next()
	}
}

func acceptsGzip(req *http.Request) bool {
	if !strings.Contains(req.Header.Get("Accept-Encoding"), "gzip") {
		return false
	}
	if strings.Contains(strings.ToLower(req.Header.Get("Connection")), "upgrade") {
		return false
	}
	return !strings.HasPrefix(req.URL.Path, "/socket.io")
}
