package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS 允许浏览器跨域读取查看器的只读接口
var CORS func(http.Handler) http.Handler = cors.Handler(cors.Options{
	AllowedOrigins: []string{"*"},
	AllowedMethods: []string{http.MethodGet, http.MethodOptions},
	AllowedHeaders: []string{"Content-Type", "X-Request-Id"},
	ExposedHeaders: []string{"X-Request-Id"},
	MaxAge:         300,
})
