package server

import (
	"encoding/json"
	nethttp "net/http"
	"time"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/middleware/logging"
	"github.com/go-kratos/kratos/v2/middleware/recovery"
	"github.com/go-kratos/kratos/v2/transport/http"

	"github.com/iWorld-y/product_radar/app/api/internal/conf"
	"github.com/iWorld-y/product_radar/app/api/internal/service"
)

func NewHTTPServer(c *conf.Server, s *service.IdeaService, logger log.Logger) *http.Server {
	var opts = []http.ServerOption{
		http.Middleware(
			recovery.Recovery(),
			logging.Server(logger),
		),
		http.ErrorEncoder(encodeError),
	}
	if c != nil && c.Http != nil {
		if c.Http.Addr != "" {
			opts = append(opts, http.Address(c.Http.Addr))
		}
		if c.Http.Timeout != "" {
			if d, err := time.ParseDuration(c.Http.Timeout); err == nil {
				opts = append(opts, http.Timeout(d))
			}
		}
	}

	srv := http.NewServer(opts...)
	service.RegisterIdeaHTTPServer(srv, s)
	return srv
}

type errorReply struct {
	Success bool   `json:"success"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message"`
}

// encodeError 错误统一输出为 {success: false, message}
func encodeError(w nethttp.ResponseWriter, r *nethttp.Request, err error) {
	se := errors.FromError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(int(se.Code))
	_ = json.NewEncoder(w).Encode(errorReply{
		Success: false,
		Reason:  se.Reason,
		Message: se.Message,
	})
}
