package middleware

import (
    "github.com/labstack/echo/v4"
    echomw "github.com/labstack/echo/v4/middleware"

    "github.com/iliyamo/picklepass/internal/logger"
)

// RequestLogger emits one structured line per request through the zap
// logger.
func RequestLogger() echo.MiddlewareFunc {
    return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
        LogMethod:   true,
        LogURI:      true,
        LogStatus:   true,
        LogLatency:  true,
        LogRemoteIP: true,
        LogError:    true,
        LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
            kv := []any{
                "method", v.Method,
                "uri", v.URI,
                "status", v.Status,
                "latency", v.Latency.String(),
                "remote_ip", v.RemoteIP,
                "profile", ProfileID(c),
            }
            if v.Error != nil {
                logger.Warn("HTTP:Request:Error", append(kv, "error", v.Error)...)
                return nil
            }
            logger.Info("HTTP:Request:Done", kv...)
            return nil
        },
    })
}
