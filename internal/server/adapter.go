package server

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/metr/internal/gateway"
	obscontext "github.com/smallbiznis/metr/internal/observability/context"
)

const maxBodyBytes = 1 << 20

var errBodyTooLarge = errors.New("request body too large")

// adapt runs a Lambda handler for a gin request.
func adapt(fn gateway.LambdaFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		ev, err := toEvent(c)
		if errors.Is(err, errBodyTooLarge) {
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{
				"error":       err.Error(),
				"status_code": http.StatusRequestEntityTooLarge,
			})
			return
		}
		if err != nil {
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error":       "request body could not be read",
				"status_code": http.StatusBadRequest,
			})
			return
		}

		resp, err := fn(c.Request.Context(), ev)
		if err != nil {
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":       "Internal Server Error",
				"message":     "internal server error",
				"status_code": http.StatusInternalServerError,
			})
			return
		}
		writeResponse(c, resp)
	}
}

// toEvent builds the payload API Gateway would deliver for this request.
func toEvent(c *gin.Context) (events.APIGatewayV2HTTPRequest, error) {
	var body []byte
	if c.Request.Body != nil {
		var err error
		// One byte past the limit tells an oversized body from one that fits.
		body, err = io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes+1))
		if err != nil {
			return events.APIGatewayV2HTTPRequest{}, err
		}
		if len(body) > maxBodyBytes {
			return events.APIGatewayV2HTTPRequest{}, errBodyTooLarge
		}
	}

	headers := make(map[string]string, len(c.Request.Header))
	for name, values := range c.Request.Header {
		headers[strings.ToLower(name)] = strings.Join(values, ",")
	}

	var query map[string]string
	if values := c.Request.URL.Query(); len(values) > 0 {
		query = make(map[string]string, len(values))
		for name, v := range values {
			if len(v) > 0 {
				query[name] = v[0]
			}
		}
	}

	ev := events.APIGatewayV2HTTPRequest{
		Version:               "2.0",
		RouteKey:              c.Request.Method + " " + c.FullPath(),
		RawPath:               c.Request.URL.Path,
		RawQueryString:        c.Request.URL.RawQuery,
		Headers:               headers,
		QueryStringParameters: query,
		Body:                  string(body),
	}
	if id := c.Param("meter_id"); id != "" {
		ev.PathParameters = map[string]string{"meter_id": id}
	}

	now := time.Now()
	ev.RequestContext.RouteKey = ev.RouteKey
	ev.RequestContext.Stage = "$default"
	ev.RequestContext.RequestID = obscontext.RequestIDFromContext(c.Request.Context())
	ev.RequestContext.Time = now.UTC().Format("02/Jan/2006:15:04:05 -0700")
	ev.RequestContext.TimeEpoch = now.UnixMilli()
	ev.RequestContext.HTTP.Method = c.Request.Method
	ev.RequestContext.HTTP.Path = c.Request.URL.Path
	ev.RequestContext.HTTP.Protocol = c.Request.Proto
	ev.RequestContext.HTTP.SourceIP = c.ClientIP()
	ev.RequestContext.HTTP.UserAgent = c.Request.UserAgent()
	return ev, nil
}

func writeResponse(c *gin.Context, resp events.APIGatewayV2HTTPResponse) {
	contentType := ""
	for name, value := range resp.Headers {
		if strings.EqualFold(name, "content-type") {
			contentType = value
			continue
		}
		c.Header(name, value)
	}

	if resp.Body == "" {
		c.Status(resp.StatusCode)
		return
	}
	c.Data(resp.StatusCode, contentType, []byte(resp.Body))
}
