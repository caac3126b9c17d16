package router

import (
	"net/http"
	"reflect"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"
	"github.com/rwa-lab/backend/pkg/errorx"
	"github.com/shopspring/decimal"
)

const requestIDHeader = "X-Request-Id"

var (
	errMethodNotAllowed = errorx.New(errorx.BadRequest, "Method not allowed")
	errNotFound         = errorx.New(errorx.NotFound, "Not found")
	errInvalidRequest   = errorx.New(errorx.BadRequest, "Invalid request")
)

func requestID(req *http.Request) string {
	if id := req.Header.Get(requestIDHeader); id != "" {
		return id
	}

	return uuid.NewString()
}

// bind decodes the json body of POST requests into req. The query string of
// GET requests is decoded by the json tags of req, so one struct serves both
// methods.
func bind(c *gin.Context, req any) error {
	if c.Request.Method != http.MethodGet {
		if c.Request.ContentLength == 0 {
			return nil
		}

		return c.ShouldBindJSON(req)
	}

	query := map[string]any{}
	for key, values := range c.Request.URL.Query() {
		if len(values) == 1 {
			query[key] = values[0]
		} else {
			query[key] = values
		}
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		DecodeHook:       decimalHook,
		Result:           req,
	})
	if err != nil {
		return err
	}

	return decoder.Decode(query)
}

var decimalType = reflect.TypeOf(decimal.Decimal{})

func decimalHook(from, to reflect.Type, data any) (any, error) {
	if to != decimalType || from.Kind() != reflect.String {
		return data, nil
	}

	return decimal.NewFromString(data.(string))
}
