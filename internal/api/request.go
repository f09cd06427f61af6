package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/variant-reports-service/pkg/schema"
)

// maxBodyBytes bounds request bodies
const maxBodyBytes = 1 << 20

// errMalformedBody marks a body that is not a JSON object
var errMalformedBody = errors.New("malformed request body")

// bindPayload decodes the body into a raw payload for schema validation.
// Numbers are kept as json.Number so decimal precision survives. An empty
// body yields an empty payload and fails field validation instead.
func bindPayload(c *gin.Context) (schema.Payload, error) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformedBody, err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return schema.Payload{}, nil
	}

	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()

	var payload schema.Payload
	if err := decoder.Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformedBody, err)
	}
	if payload == nil {
		return nil, fmt.Errorf("%w: expected a JSON object", errMalformedBody)
	}
	if decoder.More() {
		return nil, fmt.Errorf("%w: unexpected data after JSON object", errMalformedBody)
	}
	return payload, nil
}

// geneID parses the :id path parameter of gene routes
func geneID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

// uuidParam parses a UUID path parameter
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
