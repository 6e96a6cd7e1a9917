package api

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/Skryldev/jobly/apperr"
	"github.com/Skryldev/jobly/query"
)

// searchParams coerces the query string into a document for schema
// validation. Keys listed in ints or bools are converted when they parse;
// anything else stays a string so the schema reports the type error.
func searchParams(c *gin.Context, ints, bools []string) map[string]any {
	doc := map[string]any{}
	for key, values := range c.Request.URL.Query() {
		if len(values) == 0 {
			continue
		}
		doc[key] = values[0]
	}
	for _, key := range ints {
		if s, ok := doc[key].(string); ok {
			if n, err := strconv.ParseInt(s, 10, 64); err == nil {
				doc[key] = n
			}
		}
	}
	for _, key := range bools {
		switch doc[key] {
		case "true":
			doc[key] = true
		case "false":
			doc[key] = false
		}
	}
	return doc
}

func stringParam(doc map[string]any, key string) *string {
	if s, ok := doc[key].(string); ok {
		return &s
	}
	return nil
}

func intParam(doc map[string]any, key string) *int64 {
	if n, ok := doc[key].(int64); ok {
		return &n
	}
	return nil
}

func boolParam(doc map[string]any, key string) *bool {
	if b, ok := doc[key].(bool); ok {
		return &b
	}
	return nil
}

// idParam parses an integer path parameter. A malformed id cannot name a
// row, so it is reported as not found.
func idParam(c *gin.Context, name, notFound string) (int64, error) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, apperr.NotFound(notFound + raw)
	}
	return id, nil
}

// bindBody validates the raw body against schema and decodes it into dst.
func (s *Server) bindBody(c *gin.Context, schema string, dst any) error {
	body, err := c.GetRawData()
	if err != nil {
		return apperr.New(apperr.ErrInvalidInput, "Could not read request body", err)
	}
	if err := s.schemas.ValidateJSON(schema, body); err != nil {
		return err
	}
	if err := binding.JSON.BindBody(body, dst); err != nil {
		return apperr.New(apperr.ErrInvalidInput, "Malformed JSON", err)
	}
	return nil
}

// bindChanges validates a PATCH body and returns its fields in the order
// the caller sent them.
func (s *Server) bindChanges(c *gin.Context, schema string) (query.Changes, error) {
	body, err := c.GetRawData()
	if err != nil {
		return nil, apperr.New(apperr.ErrInvalidInput, "Could not read request body", err)
	}
	if err := s.schemas.ValidateJSON(schema, body); err != nil {
		return nil, err
	}
	return query.DecodeChanges(body)
}
