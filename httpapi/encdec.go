package httpapi

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/vmihailenco/msgpack/v5"
)

const mimeMsgpack = "application/msgpack"

// bindBody decodes a JSON or msgpack request body into v and runs the binding
// validator over it. Anything that is not msgpack is treated as JSON.
func bindBody(c *gin.Context, v any) error {
	if c.ContentType() != mimeMsgpack {
		return c.ShouldBindJSON(v)
	}
	if c.Request.Body == nil {
		return fmt.Errorf("decode msgpack: empty body")
	}
	dec := msgpack.NewDecoder(c.Request.Body)
	// This allows the message pack decoder to use the json struct tags.
	dec.SetCustomStructTag("json")
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode msgpack: %w", err)
	}
	if err := binding.Validator.ValidateStruct(v); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	return nil
}
