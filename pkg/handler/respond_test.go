package handler

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/graphql-go/graphql/gqlerrors"
	"github.com/stretchr/testify/assert"
)

func TestResponseMarshalOrdering(t *testing.T) {
	resp := &response{
		data:    map[string]interface{}{"hello": "world"},
		hasData: true,
		errors: []gqlerrors.FormattedError{
			{Message: "partial failure"},
		},
		extensions: map[string]interface{}{"took": "1ms"},
	}

	b, err := json.Marshal(resp)
	assert.Nil(t, err)

	body := string(b)
	data := `"data":{"hello":"world"}`
	errs := `"errors":`
	ext := `"extensions":{"took":"1ms"}`
	assert.Contains(t, body, data)
	assert.Less(t, strings.Index(body, data), strings.Index(body, errs))
	assert.Less(t, strings.Index(body, errs), strings.Index(body, ext))
}

func TestResponseMarshalNullData(t *testing.T) {
	resp := &response{
		hasData: true,
		errors: []gqlerrors.FormattedError{
			{Message: "execution died"},
		},
	}

	b, err := json.Marshal(resp)
	assert.Nil(t, err)
	assert.Contains(t, string(b), `"data":null`)
}

func TestResponseMarshalOmitsAbsentData(t *testing.T) {
	resp := &response{
		errors: []gqlerrors.FormattedError{
			{Message: "never executed"},
		},
	}

	b, err := json.Marshal(resp)
	assert.Nil(t, err)
	assert.NotContains(t, string(b), `"data"`)
}

func TestResponseMarshalEmpty(t *testing.T) {
	b, err := json.Marshal(&response{})
	assert.Nil(t, err)
	assert.Equal(t, "{}", string(b))
}
