package schema

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roncuevas/LocalJSON/errors"
)

const profileSchema = `
#Profile: {
	name: string
	age:  int & >=0 & <=150
	tags?: [...string]
}
`

func TestCompile(t *testing.T) {
	t.Run("valid definition", func(t *testing.T) {
		s, err := Compile(profileSchema, WithDefinition("#Profile"))
		require.NoError(t, err)
		assert.NotNil(t, s)
	})

	t.Run("syntax error", func(t *testing.T) {
		_, err := Compile(`{name: }`)
		require.Error(t, err)
		assert.Equal(t, errors.CodeInvalidConfig, errors.GetCode(err))
	})

	t.Run("missing definition", func(t *testing.T) {
		_, err := Compile(profileSchema, WithDefinition("#Missing"))
		require.Error(t, err)
		assert.Equal(t, errors.CodeInvalidConfig, errors.GetCode(err))
	})

	t.Run("must compile panics", func(t *testing.T) {
		assert.Panics(t, func() { MustCompile(`{name: }`) })
	})
}

func TestSchema_ValidateJSON(t *testing.T) {
	s := MustCompile(profileSchema, WithDefinition("#Profile"))
	ctx := context.Background()

	tests := []struct {
		name     string
		data     string
		wantCode errors.ErrorCode
	}{
		{name: "valid", data: `{"name":"Ada","age":36}`},
		{name: "valid with optional", data: `{"name":"Ada","age":36,"tags":["math"]}`},
		{name: "wrong type", data: `{"name":"Ada","age":"old"}`, wantCode: errors.CodeSchemaFailed},
		{name: "out of range", data: `{"name":"Ada","age":200}`, wantCode: errors.CodeSchemaFailed},
		{name: "missing field", data: `{"name":"Ada"}`, wantCode: errors.CodeSchemaFailed},
		{name: "closed definition", data: `{"name":"Ada","age":1,"extra":true}`, wantCode: errors.CodeSchemaFailed},
		{name: "not json", data: `{name`, wantCode: errors.CodeDecodeFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.ValidateJSON(ctx, []byte(tt.data))
			if tt.wantCode == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, errors.GetCode(err))
		})
	}
}

func TestSchema_Issues(t *testing.T) {
	s := MustCompile(profileSchema, WithDefinition("#Profile"))

	err := s.ValidateJSON(context.Background(), []byte(`{"name":1,"age":-1}`))
	require.Error(t, err)

	issues := Issues(err)
	require.NotEmpty(t, issues)
	for _, issue := range issues {
		assert.NotEmpty(t, issue.Message)
	}
}

func TestSchema_ValidateValue(t *testing.T) {
	type profile struct {
		Name string `json:"name"`
		Age  int    `json:"age"`
	}
	s := MustCompile(profileSchema, WithDefinition("#Profile"))

	assert.NoError(t, s.ValidateValue(context.Background(), profile{Name: "Ada", Age: 36}))

	err := s.ValidateValue(context.Background(), profile{Name: "Ada", Age: -4})
	require.Error(t, err)
	assert.Equal(t, errors.CodeSchemaFailed, errors.GetCode(err))
}

func TestSchema_CancelledContext(t *testing.T) {
	s := MustCompile(profileSchema, WithDefinition("#Profile"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.ValidateJSON(ctx, []byte(`{"name":"Ada","age":36}`))
	require.Error(t, err)
	assert.Equal(t, errors.CodeTimeout, errors.GetCode(err))
}
