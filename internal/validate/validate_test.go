package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Iron-Ham/clawteam/internal/errors"
)

type sample struct {
	Name   string   `json:"name" validate:"teamname"`
	Title  string   `json:"title" validate:"notblank,max=10"`
	Agents []string `json:"agents" validate:"dive,notblank"`
	Mode   string   `json:"mode" validate:"omitempty,oneof=fast slow"`
}

func TestStruct(t *testing.T) {
	tests := []struct {
		name      string
		req       sample
		wantField string
	}{
		{"valid", sample{Name: "alpha", Title: "ok", Agents: []string{"a"}}, ""},
		{"bad team name", sample{Name: "a/b", Title: "ok"}, "name"},
		{"blank title", sample{Name: "alpha", Title: "   "}, "title"},
		{"long title", sample{Name: "alpha", Title: "0123456789ab"}, "title"},
		{"blank agent", sample{Name: "alpha", Title: "ok", Agents: []string{"a", " "}}, "agents[1]"},
		{"bad mode", sample{Name: "alpha", Title: "ok", Mode: "medium"}, "mode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(&tt.req)
			if tt.wantField == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, errors.ErrInvalidInput)

			var ve *errors.ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.wantField, ve.Field)
		})
	}
}

func TestStruct_TeamNameMessage(t *testing.T) {
	err := Struct(&sample{Name: ".hidden", Title: "ok"})
	var ve *errors.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Message, "dot")
}
