package category

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	first := New("Electronics")
	second := New("Electronics")

	assert.Equal(t, "Electronics", first.Name)
	assert.NotEmpty(t, first.ID)
	assert.NotEqual(t, first.ID, second.ID, "every category gets its own identity")
	assert.False(t, first.CreatedAt.IsZero())
}

func TestValidateName(t *testing.T) {
	existing := []Category{New("Electronics"), New("Books")}

	tests := []struct {
		name      string
		candidate string
		wantErr   error
	}{
		{name: "new name", candidate: "Kitchen", wantErr: nil},
		{name: "empty name", candidate: "", wantErr: ErrEmptyName},
		{name: "exact duplicate", candidate: "Electronics", wantErr: ErrDuplicateName},
		{name: "different case is not a duplicate", candidate: "electronics", wantErr: nil},
		{name: "surrounding spaces are not trimmed", candidate: " Books ", wantErr: nil},
		{name: "whitespace only is accepted", candidate: "   ", wantErr: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.candidate, existing)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}
