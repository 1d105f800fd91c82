package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromptUser(t *testing.T) {
	var out bytes.Buffer
	u, err := promptUser(strings.NewReader("coach\ncoach@example.com\n  s3cretpass \n"), &out)
	require.NoError(t, err)

	assert.Equal(t, newUser{Username: "coach", Email: "coach@example.com", Password: "s3cretpass", Role: "user"}, u)
	assert.Equal(t, "Username: Email: Password: ", out.String())
}

func TestPromptUser_Validation(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"missing username", "\na@b.co\npassword1\n"},
		{"bad email", "coach\nnot-an-email\npassword1\n"},
		{"short password", "coach\na@b.co\nshort\n"},
		{"truncated input", "coach\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := promptUser(strings.NewReader(tt.input), &bytes.Buffer{})
			assert.Error(t, err)
		})
	}
}
