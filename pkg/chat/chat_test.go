package chat

import (
	"strings"
	"testing"
)

func TestValidateMessage(t *testing.T) {
	tests := []struct {
		name    string
		message string
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid short message",
			message: "Please, just hear me out.",
			wantErr: false,
		},
		{
			name:    "valid message at max length",
			message: strings.Repeat("a", MaxMessageLength),
			wantErr: false,
		},
		{
			name:    "message too long",
			message: strings.Repeat("a", MaxMessageLength+1),
			wantErr: true,
			errMsg:  "exceeds maximum length",
		},
		{
			name:    "empty message",
			message: "",
			wantErr: true,
			errMsg:  "cannot be empty",
		},
		{
			name:    "whitespace only",
			message: " \t  ",
			wantErr: true,
			errMsg:  "cannot be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMessage(tt.message)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateMessage() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr && err != nil && tt.errMsg != "" {
				if !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("ValidateMessage() error = %v, want error containing %q", err, tt.errMsg)
				}
			}
		})
	}
}
